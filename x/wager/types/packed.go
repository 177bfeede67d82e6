package types

// Packed header layout of a stored session:
//
//	kindState  byte   low nibble = GameKind, high nibble = SessionState
//	rounds     byte   low nibble = current round, high nibble = max rounds (0-15)
//	timestamps uint64 low 32 bits = start time, high 32 bits = last action time
//	flags      byte   Flags bitset
//
// KNOWN LIMITATION: timestamps are stored as unsigned 32-bit unix seconds and wrap
// in February 2106. Times before the epoch or after the wrap are truncated to their
// low 32 bits; callers must not rely on ordering across the boundary.
//
// Every unpack function is total. Unknown kinds decode as GameKindDuel and unknown
// states decode as StateCancelled, which freezes the session until refunded.

func PackKindState(kind GameKind, state SessionState) byte {
	return byte(kind)&0x0F | (byte(state)&0x0F)<<4
}

func UnpackKindState(b byte) (GameKind, SessionState) {
	kind := GameKind(b & 0x0F)
	if !kind.Valid() {
		kind = GameKindDuel
	}
	state := SessionState(b >> 4)
	if state > StateCancelled {
		state = StateCancelled
	}
	return kind, state
}

// PackRounds keeps the low nibble of each value.
func PackRounds(current, max uint8) byte {
	return current&0x0F | (max&0x0F)<<4
}

func UnpackRounds(b byte) (current, max uint8) {
	return b & 0x0F, b >> 4
}

func PackTimestamps(start, lastAction int64) uint64 {
	return uint64(uint32(start)) | uint64(uint32(lastAction))<<32
}

func UnpackTimestamps(v uint64) (start, lastAction int64) {
	return int64(uint32(v)), int64(uint32(v >> 32))
}

// PackAction encodes a log entry as player<<2 | kind. Player indexes above 63 are
// not representable; multi-round sessions have two players.
func PackAction(a ActionRecord) byte {
	return a.Player<<2 | byte(a.Kind)&0x03
}

func UnpackAction(b byte) ActionRecord {
	return ActionRecord{Player: b >> 2, Kind: BetKind(b & 0x03)}
}
