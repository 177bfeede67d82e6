package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// GameKind selects the protocol that advances a session.
type GameKind uint8

const (
	GameKindDuel GameKind = iota
	GameKindMultiRound
	GameKindLottery
)

func (k GameKind) String() string {
	switch k {
	case GameKindDuel:
		return "duel"
	case GameKindMultiRound:
		return "multi_round"
	case GameKindLottery:
		return "lottery"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k GameKind) Valid() bool { return k <= GameKindLottery }

// MaxPlayers returns the participant slot cap for the kind.
func (k GameKind) MaxPlayers() int {
	if k == GameKindLottery {
		return MaxParticipants
	}
	return 2
}

func ParseGameKind(s string) (GameKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duel", "simple_duel":
		return GameKindDuel, nil
	case "multi_round", "multiround":
		return GameKindMultiRound, nil
	case "lottery":
		return GameKindLottery, nil
	default:
		return 0, fmt.Errorf("unknown game kind %q", s)
	}
}

func (k GameKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid game kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *GameKind) UnmarshalText(b []byte) error {
	v, err := ParseGameKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// SessionState is the lifecycle state of a session.
type SessionState uint8

const (
	StateWaiting SessionState = iota
	StateActive
	StateResolving
	StateCompleted
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StateResolving:
		return "resolving"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

func (s SessionState) Terminal() bool { return s == StateCompleted || s == StateCancelled }

func (s SessionState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SessionState) UnmarshalText(b []byte) error {
	for c := StateWaiting; c <= StateCancelled; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", string(b))
}

// Flags is the session bitset.
type Flags uint8

const (
	FlagIsResolved Flags = 1 << iota
	FlagFeesDistributed
	FlagUsesExternalRandomness
	FlagHasTimeout
	FlagAutoResolve
)

func (f Flags) Has(bit Flags) bool { return f&bit == bit }

// Hash32 is a 32-byte digest encoded as hex in JSON.
type Hash32 [32]byte

func (h Hash32) IsZero() bool { return h == Hash32{} }

func (h Hash32) String() string { return hex.EncodeToString(h[:]) }

func (h Hash32) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash32) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*h = Hash32{}
		return nil
	}
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("hash must be %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return nil
}

// ActionRecord is one entry of the multi-round betting log.
type ActionRecord struct {
	Player uint8   `json:"player"`
	Kind   BetKind `json:"kind"`
}

// Session is one wagering game with its participants, pot and state.
//
// Players and Stakes are parallel: slot i of Stakes is what Players[i] has
// transferred into the session vault. Lottery sessions hold one slot per ticket,
// so an identity may appear more than once.
type Session struct {
	ID       uint64       `json:"id"`
	Kind     GameKind     `json:"kind"`
	State    SessionState `json:"state"`
	Creator  string       `json:"creator"`
	Treasury string       `json:"treasury"`

	Players  []string `json:"players"`
	Stakes   []uint64 `json:"stakes"`
	PotTotal uint64   `json:"potTotal"`
	EntryFee uint64   `json:"entryFee"`

	CurrentRound uint8 `json:"currentRound"`
	MaxRounds    uint8 `json:"maxRounds"`

	Commitments  []Hash32 `json:"commitments,omitempty"`
	Reveals      []Move   `json:"reveals,omitempty"`
	RevealNonces []Hash32 `json:"revealNonces,omitempty"`

	Actions          []ActionRecord `json:"actions,omitempty"`
	RoundActionStart int            `json:"roundActionStart,omitempty"`

	Winner    string `json:"winner,omitempty"`
	HasWinner bool   `json:"hasWinner"`

	RandomResult Hash32 `json:"randomResult"`

	StartTime      int64 `json:"startTime"`
	LastActionTime int64 `json:"lastActionTime"`
	EndTime        int64 `json:"endTime,omitempty"`

	PlatformFeeCollected uint64 `json:"platformFeeCollected"`
	Flags                Flags  `json:"flags"`
}

// PlayerIndex returns the first slot held by addr, or -1.
func (s *Session) PlayerIndex(addr string) int {
	for i, p := range s.Players {
		if p == addr {
			return i
		}
	}
	return -1
}

func (s *Session) IsParticipant(addr string) bool { return s.PlayerIndex(addr) >= 0 }

// StakeOf sums every slot held by addr.
func (s *Session) StakeOf(addr string) uint64 {
	var total uint64
	for i, p := range s.Players {
		if p == addr {
			total += s.Stakes[i]
		}
	}
	return total
}

// UniquePlayers lists participant identities in join order without repeats.
func (s *Session) UniquePlayers() []string {
	seen := make(map[string]bool, len(s.Players))
	out := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func (s *Session) SetWinner(addr string) {
	s.Winner = addr
	s.HasWinner = addr != ""
}

func (s *Session) ClearWinner() {
	s.Winner = ""
	s.HasWinner = false
}

func (s *Session) HasFlag(f Flags) bool { return s.Flags.Has(f) }

func (s *Session) SetFlag(f Flags) { s.Flags |= f }

// HighestStake returns max(Stakes), the amount a caller must match.
func (s *Session) HighestStake() uint64 {
	var highest uint64
	for _, st := range s.Stakes {
		if st > highest {
			highest = st
		}
	}
	return highest
}

// ValidateBasic checks the structural invariants every stored session must hold.
func (s *Session) ValidateBasic() error {
	if s.ID == 0 {
		return fmt.Errorf("session id must be > 0")
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("session %d: invalid kind %d", s.ID, s.Kind)
	}
	if s.State > StateCancelled {
		return fmt.Errorf("session %d: invalid state %d", s.ID, s.State)
	}
	if len(s.Players) != len(s.Stakes) {
		return fmt.Errorf("session %d: players/stakes length mismatch", s.ID)
	}
	if len(s.Players) > s.Kind.MaxPlayers() {
		return fmt.Errorf("session %d: %d participants exceeds cap %d", s.ID, len(s.Players), s.Kind.MaxPlayers())
	}
	var sum uint64
	for _, st := range s.Stakes {
		if sum > ^uint64(0)-st {
			return fmt.Errorf("session %d: stakes overflow uint64", s.ID)
		}
		sum += st
	}
	if sum != s.PotTotal {
		return fmt.Errorf("session %d: pot %d != sum(stakes) %d", s.ID, s.PotTotal, sum)
	}
	if s.HasWinner != (s.Winner != "") {
		return fmt.Errorf("session %d: winner marker inconsistent", s.ID)
	}
	if s.MaxRounds > MaxRoundsLimit || (s.State == StateActive && s.CurrentRound > s.MaxRounds) {
		return fmt.Errorf("session %d: round %d/%d out of bounds", s.ID, s.CurrentRound, s.MaxRounds)
	}
	if len(s.Actions) > MaxActionLog {
		return fmt.Errorf("session %d: action log exceeds %d", s.ID, MaxActionLog)
	}
	return nil
}
