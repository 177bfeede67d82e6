package types

import (
	"encoding/binary"
	"fmt"
)

const (
	// ModuleName defines the module name.
	ModuleName = "wager"

	// StoreKey defines the primary module store key.
	StoreKey = ModuleName

	// DefaultTreasury is the ledger account that receives platform fees and penalties.
	DefaultTreasury = "wager/treasury"

	// DefaultAdmin is the genesis admin identity for devnets.
	DefaultAdmin = "wager/admin"

	// DefaultOracle is the genesis randomness oracle identity for devnets.
	DefaultOracle = "wager/oracle"
)

var (
	// ParamsKey stores the JSON-encoded Params.
	ParamsKey = []byte{0x01}

	// NextSessionIDKey stores the next session id as big-endian u64.
	NextSessionIDKey = []byte{0x02}

	// SessionKeyPrefix stores Session by id: SessionKeyPrefix || u64be(sessionID).
	SessionKeyPrefix = []byte{0x03}

	// ProfileKeyPrefix stores PlayerProfile by identity: ProfileKeyPrefix || addr.
	ProfileKeyPrefix = []byte{0x04}
)

func SessionKey(sessionID uint64) []byte {
	bz := make([]byte, 1+8)
	bz[0] = SessionKeyPrefix[0]
	binary.BigEndian.PutUint64(bz[1:], sessionID)
	return bz
}

func ProfileKey(addr string) []byte {
	bz := make([]byte, 0, 1+len(addr))
	bz = append(bz, ProfileKeyPrefix[0])
	return append(bz, addr...)
}

// VaultAccount is the custodial ledger account holding a session's pot.
func VaultAccount(sessionID uint64) string {
	return fmt.Sprintf("wager/vault/%d", sessionID)
}
