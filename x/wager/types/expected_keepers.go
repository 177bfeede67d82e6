package types

import "context"

// BankKeeper moves native funds between ledger accounts atomically.
type BankKeeper interface {
	// SendCoins fails with ErrInsufficientFunds when from cannot cover amount.
	SendCoins(ctx context.Context, from, to string, amount uint64) error
	GetBalance(ctx context.Context, addr string) uint64
}

// RandomnessSource supplies the block-derived fallback beacon.
//
// SECURITY: the beacon is derived from public chain data and the block proposer can
// influence it. It is only suitable for low-stakes sessions or devnets; production
// deployments configure RandomnessMethodOracle and submit verifiable randomness.
type RandomnessSource interface {
	Beacon(ctx context.Context, sessionID uint64) ([32]byte, error)
}
