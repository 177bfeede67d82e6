package app

import (
	"context"
	"fmt"

	"onchainwager/internal/host"
	"onchainwager/x/wager/keeper"
)

// blockBeacon derives session randomness from the block being executed. It is
// the weak fallback used by sessions created under the "block" randomness method.
type blockBeacon struct{}

func (blockBeacon) Beacon(ctx context.Context, sessionID uint64) ([32]byte, error) {
	env := host.FromContext(ctx)
	if len(env.BlockHash) == 0 {
		return [32]byte{}, fmt.Errorf("no block hash at height %d", env.Height)
	}
	return keeper.BlockBeaconFrom(env.ChainID, env.Height, env.BlockHash, sessionID), nil
}
