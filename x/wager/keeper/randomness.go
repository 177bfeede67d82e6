package keeper

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

const (
	// Keep these domains stable; they become part of consensus-critical derivations.
	blockBeaconDomain = "wager/v1/beacon/block"
	sessionSeedDomain = "wager/v1/session/seed"
)

// BlockBeaconFrom derives a 32-byte beacon from (chain-id, height, block hash,
// sessionID).
//
// Security note: block-derived entropy is proposer-influenceable and anyone can
// predict it one block ahead. It backs sessions created under
// RandomnessMethodBlock only.
func BlockBeaconFrom(chainID string, height int64, blockHash []byte, sessionID uint64) [32]byte {
	var h8, s8 [8]byte
	binary.LittleEndian.PutUint64(h8[:], uint64(height))
	binary.LittleEndian.PutUint64(s8[:], sessionID)
	return hashDomain(blockBeaconDomain, []byte(chainID), h8[:], s8[:], blockHash)
}

// sessionRandomness returns the seed deciding a lottery draw or multi-round
// resolution, and the source it came from.
func (k Keeper) sessionRandomness(ctx context.Context, s *types.Session) (types.Hash32, string, error) {
	if s.HasFlag(types.FlagUsesExternalRandomness) {
		if s.RandomResult.IsZero() {
			return types.Hash32{}, "", types.ErrRandomnessUnavailable.Wrapf("session %d awaits oracle randomness", s.ID)
		}
		return s.RandomResult, types.RandomnessSourceOracle, nil
	}

	beacon, err := k.randomness.Beacon(ctx, s.ID)
	if err != nil {
		return types.Hash32{}, "", types.ErrRandomnessUnavailable.Wrap(err.Error())
	}
	var id8 [8]byte
	binary.LittleEndian.PutUint64(id8[:], s.ID)
	seed := hashDomain(sessionSeedDomain, beacon[:], id8[:])
	k.Logger(ctx).Info("using block-derived randomness; predictable by the block proposer",
		"session", s.ID, "height", host.FromContext(ctx).Height)
	return seed, types.RandomnessSourceBlock, nil
}

func hashDomain(domain string, parts ...[]byte) [32]byte {
	h := sha256.New()
	_, _ = h.Write([]byte(domain))

	// Length-prefix each part to avoid ambiguous concatenations.
	var lenBuf [4]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write(p)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hashRNG is a deterministic stream derived from sha256(seed || counter).
type hashRNG struct {
	seed    [32]byte
	counter uint64
}

func newHashRNG(seed [32]byte) *hashRNG {
	return &hashRNG{seed: seed}
}

func (r *hashRNG) next() uint64 {
	var in [32 + 8]byte
	copy(in[:32], r.seed[:])
	binary.LittleEndian.PutUint64(in[32:], r.counter)
	r.counter++
	sum := sha256.Sum256(in[:])
	return binary.BigEndian.Uint64(sum[:8])
}

// Uint64n draws uniformly from [0, n) by rejecting the biased tail of the range.
func (r *hashRNG) Uint64n(n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("n must be > 0")
	}
	if n&(n-1) == 0 {
		return r.next() & (n - 1), nil
	}
	// Largest multiple of n that fits; values at or above it are rejected.
	limit := ^uint64(0) - ^uint64(0)%n
	for tries := 0; tries < 1_000_000; tries++ {
		v := r.next()
		if v < limit {
			return v % n, nil
		}
	}
	return 0, fmt.Errorf("failed to draw Uint64n after many tries (n=%d)", n)
}

// pickWeighted returns the first slot whose cumulative stake range contains draw:
// slot i wins iff sum(stakes[:i]) <= draw < sum(stakes[:i+1]).
func pickWeighted(stakes []uint64, draw uint64) (int, error) {
	var cum uint64
	for i, st := range stakes {
		next, err := addUint64Checked(cum, st, "cumulative stake")
		if err != nil {
			return -1, err
		}
		if draw < next {
			return i, nil
		}
		cum = next
	}
	return -1, fmt.Errorf("draw %d outside total weight %d", draw, cum)
}

// drawWeighted selects a slot with probability proportional to its stake.
func drawWeighted(seed [32]byte, stakes []uint64) (int, uint64, error) {
	var total uint64
	for _, st := range stakes {
		var err error
		if total, err = addUint64Checked(total, st, "total weight"); err != nil {
			return -1, 0, err
		}
	}
	if total == 0 {
		return -1, 0, types.ErrNoLotteryParticipants.Wrap("total weight is zero")
	}
	draw, err := newHashRNG(seed).Uint64n(total)
	if err != nil {
		return -1, 0, err
	}
	idx, err := pickWeighted(stakes, draw)
	return idx, draw, err
}
