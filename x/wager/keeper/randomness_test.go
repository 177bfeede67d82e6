package keeper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"onchainwager/x/wager/types"
)

func TestPickWeighted_Boundaries(t *testing.T) {
	stakes := []uint64{10, 20, 70}
	for draw, want := range map[uint64]int{0: 0, 9: 0, 10: 1, 29: 1, 30: 2, 99: 2} {
		got, err := pickWeighted(stakes, draw)
		require.NoError(t, err)
		require.Equal(t, want, got, "draw %d", draw)
	}
	_, err := pickWeighted(stakes, 100)
	require.Error(t, err)
}

func TestPickWeighted_SkipsZeroStakes(t *testing.T) {
	got, err := pickWeighted([]uint64{0, 5, 0, 5}, 5)
	require.NoError(t, err)
	require.Equal(t, 3, got)
}

func TestDrawWeighted_Proportional(t *testing.T) {
	stakes := []uint64{10, 20, 70}
	var counts [3]int
	for i := 0; i < 1000; i++ {
		seed := hashDomain("test/seed", []byte{byte(i), byte(i >> 8)})
		idx, draw, err := drawWeighted(seed, stakes)
		require.NoError(t, err)
		require.Less(t, draw, uint64(100))
		counts[idx]++
	}
	require.InDelta(t, 100, counts[0], 60)
	require.InDelta(t, 200, counts[1], 80)
	require.InDelta(t, 700, counts[2], 100)
}

func TestDrawWeighted_ZeroWeight(t *testing.T) {
	_, _, err := drawWeighted([32]byte{1}, []uint64{0, 0})
	require.ErrorIs(t, err, types.ErrNoLotteryParticipants)
}

func TestHashRNG_Deterministic(t *testing.T) {
	a, b := newHashRNG([32]byte{9}), newHashRNG([32]byte{9})
	for i := 0; i < 8; i++ {
		x, err := a.Uint64n(1000)
		require.NoError(t, err)
		y, err := b.Uint64n(1000)
		require.NoError(t, err)
		require.Equal(t, x, y)
		require.Less(t, x, uint64(1000))
	}
	v, err := a.Uint64n(1)
	require.NoError(t, err)
	require.Zero(t, v)
	_, err = a.Uint64n(0)
	require.Error(t, err)
}

func TestBlockBeaconFrom_DomainSeparated(t *testing.T) {
	base := BlockBeaconFrom("wager-1", 10, []byte{1, 2, 3}, 1)
	require.Equal(t, base, BlockBeaconFrom("wager-1", 10, []byte{1, 2, 3}, 1))
	require.NotEqual(t, base, BlockBeaconFrom("wager-1", 10, []byte{1, 2, 3}, 2))
	require.NotEqual(t, base, BlockBeaconFrom("wager-1", 11, []byte{1, 2, 3}, 1))
	require.NotEqual(t, base, BlockBeaconFrom("wager-2", 10, []byte{1, 2, 3}, 1))
	require.NotEqual(t, base, BlockBeaconFrom("wager-1", 10, []byte{1, 2, 4}, 1))
}
