package types

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommitment_MatchesSha256OfMoveAndNonce(t *testing.T) {
	nonce := Hash32{1, 2, 3}
	got := Commitment(Move{Kind: MoveRock}, nonce)
	want := sha256.Sum256(append([]byte{byte(MoveRock)}, nonce[:]...))
	require.Equal(t, Hash32(want), got)

	got = Commitment(Move{Kind: MoveNumber, Number: 42}, nonce)
	want = sha256.Sum256(append([]byte{byte(MoveNumber), 42}, nonce[:]...))
	require.Equal(t, Hash32(want), got)
}

func TestCommitment_BindsMoveAndNonce(t *testing.T) {
	n1, n2 := Hash32{1}, Hash32{2}
	require.NotEqual(t, Commitment(Move{Kind: MoveRock}, n1), Commitment(Move{Kind: MovePaper}, n1))
	require.NotEqual(t, Commitment(Move{Kind: MoveRock}, n1), Commitment(Move{Kind: MoveRock}, n2))
	require.NotEqual(t,
		Commitment(Move{Kind: MoveNumber, Number: 1}, n1),
		Commitment(Move{Kind: MoveNumber, Number: 2}, n1))
}

func TestDuelOutcome_RPS(t *testing.T) {
	rock, paper, scissors := Move{Kind: MoveRock}, Move{Kind: MovePaper}, Move{Kind: MoveScissors}
	var n Hash32
	require.Equal(t, 0, DuelOutcome(rock, scissors, n, n))
	require.Equal(t, 0, DuelOutcome(scissors, paper, n, n))
	require.Equal(t, 0, DuelOutcome(paper, rock, n, n))
	require.Equal(t, 1, DuelOutcome(scissors, rock, n, n))
	require.Equal(t, 1, DuelOutcome(paper, scissors, n, n))
	require.Equal(t, 1, DuelOutcome(rock, paper, n, n))
	require.Equal(t, -1, DuelOutcome(rock, rock, n, n))
}

func TestDuelOutcome_Coin(t *testing.T) {
	heads, tails := Move{Kind: MoveHeads}, Move{Kind: MoveTails}
	require.Equal(t, -1, DuelOutcome(heads, heads, Hash32{1}, Hash32{2}))

	// Whatever side lands, exactly one caller wins and swapping calls swaps the winner.
	for i := byte(0); i < 16; i++ {
		a, b := Hash32{i}, Hash32{i + 1}
		w := DuelOutcome(heads, tails, a, b)
		require.Contains(t, []int{0, 1}, w)
		require.Equal(t, 1-w, DuelOutcome(tails, heads, a, b))
	}
}

func TestDuelOutcome_NumbersCyclic(t *testing.T) {
	num := func(n uint8) Move { return Move{Kind: MoveNumber, Number: n} }
	var n Hash32
	require.Equal(t, 0, DuelOutcome(num(10), num(5), n, n))
	require.Equal(t, 1, DuelOutcome(num(5), num(10), n, n))
	// 0 beats 200: (0-200) mod 256 = 56.
	require.Equal(t, 0, DuelOutcome(num(0), num(200), n, n))
	require.Equal(t, -1, DuelOutcome(num(0), num(128), n, n))
	require.Equal(t, -1, DuelOutcome(num(7), num(7), n, n))
}

func TestDuelOutcome_MixedFamiliesDraw(t *testing.T) {
	var n Hash32
	require.Equal(t, -1, DuelOutcome(Move{Kind: MoveRock}, Move{Kind: MoveHeads}, n, n))
	require.Equal(t, -1, DuelOutcome(Move{Kind: MoveNumber, Number: 1}, Move{Kind: MovePaper}, n, n))
	require.Equal(t, -1, DuelOutcome(Move{}, Move{Kind: MoveRock}, n, n))
}

func TestDuelOutcome_StrayNumberDoesNotBreakTies(t *testing.T) {
	var n Hash32
	require.Equal(t, -1, DuelOutcome(Move{Kind: MoveRock}, Move{Kind: MoveRock, Number: 9}, n, n))
	require.Equal(t, -1, DuelOutcome(Move{Kind: MoveRock, Number: 9}, Move{Kind: MoveRock}, n, n))
	require.Equal(t, -1, DuelOutcome(Move{Kind: MoveHeads, Number: 1}, Move{Kind: MoveHeads}, Hash32{1}, Hash32{2}))
}

func TestMove_Valid(t *testing.T) {
	require.True(t, Move{Kind: MoveRock}.Valid())
	require.True(t, Move{Kind: MoveNumber, Number: 200}.Valid())
	require.True(t, Move{Kind: MoveNumber}.Valid())
	require.False(t, Move{}.Valid())
	require.False(t, Move{Kind: MoveNumber + 1}.Valid())
	require.False(t, Move{Kind: MoveRock, Number: 9}.Valid())
	require.False(t, Move{Kind: MoveTails, Number: 1}.Valid())

	// The stray number is invisible to the commitment, so validity must catch it.
	require.Equal(t, Commitment(Move{Kind: MoveRock}, Hash32{1}), Commitment(Move{Kind: MoveRock, Number: 9}, Hash32{1}))
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("Rock")
	require.NoError(t, err)
	require.Equal(t, Move{Kind: MoveRock}, m)

	m, err = ParseMove("number:255")
	require.NoError(t, err)
	require.Equal(t, Move{Kind: MoveNumber, Number: 255}, m)

	_, err = ParseMove("number:256")
	require.Error(t, err)
	_, err = ParseMove("lizard")
	require.Error(t, err)
}
