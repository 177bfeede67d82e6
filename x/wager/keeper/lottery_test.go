package keeper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"onchainwager/x/wager/types"
)

const ticketPrice uint64 = 50_000_000

func enter(t *testing.T, f *fixture, id uint64, player string, n uint32) *types.MsgEnterLotteryResponse {
	t.Helper()
	res, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: player, SessionID: id, NumTickets: n})
	require.NoError(t, err)
	return res
}

func TestEnterLottery_ActivatesAndCharges(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, types.GameKindLottery, "alice", unit)
	f.advance(time.Minute)

	res := enter(t, f, id, "bob", 3)
	require.Equal(t, uint32(3), res.Filled)
	require.Equal(t, 3*ticketPrice, res.Cost)

	s := f.session(t, id)
	require.Equal(t, types.StateActive, s.State)
	require.Equal(t, f.env.BlockTime.Unix(), s.StartTime)
	require.Equal(t, []string{"alice", "bob", "bob", "bob"}, s.Players)
	require.Equal(t, 3*ticketPrice, s.StakeOf("bob"))
	require.Equal(t, unit+3*ticketPrice, s.PotTotal)
	require.Equal(t, funding-3*ticketPrice, f.bank.balances["bob"])
	f.requireConserved(t, id)

	// Tickets stay on sale while active; joining at the entry fee does not.
	enter(t, f, id, "carol", 1)
	_, err := f.msg.JoinSession(f.ctx, &types.MsgJoinSession{Player: "dave", SessionID: id})
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestEnterLottery_TicketBounds(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, types.GameKindLottery, "alice", unit)

	for _, n := range []uint32{0, 101} {
		_, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "bob", SessionID: id, NumTickets: n})
		require.ErrorIs(t, err, types.ErrInvalidConfig)
	}
	require.Equal(t, types.StateWaiting, f.session(t, id).State)

	duel := f.create(t, types.GameKindDuel, "alice", unit)
	_, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "bob", SessionID: duel, NumTickets: 1})
	require.ErrorIs(t, err, types.ErrInvalidGameKind)
}

func TestEnterLottery_PartialFillThenFull(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, types.GameKindLottery, "alice", unit)

	res := enter(t, f, id, "bob", 100)
	require.Equal(t, uint32(types.MaxParticipants-1), res.Filled)
	require.Equal(t, uint64(types.MaxParticipants-1)*ticketPrice, res.Cost)
	require.Len(t, f.session(t, id).Players, types.MaxParticipants)
	f.requireConserved(t, id)

	_, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "carol", SessionID: id, NumTickets: 1})
	require.ErrorIs(t, err, types.ErrSessionFull)
	require.Equal(t, funding, f.bank.balances["carol"])
}

func TestEnterLottery_InsufficientFundsLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, types.GameKindLottery, "alice", unit)
	f.bank.balances["dave"] = 2 * ticketPrice

	_, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "dave", SessionID: id, NumTickets: 3})
	require.ErrorIs(t, err, types.ErrInsufficientFunds)
	s := f.session(t, id)
	require.Equal(t, types.StateWaiting, s.State)
	require.Len(t, s.Players, 1)
}

func TestDrawLottery_WaitsForInterval(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, types.GameKindLottery, "alice", unit)

	_, err := f.msg.DrawLottery(f.ctx, &types.MsgDrawLottery{Caller: "carol", SessionID: id})
	require.ErrorIs(t, err, types.ErrInvalidState)

	enter(t, f, id, "bob", 4)
	f.advance(24*time.Hour - time.Second)
	_, err = f.msg.DrawLottery(f.ctx, &types.MsgDrawLottery{Caller: "carol", SessionID: id})
	require.ErrorIs(t, err, types.ErrLotteryNotReady)

	f.advance(time.Second)
	res, err := f.msg.DrawLottery(f.ctx, &types.MsgDrawLottery{Caller: "carol", SessionID: id})
	require.NoError(t, err)
	require.Contains(t, []string{"alice", "bob"}, res.Winner)

	s := f.session(t, id)
	require.Equal(t, types.StateCompleted, s.State)
	require.Equal(t, res.Winner, s.Winner)
	require.Len(t, f.eventsOfType(types.EventTypeLotteryDrawn), 1)

	_, err = f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "carol", SessionID: id, NumTickets: 1})
	require.ErrorIs(t, err, types.ErrInvalidState)

	pot := s.PotTotal
	out, err := f.msg.ClaimWinnings(f.ctx, &types.MsgClaimWinnings{Winner: res.Winner, SessionID: id})
	require.NoError(t, err)
	require.Equal(t, pot, out.Payout+out.Fee)
	f.requireConserved(t, id)
}

func TestDrawLottery_OracleRandomness(t *testing.T) {
	f := newFixture(t)
	f.setParams(t, func(p *types.Params) { p.RandomnessMethod = types.RandomnessMethodOracle })
	id := f.create(t, types.GameKindLottery, "alice", unit)
	enter(t, f, id, "bob", 2)

	rnd := nonce(0x42)
	_, err := f.msg.SubmitRandomness(f.ctx, &types.MsgSubmitRandomness{Oracle: "oracle", SessionID: id, Randomness: rnd})
	require.ErrorIs(t, err, types.ErrLotteryNotReady)

	f.advance(24 * time.Hour)
	_, err = f.msg.DrawLottery(f.ctx, &types.MsgDrawLottery{Caller: "carol", SessionID: id})
	require.ErrorIs(t, err, types.ErrRandomnessUnavailable)

	_, err = f.msg.SubmitRandomness(f.ctx, &types.MsgSubmitRandomness{Oracle: "oracle", SessionID: id, Randomness: rnd})
	require.NoError(t, err)

	_, err = f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "carol", SessionID: id, NumTickets: 1})
	require.ErrorIs(t, err, types.ErrInvalidState)

	_, err = f.msg.DrawLottery(f.ctx, &types.MsgDrawLottery{Caller: "carol", SessionID: id})
	require.NoError(t, err)
	require.Equal(t, rnd, f.session(t, id).RandomResult)
}

func TestEnterLottery_SalesCloseAtDrawTime(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, types.GameKindLottery, "alice", unit)
	enter(t, f, id, "bob", 1)

	f.advance(24*time.Hour - time.Second)
	enter(t, f, id, "carol", 1)

	f.advance(time.Second)
	_, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "carol", SessionID: id, NumTickets: 50})
	require.ErrorIs(t, err, types.ErrLotteryClosed)

	f.advance(48 * time.Hour)
	_, err = f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "carol", SessionID: id, NumTickets: 1})
	require.ErrorIs(t, err, types.ErrLotteryClosed)

	s := f.session(t, id)
	require.Equal(t, []string{"alice", "bob", "carol"}, s.Players)
	require.Equal(t, funding-ticketPrice, f.bank.balances["carol"])
	f.requireConserved(t, id)
}

func TestEnterLottery_ClosedBeforeOracleSubmits(t *testing.T) {
	f := newFixture(t)
	f.setParams(t, func(p *types.Params) { p.RandomnessMethod = types.RandomnessMethodOracle })
	id := f.create(t, types.GameKindLottery, "alice", unit)
	enter(t, f, id, "bob", 1)

	// From the first instant the oracle may submit, the stake vector is frozen.
	f.advance(24 * time.Hour)
	_, err := f.msg.EnterLottery(f.ctx, &types.MsgEnterLottery{Player: "carol", SessionID: id, NumTickets: 10})
	require.ErrorIs(t, err, types.ErrLotteryClosed)
	_, err = f.msg.SubmitRandomness(f.ctx, &types.MsgSubmitRandomness{Oracle: "oracle", SessionID: id, Randomness: nonce(3)})
	require.NoError(t, err)
}
