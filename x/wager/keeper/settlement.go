package keeper

import (
	"context"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

func (m msgServer) DistributeWinnings(ctx context.Context, req *types.MsgDistributeWinnings) (*types.MsgSettlementResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, nil)
	if err != nil {
		return nil, err
	}
	return m.payout(ctx, s, req.Winner)
}

// ClaimWinnings is DistributeWinnings initiated by the winner.
func (m msgServer) ClaimWinnings(ctx context.Context, req *types.MsgClaimWinnings) (*types.MsgSettlementResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, nil)
	if err != nil {
		return nil, err
	}
	if s.HasWinner && s.Winner != req.Winner {
		return nil, types.ErrUnauthorized.Wrapf("%s is not the winner of session %d", req.Winner, s.ID)
	}
	return m.payout(ctx, s, req.Winner)
}

// payout pays the pot minus the platform fee to the recorded winner, exactly
// once per session.
func (m msgServer) payout(ctx context.Context, s *types.Session, target string) (*types.MsgSettlementResponse, error) {
	if err := requireState(s, types.StateCompleted); err != nil {
		return nil, err
	}
	if s.HasFlag(types.FlagFeesDistributed) {
		return nil, types.ErrFeesAlreadyDistributed.Wrapf("session %d", s.ID)
	}
	if !s.HasWinner {
		return nil, types.ErrNoWinner.Wrapf("session %d ended without a winner", s.ID)
	}
	if target != s.Winner {
		return nil, types.ErrInvalidWinner.Wrapf("%s is not the winner of session %d", target, s.ID)
	}
	params, err := m.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	pot := s.PotTotal
	fee := percentOf(pot, params.PlatformFeePercent)
	winnings := pot - fee

	if err := m.collectPlatformFee(ctx, s, fee); err != nil {
		return nil, err
	}
	if err := m.bankKeeper.SendCoins(ctx, types.VaultAccount(s.ID), s.Winner, winnings); err != nil {
		return nil, err
	}

	now := m.now(ctx)
	for _, p := range s.UniquePlayers() {
		outcome, won := types.OutcomeLoss, uint64(0)
		if p == s.Winner {
			outcome, won = types.OutcomeWin, winnings
		}
		if err := m.recordOutcome(ctx, p, outcome, s.StakeOf(p), won, now); err != nil {
			return nil, err
		}
	}

	s.SetFlag(types.FlagFeesDistributed)
	s.PlatformFeeCollected = fee
	zeroStakes(s)
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}

	m.Logger(ctx).Info("winnings distributed", "session", s.ID, "winner", s.Winner, "payout", winnings, "fee", fee)
	host.EmitEvent(ctx, types.EventTypeWinningsClaimed,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyWinner, s.Winner),
		host.NewAttribute(types.AttributeKeyPayout, u64(winnings)),
		host.NewAttribute(types.AttributeKeyFee, u64(fee)),
	)
	return &types.MsgSettlementResponse{Payout: winnings, Fee: fee}, nil
}

func (m msgServer) collectPlatformFee(ctx context.Context, s *types.Session, fee uint64) error {
	if fee == 0 {
		return nil
	}
	if err := m.bankKeeper.SendCoins(ctx, types.VaultAccount(s.ID), s.Treasury, fee); err != nil {
		return err
	}
	host.EmitEvent(ctx, types.EventTypeFeesCollected,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyTreasury, s.Treasury),
		host.NewAttribute(types.AttributeKeyFee, u64(fee)),
	)
	return nil
}

// RefundWithPenalty returns one participant's stake from a cancelled session.
// The participant or the creator may request it. A penalty can only be applied
// to the creator's own stake; it goes to the treasury.
func (m msgServer) RefundWithPenalty(ctx context.Context, req *types.MsgRefund) (*types.MsgRefundResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, nil)
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateCancelled); err != nil {
		return nil, err
	}
	if req.Caller != req.Participant && req.Caller != s.Creator {
		return nil, types.ErrUnauthorized.Wrapf("%s cannot refund %s", req.Caller, req.Participant)
	}
	if !s.IsParticipant(req.Participant) {
		return nil, types.ErrNotParticipant.Wrapf("%s not in session %d", req.Participant, s.ID)
	}
	if req.ApplyPenalty && req.Participant != s.Creator {
		return nil, types.ErrInvalidRequest.Wrap("penalty only applies to the creator's stake")
	}
	stake := s.StakeOf(req.Participant)
	if stake == 0 {
		return nil, types.ErrNoStakeToRefund.Wrapf("%s in session %d", req.Participant, s.ID)
	}
	params, err := m.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	var penalty uint64
	if req.ApplyPenalty {
		penalty = percentOf(stake, params.FoldPenaltyPercent)
	}
	refund := stake - penalty

	if penalty > 0 {
		if err := m.bankKeeper.SendCoins(ctx, types.VaultAccount(s.ID), s.Treasury, penalty); err != nil {
			return nil, err
		}
	}
	if err := m.bankKeeper.SendCoins(ctx, types.VaultAccount(s.ID), req.Participant, refund); err != nil {
		return nil, err
	}

	for i, p := range s.Players {
		if p == req.Participant {
			s.Stakes[i] = 0
		}
	}
	s.PotTotal -= stake
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}

	host.EmitEvent(ctx, types.EventTypeStakeRefunded,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyPlayer, req.Participant),
		host.NewAttribute(types.AttributeKeyAmount, u64(refund)),
		host.NewAttribute(types.AttributeKeyPenalty, u64(penalty)),
	)
	return &types.MsgRefundResponse{Refunded: refund, Penalty: penalty}, nil
}

// BatchRefundAll returns every remaining stake of a cancelled session in full.
// Participants already refunded are skipped, so it can be re-driven safely.
func (m msgServer) BatchRefundAll(ctx context.Context, req *types.MsgBatchRefund) (*types.MsgBatchRefundResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, nil)
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateCancelled); err != nil {
		return nil, err
	}
	total, err := m.refundAll(ctx, s)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, types.ErrNoStakeToRefund.Wrapf("session %d is fully refunded", s.ID)
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgBatchRefundResponse{Refunded: total}, nil
}

// SettleDraw refunds every stake of a session that completed without a winner:
// duel draws and void timeouts. No platform fee is taken.
func (m msgServer) SettleDraw(ctx context.Context, req *types.MsgSettleDraw) (*types.MsgBatchRefundResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, nil)
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateCompleted); err != nil {
		return nil, err
	}
	if s.HasFlag(types.FlagFeesDistributed) {
		return nil, types.ErrFeesAlreadyDistributed.Wrapf("session %d", s.ID)
	}
	if s.HasWinner {
		return nil, types.ErrInvalidState.Wrapf("session %d has a winner; distribute winnings instead", s.ID)
	}

	now := m.now(ctx)
	for _, p := range s.UniquePlayers() {
		st := s.StakeOf(p)
		if err := m.recordOutcome(ctx, p, types.OutcomeDraw, st, st, now); err != nil {
			return nil, err
		}
	}
	total, err := m.refundAll(ctx, s)
	if err != nil {
		return nil, err
	}
	s.SetFlag(types.FlagFeesDistributed)
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgBatchRefundResponse{Refunded: total}, nil
}

// refundAll sends each identity its remaining stake and zeroes the pot.
func (m msgServer) refundAll(ctx context.Context, s *types.Session) (uint64, error) {
	var total uint64
	for _, p := range s.UniquePlayers() {
		amt := s.StakeOf(p)
		if amt == 0 {
			continue
		}
		if err := m.bankKeeper.SendCoins(ctx, types.VaultAccount(s.ID), p, amt); err != nil {
			return 0, err
		}
		total += amt
		host.EmitEvent(ctx, types.EventTypeStakeRefunded,
			host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
			host.NewAttribute(types.AttributeKeyPlayer, p),
			host.NewAttribute(types.AttributeKeyAmount, u64(amt)),
			host.NewAttribute(types.AttributeKeyPenalty, "0"),
		)
	}
	zeroStakes(s)
	return total, nil
}

func zeroStakes(s *types.Session) {
	for i := range s.Stakes {
		s.Stakes[i] = 0
	}
	s.PotTotal = 0
}

func (k Keeper) recordOutcome(ctx context.Context, player string, outcome types.Outcome, staked, won uint64, now int64) error {
	p, err := k.GetProfile(ctx, player)
	if err != nil {
		return err
	}
	p.Record(outcome, staked, won, now)
	return k.SetProfile(ctx, p)
}
