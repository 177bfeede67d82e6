package keeper

import (
	"context"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

// EnterLottery buys tickets; each ticket takes one participant slot at the
// configured ticket price. When fewer slots are free than requested, the
// purchase is partially filled and only the filled tickets are charged.
// Sales close at the draw time, before any randomness can be submitted.
func (m msgServer) EnterLottery(ctx context.Context, req *types.MsgEnterLottery) (*types.MsgEnterLotteryResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, kindPtr(types.GameKindLottery))
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateWaiting, types.StateActive); err != nil {
		return nil, err
	}
	if !s.RandomResult.IsZero() {
		return nil, types.ErrInvalidState.Wrapf("session %d already has its draw randomness", s.ID)
	}
	params, err := m.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	if s.State == types.StateActive {
		drawAt, err := drawTime(s, params)
		if err != nil {
			return nil, err
		}
		if now := m.now(ctx); now >= drawAt {
			return nil, types.ErrLotteryClosed.Wrapf("session %d stopped selling at %d, now %d", s.ID, drawAt, now)
		}
	}
	if req.NumTickets == 0 || req.NumTickets > params.MaxTicketsPerPlayer {
		return nil, types.ErrInvalidConfig.Wrapf("tickets must be in [1,%d], got %d", params.MaxTicketsPerPlayer, req.NumTickets)
	}
	// Reject prices that cannot be paid for the full request, even if fewer fill.
	if _, err := mulUint64Checked(params.TicketPrice, uint64(req.NumTickets), "ticket cost"); err != nil {
		return nil, err
	}

	free := types.MaxParticipants - len(s.Players)
	if free <= 0 {
		return nil, types.ErrSessionFull.Wrapf("session %d has %d slots taken", s.ID, len(s.Players))
	}
	filled := req.NumTickets
	if uint64(filled) > uint64(free) {
		filled = uint32(free)
	}
	cost, err := mulUint64Checked(params.TicketPrice, uint64(filled), "ticket cost")
	if err != nil {
		return nil, err
	}
	pot, err := addUint64Checked(s.PotTotal, cost, "pot")
	if err != nil {
		return nil, err
	}
	if err := m.bankKeeper.SendCoins(ctx, req.Player, types.VaultAccount(s.ID), cost); err != nil {
		return nil, err
	}

	now := m.now(ctx)
	for i := uint32(0); i < filled; i++ {
		s.Players = append(s.Players, req.Player)
		s.Stakes = append(s.Stakes, params.TicketPrice)
	}
	s.PotTotal = pot
	s.LastActionTime = now

	host.EmitEvent(ctx, types.EventTypeLotteryEntered,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyPlayer, req.Player),
		host.NewAttribute(types.AttributeKeyRequested, u64(uint64(req.NumTickets))),
		host.NewAttribute(types.AttributeKeyTickets, u64(uint64(filled))),
		host.NewAttribute(types.AttributeKeyAmount, u64(cost)),
		host.NewAttribute(types.AttributeKeyPot, u64(s.PotTotal)),
	)
	if s.State == types.StateWaiting {
		m.activate(ctx, s, now)
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgEnterLotteryResponse{Filled: filled, Cost: cost}, nil
}

// DrawLottery selects the winner once the draw interval has elapsed since the
// lottery became active. Win probability is proportional to stake held.
func (m msgServer) DrawLottery(ctx context.Context, req *types.MsgDrawLottery) (*types.MsgDrawLotteryResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, kindPtr(types.GameKindLottery))
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateActive); err != nil {
		return nil, err
	}
	if err := m.requireDrawReady(ctx, s); err != nil {
		return nil, err
	}
	if len(s.Players) == 0 || s.PotTotal == 0 {
		return nil, types.ErrNoLotteryParticipants.Wrapf("session %d sold no tickets", s.ID)
	}
	seed, source, err := m.sessionRandomness(ctx, s)
	if err != nil {
		return nil, err
	}
	idx, draw, err := drawWeighted(seed, s.Stakes)
	if err != nil {
		return nil, err
	}

	s.RandomResult = seed
	s.SetWinner(s.Players[idx])
	s.SetFlag(types.FlagIsResolved)
	s.LastActionTime = m.now(ctx)
	m.setState(ctx, s, types.StateCompleted)
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}

	m.Logger(ctx).Info("lottery drawn", "session", s.ID, "winner", s.Winner, "draw", draw, "pot", s.PotTotal, "source", source)
	host.EmitEvent(ctx, types.EventTypeLotteryDrawn,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyWinner, s.Winner),
		host.NewAttribute(types.AttributeKeyPot, u64(s.PotTotal)),
		host.NewAttribute(types.AttributeKeySource, source),
		host.NewAttribute(types.AttributeKeyRandomness, s.RandomResult.String()),
	)
	return &types.MsgDrawLotteryResponse{Winner: s.Winner}, nil
}

// drawTime is when an active lottery stops selling tickets and may be drawn.
func drawTime(s *types.Session, p types.Params) (int64, error) {
	return addInt64AndU64Checked(s.StartTime, p.DrawIntervalSecs, "draw time")
}

func (m msgServer) requireDrawReady(ctx context.Context, s *types.Session) error {
	params, err := m.GetParams(ctx)
	if err != nil {
		return err
	}
	readyAt, err := drawTime(s, params)
	if err != nil {
		return err
	}
	if now := m.now(ctx); now < readyAt {
		return types.ErrLotteryNotReady.Wrapf("session %d draws at %d, now %d", s.ID, readyAt, now)
	}
	return nil
}

// SubmitRandomness records oracle randomness for a session created under the
// oracle randomness method. Lotteries accept it only once ticket sales are
// closed by the draw interval, and multi-round sessions only after the last
// round, so no participant can act on the value.
func (m msgServer) SubmitRandomness(ctx context.Context, req *types.MsgSubmitRandomness) (*types.MsgSubmitRandomnessResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	params, err := m.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	if params.Oracle == "" || req.Oracle != params.Oracle {
		return nil, types.ErrUnauthorized.Wrapf("%s is not the randomness oracle", req.Oracle)
	}
	s, err := m.loadSession(ctx, req.SessionID, nil)
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case types.GameKindLottery:
		if err := requireState(s, types.StateActive); err != nil {
			return nil, err
		}
		if err := m.requireDrawReady(ctx, s); err != nil {
			return nil, err
		}
	case types.GameKindMultiRound:
		if err := requireState(s, types.StateResolving); err != nil {
			return nil, err
		}
	default:
		return nil, types.ErrInvalidGameKind.Wrapf("session %d is %s", s.ID, s.Kind)
	}
	if !s.HasFlag(types.FlagUsesExternalRandomness) {
		return nil, types.ErrInvalidRandomness.Wrapf("session %d uses block randomness", s.ID)
	}
	if !s.RandomResult.IsZero() {
		return nil, types.ErrInvalidRandomness.Wrapf("session %d already has randomness", s.ID)
	}
	s.RandomResult = req.Randomness
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}

	host.EmitEvent(ctx, types.EventTypeRandomnessSubmitted,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyRandomness, req.Randomness.String()),
	)
	return &types.MsgSubmitRandomnessResponse{}, nil
}
