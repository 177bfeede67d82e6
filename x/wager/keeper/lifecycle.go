package keeper

import (
	"context"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

func (m msgServer) CreateSession(ctx context.Context, req *types.MsgCreateSession) (*types.MsgCreateSessionResponse, error) {
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
	if req.Stake < params.MinStake || req.Stake > params.MaxStake {
		return nil, types.ErrConfigViolation.Wrapf("stake %d outside [%d,%d]", req.Stake, params.MinStake, params.MaxStake)
	}

	id, err := m.GetNextSessionID(ctx)
	if err != nil {
		return nil, err
	}
	next, err := addUint64Checked(id, 1, "next session id")
	if err != nil {
		return nil, err
	}
	if err := m.SetNextSessionID(ctx, next); err != nil {
		return nil, err
	}

	maxRounds := uint8(1)
	if req.Kind == types.GameKindMultiRound {
		maxRounds = params.MaxRounds
	}
	now := m.now(ctx)
	s := &types.Session{
		ID:             id,
		Kind:           req.Kind,
		State:          types.StateWaiting,
		Creator:        req.Creator,
		Treasury:       params.Treasury,
		Players:        []string{req.Creator},
		Stakes:         []uint64{req.Stake},
		PotTotal:       req.Stake,
		EntryFee:       req.Stake,
		MaxRounds:      maxRounds,
		StartTime:      now,
		LastActionTime: now,
		Flags:          types.FlagHasTimeout,
	}
	switch req.Kind {
	case types.GameKindDuel:
		s.SetFlag(types.FlagAutoResolve)
	default:
		if params.RandomnessMethod == types.RandomnessMethodOracle {
			s.SetFlag(types.FlagUsesExternalRandomness)
		}
	}

	if err := m.bankKeeper.SendCoins(ctx, req.Creator, types.VaultAccount(id), req.Stake); err != nil {
		return nil, err
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}

	m.Logger(ctx).Debug("session created", "session", id, "kind", req.Kind.String(), "creator", req.Creator)
	host.EmitEvent(ctx, types.EventTypeSessionCreated,
		host.NewAttribute(types.AttributeKeySessionID, u64(id)),
		host.NewAttribute(types.AttributeKeyKind, req.Kind.String()),
		host.NewAttribute(types.AttributeKeyCreator, req.Creator),
		host.NewAttribute(types.AttributeKeyStake, u64(req.Stake)),
	)
	return &types.MsgCreateSessionResponse{SessionID: id}, nil
}

func (m msgServer) JoinSession(ctx context.Context, req *types.MsgJoinSession) (*types.MsgJoinSessionResponse, error) {
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
	if err := requireState(s, types.StateWaiting); err != nil {
		return nil, err
	}
	if s.IsParticipant(req.Player) {
		return nil, types.ErrDuplicateParticipant.Wrapf("%s already in session %d", req.Player, s.ID)
	}
	if len(s.Players) >= s.Kind.MaxPlayers() {
		return nil, types.ErrSessionFull.Wrapf("session %d has %d players", s.ID, len(s.Players))
	}
	pot, err := addUint64Checked(s.PotTotal, s.EntryFee, "pot")
	if err != nil {
		return nil, err
	}
	if err := m.bankKeeper.SendCoins(ctx, req.Player, types.VaultAccount(s.ID), s.EntryFee); err != nil {
		return nil, err
	}

	now := m.now(ctx)
	s.Players = append(s.Players, req.Player)
	s.Stakes = append(s.Stakes, s.EntryFee)
	s.PotTotal = pot
	s.LastActionTime = now

	host.EmitEvent(ctx, types.EventTypePlayerJoined,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyPlayer, req.Player),
		host.NewAttribute(types.AttributeKeyStake, u64(s.EntryFee)),
		host.NewAttribute(types.AttributeKeyPot, u64(s.PotTotal)),
	)

	if s.Kind.MaxPlayers() == 2 && len(s.Players) == 2 {
		m.activate(ctx, s, now)
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgJoinSessionResponse{}, nil
}

// activate moves a Waiting session to Active in round 1.
func (m msgServer) activate(ctx context.Context, s *types.Session, now int64) {
	s.CurrentRound = 1
	s.StartTime = now
	if s.Kind == types.GameKindDuel {
		n := len(s.Players)
		s.Commitments = make([]types.Hash32, n)
		s.Reveals = make([]types.Move, n)
		s.RevealNonces = make([]types.Hash32, n)
	}
	m.setState(ctx, s, types.StateActive)
}

func (m msgServer) CancelSession(ctx context.Context, req *types.MsgCancelSession) (*types.MsgCancelSessionResponse, error) {
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
	if s.Creator != req.Creator {
		return nil, types.ErrUnauthorized.Wrapf("only the creator can cancel session %d", s.ID)
	}
	if err := requireState(s, types.StateWaiting); err != nil {
		return nil, err
	}
	s.LastActionTime = m.now(ctx)
	m.setState(ctx, s, types.StateCancelled)
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgCancelSessionResponse{}, nil
}

// ForceFinish completes a session whose participants stopped acting. Anyone may
// call it once the inactivity timeout has strictly elapsed.
//
// Timeout winner policy:
//   - Waiting: void.
//   - Duel: the only participant who committed (Active) or revealed (Resolving)
//     wins; otherwise void.
//   - MultiRound: the unique highest stake wins; a tie is void.
//   - Lottery: a Waiting lottery is void. An active lottery settles by draw,
//     unless it awaits oracle randomness that has not arrived one timeout after
//     the draw time; then it is void.
//
// A void session completes without a winner and is refunded through SettleDraw.
func (m msgServer) ForceFinish(ctx context.Context, req *types.MsgForceFinish) (*types.MsgForceFinishResponse, error) {
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
	if err := requireState(s, types.StateWaiting, types.StateActive, types.StateResolving); err != nil {
		return nil, err
	}
	activeLottery := s.Kind == types.GameKindLottery && s.State != types.StateWaiting
	if activeLottery && (!s.HasFlag(types.FlagUsesExternalRandomness) || !s.RandomResult.IsZero()) {
		return nil, types.ErrInvalidState.Wrapf("lottery session %d settles by draw", s.ID)
	}
	params, err := m.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	deadline, err := timeoutDeadline(s, params)
	if err != nil {
		return nil, err
	}
	now := m.now(ctx)
	if now <= deadline {
		return nil, types.ErrInvalidState.Wrapf("session %d times out after %d, now %d", s.ID, deadline, now)
	}

	winner := timeoutWinner(s)
	if winner == "" {
		s.ClearWinner()
	} else {
		s.SetWinner(winner)
	}
	s.SetFlag(types.FlagIsResolved)
	s.LastActionTime = now
	m.setState(ctx, s, types.StateCompleted)
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}

	outcome := "winner"
	if winner == "" {
		outcome = "void"
	}
	m.Logger(ctx).Info("session timed out", "session", s.ID, "outcome", outcome, "winner", winner)
	host.EmitEvent(ctx, types.EventTypeSessionTimedOut,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyOutcome, outcome),
		host.NewAttribute(types.AttributeKeyWinner, winner),
	)
	return &types.MsgForceFinishResponse{Winner: winner, Void: winner == ""}, nil
}

// timeoutDeadline is the last instant at which s is still live. An active
// oracle lottery gets its draw interval plus one timeout for the oracle to
// deliver; everything else times out relative to its last action.
func timeoutDeadline(s *types.Session, p types.Params) (int64, error) {
	if s.Kind == types.GameKindLottery && s.State == types.StateActive {
		drawAt, err := drawTime(s, p)
		if err != nil {
			return 0, err
		}
		return addInt64AndU64Checked(drawAt, p.TimeoutSecs, "timeout deadline")
	}
	return addInt64AndU64Checked(s.LastActionTime, p.TimeoutSecs, "timeout deadline")
}

func timeoutWinner(s *types.Session) string {
	if s.State == types.StateWaiting {
		return ""
	}
	switch s.Kind {
	case types.GameKindDuel:
		acted := -1
		for i := range s.Players {
			var done bool
			if s.State == types.StateActive {
				done = i < len(s.Commitments) && !s.Commitments[i].IsZero()
			} else {
				done = i < len(s.Reveals) && !s.Reveals[i].IsNone()
			}
			if !done {
				continue
			}
			if acted >= 0 {
				return ""
			}
			acted = i
		}
		if acted < 0 {
			return ""
		}
		return s.Players[acted]
	case types.GameKindMultiRound:
		best, bestIdx, tie := uint64(0), -1, false
		for i, st := range s.Stakes {
			switch {
			case bestIdx < 0 || st > best:
				best, bestIdx, tie = st, i, false
			case st == best:
				tie = true
			}
		}
		if bestIdx < 0 || tie {
			return ""
		}
		return s.Players[bestIdx]
	default:
		return ""
	}
}
