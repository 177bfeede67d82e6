package keeper

import (
	"context"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

// PlaceBet applies one betting action. A round completes once every participant
// has acted once since it began; finishing the last round moves the session to
// Resolving.
func (m msgServer) PlaceBet(ctx context.Context, req *types.MsgPlaceBet) (*types.MsgPlaceBetResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, kindPtr(types.GameKindMultiRound))
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateActive); err != nil {
		return nil, err
	}
	idx := s.PlayerIndex(req.Player)
	if idx < 0 {
		return nil, types.ErrNotParticipant.Wrapf("%s not in session %d", req.Player, s.ID)
	}
	if len(s.Actions) >= types.MaxActionLog {
		return nil, types.ErrActionLogFull.Wrapf("session %d logged %d actions", s.ID, len(s.Actions))
	}

	var moved uint64
	currentBet := s.HighestStake()
	switch req.Action.Kind {
	case types.BetCheck:
	case types.BetCall:
		if currentBet > s.Stakes[idx] {
			moved = currentBet - s.Stakes[idx]
		}
	case types.BetRaise:
		if req.Action.Amount <= currentBet {
			return nil, types.ErrInvalidBetAction.Wrapf("raise to %d must exceed current bet %d", req.Action.Amount, currentBet)
		}
		moved = req.Action.Amount - s.Stakes[idx]
	case types.BetFold:
		if s.CurrentRound >= s.MaxRounds {
			return nil, types.ErrCannotFoldFinalRound.Wrapf("round %d of %d", s.CurrentRound, s.MaxRounds)
		}
	default:
		return nil, types.ErrInvalidBetAction.Wrapf("unknown action %d", req.Action.Kind)
	}

	if moved > 0 {
		stake, err := addUint64Checked(s.Stakes[idx], moved, "stake")
		if err != nil {
			return nil, err
		}
		pot, err := addUint64Checked(s.PotTotal, moved, "pot")
		if err != nil {
			return nil, err
		}
		if err := m.bankKeeper.SendCoins(ctx, req.Player, types.VaultAccount(s.ID), moved); err != nil {
			return nil, err
		}
		s.Stakes[idx] = stake
		s.PotTotal = pot
	}

	s.Actions = append(s.Actions, types.ActionRecord{Player: uint8(idx), Kind: req.Action.Kind})
	s.LastActionTime = m.now(ctx)

	host.EmitEvent(ctx, types.EventTypeBetPlaced,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyPlayer, req.Player),
		host.NewAttribute(types.AttributeKeyAction, req.Action.Kind.String()),
		host.NewAttribute(types.AttributeKeyAmount, u64(moved)),
		host.NewAttribute(types.AttributeKeyRound, u64(uint64(s.CurrentRound))),
		host.NewAttribute(types.AttributeKeyPot, u64(s.PotTotal)),
	)

	if req.Action.Kind == types.BetFold {
		// The other participant wins regardless of remaining rounds.
		other := s.Players[1-idx]
		s.SetWinner(other)
		s.SetFlag(types.FlagIsResolved)
		m.setState(ctx, s, types.StateCompleted)
		host.EmitEvent(ctx, types.EventTypeSessionResolved,
			host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
			host.NewAttribute(types.AttributeKeyOutcome, "fold"),
			host.NewAttribute(types.AttributeKeyWinner, other),
		)
	} else {
		m.advanceRound(ctx, s)
	}

	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgPlaceBetResponse{}, nil
}

func (m msgServer) advanceRound(ctx context.Context, s *types.Session) {
	n := len(s.Players)
	since := len(s.Actions) - s.RoundActionStart
	if n == 0 || since == 0 || since%n != 0 {
		return
	}
	s.RoundActionStart = len(s.Actions)
	if s.CurrentRound >= s.MaxRounds {
		// The round counter stays at MaxRounds; the state records that play is over.
		m.setState(ctx, s, types.StateResolving)
		return
	}
	s.CurrentRound++
}

// ResolveSession picks the winner of a multi-round session that played every
// round, weighting each participant by stake.
func (m msgServer) ResolveSession(ctx context.Context, req *types.MsgResolveSession) (*types.MsgResolveSessionResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, kindPtr(types.GameKindMultiRound))
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateResolving); err != nil {
		return nil, err
	}
	seed, source, err := m.sessionRandomness(ctx, s)
	if err != nil {
		return nil, err
	}
	idx, _, err := drawWeighted(seed, s.Stakes)
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

	host.EmitEvent(ctx, types.EventTypeSessionResolved,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyOutcome, "winner"),
		host.NewAttribute(types.AttributeKeyWinner, s.Winner),
		host.NewAttribute(types.AttributeKeySource, source),
		host.NewAttribute(types.AttributeKeyRandomness, s.RandomResult.String()),
	)
	return &types.MsgResolveSessionResponse{Winner: s.Winner}, nil
}
