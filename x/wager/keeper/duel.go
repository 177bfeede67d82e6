package keeper

import (
	"context"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

func (m msgServer) CommitMove(ctx context.Context, req *types.MsgCommitMove) (*types.MsgCommitMoveResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, kindPtr(types.GameKindDuel))
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
	if idx >= len(s.Commitments) {
		return nil, types.ErrInvalidState.Wrapf("session %d has no commitment slot %d", s.ID, idx)
	}
	// An all-zero slot means nothing has been committed yet.
	if !s.Commitments[idx].IsZero() {
		return nil, types.ErrMoveAlreadySubmitted.Wrapf("%s already committed", req.Player)
	}
	s.Commitments[idx] = req.Commitment
	s.LastActionTime = m.now(ctx)

	host.EmitEvent(ctx, types.EventTypeMoveCommitted,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyPlayer, req.Player),
		host.NewAttribute(types.AttributeKeyCommitment, req.Commitment.String()),
	)

	allCommitted := true
	for _, c := range s.Commitments {
		if c.IsZero() {
			allCommitted = false
			break
		}
	}
	if allCommitted {
		m.setState(ctx, s, types.StateResolving)
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgCommitMoveResponse{}, nil
}

// RevealMove checks sha256(move || nonce) against the stored commitment. Once
// every participant has revealed, the duel resolves immediately.
func (m msgServer) RevealMove(ctx context.Context, req *types.MsgRevealMove) (*types.MsgRevealMoveResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	s, err := m.loadSession(ctx, req.SessionID, kindPtr(types.GameKindDuel))
	if err != nil {
		return nil, err
	}
	if err := requireState(s, types.StateResolving); err != nil {
		return nil, err
	}
	idx := s.PlayerIndex(req.Player)
	if idx < 0 {
		return nil, types.ErrNotParticipant.Wrapf("%s not in session %d", req.Player, s.ID)
	}
	if idx >= len(s.Commitments) || idx >= len(s.Reveals) || idx >= len(s.RevealNonces) {
		return nil, types.ErrInvalidState.Wrapf("session %d has no reveal slot %d", s.ID, idx)
	}

	// The hash check runs before move validation so any mismatched pair is an
	// InvalidReveal regardless of what it claims to contain.
	if types.Commitment(req.Move, req.Nonce) != s.Commitments[idx] {
		return nil, types.ErrInvalidReveal.Wrapf("reveal does not match commitment of %s", req.Player)
	}
	if !req.Move.Valid() {
		return nil, types.ErrInvalidMove.Wrapf("move %s", req.Move)
	}
	if !s.Reveals[idx].IsNone() {
		// Matching the commitment again can only restate the same move.
		return &types.MsgRevealMoveResponse{}, nil
	}
	s.Reveals[idx] = req.Move
	s.RevealNonces[idx] = req.Nonce
	s.LastActionTime = m.now(ctx)

	host.EmitEvent(ctx, types.EventTypeMoveRevealed,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyPlayer, req.Player),
		host.NewAttribute(types.AttributeKeyMove, req.Move.String()),
	)

	allRevealed := true
	for _, r := range s.Reveals {
		if r.IsNone() {
			allRevealed = false
			break
		}
	}
	if allRevealed {
		m.resolveDuel(ctx, s)
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	return &types.MsgRevealMoveResponse{}, nil
}

// resolveDuel applies the move precedence table. A draw leaves the winner unset.
func (m msgServer) resolveDuel(ctx context.Context, s *types.Session) {
	w := -1
	if len(s.Reveals) == 2 {
		w = types.DuelOutcome(s.Reveals[0], s.Reveals[1], s.RevealNonces[0], s.RevealNonces[1])
	}
	outcome := "draw"
	if w >= 0 {
		s.SetWinner(s.Players[w])
		outcome = "winner"
	} else {
		s.ClearWinner()
	}
	s.SetFlag(types.FlagIsResolved)
	m.setState(ctx, s, types.StateCompleted)

	host.EmitEvent(ctx, types.EventTypeSessionResolved,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyOutcome, outcome),
		host.NewAttribute(types.AttributeKeyWinner, s.Winner),
	)
}
