package keeper

import (
	"context"

	"onchainwager/x/wager/types"
)

const (
	defaultSessionsLimit = 50
	maxSessionsLimit     = 200
)

type queryServer struct {
	Keeper
}

var _ types.QueryServer = queryServer{}

func NewQueryServerImpl(k Keeper) types.QueryServer {
	return &queryServer{Keeper: k}
}

func (q queryServer) Params(ctx context.Context) (*types.QueryParamsResponse, error) {
	p, err := q.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	next, err := q.GetNextSessionID(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryParamsResponse{Params: p, NextSessionID: next}, nil
}

func (q queryServer) Session(ctx context.Context, sessionID uint64) (*types.Session, error) {
	if sessionID == 0 {
		return nil, types.ErrInvalidRequest.Wrap("missing session id")
	}
	return q.GetSession(ctx, sessionID)
}

func (q queryServer) Sessions(ctx context.Context, req *types.QuerySessionsRequest) (*types.QuerySessionsResponse, error) {
	if req == nil {
		req = &types.QuerySessionsRequest{}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSessionsLimit
	}
	if limit > maxSessionsLimit {
		limit = maxSessionsLimit
	}
	out := &types.QuerySessionsResponse{Sessions: make([]*types.Session, 0)}
	err := q.IterateSessions(ctx, req.StartAfter+1, func(s *types.Session) bool {
		if req.State != nil && s.State != *req.State {
			return false
		}
		if len(out.Sessions) == limit {
			out.NextKey = out.Sessions[limit-1].ID
			return true
		}
		out.Sessions = append(out.Sessions, s)
		return false
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (q queryServer) Profile(ctx context.Context, player string) (*types.PlayerProfile, error) {
	if player == "" {
		return nil, types.ErrInvalidRequest.Wrap("missing player")
	}
	p, err := q.GetProfile(ctx, player)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
