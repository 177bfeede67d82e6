package keeper

import (
	"context"
	"fmt"

	"onchainwager/x/wager/types"
)

func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if err := types.ValidateGenesis(gs); err != nil {
		return fmt.Errorf("invalid wager genesis: %w", err)
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}
	if err := k.SetNextSessionID(ctx, gs.NextSessionID); err != nil {
		return err
	}
	for i := range gs.Sessions {
		if err := k.SetSession(ctx, &gs.Sessions[i]); err != nil {
			return err
		}
	}
	for _, p := range gs.Profiles {
		if err := k.SetProfile(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	next, err := k.GetNextSessionID(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{Params: params, NextSessionID: next}
	if err := k.IterateSessions(ctx, 0, func(s *types.Session) bool {
		gs.Sessions = append(gs.Sessions, *s)
		return false
	}); err != nil {
		return nil, err
	}
	if err := k.IterateProfiles(ctx, func(p types.PlayerProfile) bool {
		gs.Profiles = append(gs.Profiles, p)
		return false
	}); err != nil {
		return nil, err
	}
	return gs, nil
}
