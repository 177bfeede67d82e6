package keeper

import (
	"context"
	"encoding/json"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	store := k.storeService.OpenKVStore(ctx)
	bz, err := store.Get(types.ParamsKey)
	if err != nil {
		return types.Params{}, err
	}
	if bz == nil {
		return types.DefaultParams(), nil
	}
	var p types.Params
	if err := json.Unmarshal(bz, &p); err != nil {
		return types.Params{}, err
	}
	return p, nil
}

func (k Keeper) SetParams(ctx context.Context, p types.Params) error {
	if err := p.Validate(); err != nil {
		return types.ErrInvalidConfig.Wrap(err.Error())
	}
	bz, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return k.storeService.OpenKVStore(ctx).Set(types.ParamsKey, bz)
}

func (m msgServer) UpdateParams(ctx context.Context, req *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	cur, err := m.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	if req.Authority != cur.Admin {
		return nil, types.ErrUnauthorized.Wrapf("%s is not the admin", req.Authority)
	}
	if err := m.SetParams(ctx, req.Params); err != nil {
		return nil, err
	}

	m.Logger(ctx).Info("params updated", "authority", req.Authority)
	host.EmitEvent(ctx, types.EventTypeParamsUpdated,
		host.NewAttribute(types.AttributeKeyAuthority, req.Authority),
	)
	return &types.MsgUpdateParamsResponse{}, nil
}
