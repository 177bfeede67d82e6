package app

import (
	"context"

	corestore "cosmossdk.io/core/store"

	"onchainwager/internal/host"
)

const metaStoreKey = "app"

var (
	chainIDKey = []byte("chain_id")
	minterKey  = []byte("minter")
)

// appMeta holds the chain-level settings fixed at genesis.
type appMeta struct {
	storeService corestore.KVStoreService
}

func newAppMeta() appMeta {
	return appMeta{storeService: host.NewKVStoreService(metaStoreKey)}
}

func (m appMeta) get(ctx context.Context, key []byte) (string, error) {
	bz, err := m.storeService.OpenKVStore(ctx).Get(key)
	if err != nil {
		return "", err
	}
	return string(bz), nil
}

func (m appMeta) set(ctx context.Context, key []byte, v string) error {
	store := m.storeService.OpenKVStore(ctx)
	if v == "" {
		return store.Delete(key)
	}
	return store.Set(key, []byte(v))
}

func (m appMeta) ChainID(ctx context.Context) (string, error) { return m.get(ctx, chainIDKey) }

func (m appMeta) SetChainID(ctx context.Context, id string) error {
	return m.set(ctx, chainIDKey, id)
}

// Minter is the only account allowed to send bank/mint; empty disables minting.
func (m appMeta) Minter(ctx context.Context) (string, error) { return m.get(ctx, minterKey) }

func (m appMeta) SetMinter(ctx context.Context, addr string) error {
	return m.set(ctx, minterKey, addr)
}
