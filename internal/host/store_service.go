package host

import (
	"context"

	corestore "cosmossdk.io/core/store"

	"onchainwager/internal/state"
)

// KVStoreService opens a prefixed view of the transaction store carried by ctx.
type KVStoreService struct {
	prefix []byte
}

var _ corestore.KVStoreService = KVStoreService{}

func NewKVStoreService(storeKey string) KVStoreService {
	return KVStoreService{prefix: []byte(storeKey + "/")}
}

func (s KVStoreService) OpenKVStore(ctx context.Context) corestore.KVStore {
	return state.NewPrefixStore(FromContext(ctx).Store, s.prefix)
}
