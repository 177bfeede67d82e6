package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"onchainwager/internal/state"
)

func TestFromContext_PanicsWithoutEnv(t *testing.T) {
	require.Panics(t, func() { FromContext(context.Background()) })
}

func TestEnv_ClockLoggerAndEvents(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ctx := WithEnv(context.Background(), &Env{BlockTime: now, Events: NewEventManager()})
	require.Equal(t, now, BlockTime(ctx))
	require.NotNil(t, Logger(ctx))

	EmitEvent(ctx, "session_created", NewAttribute("session_id", "1"))
	evs := FromContext(ctx).Events.Events()
	require.Len(t, evs, 1)
	v, ok := evs[0].Attr("session_id")
	require.True(t, ok)
	require.Equal(t, "1", v)
	_, ok = evs[0].Attr("missing")
	require.False(t, ok)

	// Without an event manager events are dropped.
	EmitEvent(WithEnv(context.Background(), &Env{}), "ignored")
}

func TestKVStoreService_IsolatesPrefixes(t *testing.T) {
	cache := state.NewCacheKV(state.NewMemStore().KVStore())
	ctx := WithEnv(context.Background(), &Env{Store: cache})

	wager := NewKVStoreService("wager").OpenKVStore(ctx)
	bank := NewKVStoreService("bank").OpenKVStore(ctx)
	require.NoError(t, wager.Set([]byte("k"), []byte("w")))
	require.NoError(t, bank.Set([]byte("k"), []byte("b")))

	got, err := wager.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("w"), got)

	raw, err := cache.Get([]byte("bank/k"))
	require.NoError(t, err)
	require.Equal(t, []byte("b"), raw)
}
