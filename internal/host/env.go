// Package host carries the per-transaction execution environment through a
// context.Context, the way the module keepers expect to find it.
package host

import (
	"context"
	"time"

	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/log"
)

// Env is what the host exposes to a module while executing one transaction.
type Env struct {
	ChainID   string
	Height    int64
	BlockTime time.Time
	// BlockHash is the hash of the block being executed.
	BlockHash []byte

	Store  corestore.KVStore
	Events *EventManager
	Logger log.Logger
}

type envKey struct{}

func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// FromContext returns the Env stored in ctx. It panics when none is present: a
// keeper running without a host environment is a wiring bug.
func FromContext(ctx context.Context) *Env {
	env, ok := ctx.Value(envKey{}).(*Env)
	if !ok || env == nil {
		panic("host: context carries no execution environment")
	}
	return env
}

func BlockTime(ctx context.Context) time.Time {
	return FromContext(ctx).BlockTime
}

func Logger(ctx context.Context) log.Logger {
	env := FromContext(ctx)
	if env.Logger == nil {
		return log.NewNopLogger()
	}
	return env.Logger
}

// EmitEvent appends an event to the current transaction's event manager.
func EmitEvent(ctx context.Context, typ string, attrs ...Attribute) {
	env := FromContext(ctx)
	if env.Events == nil {
		return
	}
	env.Events.Emit(NewEvent(typ, attrs...))
}
