package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"

	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/log"

	"onchainwager/internal/host"
	"onchainwager/x/wager/types"
)

type Keeper struct {
	storeService corestore.KVStoreService
	bankKeeper   types.BankKeeper
	randomness   types.RandomnessSource
}

func NewKeeper(storeService corestore.KVStoreService, bankKeeper types.BankKeeper, randomness types.RandomnessSource) Keeper {
	if storeService == nil {
		panic("wager keeper: store service is nil")
	}
	if bankKeeper == nil {
		panic("wager keeper: bank keeper is nil")
	}
	if randomness == nil {
		panic("wager keeper: randomness source is nil")
	}
	return Keeper{
		storeService: storeService,
		bankKeeper:   bankKeeper,
		randomness:   randomness,
	}
}

func (k Keeper) Logger(ctx context.Context) log.Logger {
	return host.Logger(ctx).With("module", "x/"+types.ModuleName)
}

func (k Keeper) now(ctx context.Context) int64 {
	return host.BlockTime(ctx).Unix()
}

func (k Keeper) GetNextSessionID(ctx context.Context) (uint64, error) {
	store := k.storeService.OpenKVStore(ctx)
	bz, err := store.Get(types.NextSessionIDKey)
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 1, nil
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("invalid nextSessionID encoding")
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (k Keeper) SetNextSessionID(ctx context.Context, next uint64) error {
	store := k.storeService.OpenKVStore(ctx)
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, next)
	return store.Set(types.NextSessionIDKey, bz)
}

// GetSession returns ErrSessionNotFound for unknown ids.
func (k Keeper) GetSession(ctx context.Context, sessionID uint64) (*types.Session, error) {
	store := k.storeService.OpenKVStore(ctx)
	bz, err := store.Get(types.SessionKey(sessionID))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, types.ErrSessionNotFound.Wrapf("session %d not found", sessionID)
	}
	return types.UnmarshalSession(bz)
}

func (k Keeper) SetSession(ctx context.Context, s *types.Session) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	bz, err := types.MarshalSession(s)
	if err != nil {
		return err
	}
	return k.storeService.OpenKVStore(ctx).Set(types.SessionKey(s.ID), bz)
}

// IterateSessions walks sessions in id order starting at startID.
func (k Keeper) IterateSessions(ctx context.Context, startID uint64, cb func(s *types.Session) (stop bool)) error {
	store := k.storeService.OpenKVStore(ctx)
	it, err := store.Iterator(types.SessionKey(startID), prefixEndBytes(types.SessionKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key := it.Key()
		if len(key) != 1+8 || key[0] != types.SessionKeyPrefix[0] {
			continue
		}
		s, err := types.UnmarshalSession(it.Value())
		if err != nil {
			return err
		}
		if cb(s) {
			break
		}
	}
	return it.Error()
}

func (k Keeper) GetProfile(ctx context.Context, addr string) (types.PlayerProfile, error) {
	bz, err := k.storeService.OpenKVStore(ctx).Get(types.ProfileKey(addr))
	if err != nil {
		return types.PlayerProfile{}, err
	}
	if bz == nil {
		return types.PlayerProfile{Player: addr}, nil
	}
	var p types.PlayerProfile
	if err := json.Unmarshal(bz, &p); err != nil {
		return types.PlayerProfile{}, fmt.Errorf("decode profile %q: %w", addr, err)
	}
	return p, nil
}

func (k Keeper) SetProfile(ctx context.Context, p types.PlayerProfile) error {
	if p.Player == "" {
		return fmt.Errorf("profile player is empty")
	}
	bz, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return k.storeService.OpenKVStore(ctx).Set(types.ProfileKey(p.Player), bz)
}

func (k Keeper) IterateProfiles(ctx context.Context, cb func(p types.PlayerProfile) (stop bool)) error {
	store := k.storeService.OpenKVStore(ctx)
	it, err := store.Iterator(types.ProfileKeyPrefix, prefixEndBytes(types.ProfileKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		var p types.PlayerProfile
		if err := json.Unmarshal(it.Value(), &p); err != nil {
			return err
		}
		if cb(p) {
			break
		}
	}
	return it.Error()
}

// loadSession fetches a session and checks its kind when kind is non-nil.
func (k Keeper) loadSession(ctx context.Context, sessionID uint64, kind *types.GameKind) (*types.Session, error) {
	s, err := k.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if kind != nil && s.Kind != *kind {
		return nil, types.ErrInvalidGameKind.Wrapf("session %d is %s, want %s", s.ID, s.Kind, *kind)
	}
	return s, nil
}

func kindPtr(k types.GameKind) *types.GameKind { return &k }

func requireState(s *types.Session, allowed ...types.SessionState) error {
	for _, st := range allowed {
		if s.State == st {
			return nil
		}
	}
	return types.ErrInvalidState.Wrapf("session %d is %s", s.ID, s.State)
}

// setState moves the session to next and emits the transition.
func (k Keeper) setState(ctx context.Context, s *types.Session, next types.SessionState) {
	if s.State == next {
		return
	}
	prev := s.State
	s.State = next
	if next.Terminal() && s.EndTime == 0 {
		s.EndTime = k.now(ctx)
	}
	host.EmitEvent(ctx, types.EventTypeStateChanged,
		host.NewAttribute(types.AttributeKeySessionID, u64(s.ID)),
		host.NewAttribute(types.AttributeKeyOldState, prev.String()),
		host.NewAttribute(types.AttributeKeyNewState, next.String()),
	)
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func prefixEndBytes(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
