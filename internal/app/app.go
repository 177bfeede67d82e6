// Package app is the CometBFT ABCI application hosting the x/wager module.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"
	lru "github.com/hashicorp/golang-lru"

	"onchainwager/internal/codec"
	"onchainwager/internal/host"
	"onchainwager/internal/ledger"
	"onchainwager/internal/notify"
	"onchainwager/internal/state"
	"onchainwager/x/wager/keeper"
	wagertypes "onchainwager/x/wager/types"
)

const (
	AppVersion uint64 = 1
	Version           = "v1"

	defaultQueryCacheSize = 1024
)

type Options struct {
	// Home is the node home; state lives under <home>/data. Empty keeps state in memory.
	Home      string
	DBBackend dbm.BackendType
	Logger    log.Logger
	Publisher notify.Publisher
	// QueryCacheSize bounds the committed-state query cache. Zero uses the default.
	QueryCacheSize int
}

// pendingBlock is the state between FinalizeBlock and Commit.
type pendingBlock struct {
	height int64
	time   time.Time
	cache  *state.CacheKV
	txs    []notify.TxEvents
}

type WagerApp struct {
	*abci.BaseApplication

	logger    log.Logger
	publisher notify.Publisher

	mu      sync.Mutex
	st      *state.Store
	chainID string
	pending *pendingBlock
	queries *lru.Cache

	meta      appMeta
	bank      ledger.Bank
	keeper    keeper.Keeper
	msgServer wagertypes.MsgServer
	query     wagertypes.QueryServer
	routes    map[string]route
}

func New(opts Options) (*WagerApp, error) {
	var (
		st  *state.Store
		err error
	)
	if opts.Home == "" {
		st = state.NewMemStore()
	} else {
		backend := opts.DBBackend
		if backend == "" {
			backend = dbm.GoLevelDBBackend
		}
		if st, err = state.Open(filepath.Join(opts.Home, "data"), backend); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = notify.Nop{}
	}
	size := opts.QueryCacheSize
	if size <= 0 {
		size = defaultQueryCacheSize
	}
	queries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}

	bank := ledger.NewBank(host.NewKVStoreService(ledger.StoreKey))
	k := keeper.NewKeeper(host.NewKVStoreService(wagertypes.StoreKey), bank, blockBeacon{})
	a := &WagerApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger.With("module", "app"),
		publisher:       publisher,
		st:              st,
		queries:         queries,
		meta:            newAppMeta(),
		bank:            bank,
		keeper:          k,
		msgServer:       keeper.NewMsgServerImpl(k),
		query:           keeper.NewQueryServerImpl(k),
	}
	a.routes = a.buildRoutes()

	chainID, err := a.meta.ChainID(a.readContext())
	if err != nil {
		return nil, fmt.Errorf("load chain id: %w", err)
	}
	a.chainID = chainID
	return a, nil
}

func (a *WagerApp) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("close publisher", "err", err)
	}
	return a.st.Close()
}

// readContext executes against committed state; writes land in a throwaway cache.
func (a *WagerApp) readContext() context.Context {
	return host.WithEnv(context.Background(), &host.Env{
		ChainID: a.chainID,
		Height:  a.st.Height(),
		Store:   state.NewCacheKV(a.st.KVStore()),
		Logger:  a.logger,
	})
}

func (a *WagerApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "wager (" + Version + ")",
		Version:          Version,
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height(),
		LastBlockAppHash: a.st.AppHash(),
	}, nil
}

func (a *WagerApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	gs, err := ParseGenesis(req.AppStateBytes)
	if err != nil {
		return nil, err
	}
	a.chainID = req.ChainId
	cache := a.st.NewBlockCache()
	ctx := host.WithEnv(context.Background(), &host.Env{
		ChainID:   req.ChainId,
		Height:    req.InitialHeight,
		BlockTime: req.Time,
		Store:     cache,
		Events:    host.NewEventManager(),
		Logger:    a.logger,
	})
	if err := a.meta.SetChainID(ctx, req.ChainId); err != nil {
		return nil, err
	}
	if err := a.initGenesis(ctx, gs); err != nil {
		return nil, fmt.Errorf("init genesis: %w", err)
	}
	// Genesis writes are committed together with the first block.
	a.pending = &pendingBlock{cache: cache}
	a.logger.Info("initialized chain", "chain_id", req.ChainId, "accounts", len(gs.Accounts))
	return &abci.InitChainResponse{}, nil
}

// CheckTx decodes the envelope and authenticates it against committed state.
func (a *WagerApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	env, r, err := a.decodeTx(req.Tx)
	if err == nil {
		ctx := a.readContext()
		var (
			account string
			pub     []byte
		)
		if account, pub, err = r.signer(ctx, env.Value); err == nil {
			err = a.authenticate(ctx, env, account, pub, false)
		}
	}
	if err != nil {
		space, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Codespace: space, Code: code, Log: logMsg}, nil
	}
	return &abci.CheckTxResponse{Code: abci.CodeTypeOK}, nil
}

func (a *WagerApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pb := a.pending
	if pb == nil {
		pb = &pendingBlock{cache: a.st.NewBlockCache()}
	}
	pb.height = req.Height
	pb.time = req.Time
	a.pending = pb

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for i, txBytes := range req.Txs {
		res, typ, events := a.deliverTx(pb.cache, req, txBytes)
		if res.Code == abci.CodeTypeOK {
			pb.txs = append(pb.txs, notify.TxEvents{Index: i, Type: typ, Events: events})
		}
		txResults = append(txResults, res)
	}

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.st.NextAppHash(pb.cache, req.Height),
	}, nil
}

func (a *WagerApp) Commit(ctx context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pb := a.pending
	if pb == nil {
		return nil, fmt.Errorf("commit without a finalized block")
	}
	hash, err := a.st.Commit(pb.cache, pb.height)
	if err != nil {
		// Returning the error halts the node.
		return nil, err
	}
	a.pending = nil
	a.queries.Purge()

	block := notify.NewBlockEvents(pb.height, pb.time, hash, pb.txs)
	if err := a.publisher.Publish(ctx, block); err != nil {
		a.logger.Error("publish block events", "height", pb.height, "err", err)
	}
	a.logger.Debug("committed block", "height", pb.height, "txs", len(pb.txs))
	return &abci.CommitResponse{}, nil
}

func (a *WagerApp) decodeTx(txBytes []byte) (codec.TxEnvelope, route, error) {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return codec.TxEnvelope{}, route{}, ErrTxDecode.Wrap(err.Error())
	}
	r, ok := a.routes[env.Type]
	if !ok {
		return codec.TxEnvelope{}, route{}, ErrUnknownTx.Wrap(env.Type)
	}
	return env, r, nil
}

// deliverTx executes one tx in its own cache over the block cache. The tx's writes,
// ledger transfers included, reach the block only if it succeeds.
func (a *WagerApp) deliverTx(block *state.CacheKV, req *abci.FinalizeBlockRequest, txBytes []byte) (*abci.ExecTxResult, string, []host.Event) {
	env, r, err := a.decodeTx(txBytes)
	if err != nil {
		return errResult(err), "", nil
	}
	txCache := state.NewCacheKV(block)
	events := host.NewEventManager()
	ctx := host.WithEnv(context.Background(), &host.Env{
		ChainID:   a.chainID,
		Height:    req.Height,
		BlockTime: req.Time,
		BlockHash: req.Hash,
		Store:     txCache,
		Events:    events,
		Logger:    a.logger,
	})

	account, pub, err := r.signer(ctx, env.Value)
	if err != nil {
		return errResult(err), env.Type, nil
	}
	if err := a.authenticate(ctx, env, account, pub, true); err != nil {
		return errResult(err), env.Type, nil
	}
	out, err := r.exec(ctx, env.Value)
	if err != nil {
		a.logger.Debug("tx failed", "type", env.Type, "signer", env.Signer, "err", err)
		return errResult(err), env.Type, nil
	}
	if err := txCache.Write(); err != nil {
		return errResult(err), env.Type, nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return errResult(err), env.Type, nil
	}
	evs := events.Events()
	return &abci.ExecTxResult{
		Code:   abci.CodeTypeOK,
		Data:   data,
		Events: toABCIEvents(env.Type, evs),
	}, env.Type, evs
}

func errResult(err error) *abci.ExecTxResult {
	space, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Codespace: space, Code: code, Log: logMsg}
}

// toABCIEvents converts module events behind a leading "tx" event naming the tx type.
func toABCIEvents(txType string, evs []host.Event) []abci.Event {
	out := make([]abci.Event, 0, len(evs)+1)
	out = append(out, okEvent("tx", map[string]string{"type": txType}))
	for _, ev := range evs {
		e := abci.Event{Type: ev.Type}
		for _, at := range ev.Attributes {
			e.Attributes = append(e.Attributes, abci.EventAttribute{Key: at.Key, Value: at.Value, Index: true})
		}
		out = append(out, e)
	}
	return out
}

func okEvent(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}
