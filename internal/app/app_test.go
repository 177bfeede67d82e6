package app

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"onchainwager/internal/codec"
	"onchainwager/internal/notify"
	wagertypes "onchainwager/x/wager/types"
)

const (
	testChainID        = "wager-test-1"
	unit        uint64 = 1_000_000_000
)

func testKey(name string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte("test-key/" + name))
	return ed25519.NewKeyFromSeed(seed[:])
}

type capturePublisher struct {
	blocks []notify.BlockEvents
}

func (p *capturePublisher) Publish(_ context.Context, b notify.BlockEvents) error {
	p.blocks = append(p.blocks, b)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type testChain struct {
	t      *testing.T
	app    *WagerApp
	pub    *capturePublisher
	height int64
	time   time.Time
	nonces map[string]uint64
}

func testGenesis() *GenesisState {
	gs := DefaultGenesisState()
	gs.Minter = "faucet"
	for _, name := range []string{"faucet", "alice", "bob", "admin"} {
		gs.Accounts = append(gs.Accounts, GenesisAccount{
			Address: name,
			Balance: 100 * unit,
			PubKey:  testKey(name).Public().(ed25519.PublicKey),
		})
	}
	gs.Wager.Params.Admin = "admin"
	gs.Wager.Params.MaxRounds = 3
	gs.Wager.Params.RandomnessMethod = wagertypes.RandomnessMethodBlock
	return gs
}

func newTestChainWith(t *testing.T, opts Options, gs *GenesisState) *testChain {
	t.Helper()
	pub := &capturePublisher{}
	opts.Publisher = pub
	a, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	c := &testChain{t: t, app: a, pub: pub, time: time.Unix(1_700_000_000, 0).UTC(), nonces: map[string]uint64{}}
	if gs != nil {
		bz, err := json.Marshal(gs)
		require.NoError(t, err)
		_, err = a.InitChain(context.Background(), &abci.InitChainRequest{
			ChainId:       testChainID,
			Time:          c.time,
			InitialHeight: 1,
			AppStateBytes: bz,
		})
		require.NoError(t, err)
	}
	return c
}

func newTestChain(t *testing.T) *testChain {
	return newTestChainWith(t, Options{}, testGenesis())
}

func (c *testChain) signed(signer, typ string, value any) []byte {
	c.t.Helper()
	c.nonces[signer]++
	env, err := codec.EncodeTx(typ, value, c.nonces[signer], signer)
	require.NoError(c.t, err)
	SignTx(&env, testKey(signer))
	bz, err := json.Marshal(env)
	require.NoError(c.t, err)
	return bz
}

// block finalizes and commits one block holding txs.
func (c *testChain) block(txs ...[]byte) []*abci.ExecTxResult {
	c.t.Helper()
	c.height++
	c.time = c.time.Add(5 * time.Second)
	var h8 [8]byte
	binary.BigEndian.PutUint64(h8[:], uint64(c.height))
	hash := sha256.Sum256(h8[:])

	res, err := c.app.FinalizeBlock(context.Background(), &abci.FinalizeBlockRequest{
		Txs:    txs,
		Height: c.height,
		Time:   c.time,
		Hash:   hash[:],
	})
	require.NoError(c.t, err)
	require.Len(c.t, res.TxResults, len(txs))
	_, err = c.app.Commit(context.Background(), &abci.CommitRequest{})
	require.NoError(c.t, err)
	require.Equal(c.t, res.AppHash, c.app.st.AppHash())
	return res.TxResults
}

func (c *testChain) exec(signer, typ string, value any) *abci.ExecTxResult {
	c.t.Helper()
	return c.block(c.signed(signer, typ, value))[0]
}

func (c *testChain) mustExec(signer, typ string, value any) *abci.ExecTxResult {
	c.t.Helper()
	res := c.exec(signer, typ, value)
	require.Equal(c.t, abci.CodeTypeOK, res.Code, "%s: %s", typ, res.Log)
	return res
}

func (c *testChain) query(path string, data []byte, out any) *abci.QueryResponse {
	c.t.Helper()
	res, err := c.app.Query(context.Background(), &abci.QueryRequest{Path: path, Data: data})
	require.NoError(c.t, err)
	if out != nil {
		require.Equal(c.t, abci.CodeTypeOK, res.Code, res.Log)
		require.NoError(c.t, json.Unmarshal(res.Value, out))
	}
	return res
}

func (c *testChain) balance(addr string) uint64 {
	c.t.Helper()
	var acc AccountResponse
	c.query("/account/"+addr, nil, &acc)
	return acc.Balance
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func TestInitChain_FundsGenesisAccounts(t *testing.T) {
	c := newTestChain(t)
	c.block()

	var acc AccountResponse
	c.query("/account/alice", nil, &acc)
	require.Equal(t, 100*unit, acc.Balance)
	require.True(t, acc.Registered)
	require.Zero(t, acc.Nonce)

	var params wagertypes.QueryParamsResponse
	c.query("/params", nil, &params)
	require.Equal(t, "admin", params.Params.Admin)
	require.Equal(t, uint64(1), params.NextSessionID)

	info, err := c.app.Info(context.Background(), &abci.InfoRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), info.LastBlockHeight)
	require.NotEmpty(t, info.LastBlockAppHash)
}

func TestDuel_EndToEnd(t *testing.T) {
	c := newTestChain(t)

	res := c.mustExec("alice", codec.TxWagerCreateSession, wagertypes.MsgCreateSession{Creator: "alice", Kind: wagertypes.GameKindDuel, Stake: unit})
	var created wagertypes.MsgCreateSessionResponse
	require.NoError(t, json.Unmarshal(res.Data, &created))
	id := created.SessionID
	require.Equal(t, "wager/create_session", attr(findEvent(res.Events, "tx"), "type"))
	require.NotNil(t, findEvent(res.Events, wagertypes.EventTypeSessionCreated))

	c.mustExec("bob", codec.TxWagerJoinSession, wagertypes.MsgJoinSession{Player: "bob", SessionID: id})

	paper, rock := wagertypes.Move{Kind: wagertypes.MovePaper}, wagertypes.Move{Kind: wagertypes.MoveRock}
	na, nb := wagertypes.Hash32{1}, wagertypes.Hash32{2}
	c.mustExec("alice", codec.TxWagerCommitMove, wagertypes.MsgCommitMove{Player: "alice", SessionID: id, Commitment: wagertypes.Commitment(paper, na)})
	c.mustExec("bob", codec.TxWagerCommitMove, wagertypes.MsgCommitMove{Player: "bob", SessionID: id, Commitment: wagertypes.Commitment(rock, nb)})
	c.mustExec("alice", codec.TxWagerRevealMove, wagertypes.MsgRevealMove{Player: "alice", SessionID: id, Move: paper, Nonce: na})
	res = c.mustExec("bob", codec.TxWagerRevealMove, wagertypes.MsgRevealMove{Player: "bob", SessionID: id, Move: rock, Nonce: nb})
	require.Equal(t, "alice", attr(findEvent(res.Events, wagertypes.EventTypeSessionResolved), wagertypes.AttributeKeyWinner))

	res = c.mustExec("alice", codec.TxWagerClaimWinnings, wagertypes.MsgClaimWinnings{Winner: "alice", SessionID: id})
	var settled wagertypes.MsgSettlementResponse
	require.NoError(t, json.Unmarshal(res.Data, &settled))
	require.Equal(t, 2*unit-settled.Fee, settled.Payout)

	require.Equal(t, 99*unit+settled.Payout, c.balance("alice"))
	require.Equal(t, 99*unit, c.balance("bob"))
	require.Equal(t, settled.Fee, c.balance(wagertypes.DefaultTreasury))
	require.Zero(t, c.balance(wagertypes.VaultAccount(id)))

	var s wagertypes.Session
	c.query("/session/1", nil, &s)
	require.Equal(t, wagertypes.StateCompleted, s.State)
	require.True(t, s.HasFlag(wagertypes.FlagFeesDistributed))

	var profile wagertypes.PlayerProfile
	c.query("/profile/alice", nil, &profile)
	require.Equal(t, uint64(1), profile.Wins)
}

func TestMultiRound_ResolvesFromBlockBeacon(t *testing.T) {
	c := newTestChain(t)
	c.mustExec("alice", codec.TxWagerCreateSession, wagertypes.MsgCreateSession{Creator: "alice", Kind: wagertypes.GameKindMultiRound, Stake: unit})
	c.mustExec("bob", codec.TxWagerJoinSession, wagertypes.MsgJoinSession{Player: "bob", SessionID: 1})
	for i := 0; i < 3; i++ {
		for _, p := range []string{"alice", "bob"} {
			c.mustExec(p, codec.TxWagerPlaceBet, wagertypes.MsgPlaceBet{Player: p, SessionID: 1, Action: wagertypes.BetAction{Kind: wagertypes.BetCheck}})
		}
	}
	res := c.mustExec("admin", codec.TxWagerResolveSession, wagertypes.MsgResolveSession{Caller: "admin", SessionID: 1})
	ev := findEvent(res.Events, wagertypes.EventTypeSessionResolved)
	require.Equal(t, wagertypes.RandomnessSourceBlock, attr(ev, wagertypes.AttributeKeySource))
	require.Contains(t, []string{"alice", "bob"}, attr(ev, wagertypes.AttributeKeyWinner))
}

func TestFailedTx_LeavesStateUntouched(t *testing.T) {
	c := newTestChain(t)
	c.block()
	before := c.app.st.AppHash()

	res := c.exec("alice", codec.TxWagerCreateSession, wagertypes.MsgCreateSession{Creator: "alice", Kind: wagertypes.GameKindDuel, Stake: wagertypes.DefaultParams().MaxStake + 1})
	require.Equal(t, wagertypes.ErrConfigViolation.ABCICode(), res.Code)
	require.Equal(t, wagertypes.ModuleName, res.Codespace)
	require.Empty(t, res.Events)

	require.Equal(t, 100*unit, c.balance("alice"))
	var acc AccountResponse
	c.query("/account/alice", nil, &acc)
	require.Zero(t, acc.Nonce, "failed tx must not consume its nonce")
	require.NotEqual(t, before, c.app.st.AppHash(), "height is still chained into the app hash")

	var params wagertypes.QueryParamsResponse
	c.query("/params", nil, &params)
	require.Equal(t, uint64(1), params.NextSessionID)
}

func TestAuth_RejectsBadEnvelopes(t *testing.T) {
	c := newTestChain(t)
	join := wagertypes.MsgCreateSession{Creator: "bob", Kind: wagertypes.GameKindDuel, Stake: unit}

	// Alice cannot act for bob.
	res := c.exec("alice", codec.TxWagerCreateSession, join)
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), res.Code)

	// Unsigned.
	env, err := codec.EncodeTx(codec.TxWagerCreateSession, join, 1, "bob")
	require.NoError(t, err)
	bz, err := json.Marshal(env)
	require.NoError(t, err)
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), c.block(bz)[0].Code)

	// Replay of an accepted tx.
	tx := c.signed("bob", codec.TxWagerCreateSession, join)
	require.Equal(t, abci.CodeTypeOK, c.block(tx)[0].Code)
	res = c.block(tx)[0]
	require.Equal(t, ErrBadNonce.ABCICode(), res.Code)
	require.Equal(t, codespace, res.Codespace)

	// Unknown type and garbage.
	require.Equal(t, ErrUnknownTx.ABCICode(), c.block(c.signed("bob", "poker/sit", map[string]any{"x": 1}))[0].Code)
	require.Equal(t, ErrTxDecode.ABCICode(), c.block([]byte("{"))[0].Code)
}

func TestCheckTx(t *testing.T) {
	c := newTestChain(t)
	c.block()

	good := c.signed("alice", codec.TxBankSend, codec.BankSendTx{From: "alice", To: "bob", Amount: 1})
	res, err := c.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: good})
	require.NoError(t, err)
	require.Equal(t, abci.CodeTypeOK, res.Code, res.Log)

	var env codec.TxEnvelope
	require.NoError(t, json.Unmarshal(good, &env))
	env.Sig[0] ^= 0xff
	bad, err := json.Marshal(env)
	require.NoError(t, err)
	res, err = c.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: bad})
	require.NoError(t, err)
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), res.Code)

	// CheckTx does not consume the nonce; delivery does.
	require.Equal(t, abci.CodeTypeOK, c.block(good)[0].Code)
	res, err = c.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: good})
	require.NoError(t, err)
	require.Equal(t, ErrBadNonce.ABCICode(), res.Code)
}

func TestBank_MintOnlyByMinter(t *testing.T) {
	c := newTestChain(t)

	res := c.exec("alice", codec.TxBankMint, codec.BankMintTx{To: "alice", Amount: 5})
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), res.Code)

	c.mustExec("faucet", codec.TxBankMint, codec.BankMintTx{To: "carol", Amount: 5})
	require.Equal(t, uint64(5), c.balance("carol"))

	res = c.exec("alice", codec.TxBankSend, codec.BankSendTx{From: "alice", To: "carol", Amount: 200 * unit})
	require.Equal(t, wagertypes.ErrInsufficientFunds.ABCICode(), res.Code)
}

func TestRegisterAccount(t *testing.T) {
	c := newTestChain(t)
	c.mustExec("faucet", codec.TxBankMint, codec.BankMintTx{To: "carol", Amount: 10 * unit})

	// Unregistered accounts cannot sign.
	res := c.exec("carol", codec.TxBankSend, codec.BankSendTx{From: "carol", To: "bob", Amount: 1})
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), res.Code)

	reg := codec.AuthRegisterAccountTx{Account: "carol", PubKey: testKey("carol").Public().(ed25519.PublicKey)}
	c.mustExec("carol", codec.TxAuthRegisterAccount, reg)
	c.mustExec("carol", codec.TxBankSend, codec.BankSendTx{From: "carol", To: "bob", Amount: 1})
	require.Equal(t, 100*unit+1, c.balance("bob"))

	res = c.exec("carol", codec.TxAuthRegisterAccount, reg)
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), res.Code)

	// A key registration must be signed by the key it registers.
	mallory := codec.AuthRegisterAccountTx{Account: "dave", PubKey: testKey("someone-else").Public().(ed25519.PublicKey)}
	res = c.exec("dave", codec.TxAuthRegisterAccount, mallory)
	require.Equal(t, ErrUnauthorizedTx.ABCICode(), res.Code)
}

func TestQuery_CacheInvalidatedOnCommit(t *testing.T) {
	c := newTestChain(t)
	c.block()
	require.Equal(t, 100*unit, c.balance("bob"))

	c.mustExec("alice", codec.TxBankSend, codec.BankSendTx{From: "alice", To: "bob", Amount: 7})
	require.Equal(t, 100*unit+7, c.balance("bob"))

	res := c.query("/nope", nil, nil)
	require.Equal(t, ErrUnknownQuery.ABCICode(), res.Code)
	res = c.query("/session/abc", nil, nil)
	require.Equal(t, wagertypes.ErrInvalidRequest.ABCICode(), res.Code)
	res = c.query("/session/9", nil, nil)
	require.Equal(t, wagertypes.ErrSessionNotFound.ABCICode(), res.Code)
}

func TestQuery_SessionsFilter(t *testing.T) {
	c := newTestChain(t)
	for i := 0; i < 2; i++ {
		c.mustExec("alice", codec.TxWagerCreateSession, wagertypes.MsgCreateSession{Creator: "alice", Kind: wagertypes.GameKindLottery, Stake: unit})
	}
	c.mustExec("alice", codec.TxWagerCancelSession, wagertypes.MsgCancelSession{Creator: "alice", SessionID: 2})

	waiting := wagertypes.StateWaiting
	data, err := json.Marshal(wagertypes.QuerySessionsRequest{State: &waiting})
	require.NoError(t, err)
	var out wagertypes.QuerySessionsResponse
	c.query("/sessions", data, &out)
	require.Len(t, out.Sessions, 1)
	require.Equal(t, uint64(1), out.Sessions[0].ID)
}

func TestCommit_PublishesBlockEvents(t *testing.T) {
	c := newTestChain(t)
	ok := c.signed("alice", codec.TxBankSend, codec.BankSendTx{From: "alice", To: "bob", Amount: 1})
	bad := c.signed("alice", codec.TxBankSend, codec.BankSendTx{From: "alice", To: "bob", Amount: 1000 * unit})
	c.block(ok, bad)

	require.Len(t, c.pub.blocks, 1)
	b := c.pub.blocks[0]
	require.Equal(t, int64(1), b.Height)
	require.Len(t, b.Txs, 1)
	require.Equal(t, 0, b.Txs[0].Index)
	require.Equal(t, codec.TxBankSend, b.Txs[0].Type)
	require.Equal(t, "transfer", b.Txs[0].Events[0].Type)
}

func TestRestart_ReloadsCommittedState(t *testing.T) {
	home := t.TempDir()
	opts := Options{Home: home, DBBackend: dbm.GoLevelDBBackend}
	c := newTestChainWith(t, opts, testGenesis())
	c.mustExec("alice", codec.TxBankSend, codec.BankSendTx{From: "alice", To: "bob", Amount: 3})
	hash := c.app.st.AppHash()
	require.NoError(t, c.app.Close())

	a, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.Equal(t, testChainID, a.chainID)

	info, err := a.Info(context.Background(), &abci.InfoRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), info.LastBlockHeight)
	require.Equal(t, hash, info.LastBlockAppHash)

	res, err := a.Query(context.Background(), &abci.QueryRequest{Path: "/account/bob"})
	require.NoError(t, err)
	var acc AccountResponse
	require.NoError(t, json.Unmarshal(res.Value, &acc))
	require.Equal(t, 100*unit+3, acc.Balance)
	require.Equal(t, uint64(0), acc.Nonce)
}

func TestParseGenesis(t *testing.T) {
	gs, err := ParseGenesis(nil)
	require.NoError(t, err)
	require.Equal(t, wagertypes.DefaultParams(), gs.Wager.Params)

	_, err = ParseGenesis([]byte(`{"accounts":[{"address":"a"},{"address":"a"}]}`))
	require.ErrorContains(t, err, "duplicate")

	_, err = ParseGenesis([]byte(`{"accounts":[{"address":"a","pubKey":"AAE="}]}`))
	require.ErrorContains(t, err, "pubKey")
}
