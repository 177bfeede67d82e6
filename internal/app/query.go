package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	wagertypes "onchainwager/x/wager/types"
)

type AccountResponse struct {
	Addr       string `json:"addr"`
	Balance    uint64 `json:"balance"`
	Nonce      uint64 `json:"nonce"`
	Registered bool   `json:"registered"`
}

// Query serves committed state. Paths:
//   - /params
//   - /session/<id>
//   - /sessions (data: optional JSON QuerySessionsRequest)
//   - /account/<addr>
//   - /profile/<addr>
//
// Responses are cached until the next commit.
func (a *WagerApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	height := a.st.Height()
	path := strings.TrimSpace(req.Path)
	cacheKey := path + "\x00" + string(req.Data)
	if v, ok := a.queries.Get(cacheKey); ok {
		return &abci.QueryResponse{Code: abci.CodeTypeOK, Value: v.([]byte), Height: height}, nil
	}

	out, err := a.handleQuery(a.readContext(), path, req.Data)
	if err != nil {
		space, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Codespace: space, Code: code, Log: logMsg, Height: height}, nil
	}
	bz, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	a.queries.Add(cacheKey, bz)
	return &abci.QueryResponse{Code: abci.CodeTypeOK, Value: bz, Height: height}, nil
}

func (a *WagerApp) handleQuery(ctx context.Context, path string, data []byte) (any, error) {
	switch {
	case path == "/params":
		return a.query.Params(ctx)
	case path == "/sessions":
		var req wagertypes.QuerySessionsRequest
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				return nil, wagertypes.ErrInvalidRequest.Wrapf("bad sessions request: %v", err)
			}
		}
		return a.query.Sessions(ctx, &req)
	case strings.HasPrefix(path, "/session/"):
		raw := strings.TrimPrefix(path, "/session/")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, wagertypes.ErrInvalidRequest.Wrapf("invalid session id %q", raw)
		}
		return a.query.Session(ctx, id)
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		if addr == "" {
			return nil, wagertypes.ErrInvalidRequest.Wrap("missing address")
		}
		nonce, err := a.bank.Nonce(ctx, addr)
		if err != nil {
			return nil, err
		}
		key, err := a.bank.AccountKey(ctx, addr)
		if err != nil {
			return nil, err
		}
		return AccountResponse{
			Addr:       addr,
			Balance:    a.bank.GetBalance(ctx, addr),
			Nonce:      nonce,
			Registered: key != nil,
		}, nil
	case strings.HasPrefix(path, "/profile/"):
		return a.query.Profile(ctx, strings.TrimPrefix(path, "/profile/"))
	default:
		return nil, ErrUnknownQuery.Wrap(path)
	}
}
