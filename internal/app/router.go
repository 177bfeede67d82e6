package app

import (
	"context"
	"encoding/json"

	"onchainwager/internal/codec"
	wagertypes "onchainwager/x/wager/types"
)

// route binds a tx type to the account that must sign it and its handler.
type route struct {
	// signer returns the account env.Signer must equal, and the key to verify
	// against when the tx carries its own (auth/register_account).
	signer func(ctx context.Context, raw json.RawMessage) (account string, pub []byte, err error)
	exec   func(ctx context.Context, raw json.RawMessage) (any, error)
}

func decodeValue[M any](raw json.RawMessage) (*M, error) {
	msg := new(M)
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, ErrTxDecode.Wrapf("bad tx value: %v", err)
	}
	return msg, nil
}

// wagerRoute routes a tx to an x/wager Msg server method. caller names the
// account the Msg acts for.
func wagerRoute[M any, R any](caller func(*M) string, call func(context.Context, *M) (*R, error)) route {
	return route{
		signer: func(_ context.Context, raw json.RawMessage) (string, []byte, error) {
			msg, err := decodeValue[M](raw)
			if err != nil {
				return "", nil, err
			}
			return caller(msg), nil, nil
		},
		exec: func(ctx context.Context, raw json.RawMessage) (any, error) {
			msg, err := decodeValue[M](raw)
			if err != nil {
				return nil, err
			}
			res, err := call(ctx, msg)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}

func (a *WagerApp) buildRoutes() map[string]route {
	ms := a.msgServer
	return map[string]route{
		codec.TxBankMint:            a.bankMintRoute(),
		codec.TxBankSend:            a.bankSendRoute(),
		codec.TxAuthRegisterAccount: a.registerAccountRoute(),

		codec.TxWagerCreateSession: wagerRoute(func(m *wagertypes.MsgCreateSession) string { return m.Creator }, ms.CreateSession),
		codec.TxWagerJoinSession:   wagerRoute(func(m *wagertypes.MsgJoinSession) string { return m.Player }, ms.JoinSession),
		codec.TxWagerCancelSession: wagerRoute(func(m *wagertypes.MsgCancelSession) string { return m.Creator }, ms.CancelSession),
		codec.TxWagerForceFinish:   wagerRoute(func(m *wagertypes.MsgForceFinish) string { return m.Caller }, ms.ForceFinish),

		codec.TxWagerCommitMove: wagerRoute(func(m *wagertypes.MsgCommitMove) string { return m.Player }, ms.CommitMove),
		codec.TxWagerRevealMove: wagerRoute(func(m *wagertypes.MsgRevealMove) string { return m.Player }, ms.RevealMove),

		codec.TxWagerPlaceBet:       wagerRoute(func(m *wagertypes.MsgPlaceBet) string { return m.Player }, ms.PlaceBet),
		codec.TxWagerResolveSession: wagerRoute(func(m *wagertypes.MsgResolveSession) string { return m.Caller }, ms.ResolveSession),

		codec.TxWagerEnterLottery:     wagerRoute(func(m *wagertypes.MsgEnterLottery) string { return m.Player }, ms.EnterLottery),
		codec.TxWagerDrawLottery:      wagerRoute(func(m *wagertypes.MsgDrawLottery) string { return m.Caller }, ms.DrawLottery),
		codec.TxWagerSubmitRandomness: wagerRoute(func(m *wagertypes.MsgSubmitRandomness) string { return m.Oracle }, ms.SubmitRandomness),

		codec.TxWagerDistributeWinnings: wagerRoute(func(m *wagertypes.MsgDistributeWinnings) string { return m.Caller }, ms.DistributeWinnings),
		codec.TxWagerClaimWinnings:      wagerRoute(func(m *wagertypes.MsgClaimWinnings) string { return m.Winner }, ms.ClaimWinnings),
		codec.TxWagerRefund:             wagerRoute(func(m *wagertypes.MsgRefund) string { return m.Caller }, ms.RefundWithPenalty),
		codec.TxWagerBatchRefund:        wagerRoute(func(m *wagertypes.MsgBatchRefund) string { return m.Caller }, ms.BatchRefundAll),
		codec.TxWagerSettleDraw:         wagerRoute(func(m *wagertypes.MsgSettleDraw) string { return m.Caller }, ms.SettleDraw),
		codec.TxWagerUpdateParams:       wagerRoute(func(m *wagertypes.MsgUpdateParams) string { return m.Authority }, ms.UpdateParams),
	}
}

func (a *WagerApp) bankMintRoute() route {
	return route{
		signer: func(ctx context.Context, _ json.RawMessage) (string, []byte, error) {
			minter, err := a.meta.Minter(ctx)
			if err != nil {
				return "", nil, err
			}
			if minter == "" {
				return "", nil, ErrUnauthorizedTx.Wrap("minting is disabled")
			}
			return minter, nil, nil
		},
		exec: func(ctx context.Context, raw json.RawMessage) (any, error) {
			msg, err := decodeValue[codec.BankMintTx](raw)
			if err != nil {
				return nil, err
			}
			if err := a.bank.Mint(ctx, msg.To, msg.Amount); err != nil {
				return nil, err
			}
			return msg, nil
		},
	}
}

func (a *WagerApp) bankSendRoute() route {
	return route{
		signer: func(_ context.Context, raw json.RawMessage) (string, []byte, error) {
			msg, err := decodeValue[codec.BankSendTx](raw)
			if err != nil {
				return "", nil, err
			}
			return msg.From, nil, nil
		},
		exec: func(ctx context.Context, raw json.RawMessage) (any, error) {
			msg, err := decodeValue[codec.BankSendTx](raw)
			if err != nil {
				return nil, err
			}
			if msg.Amount == 0 {
				return nil, wagertypes.ErrInvalidRequest.Wrap("missing amount")
			}
			if err := a.bank.SendCoins(ctx, msg.From, msg.To, msg.Amount); err != nil {
				return nil, err
			}
			return msg, nil
		},
	}
}

func (a *WagerApp) registerAccountRoute() route {
	return route{
		signer: func(_ context.Context, raw json.RawMessage) (string, []byte, error) {
			msg, err := decodeValue[codec.AuthRegisterAccountTx](raw)
			if err != nil {
				return "", nil, err
			}
			if msg.PubKey == nil {
				return "", nil, ErrUnauthorizedTx.Wrap("missing pubKey")
			}
			return msg.Account, msg.PubKey, nil
		},
		exec: func(ctx context.Context, raw json.RawMessage) (any, error) {
			msg, err := decodeValue[codec.AuthRegisterAccountTx](raw)
			if err != nil {
				return nil, err
			}
			existing, err := a.bank.AccountKey(ctx, msg.Account)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrUnauthorizedTx.Wrapf("account %q already registered", msg.Account)
			}
			if err := a.bank.SetAccountKey(ctx, msg.Account, msg.PubKey); err != nil {
				return nil, err
			}
			return map[string]string{"account": msg.Account}, nil
		},
	}
}
