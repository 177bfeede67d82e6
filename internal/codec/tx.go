// Package codec defines the JSON transaction envelope carried in CometBFT
// transactions and the non-module tx bodies.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Transaction types. Wager tx values are the x/wager Msg structs encoded as JSON.
const (
	TxBankMint            = "bank/mint"
	TxBankSend            = "bank/send"
	TxAuthRegisterAccount = "auth/register_account"

	TxWagerCreateSession      = "wager/create_session"
	TxWagerJoinSession        = "wager/join_session"
	TxWagerCancelSession      = "wager/cancel_session"
	TxWagerForceFinish        = "wager/force_finish"
	TxWagerCommitMove         = "wager/commit_move"
	TxWagerRevealMove         = "wager/reveal_move"
	TxWagerPlaceBet           = "wager/place_bet"
	TxWagerResolveSession     = "wager/resolve_session"
	TxWagerEnterLottery       = "wager/enter_lottery"
	TxWagerDrawLottery        = "wager/draw_lottery"
	TxWagerSubmitRandomness   = "wager/submit_randomness"
	TxWagerDistributeWinnings = "wager/distribute_winnings"
	TxWagerClaimWinnings      = "wager/claim_winnings"
	TxWagerRefund             = "wager/refund"
	TxWagerBatchRefund        = "wager/batch_refund"
	TxWagerSettleDraw         = "wager/settle_draw"
	TxWagerUpdateParams       = "wager/update_params"
)

// TxEnvelope is the transaction container.
//
// Every tx except auth/register_account is authenticated against the signer's
// registered key:
//   - Nonce: decimal, strictly greater than the last nonce accepted from Signer.
//   - Signer: the account the tx acts for; it must match the caller in Value.
//   - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	if len(env.Value) == 0 {
		return TxEnvelope{}, fmt.Errorf("missing tx.value")
	}
	return env, nil
}

// NonceU64 parses the envelope nonce.
func (e TxEnvelope) NonceU64() (uint64, error) {
	if e.Nonce == "" {
		return 0, fmt.Errorf("missing tx.nonce")
	}
	n, err := strconv.ParseUint(e.Nonce, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tx.nonce %q", e.Nonce)
	}
	return n, nil
}

// EncodeTx builds the envelope bytes for value. Signing is left to the caller.
func EncodeTx(typ string, value any, nonce uint64, signer string) (TxEnvelope, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return TxEnvelope{}, fmt.Errorf("encode %s value: %w", typ, err)
	}
	return TxEnvelope{
		Type:   typ,
		Value:  raw,
		Nonce:  strconv.FormatUint(nonce, 10),
		Signer: signer,
	}, nil
}

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ---- Auth ----

// AuthRegisterAccountTx binds an ed25519 key to an account. It is self-signed
// by the key being registered.
type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}
