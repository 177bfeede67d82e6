package app

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"

	"onchainwager/internal/codec"
)

const txAuthDomainV1 = "wager/tx/v1"

func txAuthSignBytes(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV1)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV1)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

// SignTx fills in env.Sig. Clients and tests use it to build valid txs.
func SignTx(env *codec.TxEnvelope, priv ed25519.PrivateKey) {
	env.Sig = ed25519.Sign(priv, txAuthSignBytes(env.Type, env.Value, env.Nonce, env.Signer))
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return ErrUnauthorizedTx.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return ErrUnauthorizedTx.Wrap("missing tx.signer")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return ErrUnauthorizedTx.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

// authenticate checks that env is signed by account with the expected key and
// carries a fresh nonce. When pub is nil the account's registered key is used.
// The nonce is consumed only when commit is set.
func (a *WagerApp) authenticate(ctx context.Context, env codec.TxEnvelope, account string, pub []byte, commit bool) error {
	if account == "" {
		return ErrUnauthorizedTx.Wrap("missing account")
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != account {
		return ErrUnauthorizedTx.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, account)
	}
	if pub == nil {
		var err error
		if pub, err = a.bank.AccountKey(ctx, account); err != nil {
			return err
		}
		if len(pub) != ed25519.PublicKeySize {
			return ErrUnauthorizedTx.Wrapf("account %q missing pubKey (auth/register_account required)", account)
		}
	}
	if len(pub) != ed25519.PublicKeySize {
		return ErrUnauthorizedTx.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	msg := txAuthSignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return ErrUnauthorizedTx.Wrap("invalid signature")
	}

	nonce, err := env.NonceU64()
	if err != nil {
		return ErrBadNonce.Wrap(err.Error())
	}
	last, err := a.bank.Nonce(ctx, account)
	if err != nil {
		return err
	}
	if nonce <= last {
		return ErrBadNonce.Wrapf("nonce %d must exceed %d", nonce, last)
	}
	if !commit {
		return nil
	}
	return a.bank.SetNonce(ctx, account, nonce)
}
