// Package ledger keeps native balances, registered account keys and replay
// nonces, and implements the module BankKeeper on top of them.
package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	corestore "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"

	"onchainwager/internal/host"
	wagertypes "onchainwager/x/wager/types"
)

const (
	StoreKey = "bank"

	EventTypeTransfer = "transfer"
	EventTypeMint     = "mint"
)

var (
	balancePrefix = []byte("bal/")
	pubKeyPrefix  = []byte("key/")
	noncePrefix   = []byte("nonce/")
)

// Bank is the ledger keeper.
type Bank struct {
	storeService corestore.KVStoreService
}

var _ wagertypes.BankKeeper = Bank{}

func NewBank(storeService corestore.KVStoreService) Bank {
	if storeService == nil {
		panic("ledger: storeService is nil")
	}
	return Bank{storeService: storeService}
}

func addrKey(prefix []byte, addr string) []byte {
	out := make([]byte, 0, len(prefix)+len(addr))
	out = append(out, prefix...)
	return append(out, addr...)
}

func (b Bank) getU64(ctx context.Context, key []byte) (uint64, error) {
	bz, err := b.storeService.OpenKVStore(ctx).Get(key)
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("ledger: corrupt u64 at %q", key)
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (b Bank) setU64(ctx context.Context, key []byte, v uint64) error {
	store := b.storeService.OpenKVStore(ctx)
	if v == 0 {
		return store.Delete(key)
	}
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	return store.Set(key, bz)
}

// GetBalance returns 0 for unknown accounts and on read failure.
func (b Bank) GetBalance(ctx context.Context, addr string) uint64 {
	bal, err := b.getU64(ctx, addrKey(balancePrefix, addr))
	if err != nil {
		host.Logger(ctx).Error("read balance", "addr", addr, "err", err)
		return 0
	}
	return bal
}

func (b Bank) credit(ctx context.Context, addr string, amount uint64) error {
	bal, err := b.getU64(ctx, addrKey(balancePrefix, addr))
	if err != nil {
		return err
	}
	if bal > ^uint64(0)-amount {
		return errorsmod.Wrapf(wagertypes.ErrArithmeticOverflow, "balance of %s overflows uint64", addr)
	}
	return b.setU64(ctx, addrKey(balancePrefix, addr), bal+amount)
}

// Mint creates funds out of thin air. Only genesis and the devnet faucet call it.
func (b Bank) Mint(ctx context.Context, to string, amount uint64) error {
	if to == "" || amount == 0 {
		return errorsmod.Wrap(wagertypes.ErrInvalidRequest, "missing to/amount")
	}
	if err := b.credit(ctx, to, amount); err != nil {
		return err
	}
	host.EmitEvent(ctx, EventTypeMint,
		host.NewAttribute("to", to),
		host.NewAttribute("amount", strconv.FormatUint(amount, 10)),
	)
	return nil
}

// SendCoins moves amount from one account to another. A zero amount is a no-op.
func (b Bank) SendCoins(ctx context.Context, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if from == "" || to == "" {
		return errorsmod.Wrap(wagertypes.ErrInvalidRequest, "missing from/to")
	}
	if from == to {
		return errorsmod.Wrapf(wagertypes.ErrInvalidRequest, "send to self: %s", from)
	}
	bal, err := b.getU64(ctx, addrKey(balancePrefix, from))
	if err != nil {
		return err
	}
	if bal < amount {
		return errorsmod.Wrapf(wagertypes.ErrInsufficientFunds, "%s has %d, needs %d", from, bal, amount)
	}
	toBal, err := b.getU64(ctx, addrKey(balancePrefix, to))
	if err != nil {
		return err
	}
	if toBal > ^uint64(0)-amount {
		return errorsmod.Wrapf(wagertypes.ErrArithmeticOverflow, "balance of %s overflows uint64", to)
	}
	if err := b.setU64(ctx, addrKey(balancePrefix, from), bal-amount); err != nil {
		return err
	}
	if err := b.setU64(ctx, addrKey(balancePrefix, to), toBal+amount); err != nil {
		return err
	}
	host.EmitEvent(ctx, EventTypeTransfer,
		host.NewAttribute("from", from),
		host.NewAttribute("to", to),
		host.NewAttribute("amount", strconv.FormatUint(amount, 10)),
	)
	return nil
}

func (b Bank) AccountKey(ctx context.Context, addr string) ([]byte, error) {
	return b.storeService.OpenKVStore(ctx).Get(addrKey(pubKeyPrefix, addr))
}

func (b Bank) SetAccountKey(ctx context.Context, addr string, pub []byte) error {
	return b.storeService.OpenKVStore(ctx).Set(addrKey(pubKeyPrefix, addr), pub)
}

// Nonce is the highest nonce accepted from signer, 0 if none.
func (b Bank) Nonce(ctx context.Context, signer string) (uint64, error) {
	return b.getU64(ctx, addrKey(noncePrefix, signer))
}

func (b Bank) SetNonce(ctx context.Context, signer string, nonce uint64) error {
	return b.setU64(ctx, addrKey(noncePrefix, signer), nonce)
}
