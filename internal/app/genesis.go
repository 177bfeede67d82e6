package app

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	wagertypes "onchainwager/x/wager/types"
)

type GenesisAccount struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance,omitempty"`
	PubKey  []byte `json:"pubKey,omitempty"` // base64 (32 bytes)
}

// GenesisState is the app_state document in the CometBFT genesis file.
type GenesisState struct {
	// Minter may issue bank/mint txs. Leave empty on public networks.
	Minter   string                   `json:"minter,omitempty"`
	Accounts []GenesisAccount         `json:"accounts,omitempty"`
	Wager    *wagertypes.GenesisState `json:"wager,omitempty"`
}

func DefaultGenesisState() *GenesisState {
	return &GenesisState{Wager: wagertypes.DefaultGenesisState()}
}

// ParseGenesis decodes app_state bytes; empty input yields the default genesis.
func ParseGenesis(bz []byte) (*GenesisState, error) {
	gs := DefaultGenesisState()
	if len(bz) == 0 {
		return gs, nil
	}
	if err := json.Unmarshal(bz, gs); err != nil {
		return nil, fmt.Errorf("invalid app_state json: %w", err)
	}
	if gs.Wager == nil {
		gs.Wager = wagertypes.DefaultGenesisState()
	}
	return gs, gs.Validate()
}

func (gs *GenesisState) Validate() error {
	seen := make(map[string]bool, len(gs.Accounts))
	for _, acc := range gs.Accounts {
		if acc.Address == "" {
			return fmt.Errorf("genesis account with empty address")
		}
		if seen[acc.Address] {
			return fmt.Errorf("duplicate genesis account %q", acc.Address)
		}
		seen[acc.Address] = true
		if acc.PubKey != nil && len(acc.PubKey) != ed25519.PublicKeySize {
			return fmt.Errorf("account %q: pubKey must be %d bytes", acc.Address, ed25519.PublicKeySize)
		}
	}
	return wagertypes.ValidateGenesis(gs.Wager)
}

func (a *WagerApp) initGenesis(ctx context.Context, gs *GenesisState) error {
	if err := a.meta.SetMinter(ctx, gs.Minter); err != nil {
		return err
	}
	for _, acc := range gs.Accounts {
		if acc.Balance > 0 {
			if err := a.bank.Mint(ctx, acc.Address, acc.Balance); err != nil {
				return fmt.Errorf("genesis account %q: %w", acc.Address, err)
			}
		}
		if acc.PubKey != nil {
			if err := a.bank.SetAccountKey(ctx, acc.Address, acc.PubKey); err != nil {
				return err
			}
		}
	}
	return a.keeper.InitGenesis(ctx, gs.Wager)
}
