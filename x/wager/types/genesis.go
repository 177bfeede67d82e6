package types

import "fmt"

// GenesisState is the exported x/wager state.
type GenesisState struct {
	Params        Params          `json:"params"`
	NextSessionID uint64          `json:"nextSessionId"`
	Sessions      []Session       `json:"sessions,omitempty"`
	Profiles      []PlayerProfile `json:"profiles,omitempty"`
}

func DefaultGenesisState() *GenesisState {
	return &GenesisState{
		Params:        DefaultParams(),
		NextSessionID: 1,
	}
}

func ValidateGenesis(gs *GenesisState) error {
	if gs == nil {
		return fmt.Errorf("genesis state is nil")
	}
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if gs.NextSessionID == 0 {
		return fmt.Errorf("next_session_id must be > 0")
	}
	seen := make(map[uint64]bool, len(gs.Sessions))
	for i := range gs.Sessions {
		s := &gs.Sessions[i]
		if err := s.ValidateBasic(); err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate session id %d", s.ID)
		}
		seen[s.ID] = true
		if s.ID >= gs.NextSessionID {
			return fmt.Errorf("session id %d >= next_session_id %d", s.ID, gs.NextSessionID)
		}
	}
	players := make(map[string]bool, len(gs.Profiles))
	for _, p := range gs.Profiles {
		if p.Player == "" {
			return fmt.Errorf("profile with empty player")
		}
		if players[p.Player] {
			return fmt.Errorf("duplicate profile %q", p.Player)
		}
		players[p.Player] = true
	}
	return nil
}
