package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"onchainwager/internal/app"
	"onchainwager/internal/config"
)

const (
	flagOverwrite = "overwrite"
	flagMinter    = "minter"

	appStateFile = "app_state.json"
)

// initCmd writes the default node config and an app_state document to paste
// into the CometBFT genesis file.
func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config and app genesis state under --home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := cmd.Flags().GetString(flagHome)
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			minter, _ := cmd.Flags().GetString(flagMinter)

			cfgPath, err := config.WriteDefault(home, overwrite)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			gs := app.DefaultGenesisState()
			gs.Minter = minter
			if err := gs.Validate(); err != nil {
				return err
			}
			bz, err := json.MarshalIndent(gs, "", "  ")
			if err != nil {
				return err
			}
			statePath := filepath.Join(home, "config", appStateFile)
			if _, err := os.Stat(statePath); err == nil && !overwrite {
				return fmt.Errorf("%s already exists (use --%s)", statePath, flagOverwrite)
			}
			if err := os.WriteFile(statePath, bz, 0o644); err != nil {
				return err
			}

			cmd.Printf("wrote %s\nwrote %s\n", cfgPath, statePath)
			return nil
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "replace existing files")
	cmd.Flags().String(flagMinter, "", "account allowed to mint (devnets only)")
	return cmd
}
