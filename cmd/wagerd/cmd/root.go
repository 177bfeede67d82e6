// Package cmd holds the wagerd command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainwager/internal/app"
	"onchainwager/internal/config"
)

const flagHome = "home"

// NewRootCmd creates the wagerd root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "wagerd",
		Short:         "Wager settlement ABCI application",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().String(flagHome, config.DefaultHome, "node home directory (config under <home>/config, state under <home>/data)")

	rootCmd.AddCommand(
		initCmd(),
		startCmd(v),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("wagerd %s (app version %d)\n", app.Version, app.AppVersion)
		},
	}
}
