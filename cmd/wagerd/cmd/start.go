package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainwager/internal/app"
	"onchainwager/internal/config"
	"onchainwager/internal/notify"
)

func startCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := cmd.Flags().GetString(flagHome)
			cfg, err := config.Load(v, home)
			if err != nil {
				return err
			}
			logger, closeLog := newLogger(cfg.Log, cmd.ErrOrStderr())
			defer func() { _ = closeLog() }()

			var publisher notify.Publisher = notify.Nop{}
			if cfg.Redis.Addr != "" {
				publisher = notify.NewRedis(cfg.Redis.Addr, cfg.Redis.Channel)
				logger.Info("publishing block events", "redis", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
			}

			a, err := app.New(app.Options{
				Home:           cfg.Home,
				DBBackend:      cfg.DBBackend(),
				Logger:         logger,
				Publisher:      publisher,
				QueryCacheSize: cfg.QueryCacheSize,
			})
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error("close app", "err", err)
				}
			}()

			srv, err := server.NewServer(cfg.ABCI.Addr, cfg.ABCI.Transport, a)
			if err != nil {
				return fmt.Errorf("start abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.ABCI.Addr, "transport", cfg.ABCI.Transport, "home", cfg.Home)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Info("shutting down", "signal", sig.String())
			return nil
		},
	}

	f := cmd.Flags()
	f.String("addr", "", "ABCI listen address (overrides abci.addr)")
	f.String("transport", "", "ABCI transport, socket or grpc (overrides abci.transport)")
	f.String("db-backend", "", "state database backend (overrides db.backend)")
	f.String("log-level", "", "log level (overrides log.level)")
	f.String("redis-addr", "", "redis address for block events (overrides redis.addr)")
	for key, name := range map[string]string{
		"abci.addr":      "addr",
		"abci.transport": "transport",
		"db.backend":     "db-backend",
		"log.level":      "log-level",
		"redis.addr":     "redis-addr",
	} {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
	return cmd
}
