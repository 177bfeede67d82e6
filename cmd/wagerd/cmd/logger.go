package cmd

import (
	"io"

	"cosmossdk.io/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"onchainwager/internal/config"
)

// newLogger builds the node logger. With cfg.File set, output is also written
// to a rotating file.
func newLogger(cfg config.LogConfig, stderr io.Writer) (log.Logger, func() error) {
	out := stderr
	closeFn := func() error { return nil }
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		out = io.MultiWriter(stderr, file)
		closeFn = file.Close
	}

	lvl := config.Config{Log: cfg}.LogLevel()
	opts := []log.Option{log.LevelOption(lvl)}
	if cfg.Format == "json" {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(out, opts...), closeFn
}
