package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"onchainwager/internal/app"
	"onchainwager/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, app.Version)
}

func TestInit_WritesConfigAndAppState(t *testing.T) {
	home := t.TempDir()
	out, err := run(t, "init", "--home", home, "--minter", "faucet")
	require.NoError(t, err)
	require.Contains(t, out, config.Path(home))

	bz, err := os.ReadFile(filepath.Join(home, "config", appStateFile))
	require.NoError(t, err)
	gs, err := app.ParseGenesis(bz)
	require.NoError(t, err)
	require.Equal(t, "faucet", gs.Minter)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(bz, &raw))
	require.Contains(t, raw, "wager")

	_, err = run(t, "init", "--home", home)
	require.Error(t, err)
	_, err = run(t, "init", "--home", home, "--overwrite")
	require.NoError(t, err)
}

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wagerd.log")
	var stderr bytes.Buffer
	logger, closeLog := newLogger(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}, &stderr)
	logger.Info("hello", "session", 7)
	logger.Debug("hidden")
	require.NoError(t, closeLog())

	bz, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(bz), "hello")
	require.NotContains(t, string(bz), "hidden")
	require.Equal(t, stderr.String(), string(bz))
}
