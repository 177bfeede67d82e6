// Package config loads wagerd node settings from <home>/config/wagerd.toml,
// WAGER_* environment variables and command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	FileName  = "wagerd.toml"
	EnvPrefix = "WAGER"

	DefaultHome = ".wagerd"
)

type Config struct {
	Home           string      `mapstructure:"home"`
	ABCI           ABCIConfig  `mapstructure:"abci"`
	DB             DBConfig    `mapstructure:"db"`
	Log            LogConfig   `mapstructure:"log"`
	Redis          RedisConfig `mapstructure:"redis"`
	QueryCacheSize int         `mapstructure:"query_cache_size"`
}

type ABCIConfig struct {
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
}

type DBConfig struct {
	Backend string `mapstructure:"backend"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File, when set, receives a copy of the log stream, rotated at MaxSizeMB.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RedisConfig enables block event publishing when Addr is set.
type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	Channel string `mapstructure:"channel"`
}

// SetDefaults registers every key so env overrides apply even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("abci.addr", "tcp://127.0.0.1:26658")
	v.SetDefault("abci.transport", "socket")
	v.SetDefault("db.backend", string(dbm.GoLevelDBBackend))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "plain")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.channel", "wager.blocks")
	v.SetDefault("query_cache_size", 1024)
}

// Path returns the config file location under home.
func Path(home string) string {
	return filepath.Join(home, "config", FileName)
}

// Load reads the config for home into v. A missing file is not an error.
func Load(v *viper.Viper, home string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(Path(home))
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", Path(home), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Home = home
	return cfg, cfg.Validate()
}

// WriteDefault writes the default config file under home unless one exists.
func WriteDefault(home string, overwrite bool) (string, error) {
	path := Path(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("toml")
	if overwrite {
		return path, v.WriteConfigAs(path)
	}
	if err := v.SafeWriteConfigAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func (c Config) Validate() error {
	switch c.ABCI.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("abci.transport must be socket or grpc, got %q", c.ABCI.Transport)
	}
	if c.ABCI.Addr == "" {
		return errors.New("abci.addr is required")
	}
	switch dbm.BackendType(c.DB.Backend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db.backend %q", c.DB.Backend)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "plain", "json":
	default:
		return fmt.Errorf("log.format must be plain or json, got %q", c.Log.Format)
	}
	if c.Redis.Addr != "" && c.Redis.Channel == "" {
		return errors.New("redis.channel is required when redis.addr is set")
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("query_cache_size must not be negative, got %d", c.QueryCacheSize)
	}
	return nil
}

func (c Config) DBBackend() dbm.BackendType { return dbm.BackendType(c.DB.Backend) }

// LogLevel is the parsed Log.Level; Validate guarantees it parses.
func (c Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
