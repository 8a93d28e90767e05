// Package config loads taskflow configuration.
//
// Configuration comes from a YAML file named by the --config flag, the
// TASKFLOW_CONFIG environment variable, or config.yaml in the data directory,
// in that order. Missing fields keep their defaults, and command-line flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dori/taskflow/internal/db"
)

// EnvConfig names the environment variable holding the config file path
const EnvConfig = "TASKFLOW_CONFIG"

// StoreKind selects the task store backend
type StoreKind string

const (
	// StoreMemory keeps tasks in memory, seeded from a fixture; nothing is persisted.
	StoreMemory StoreKind = "memory"
	// StoreSQLite persists tasks in a local SQLite database.
	StoreSQLite StoreKind = "sqlite"
	// StoreRemote talks to a `taskflow serve` instance over HTTP.
	StoreRemote StoreKind = "remote"
)

// Config is the application configuration
type Config struct {
	// DataDir holds the database, lock file and default log file.
	DataDir string `yaml:"data_dir"`

	Store StoreKind `yaml:"store"`

	// DBPath defaults to <data_dir>/taskflow.db.
	DBPath string `yaml:"db_path"`

	// RemoteURL is the base URL of the REST server for the remote store.
	RemoteURL string `yaml:"remote_url"`

	// SeedFile is a JSONC fixture; empty means the built-in demo data.
	SeedFile string `yaml:"seed_file"`

	Theme string `yaml:"theme"`

	// SearchDebounce is how long typing must pause before the search applies.
	SearchDebounce time.Duration `yaml:"search_debounce"`

	// Latency is the simulated delay of the memory store.
	Latency LatencyConfig `yaml:"latency"`

	// Notifications enables desktop notifications via notify-send.
	Notifications bool `yaml:"notifications"`

	Log LogConfig `yaml:"log"`

	// Addr is the listen address for `taskflow serve`.
	Addr string `yaml:"addr"`
}

// LatencyConfig is the simulated store delay range
type LatencyConfig struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// LogConfig configures structured logging
type LogConfig struct {
	// File receives TUI logs; the terminal belongs to the UI.
	// Default: <data_dir>/taskflow.log
	File string `yaml:"file"`

	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration
func Default() *Config {
	dataDir := db.DefaultDataDir()
	return &Config{
		DataDir:        dataDir,
		Store:          StoreMemory,
		Theme:          "nord",
		SearchDebounce: 300 * time.Millisecond,
		Latency: LatencyConfig{
			Min: 150 * time.Millisecond,
			Max: 300 * time.Millisecond,
		},
		Notifications: false,
		Log:           LogConfig{Level: "info"},
		Addr:          "127.0.0.1:8080",
	}
}

// Load reads configuration from path, or from the usual places when path is empty.
// A missing file at an implicit location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg.applyDerived()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDerived fills paths that default relative to DataDir
func (c *Config) applyDerived() {
	c.DataDir = expandHome(c.DataDir)
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "taskflow.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "taskflow.log")
	}
	c.DBPath = expandHome(c.DBPath)
	c.Log.File = expandHome(c.Log.File)
	c.SeedFile = expandHome(c.SeedFile)
}

// Finalize recomputes derived paths after flag overrides and validates
func (c *Config) Finalize() error {
	c.applyDerived()
	return c.Validate()
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StoreRemote:
		if c.RemoteURL == "" {
			errs = append(errs, errors.New("store remote requires remote_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want memory, sqlite or remote)", c.Store))
	}

	if c.Latency.Min < 0 || c.Latency.Max < 0 {
		errs = append(errs, errors.New("latency must not be negative"))
	}
	if c.Latency.Max > 0 && c.Latency.Min > c.Latency.Max {
		errs = append(errs, fmt.Errorf("latency.min %s exceeds latency.max %s", c.Latency.Min, c.Latency.Max))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, errors.New("search_debounce must not be negative"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
