package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config holds all ccgauge configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Daemon  DaemonConfig  `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Plan string `toml:"plan"`
	// DataDirs are extra log roots scanned in addition to the defaults.
	// Each must resolve inside the allowed Claude data directories.
	DataDirs []string `toml:"data_dirs,omitempty"`
	// CustomLimit overrides the plan ceiling when > 0.
	CustomLimit int64 `toml:"custom_limit,omitempty"`
}

// DaemonConfig holds refresh service settings.
type DaemonConfig struct {
	IntervalSec int    `toml:"interval_sec"`
	Addr        string `toml:"addr,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{Plan: string(PlanAuto)},
		Daemon:  DaemonConfig{IntervalSec: 30},
	}
}

// Dir returns the XDG config directory for ccgauge.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "ccgauge")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CachePath returns the entry cache database location.
func CachePath() string {
	return filepath.Join(xdg.CacheHome, "ccgauge", "entries.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is our own config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return saveTo(cfg, Path())
}

func saveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
