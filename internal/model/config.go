package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds the connection settings for the platform API.
type APIConfig struct {
	// BaseURL is the root URL of the platform API
	// (e.g., https://ops.internal.example.com/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SyncConfig controls the background refresh of the active board.
type SyncConfig struct {
	// Enabled controls whether the poller runs at all.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollIntervalSec is how often (in seconds) the active board's
	// tickets are refreshed from the remote store.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	// TimelineMode is the initial timeline window: "month", "week", or "day".
	TimelineMode string `mapstructure:"timeline_mode" yaml:"timeline_mode"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// CachePath is the sqlite snapshot database location.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`
}

// DefaultConfigPath returns the default configuration file location,
// ~/.config/trackboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "trackboard", "config.yaml")
}

// DefaultCachePath returns the default snapshot database location,
// ~/.local/share/trackboard/cache.db.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".local", "share", "trackboard", "cache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			TimeoutSec: 30,
		},
		Sync: SyncConfig{
			Enabled:         true,
			PollIntervalSec: 120,
		},
		Display: DisplayConfig{
			TimelineMode: "month",
		},
		CachePath: DefaultCachePath(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.poll_interval_sec", 120)
	v.SetDefault("display.timeline_mode", "month")
	v.SetDefault("cache_path", DefaultCachePath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
