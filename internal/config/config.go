// Package config loads and saves fintrack's TOML configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage backends for client-local state.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds all fintrack configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Store      StoreConfig      `toml:"store"`
	Appearance AppearanceConfig `toml:"appearance"`
	Watch      WatchConfig      `toml:"watch"`
}

// APIConfig points at the transaction service.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// StoreConfig selects where filters and budgets are kept.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// WatchConfig holds budget watch daemon settings.
type WatchConfig struct {
	Listen       string `toml:"listen"`
	IntervalSecs int    `toml:"interval_secs"`
	AMQPURL      string `toml:"amqp_url,omitempty"`
	AMQPExchange string `toml:"amqp_exchange"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8080/api",
			TimeoutSecs: 10,
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Watch: WatchConfig{
			Listen:       "127.0.0.1:8787",
			IntervalSecs: 60,
			AMQPExchange: "fintrack.alerts",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack")
}

// DataDir returns the XDG-compliant data directory for local state.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StorePath returns the state file for the configured backend.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == BackendFile {
		return filepath.Join(DataDir(), "state.toml")
	}
	return filepath.Join(DataDir(), "fintrack.db")
}

// Timeout returns the per-request API timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// Interval returns the watch daemon poll interval.
func (c Config) Interval() time.Duration {
	if c.Watch.IntervalSecs <= 0 {
		return time.Minute
	}
	return time.Duration(c.Watch.IntervalSecs) * time.Second
}

// Load reads the config file, returning defaults if it doesn't exist.
// A .env file in the working directory is loaded first so its variables
// can override file settings.
func Load() (Config, error) {
	_ = godotenv.Load() // optional

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FINTRACK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("FINTRACK_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("FINTRACK_AMQP_URL"); v != "" {
		cfg.Watch.AMQPURL = v
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}

	switch c.Store.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("store.backend %q must be one of sqlite, file, memory", c.Store.Backend))
	}

	if c.API.TimeoutSecs < 0 {
		problems = append(problems, "api.timeout_secs must not be negative")
	}
	if c.Watch.IntervalSecs < 0 {
		problems = append(problems, "watch.interval_secs must not be negative")
	}
	if c.Watch.AMQPURL != "" && c.Watch.AMQPExchange == "" {
		problems = append(problems, "watch.amqp_exchange is required when amqp_url is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
