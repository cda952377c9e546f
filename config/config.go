// Package config loads budget planner settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all server and CLI settings.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Autosave AutosaveConfig `toml:"autosave"`
	Redis    RedisConfig    `toml:"redis"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port            string        `toml:"port"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	DBPath string `toml:"db_path"`
	PlanID string `toml:"plan_id"`
}

// AutosaveConfig holds the debounce delay for saving edits.
type AutosaveConfig struct {
	Delay time.Duration `toml:"delay"`
}

// RedisConfig enables the cross-process change feed. Empty Addr disables it.
type RedisConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			DBPath: "budget.db",
			PlanID: "fy27_master_plan",
		},
		Autosave: AutosaveConfig{
			Delay: 2 * time.Second,
		},
	}
}

// Load reads the config file at path, returning defaults if it doesn't
// exist. REDIS_ADDR, when set, overrides the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
