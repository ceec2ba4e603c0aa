// Package config holds configuration for idlewatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied wherever the caller leaves a field unset.
const (
	DefaultTimeout     = 300 * time.Second
	DefaultSensitivity = 1500 * time.Millisecond
	DefaultNtfyServer  = "https://ntfy.sh"
)

// Config holds all configuration for idlewatch. Timeout and Sensitivity
// drive the watcher; the remaining fields belong to the CLI host. A config
// is effectively immutable once watching starts: changing it requires a
// stop and restart.
type Config struct {
	// Timeout is how long the user may be inactive before the timeout
	// event fires.
	Timeout time.Duration `yaml:"timeout" env:"IDLEWATCH_TIMEOUT"`

	// Sensitivity is the sampling window: activity is judged per elapsed
	// window of this length.
	Sensitivity time.Duration `yaml:"sensitivity" env:"IDLEWATCH_SENSITIVITY"`

	// Notification settings for the CLI host.
	NtfyTopic  string `yaml:"ntfy_topic" env:"IDLEWATCH_NTFY_TOPIC"`
	NtfyServer string `yaml:"ntfy_server" env:"IDLEWATCH_NTFY_SERVER"`

	// Quiet disables notifications.
	Quiet bool `yaml:"quiet" env:"IDLEWATCH_QUIET"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Sensitivity: DefaultSensitivity,
		NtfyServer:  DefaultNtfyServer,
	}
}

// WithDefaults returns a copy of c with defaults filled into unset fields.
func (c Config) WithDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Sensitivity == 0 {
		c.Sensitivity = DefaultSensitivity
	}
	if c.NtfyServer == "" {
		c.NtfyServer = DefaultNtfyServer
	}
	return c
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	*cfg = cfg.WithDefaults()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("IDLEWATCH_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "idlewatch", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "idlewatch", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if timeout := os.Getenv("IDLEWATCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IDLEWATCH_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if sensitivity := os.Getenv("IDLEWATCH_SENSITIVITY"); sensitivity != "" {
		d, err := time.ParseDuration(sensitivity)
		if err != nil {
			return fmt.Errorf("invalid IDLEWATCH_SENSITIVITY: %w", err)
		}
		cfg.Sensitivity = d
	}

	if topic := os.Getenv("IDLEWATCH_NTFY_TOPIC"); topic != "" {
		cfg.NtfyTopic = topic
	}

	if server := os.Getenv("IDLEWATCH_NTFY_SERVER"); server != "" {
		cfg.NtfyServer = server
	}

	if quiet := os.Getenv("IDLEWATCH_QUIET"); quiet != "" {
		switch quiet {
		case "true", "1", "yes":
			cfg.Quiet = true
		case "false", "0", "no":
			cfg.Quiet = false
		default:
			return fmt.Errorf("invalid IDLEWATCH_QUIET value: %q (use true/false)", quiet)
		}
	}

	return nil
}

// Validate validates the configuration. Timeout and Sensitivity must be
// positive once defaults have been applied.
func Validate(cfg *Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}

	if cfg.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive, got %v", cfg.Sensitivity)
	}

	return nil
}
