// Package config loads and validates the BlogStream configuration.
// Configuration comes from an optional YAML file layered with
// BLOGSTREAM_* environment overrides on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/c360/blogstream/errors"
	gateway "github.com/c360/blogstream/gateway/graphql"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "BLOGSTREAM"

// LogConfig controls application logging
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error" (default: "info")
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "text" (default: "json")
	Format string `json:"format" yaml:"format"`
}

// StoreConfig controls the entity store
type StoreConfig struct {
	// Seed loads the demo dataset on startup (default: true)
	Seed bool `json:"seed" yaml:"seed"`
}

// PubSubConfig controls the notification broker
type PubSubConfig struct {
	// BufferSize is the per-subscriber event buffer (default: 16)
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`
}

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig      `json:"log" yaml:"log"`
	Store   StoreConfig    `json:"store" yaml:"store"`
	PubSub  PubSubConfig   `json:"pubsub" yaml:"pubsub"`
	Gateway gateway.Config `json:"gateway" yaml:"gateway"`
}

// Default returns the built-in configuration defaults
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Seed: true,
		},
		PubSub: PubSubConfig{
			BufferSize: 16,
		},
		Gateway: gateway.DefaultConfig(),
	}
}

// Load reads the configuration file at path, applies environment
// overrides and validates the result. An empty path skips the file
// layer and loads defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load",
				fmt.Sprintf("read config file %s", path))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load",
				fmt.Sprintf("parse config file %s", path))
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	switch c.Log.Format {
	case "", "json", "text":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.PubSub.BufferSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"pubsub buffer_size must be positive")
	}
	if c.PubSub.BufferSize == 0 {
		c.PubSub.BufferSize = 16
	}

	return c.Gateway.Validate()
}

// applyEnvOverrides layers environment variables over the loaded
// configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(EnvPrefix + "_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(EnvPrefix + "_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv(EnvPrefix + "_BIND_ADDRESS"); val != "" {
		cfg.Gateway.BindAddress = val
	}
	if val := os.Getenv(EnvPrefix + "_GRAPHQL_PATH"); val != "" {
		cfg.Gateway.Path = val
	}
	if val := os.Getenv(EnvPrefix + "_PLAYGROUND"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Gateway.EnablePlayground = enabled
		}
	}
	if val := os.Getenv(EnvPrefix + "_SEED"); val != "" {
		if seed, err := strconv.ParseBool(val); err == nil {
			cfg.Store.Seed = seed
		}
	}
	if val := os.Getenv(EnvPrefix + "_PUBSUB_BUFFER"); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			cfg.PubSub.BufferSize = size
		}
	}
}
