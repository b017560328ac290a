package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Store.Seed)
	assert.Equal(t, 16, cfg.PubSub.BufferSize)
	assert.Equal(t, ":4000", cfg.Gateway.BindAddress)
	assert.Equal(t, "/graphql", cfg.Gateway.Path)
	assert.Equal(t, "/graphql/ws", cfg.Gateway.WSPath)
	assert.True(t, cfg.Gateway.EnablePlayground)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: debug
  format: text
store:
  seed: false
pubsub:
  buffer_size: 64
gateway:
  bind_address: ":9000"
  path: /api/graphql
  enable_playground: false
  timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Store.Seed)
	assert.Equal(t, 64, cfg.PubSub.BufferSize)
	assert.Equal(t, ":9000", cfg.Gateway.BindAddress)
	assert.Equal(t, "/api/graphql", cfg.Gateway.Path)
	// WSPath defaults relative to the configured path
	assert.Equal(t, "/api/graphql/ws", cfg.Gateway.WSPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BLOGSTREAM_LOG_LEVEL", "warn")
	t.Setenv("BLOGSTREAM_BIND_ADDRESS", ":5000")
	t.Setenv("BLOGSTREAM_SEED", "false")
	t.Setenv("BLOGSTREAM_PUBSUB_BUFFER", "8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":5000", cfg.Gateway.BindAddress)
	assert.False(t, cfg.Store.Seed)
	assert.Equal(t, 8, cfg.PubSub.BufferSize)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative buffer", func(c *Config) { c.PubSub.BufferSize = -1 }},
		{"bad gateway path", func(c *Config) { c.Gateway.Path = "graphql" }},
		{"bad timeout", func(c *Config) { c.Gateway.TimeoutStr = "1h" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
