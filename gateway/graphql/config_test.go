package graphql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":4000", cfg.BindAddress)
	assert.Equal(t, "/graphql", cfg.Path)
	assert.Equal(t, "/graphql/ws", cfg.WSPath)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestValidateWSPathFollowsPath(t *testing.T) {
	cfg := Config{Path: "/api/graphql"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/api/graphql/ws", cfg.WSPath)
}

func TestValidateCORSOrigins(t *testing.T) {
	cfg := Config{EnableCORS: true}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"relative path", Config{Path: "graphql"}},
		{"relative ws path", Config{WSPath: "ws"}},
		{"unparseable timeout", Config{TimeoutStr: "soon"}},
		{"timeout too small", Config{TimeoutStr: "10ms"}},
		{"timeout too large", Config{TimeoutStr: "10m"}},
		{"negative body limit", Config{MaxBodyBytes: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}
