package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5, cfg.Server.MaxUploadMB)
	assert.Equal(t, "./data", cfg.Knowledge.DataDir)
	assert.False(t, cfg.Narrative.Enabled)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Narrative.Model)
	assert.Equal(t, int64(2048), cfg.Narrative.MaxTokens)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.NoError(t, m.Validate())
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("PGX_SERVER_PORT", "9090")
	t.Setenv("PGX_LOGGING_LEVEL", "debug")

	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestMaxUploadBytes(t *testing.T) {
	s := ServerConfig{MaxUploadMB: 5}
	assert.Equal(t, int64(5<<20), s.MaxUploadBytes())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"bad upload size", func(c *Config) { c.Server.MaxUploadMB = 0 }, "invalid max upload size"},
		{"missing data dir", func(c *Config) { c.Knowledge.DataDir = "" }, "knowledge data dir"},
		{"narrative without key", func(c *Config) { c.Narrative.Enabled = true }, "narrative API key"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager()
			require.NoError(t, err)

			tt.mutate(m.GetConfig())
			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
