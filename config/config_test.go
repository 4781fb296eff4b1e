package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 10, cfg.MaxServersPerRequest)
	assert.Equal(t, 20, cfg.MaxServersPerWindow)
	assert.Equal(t, 5*time.Minute, cfg.ServerRateWindow)
	assert.Equal(t, 5, cfg.MaxGameRequestsPerWindow)
	assert.Equal(t, time.Hour, cfg.GameRateWindow)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 6*time.Hour, cfg.SessionTTL)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"8080\"\n"+
			"max_servers_per_request: 3\n"+
			"server_rate_window: 10m\n"+
			"use_ssl: true\n",
	), 0o644))

	cfg := Load(path)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxServersPerRequest)
	assert.Equal(t, 10*time.Minute, cfg.ServerRateWindow)
	assert.True(t, cfg.UseSSL)

	// Untouched keys keep their defaults
	assert.Equal(t, 20, cfg.MaxServersPerWindow)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"8080\"\n"), 0o644))

	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("USE_SSL", "yes")
	t.Setenv("RATE_LIMIT", "250")

	cfg := Load(path)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.UseSSL)
	assert.Equal(t, 250.0, cfg.RateLimit)
}

func TestLoadIgnoresBadRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT", "not-a-number")
	cfg := Load("")
	assert.Equal(t, Default().RateLimit, cfg.RateLimit)
}
