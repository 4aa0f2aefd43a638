package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sportz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, time.Minute, cfg.StatusSyncInterval)
	assert.Equal(t, 10000, cfg.MaxWebSocketConnections)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sportz")
	t.Setenv("HEARTBEAT_INTERVAL", "10s")
	t.Setenv("STATUS_SYNC_INTERVAL", "5m")
	t.Setenv("PORT", "9001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 5*time.Minute, cfg.StatusSyncInterval)
	assert.Equal(t, "9001", cfg.Port)
}

func TestValidate_RejectsNonPositiveIntervals(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/sportz", HeartbeatInterval: 0, StatusSyncInterval: time.Minute}
	assert.Error(t, validate(cfg))

	cfg = &Config{DatabaseURL: "postgres://localhost/sportz", HeartbeatInterval: time.Second, StatusSyncInterval: -time.Second}
	assert.Error(t, validate(cfg))
}
