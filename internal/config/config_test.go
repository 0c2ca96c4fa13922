package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "MIN_PLAYERS", "MAX_PLAYERS", "HEARTBEAT_INTERVAL", "WRITE_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2, cfg.MinPlayers)
	assert.Equal(t, 8, cfg.MaxPlayers)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("MIN_PLAYERS", "3")
	t.Setenv("MAX_PLAYERS", "12")
	t.Setenv("HEARTBEAT_INTERVAL", "10s")
	t.Setenv("WRITE_TIMEOUT", "500ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 3, cfg.MinPlayers)
	assert.Equal(t, 12, cfg.MaxPlayers)
	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.WriteTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "two")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsInvertedCapacity(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "4")
	t.Setenv("MAX_PLAYERS", "2")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsZeroMinimum(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "0")
	_, err := Load()
	assert.Error(t, err)
}
