package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings read once at startup. Everything
// here is immutable for the lifetime of the server.
type Config struct {
	Addr              string
	MinPlayers        int
	MaxPlayers        int
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
	LogLevel          string
}

const (
	defaultAddr              = ":8080"
	defaultMinPlayers        = 2
	defaultMaxPlayers        = 8
	defaultHeartbeatInterval = 30 * time.Second
	defaultWriteTimeout      = 3 * time.Second
	defaultLogLevel          = "info"
)

// Load reads configuration from the environment, first merging an optional
// .env file. A missing .env is fine; a malformed value is not.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:     envStr("ADDR", defaultAddr),
		LogLevel: envStr("LOG_LEVEL", defaultLogLevel),
	}

	var err error
	if cfg.MinPlayers, err = envInt("MIN_PLAYERS", defaultMinPlayers); err != nil {
		return Config{}, err
	}
	if cfg.MaxPlayers, err = envInt("MAX_PLAYERS", defaultMaxPlayers); err != nil {
		return Config{}, err
	}
	if cfg.HeartbeatInterval, err = envDuration("HEARTBEAT_INTERVAL", defaultHeartbeatInterval); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = envDuration("WRITE_TIMEOUT", defaultWriteTimeout); err != nil {
		return Config{}, err
	}

	if cfg.MinPlayers < 1 {
		return Config{}, fmt.Errorf("MIN_PLAYERS must be at least 1, got %d", cfg.MinPlayers)
	}
	if cfg.MaxPlayers < cfg.MinPlayers {
		return Config{}, fmt.Errorf("MAX_PLAYERS (%d) below MIN_PLAYERS (%d)", cfg.MaxPlayers, cfg.MinPlayers)
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
