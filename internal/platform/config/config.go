package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8000"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	HeartbeatInterval  time.Duration `env:"HEARTBEAT_INTERVAL" default:"30s"`
	StatusSyncInterval time.Duration `env:"STATUS_SYNC_INTERVAL" default:"60s"`

	MaxWebSocketConnections int `env:"MAX_WEBSOCKET_CONNECTIONS" default:"10000"`

	// Per-IP request rate for the REST API.
	APIRatePerSecond float64 `env:"API_RATE_PER_SECOND" default:"5"`
	APIRateBurst     int     `env:"API_RATE_BURST" default:"50"`

	// Per-IP connection attempt rate for the WebSocket endpoint.
	WSRatePerSecond float64 `env:"WS_RATE_PER_SECOND" default:"2.5"`
	WSRateBurst     int     `env:"WS_RATE_BURST" default:"5"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("HEARTBEAT_INTERVAL must be positive, got %v", cfg.HeartbeatInterval)
	}
	if cfg.StatusSyncInterval <= 0 {
		return fmt.Errorf("STATUS_SYNC_INTERVAL must be positive, got %v", cfg.StatusSyncInterval)
	}
	return nil
}
