package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the process reads from the environment.
type Config struct {
	DevMode  bool   `env:"DEV_MODE"`
	HostPort string `env:"HOST_PORT" envDefault:"8080"`

	// Base64-encoded HMAC secret for session tokens. In dev mode an
	// empty value falls back to a random per-process secret.
	JWTSecret string `env:"JWT_SECRET"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"memory"`

	RedisEndpoint    string `env:"REDIS_ENDPOINT"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
	DynamoDBTable    string `env:"DYNAMODB_TABLE" envDefault:"StylusSphere"`

	// Origin allowed to open websocket connections. Empty allows any
	// origin, which is only sensible in dev.
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.StoreBackend != "memory" && cfg.StoreBackend != "dynamo" {
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		return Config{}, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	return cfg, nil
}
