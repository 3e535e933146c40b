// Package config loads application configuration from environment variables.
// A .env file is honored only when loaded explicitly at the composition root.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all tunables of the client toolkit.
type Config struct {
	// APIBaseURL is the root of the remote FitCheck API.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:5175"`

	// HTTPTimeout bounds every remote call; a timed-out call is treated as a
	// failure and rolls back any optimistic state.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	// HTTPMaxRetries is the number of transparent retries for transient
	// transport errors.
	HTTPMaxRetries int `env:"HTTP_MAX_RETRIES" envDefault:"1"`

	// RememberMeTTL is the validity window persisted as expiresAt when the
	// user opts into remember-me at sign-in.
	RememberMeTTL time.Duration `env:"REMEMBER_ME_TTL" envDefault:"168h"`

	// StorageDriver selects the local credential store: memory, file, sqlite
	// or redis.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file"`

	// StoragePath is the file path used by the file and sqlite drivers.
	StoragePath string `env:"STORAGE_PATH" envDefault:"fitcheck-state.json"`

	// StorageKey is the hex-encoded 32-byte key used to seal values at rest
	// in the file driver. Empty disables sealing.
	StorageKey string `env:"STORAGE_KEY"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadWithDotenv reads the given .env files (missing files are ignored)
// before parsing the environment. Meant for the composition root only.
func LoadWithDotenv(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return Load()
}
