package session

import (
	"log/slog"
	"time"

	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
)

// Config holds session manager configuration.
type Config struct {
	// RememberMeTTL is the validity window written as expiresAt when the
	// user opts into remember-me at sign-in.
	RememberMeTTL time.Duration

	Bus    *eventbus.Bus
	Logger *slog.Logger
}

func defaultConfig() *Config {
	return &Config{
		RememberMeTTL: 7 * 24 * time.Hour,
		Logger:        slog.Default(),
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Config)

// WithRememberMeTTL sets the remember-me validity window.
func WithRememberMeTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.RememberMeTTL = ttl
	}
}

// WithEventBus sets the bus on which lifecycle events are published.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(c *Config) {
		c.Bus = bus
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
