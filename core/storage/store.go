// Package storage implements the device-storage collaborator: a small keyed
// string store holding the persisted session fields (token, username,
// userData, expiresAt). Several drivers exist so the toolkit runs both as an
// on-device client (file, sqlite) and headless (memory, redis).
package storage

import (
	"context"
	"time"
)

// Store is the persistence interface the session manager depends on.
// Implementations must handle concurrent access safely.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases driver resources.
	Close(ctx context.Context) error
}

// Keys under which the session manager persists its state.
const (
	KeyToken     = "token"
	KeyUsername  = "username"
	KeyUserData  = "userData"
	KeyExpiresAt = "expiresAt"
)

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	File   *FileConfig
	SQLite *SQLiteConfig
	Redis  *RedisConfig
}

// FileConfig holds file driver parameters.
type FileConfig struct {
	// Path of the JSON state file.
	Path string
	// SealKey, when 32 bytes long, enables sealing of values at rest.
	SealKey []byte
}

// SQLiteConfig provides the database location for the sqlite driver.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options for the redis driver.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
	// TTL bounds how long keys live server-side; zero means no expiry.
	TTL time.Duration
}
