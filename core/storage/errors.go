package storage

import "errors"

var (
	// ErrKeyNotFound is returned when a key has no stored value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUnsupportedDriver is returned by the factory for unknown drivers.
	ErrUnsupportedDriver = errors.New("unsupported storage driver")
	// ErrSealKeySize is returned when a seal key is not 32 bytes.
	ErrSealKeySize = errors.New("seal key must be 32 bytes")
)
