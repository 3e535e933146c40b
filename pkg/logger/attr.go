package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Warn("msg", logger.Error(err)) without explicit
// nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Target creates an attribute identifying the entity a mutation acts on.
func Target(id string) slog.Attr {
	return slog.String("target", id)
}

// Endpoint creates an attribute for the remote API path of a request.
func Endpoint(path string) slog.Attr {
	return slog.String("endpoint", path)
}
