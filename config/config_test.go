package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcheck/fitcheck-go/config"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:5175", cfg.APIBaseURL)
		assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 1, cfg.HTTPMaxRetries)
		assert.Equal(t, 168*time.Hour, cfg.RememberMeTTL)
		assert.Equal(t, "file", cfg.StorageDriver)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "https://api.fitcheck.example")
		t.Setenv("HTTP_TIMEOUT", "5s")
		t.Setenv("STORAGE_DRIVER", "memory")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "https://api.fitcheck.example", cfg.APIBaseURL)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, "memory", cfg.StorageDriver)
	})

	t.Run("invalid duration fails", func(t *testing.T) {
		t.Setenv("HTTP_TIMEOUT", "not-a-duration")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
