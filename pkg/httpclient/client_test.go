package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/httpclient"
)

func TestClientDo(t *testing.T) {
	t.Parallel()

	t.Run("returns a successful response", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		c := httpclient.New(httpclient.DefaultConfig())
		resp, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("retries 5xx and succeeds on the second attempt", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		cfg := httpclient.DefaultConfig()
		cfg.RetryWaitMin = time.Millisecond
		c := httpclient.New(cfg)

		resp, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("does not retry 4xx", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		cfg := httpclient.DefaultConfig()
		cfg.RetryWaitMin = time.Millisecond
		c := httpclient.New(cfg)

		resp, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("returns the last 5xx when retries are exhausted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		cfg := httpclient.DefaultConfig()
		cfg.RetryWaitMin = time.Millisecond
		c := httpclient.New(cfg)

		resp, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestParseResponseError(t *testing.T) {
	t.Parallel()

	respWith := func(status int, body string) *http.Response {
		rec := httptest.NewRecorder()
		rec.WriteHeader(status)
		_, _ = rec.WriteString(body)
		return rec.Result()
	}

	t.Run("preserves the server message from the envelope", func(t *testing.T) {
		t.Parallel()

		err := httpclient.ParseResponseError(
			respWith(http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`),
			"sign-in",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid credentials")
	})

	t.Run("bad request maps to a validation error", func(t *testing.T) {
		t.Parallel()

		err := httpclient.ParseResponseError(
			respWith(http.StatusBadRequest, `{"success":false,"message":"missing field"}`),
			"sign-up",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing field")
	})

	t.Run("non-envelope body falls back to status and body", func(t *testing.T) {
		t.Parallel()

		err := httpclient.ParseResponseError(
			respWith(http.StatusBadGateway, "upstream unavailable"),
			"fetch-posts",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch-posts")
		assert.Contains(t, err.Error(), "502")
		assert.ErrorIs(t, err, apperrors.ErrTransport)
	})

	t.Run("non-envelope body still classifies by status", func(t *testing.T) {
		t.Parallel()

		err := httpclient.ParseResponseError(
			respWith(http.StatusNotFound, "no such route"),
			"gym-details",
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Contains(t, err.Error(), "gym-details")

		err = httpclient.ParseResponseError(
			respWith(http.StatusUnauthorized, "token rejected"),
			"fetch-posts",
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}
