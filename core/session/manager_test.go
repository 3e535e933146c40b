package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/core/session"
	"github.com/fitcheck/fitcheck-go/core/storage"
)

// mockAPI implements session.API for testing
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) SignIn(ctx context.Context, email, password string) (client.SignInResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(client.SignInResult), args.Error(1)
}

func (m *mockAPI) SignUp(ctx context.Context, params client.SignUpParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockAPI) ResolveUsername(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func newManager(t *testing.T, api session.API, opts ...session.Option) (*session.Manager, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	return session.NewManager(api, store, opts...), store
}

func TestManagerInitialize(t *testing.T) {
	t.Parallel()

	t.Run("no persisted token yields unauthenticated", func(t *testing.T) {
		t.Parallel()

		m, _ := newManager(t, &mockAPI{})
		require.NoError(t, m.Initialize(context.Background()))

		assert.Equal(t, session.StateUnauthenticated, m.State())
		assert.False(t, m.IsAuthenticated())
	})

	t.Run("persisted token restores the session", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		m, store := newManager(t, &mockAPI{})
		require.NoError(t, store.Set(ctx, storage.KeyToken, "tok-123"))
		require.NoError(t, store.Set(ctx, storage.KeyUsername, "alice"))
		userData, _ := json.Marshal(client.User{"username": "alice"})
		require.NoError(t, store.Set(ctx, storage.KeyUserData, string(userData)))

		require.NoError(t, m.Initialize(ctx))

		assert.Equal(t, session.StateAuthenticated, m.State())
		assert.True(t, m.IsAuthenticated())
		assert.Equal(t, "tok-123", m.Token())
		assert.Equal(t, "alice", m.Username())
	})

	t.Run("username falls back to the dedicated key", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		m, store := newManager(t, &mockAPI{})
		require.NoError(t, store.Set(ctx, storage.KeyToken, "tok-123"))
		require.NoError(t, store.Set(ctx, storage.KeyUserData, `{"id":"42"}`))
		require.NoError(t, store.Set(ctx, storage.KeyUsername, "bob"))

		require.NoError(t, m.Initialize(ctx))

		assert.Equal(t, "bob", m.Username())
	})

	t.Run("expired session is purged", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		m, store := newManager(t, &mockAPI{})
		require.NoError(t, store.Set(ctx, storage.KeyToken, "tok-123"))
		require.NoError(t, store.Set(ctx, storage.KeyUsername, "alice"))
		past := time.Now().Add(-time.Hour).Format(time.RFC3339)
		require.NoError(t, store.Set(ctx, storage.KeyExpiresAt, past))

		require.NoError(t, m.Initialize(ctx))

		assert.Equal(t, session.StateUnauthenticated, m.State())
		_, err := store.Get(ctx, storage.KeyToken)
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
		_, err = store.Get(ctx, storage.KeyUsername)
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("future expiry keeps the session", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		m, store := newManager(t, &mockAPI{})
		require.NoError(t, store.Set(ctx, storage.KeyToken, "tok-123"))
		future := time.Now().Add(time.Hour).Format(time.RFC3339)
		require.NoError(t, store.Set(ctx, storage.KeyExpiresAt, future))

		require.NoError(t, m.Initialize(ctx))

		assert.True(t, m.IsAuthenticated())
		assert.False(t, m.Current().ExpiresAt.IsZero())
	})

	t.Run("malformed expiry is ignored", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		m, store := newManager(t, &mockAPI{})
		require.NoError(t, store.Set(ctx, storage.KeyToken, "tok-123"))
		require.NoError(t, store.Set(ctx, storage.KeyExpiresAt, "not-a-time"))

		require.NoError(t, m.Initialize(ctx))

		assert.True(t, m.IsAuthenticated())
	})

	t.Run("second initialize is rejected", func(t *testing.T) {
		t.Parallel()

		m, _ := newManager(t, &mockAPI{})
		require.NoError(t, m.Initialize(context.Background()))
		assert.ErrorIs(t, m.Initialize(context.Background()), session.ErrAlreadyInitialized)
	})
}

func TestManagerSignIn(t *testing.T) {
	t.Parallel()

	t.Run("short password fails validation before any network call", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		m, _ := newManager(t, api)

		err := m.SignIn(context.Background(), "alice@example.com", "12345")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Password must be at least 6 characters")
		api.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid email fails validation before any network call", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		m, _ := newManager(t, api)

		err := m.SignIn(context.Background(), "not-an-email", "123456")

		require.Error(t, err)
		api.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("successful sign-in persists and transitions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(client.SignInResult{Token: "tok-123", User: client.User{}}, nil)
		api.On("ResolveUsername", mock.Anything, "tok-123").Return("alice", nil)

		m, store := newManager(t, api)
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1"))

		assert.True(t, m.IsAuthenticated())
		assert.Equal(t, "alice", m.Username())

		token, err := store.Get(ctx, storage.KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
		name, err := store.Get(ctx, storage.KeyUsername)
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
		_, err = store.Get(ctx, storage.KeyUserData)
		require.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("failed sign-in leaves storage untouched", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "wrongpw").
			Return(client.SignInResult{}, errors.New("connection refused"))

		m, store := newManager(t, api)
		err := m.SignIn(ctx, "alice@example.com", "wrongpw")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Login failed")
		assert.Equal(t, session.StateUnauthenticated, m.State())
		_, getErr := store.Get(ctx, storage.KeyToken)
		assert.ErrorIs(t, getErr, storage.ErrKeyNotFound)
	})

	t.Run("sign-in succeeds even when username resolution fails", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(client.SignInResult{Token: "tok-123", User: client.User{}}, nil)
		api.On("ResolveUsername", mock.Anything, "tok-123").
			Return("", errors.New("timeout"))

		m, store := newManager(t, api)
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1"))

		assert.True(t, m.IsAuthenticated())
		assert.Empty(t, m.Username())
		token, err := store.Get(ctx, storage.KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("remember me persists an expiry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(client.SignInResult{Token: "tok-123", User: client.User{}}, nil)
		api.On("ResolveUsername", mock.Anything, "tok-123").Return("alice", nil)

		m, store := newManager(t, api, session.WithRememberMeTTL(7*24*time.Hour))
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1", session.WithRememberMe()))

		raw, err := store.Get(ctx, storage.KeyExpiresAt)
		require.NoError(t, err)
		expiresAt, err := time.Parse(time.RFC3339, raw)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)
	})

	t.Run("without remember me no expiry is persisted", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(client.SignInResult{Token: "tok-123", User: client.User{}}, nil)
		api.On("ResolveUsername", mock.Anything, "tok-123").Return("alice", nil)

		m, store := newManager(t, api)
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1"))

		_, err := store.Get(ctx, storage.KeyExpiresAt)
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("plain sign-in clears a stale remember-me expiry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(client.SignInResult{Token: "tok-123", User: client.User{}}, nil)
		api.On("ResolveUsername", mock.Anything, "tok-123").Return("alice", nil)

		m, store := newManager(t, api)
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1", session.WithRememberMe()))
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1"))

		_, err := store.Get(ctx, storage.KeyExpiresAt)
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})
}

func TestManagerSignUp(t *testing.T) {
	t.Parallel()

	t.Run("validates input before any network call", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		m, _ := newManager(t, api)

		err := m.SignUp(context.Background(), client.SignUpParams{
			Email:    "alice@example.com",
			Password: "12345",
			Username: "alice",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Password must be at least 6 characters")
		api.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
	})

	t.Run("wraps transport failures with a displayable message", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		api.On("SignUp", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		m, _ := newManager(t, api)

		err := m.SignUp(context.Background(), client.SignUpParams{
			Email:    "alice@example.com",
			Password: "secret1",
			Username: "alice",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Registration failed")
	})

	t.Run("does not establish a session", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		api.On("SignUp", mock.Anything, mock.Anything).Return(nil)
		m, _ := newManager(t, api)
		require.NoError(t, m.Initialize(context.Background()))

		require.NoError(t, m.SignUp(context.Background(), client.SignUpParams{
			Email:    "alice@example.com",
			Password: "secret1",
			Username: "alice",
		}))

		assert.False(t, m.IsAuthenticated())
	})
}

func TestManagerLogout(t *testing.T) {
	t.Parallel()

	t.Run("round trip through logout and initialize", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		api := &mockAPI{}
		api.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(client.SignInResult{Token: "tok-123", User: client.User{}}, nil)
		api.On("ResolveUsername", mock.Anything, "tok-123").Return("alice", nil)

		m, store := newManager(t, api)
		require.NoError(t, m.SignIn(ctx, "alice@example.com", "secret1"))
		require.NoError(t, m.Logout(ctx))

		assert.False(t, m.IsAuthenticated())
		assert.Empty(t, m.Token())
		_, err := store.Get(ctx, storage.KeyToken)
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)

		// A fresh manager over the same store starts unauthenticated.
		fresh := session.NewManager(api, store)
		require.NoError(t, fresh.Initialize(ctx))
		assert.Equal(t, session.StateUnauthenticated, fresh.State())
	})
}
