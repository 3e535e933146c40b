package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/core/storage"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
	"github.com/fitcheck/fitcheck-go/pkg/logger"
	"github.com/fitcheck/fitcheck-go/pkg/validator"
)

// API is the slice of the remote client the manager depends on.
type API interface {
	SignIn(ctx context.Context, email, password string) (client.SignInResult, error)
	SignUp(ctx context.Context, params client.SignUpParams) error
	ResolveUsername(ctx context.Context, token string) (string, error)
}

// Manager is the single source of truth for whether the user is logged in,
// and as whom. It owns the in-memory session, keeps it reconciled with the
// persisted storage collaborator, and publishes lifecycle events.
//
// Expiry is evaluated only at Initialize; there is no periodic or per-request
// revalidation while the process runs.
type Manager struct {
	api   API
	store storage.Store
	bus   *eventbus.Bus
	log   *slog.Logger

	rememberTTL time.Duration

	mu          sync.RWMutex
	state       State
	sess        Session
	initialized bool
}

// NewManager creates a session manager over the given API and storage
// collaborators. Initialize must be called exactly once before any consumer
// reads authentication state.
func NewManager(api API, store storage.Store, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Manager{
		api:         api,
		store:       store,
		bus:         cfg.Bus,
		log:         cfg.Logger,
		rememberTTL: cfg.RememberMeTTL,
		state:       StateUninitialized,
	}
}

var persistedKeys = []string{
	storage.KeyToken,
	storage.KeyUsername,
	storage.KeyUserData,
	storage.KeyExpiresAt,
}

// Initialize reads the persisted token, user data and expiry, and resolves
// the initial authentication state. A persisted expiry in the past purges
// the stored fields and yields unauthenticated. Must complete before any
// screen renders its authenticated or unauthenticated branch.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return ErrAlreadyInitialized
	}
	m.initialized = true
	m.state = StateLoading

	token, err := m.store.Get(ctx, storage.KeyToken)
	if err != nil {
		m.state = StateUnauthenticated
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		m.log.Error("read persisted token", logger.Error(err))
		return apperrors.Wrap(err, "restore session")
	}

	if expiresAt, ok := m.readExpiry(ctx); ok && time.Now().After(expiresAt) {
		if err := m.store.Delete(ctx, persistedKeys...); err != nil {
			m.log.Error("purge expired session", logger.Error(err))
		}
		m.state = StateUnauthenticated
		m.publish(eventbus.EventSessionExpired, eventbus.SessionEventData{})
		return nil
	}

	sess := Session{Token: token, User: m.readUser(ctx)}
	if expiresAt, ok := m.readExpiry(ctx); ok {
		sess.ExpiresAt = expiresAt
	}

	m.sess = sess
	m.state = StateAuthenticated
	m.publish(eventbus.EventSessionRestored, eventbus.SessionEventData{Username: sess.Username()})
	return nil
}

func (m *Manager) readExpiry(ctx context.Context) (time.Time, bool) {
	raw, err := m.store.Get(ctx, storage.KeyExpiresAt)
	if err != nil {
		return time.Time{}, false
	}
	expiresAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		m.log.Warn("malformed persisted expiry", slog.String("value", raw))
		return time.Time{}, false
	}
	return expiresAt, true
}

func (m *Manager) readUser(ctx context.Context) client.User {
	raw, err := m.store.Get(ctx, storage.KeyUserData)
	if err != nil {
		return nil
	}
	var user client.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn("malformed persisted user data", logger.Error(err))
		return nil
	}
	if user.Username() == "" {
		if name, err := m.store.Get(ctx, storage.KeyUsername); err == nil && name != "" {
			user.SetUsername(name)
		}
	}
	return user
}

type signInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// SignInOption tunes a single sign-in attempt.
type SignInOption func(*signInOptions)

type signInOptions struct {
	rememberMe bool
}

// WithRememberMe persists an expiry so the session survives restarts only
// for the configured remember-me window.
func WithRememberMe() SignInOption {
	return func(o *signInOptions) { o.rememberMe = true }
}

// SignIn authenticates against the remote API and establishes the session.
// Validation failures surface before any network call. The follow-up
// username resolution is non-fatal: sign-in succeeds with a blank username
// if it fails. The returned error's message is suitable for direct display.
func (m *Manager) SignIn(ctx context.Context, email, password string, opts ...SignInOption) error {
	if err := validator.Validate(signInInput{Email: email, Password: password}); err != nil {
		return apperrors.Validation(err.Error())
	}

	var options signInOptions
	for _, opt := range opts {
		opt(&options)
	}

	m.setState(StateLoading)

	result, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		m.setState(StateUnauthenticated)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Transport("Login failed", err)
	}

	user := result.User
	if user == nil {
		user = client.User{}
	}

	// The username lives behind a second authenticated call. Its failure
	// must not fail the sign-in that just succeeded.
	username, err := m.api.ResolveUsername(ctx, result.Token)
	if err != nil {
		m.log.Warn("username resolution failed after sign-in", logger.Error(err))
		username = ""
	}
	if username != "" {
		user.SetUsername(username)
	}

	sess := Session{Token: result.Token, User: user}
	if options.rememberMe {
		sess.ExpiresAt = time.Now().Add(m.rememberTTL)
	}

	if err := m.persist(ctx, sess, username); err != nil {
		m.setState(StateUnauthenticated)
		return apperrors.Transport("Login failed", err)
	}

	m.mu.Lock()
	m.sess = sess
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.publish(eventbus.EventSessionSignedIn, eventbus.SessionEventData{Username: username})
	return nil
}

func (m *Manager) persist(ctx context.Context, sess Session, username string) error {
	if err := m.store.Set(ctx, storage.KeyToken, sess.Token); err != nil {
		return apperrors.Wrap(err, "persist token")
	}
	if err := m.store.Set(ctx, storage.KeyUsername, username); err != nil {
		return apperrors.Wrap(err, "persist username")
	}
	userData, err := json.Marshal(sess.User)
	if err != nil {
		return apperrors.Wrap(err, "encode user data")
	}
	if err := m.store.Set(ctx, storage.KeyUserData, string(userData)); err != nil {
		return apperrors.Wrap(err, "persist user data")
	}
	if sess.ExpiresAt.IsZero() {
		// A previous remember-me login may have left an expiry behind.
		if err := m.store.Delete(ctx, storage.KeyExpiresAt); err != nil {
			return apperrors.Wrap(err, "clear expiry")
		}
		return nil
	}
	if err := m.store.Set(ctx, storage.KeyExpiresAt, sess.ExpiresAt.Format(time.RFC3339)); err != nil {
		return apperrors.Wrap(err, "persist expiry")
	}
	return nil
}

type signUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Username string `validate:"required"`
}

// SignUp registers a new account. No session is established: activation may
// require out-of-band email verification.
func (m *Manager) SignUp(ctx context.Context, params client.SignUpParams) error {
	input := signUpInput{Email: params.Email, Password: params.Password, Username: params.Username}
	if err := validator.Validate(input); err != nil {
		return apperrors.Validation(err.Error())
	}

	if err := m.api.SignUp(ctx, params); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Transport("Registration failed", err)
	}
	return nil
}

// Logout clears the persisted fields and transitions to unauthenticated.
// The state transition happens unconditionally: a storage failure is logged
// and returned, but never leaves the manager authenticated.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Delete(ctx, persistedKeys...)
	if err != nil {
		m.log.Error("clear persisted session", logger.Error(err))
	}

	m.mu.Lock()
	m.sess = Session{}
	m.state = StateUnauthenticated
	m.mu.Unlock()

	m.publish(eventbus.EventSessionSignedOut, eventbus.SessionEventData{})
	return err
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a non-expired token is held in memory.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated && m.sess.Token != "" && !m.sess.IsExpired()
}

// Current returns a copy of the current session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// Username returns the current session's username, or "".
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Username()
}

// Token returns the current bearer token, or "". Implements the client's
// TokenProvider so authenticated requests pick up credentials automatically.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Token
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) publish(topic string, data eventbus.SessionEventData) {
	if m.bus != nil {
		m.bus.Publish(topic, data)
	}
}
