// Package optimistic implements the reusable mutation coordinator behind
// likes, comments, follows and message sends: a local state change applied
// immediately, a remote call resolving asynchronously, and a deterministic
// rollback when the call fails.
package optimistic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/async"
	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
	"github.com/fitcheck/fitcheck-go/pkg/logger"
)

// Mutation describes a single optimistic change on one target.
//
// Apply and Rollback run on the caller's goroutine and under the
// coordinator's bookkeeping, so Apply's effect is observable the moment
// Apply (the coordinator method) returns. Rollback must restore exactly the
// baseline captured before Apply ran. OnSuccess, when set, reconciles local
// state with the authoritative server outcome after Call returns nil.
type Mutation struct {
	// Kind names the mutation class for events and logs, e.g. "like".
	Kind string

	// Apply performs the immediately-visible local change.
	Apply func()

	// Rollback reverts the local change to its pre-Apply baseline.
	Rollback func()

	// Call performs the remote request. A non-nil error, including a
	// timeout, triggers Rollback.
	Call func(ctx context.Context) error

	// OnSuccess optionally reconciles local state with server state once
	// Call succeeds. Errors here are surfaced but do not roll back: the
	// remote mutation already happened.
	OnSuccess func(ctx context.Context) error

	// Message is the user-visible text published when the mutation fails.
	Message string
}

// Config holds coordinator configuration.
type Config struct {
	// Timeout bounds each remote call. Timeout counts as failure and rolls
	// the local change back.
	Timeout time.Duration

	Bus    *eventbus.Bus
	Logger *slog.Logger
}

func defaultConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
		Logger:  slog.Default(),
	}
}

// Option is a functional option for configuring the coordinator.
type Option func(*Config)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithEventBus sets the bus on which mutation failures are published.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(c *Config) { c.Bus = bus }
}

// WithLogger sets the coordinator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Coordinator serializes optimistic mutations per target: at most one
// mutation of any kind may be in flight for a given key. Overlapping
// attempts are rejected with ErrMutationInFlight rather than queued, so two
// taps can never compute contradictory deltas. Mutations on distinct targets
// proceed concurrently with no shared lock beyond the in-flight set.
type Coordinator[K comparable] struct {
	timeout time.Duration
	bus     *eventbus.Bus
	log     *slog.Logger

	mu       sync.Mutex
	inflight map[K]struct{}
}

// New creates a coordinator keyed by target identifier.
func New[K comparable](opts ...Option) *Coordinator[K] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Coordinator[K]{
		timeout:  cfg.Timeout,
		bus:      cfg.Bus,
		log:      cfg.Logger,
		inflight: make(map[K]struct{}),
	}
}

// Pending is the handle to a mutation's remote half.
type Pending struct {
	future *async.Future
}

// Await blocks until the remote call and any rollback or reconciliation
// have completed, and returns the final outcome. Screens never call this on
// their render path; it exists for composition-root shutdown and tests.
func (p *Pending) Await() error {
	return p.future.Await()
}

// IsComplete reports whether the mutation has settled, without blocking.
func (p *Pending) IsComplete() bool {
	return p.future.IsComplete()
}

// InFlight reports whether a mutation is currently pending on the key.
func (c *Coordinator[K]) InFlight(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

// Apply runs the optimistic protocol for one mutation: capture the key,
// apply the local change synchronously, then resolve the remote call on its
// own goroutine. By the time Apply returns, the local change is visible.
//
// Returns ErrMutationInFlight, without applying anything, when the target
// already has a pending mutation.
func (c *Coordinator[K]) Apply(ctx context.Context, key K, m Mutation) (*Pending, error) {
	c.mu.Lock()
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		return nil, ErrMutationInFlight
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	m.Apply()

	future := async.Exec(ctx, func(ctx context.Context) error {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		if err := m.Call(callCtx); err != nil {
			m.Rollback()
			c.notifyFailure(key, m, err)
			return err
		}

		if m.OnSuccess != nil {
			if err := m.OnSuccess(ctx); err != nil {
				c.log.Warn("mutation reconciliation failed",
					slog.String("kind", m.Kind),
					logger.Error(err),
				)
				return err
			}
		}
		return nil
	})

	return &Pending{future: future}, nil
}

func (c *Coordinator[K]) notifyFailure(key K, m Mutation, err error) {
	message := m.Message
	if message == "" {
		message = apperrors.UserMessage(err, "Something went wrong. Please try again.")
	}

	c.log.Warn("optimistic mutation rolled back",
		slog.String("kind", m.Kind),
		slog.Any("target", key),
		logger.Error(err),
	)

	if c.bus != nil {
		c.bus.Publish(eventbus.EventMutationFailed, eventbus.MutationEventData{
			Kind:    m.Kind,
			Target:  keyString(key),
			Message: message,
		})
	}
}

func keyString[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key)
}
