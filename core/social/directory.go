// Package social holds the user directory state: listing users and
// optimistic follow/unfollow with follower-count adjustment.
package social

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/core/optimistic"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
)

// API is the slice of the remote client the directory depends on.
type API interface {
	FetchUsers(ctx context.Context) ([]client.DirectoryUser, error)
	Follow(ctx context.Context, userID string) error
	FollowStatus(ctx context.Context, userID string) (bool, error)
}

// Identity gates follow actions on authentication.
type Identity interface {
	IsAuthenticated() bool
	Username() string
}

// Config holds directory construction parameters.
type Config struct {
	Bus     *eventbus.Bus
	Logger  *slog.Logger
	Timeout time.Duration
}

// Option is a functional option for configuring the directory.
type Option func(*Config)

// WithEventBus sets the bus for mutation failure notifications.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(c *Config) { c.Bus = bus }
}

// WithLogger sets the directory's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTimeout sets the per-mutation remote call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// Directory owns the in-memory user list of the social screen.
type Directory struct {
	api      API
	identity Identity
	coord    *optimistic.Coordinator[string]

	mu    sync.RWMutex
	users []client.DirectoryUser
}

// New creates a directory over the given API.
func New(api API, identity Identity, opts ...Option) *Directory {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	coordOpts := []optimistic.Option{}
	if cfg.Bus != nil {
		coordOpts = append(coordOpts, optimistic.WithEventBus(cfg.Bus))
	}
	if cfg.Logger != nil {
		coordOpts = append(coordOpts, optimistic.WithLogger(cfg.Logger))
	}
	if cfg.Timeout > 0 {
		coordOpts = append(coordOpts, optimistic.WithTimeout(cfg.Timeout))
	}

	return &Directory{
		api:      api,
		identity: identity,
		coord:    optimistic.New[string](coordOpts...),
	}
}

// Refresh replaces the user list with the authoritative server state.
func (d *Directory) Refresh(ctx context.Context) error {
	users, err := d.api.FetchUsers(ctx)
	if err != nil {
		return apperrors.Wrap(err, "refresh users")
	}

	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return nil
}

// Users returns a copy of the current user list.
func (d *Directory) Users() []client.DirectoryUser {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]client.DirectoryUser, len(d.users))
	copy(out, d.users)
	return out
}

// User returns the directory entry with the given id, if present.
func (d *Directory) User(userID string) (client.DirectoryUser, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.ID == userID {
			return u, true
		}
	}
	return client.DirectoryUser{}, false
}

// ToggleFollow flips the follow relationship optimistically, adjusting the
// follower counter, and confirms it remotely. Requires authentication.
func (d *Directory) ToggleFollow(ctx context.Context, userID string) (*optimistic.Pending, error) {
	if !d.identity.IsAuthenticated() {
		return nil, apperrors.Unauthorized("Please sign in to follow users")
	}

	baseline, ok := d.User(userID)
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}

	wasFollowing := baseline.IsFollowing
	baseFollowers := baseline.Followers

	return d.coord.Apply(ctx, "follow:"+userID, optimistic.Mutation{
		Kind:    "follow",
		Message: "Failed to follow user",
		Apply: func() {
			d.updateUser(userID, func(u *client.DirectoryUser) {
				u.IsFollowing = !wasFollowing
				if wasFollowing {
					u.Followers = clampZero(u.Followers - 1)
				} else {
					u.Followers++
				}
			})
		},
		Rollback: func() {
			d.updateUser(userID, func(u *client.DirectoryUser) {
				u.IsFollowing = wasFollowing
				u.Followers = baseFollowers
			})
		},
		Call: func(ctx context.Context) error {
			return d.api.Follow(ctx, userID)
		},
	})
}

// FollowStatus fetches the authoritative follow relationship with a user.
func (d *Directory) FollowStatus(ctx context.Context, userID string) (bool, error) {
	following, err := d.api.FollowStatus(ctx, userID)
	if err != nil {
		return false, apperrors.Wrap(err, "follow status")
	}
	return following, nil
}

func (d *Directory) updateUser(userID string, fn func(*client.DirectoryUser)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.users {
		if d.users[i].ID == userID {
			fn(&d.users[i])
			return
		}
	}
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
