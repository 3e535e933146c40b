// Package feed holds the post list state of the home screen: refresh from
// the remote API, optimistic like toggling, and optimistic comment counting.
package feed

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/core/optimistic"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
)

// API is the slice of the remote client the feed depends on.
type API interface {
	FetchPosts(ctx context.Context) ([]client.Post, error)
	AddPostLike(ctx context.Context, postID string) error
	SubmitComment(ctx context.Context, postID string, params client.CommentParams) error
	FetchComments(ctx context.Context, postID string) ([]client.Comment, error)
	CreatePost(ctx context.Context, params client.CreatePostParams) error
}

// Identity answers who is acting, for comment attribution and auth gating.
type Identity interface {
	IsAuthenticated() bool
	Username() string
}

// Config holds feed construction parameters.
type Config struct {
	Bus     *eventbus.Bus
	Logger  *slog.Logger
	Timeout time.Duration
}

// Option is a functional option for configuring the feed.
type Option func(*Config)

// WithEventBus sets the bus for mutation failure notifications.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(c *Config) { c.Bus = bus }
}

// WithLogger sets the feed's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTimeout sets the per-mutation remote call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// Feed owns the in-memory post list the UI renders. All mutations go through
// the optimistic coordinator, so a like is visible the instant it is tapped
// and reverts exactly to its baseline if the remote call fails.
type Feed struct {
	api      API
	identity Identity
	coord    *optimistic.Coordinator[string]

	mu    sync.RWMutex
	posts []client.Post
}

// New creates a feed over the given API.
func New(api API, identity Identity, opts ...Option) *Feed {
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

	return &Feed{
		api:      api,
		identity: identity,
		coord:    optimistic.New[string](coordOpts...),
	}
}

// Refresh replaces the post list with the authoritative server state. Any
// optimistic drift (e.g. a clamped counter) is corrected here.
func (f *Feed) Refresh(ctx context.Context) error {
	posts, err := f.api.FetchPosts(ctx)
	if err != nil {
		return apperrors.Wrap(err, "refresh feed")
	}

	f.mu.Lock()
	f.posts = posts
	f.mu.Unlock()
	return nil
}

// Posts returns a copy of the current post list.
func (f *Feed) Posts() []client.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]client.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// Post returns the post with the given id, if present.
func (f *Feed) Post(postID string) (client.Post, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, p := range f.posts {
		if p.PostID == postID {
			return p, true
		}
	}
	return client.Post{}, false
}

// ToggleLike flips the like state of a post optimistically and confirms it
// remotely. A second toggle while one is in flight returns
// optimistic.ErrMutationInFlight and changes nothing.
func (f *Feed) ToggleLike(ctx context.Context, postID string) (*optimistic.Pending, error) {
	f.mu.RLock()
	baseline, ok := f.findLocked(postID)
	f.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}

	wasLiked := baseline.IsLiked
	baseLikes := baseline.TotalLikes

	return f.coord.Apply(ctx, "like:"+postID, optimistic.Mutation{
		Kind:    "like",
		Message: "Failed to update like. Please try again.",
		Apply: func() {
			f.updatePost(postID, func(p *client.Post) {
				p.IsLiked = !wasLiked
				if wasLiked {
					p.TotalLikes = clampZero(p.TotalLikes - 1)
				} else {
					p.TotalLikes++
				}
			})
		},
		Rollback: func() {
			f.updatePost(postID, func(p *client.Post) {
				p.IsLiked = wasLiked
				p.TotalLikes = baseLikes
			})
		},
		Call: func(ctx context.Context) error {
			return f.api.AddPostLike(ctx, postID)
		},
	})
}

// AddComment submits a comment and bumps the post's comment counter
// optimistically. The created entity is not echoed back by the server, so
// reconciliation refetches the comment collection.
func (f *Feed) AddComment(ctx context.Context, postID, text string) (*optimistic.Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("Please enter a comment")
	}
	if _, ok := f.Post(postID); !ok {
		return nil, apperrors.NotFound("post not found")
	}

	username := f.identity.Username()
	if username == "" {
		username = "Anonymous"
	}

	baseline, _ := f.Post(postID)
	baseComments := baseline.TotalComments

	params := client.CommentParams{
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Username:  username,
	}

	return f.coord.Apply(ctx, "comment:"+postID, optimistic.Mutation{
		Kind:    "comment",
		Message: "Failed to add comment. Please try again.",
		Apply: func() {
			f.updatePost(postID, func(p *client.Post) {
				p.TotalComments++
			})
		},
		Rollback: func() {
			f.updatePost(postID, func(p *client.Post) {
				p.TotalComments = baseComments
			})
		},
		Call: func(ctx context.Context) error {
			return f.api.SubmitComment(ctx, postID, params)
		},
	})
}

// CreatePost publishes a new post and refreshes the list so it shows up at
// its server-assigned position. The created entity is not echoed back, so
// there is no optimistic entry to reconcile. Requires authentication.
func (f *Feed) CreatePost(ctx context.Context, params client.CreatePostParams) error {
	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		return apperrors.Validation("Please enter a title")
	}
	if !f.identity.IsAuthenticated() {
		return apperrors.Unauthorized("Please sign in to create posts")
	}
	if params.CreatedAt.IsZero() {
		params.CreatedAt = time.Now().UTC()
	}

	if err := f.api.CreatePost(ctx, params); err != nil {
		return apperrors.Wrap(err, "create post")
	}
	return f.Refresh(ctx)
}

// Comments fetches the authoritative comment list of a post.
func (f *Feed) Comments(ctx context.Context, postID string) ([]client.Comment, error) {
	comments, err := f.api.FetchComments(ctx, postID)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetch comments")
	}
	return comments, nil
}

func (f *Feed) findLocked(postID string) (client.Post, bool) {
	for _, p := range f.posts {
		if p.PostID == postID {
			return p, true
		}
	}
	return client.Post{}, false
}

func (f *Feed) updatePost(postID string, fn func(*client.Post)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.posts {
		if f.posts[i].PostID == postID {
			fn(&f.posts[i])
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
