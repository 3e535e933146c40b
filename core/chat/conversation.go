// Package chat holds the message list state of a conversation: sorted
// fetches, optimistic sends with synthetic-id temporary entries, and
// merge-based reconciliation against the authoritative server list.
package chat

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/core/optimistic"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
)

// API is the slice of the remote client a conversation depends on.
type API interface {
	FetchMessages(ctx context.Context, chatID string) ([]client.Message, error)
	SendMessage(ctx context.Context, msg client.Message) error
}

// Identity answers who is acting, for message attribution and auth gating.
type Identity interface {
	IsAuthenticated() bool
	Username() string
}

// Message is a chat entry as the UI sees it: the wire message plus the
// synthetic identifier and pending marker of the optimistic protocol.
type Message struct {
	client.Message

	// UUID is the locally generated identifier. It is the only stable handle
	// on the entry until the server confirms the send.
	UUID string

	// Pending is true while the send awaits server acknowledgment.
	Pending bool
}

// Config holds conversation construction parameters.
type Config struct {
	Bus     *eventbus.Bus
	Logger  *slog.Logger
	Timeout time.Duration
}

// Option is a functional option for configuring a conversation.
type Option func(*Config)

// WithEventBus sets the bus for mutation failure notifications.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(c *Config) { c.Bus = bus }
}

// WithLogger sets the conversation's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTimeout sets the per-send remote call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// Conversation owns the in-memory message list of one chat.
type Conversation struct {
	chatID   string
	api      API
	identity Identity
	coord    *optimistic.Coordinator[string]

	mu       sync.RWMutex
	messages []Message
}

// New creates a conversation for the given chat.
func New(chatID string, api API, identity Identity, opts ...Option) *Conversation {
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

	return &Conversation{
		chatID:   chatID,
		api:      api,
		identity: identity,
		coord:    optimistic.New[string](coordOpts...),
	}
}

// Refresh replaces the message list with the authoritative server state,
// sorted by creation time ascending. Pending entries are preserved: a
// refresh racing an in-flight send must not erase the optimistic entry.
func (c *Conversation) Refresh(ctx context.Context) error {
	fetched, err := c.api.FetchMessages(ctx, c.chatID)
	if err != nil {
		return apperrors.Wrap(err, "refresh messages")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := confirm(fetched)
	for _, m := range c.messages {
		if m.Pending && !containsEcho(fetched, m) {
			merged = append(merged, m)
		}
	}
	sortByCreatedAt(merged)
	c.messages = merged
	return nil
}

// Messages returns a copy of the current message list.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send delivers a message optimistically: a temporary entry with a synthetic
// id appears immediately, and is reconciled with the authoritative list once
// the server acknowledges. On failure the entry is removed entirely, leaving
// the list exactly as before.
func (c *Conversation) Send(ctx context.Context, text string) (*optimistic.Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("Please enter a message")
	}
	if !c.identity.IsAuthenticated() {
		return nil, apperrors.Unauthorized("Please sign in to send messages")
	}

	temp := Message{
		Message: client.Message{
			ChatID:        c.chatID,
			Text:          text,
			OwnerUsername: c.identity.Username(),
			CreatedAt:     time.Now().UTC(),
		},
		UUID:    uuid.NewString(),
		Pending: true,
	}

	// Each send is its own target: two quick messages may be in flight
	// concurrently, and the synchronous appends keep them in issue order.
	return c.coord.Apply(ctx, temp.UUID, optimistic.Mutation{
		Kind:    "message",
		Message: "Failed to send message",
		Apply: func() {
			c.mu.Lock()
			c.messages = append(c.messages, temp)
			c.mu.Unlock()
		},
		Rollback: func() {
			c.remove(temp.UUID)
		},
		Call: func(ctx context.Context) error {
			return c.api.SendMessage(ctx, temp.Message)
		},
		OnSuccess: func(ctx context.Context) error {
			return c.reconcile(ctx, temp)
		},
	})
}

// reconcile replaces the temporary entry with server-confirmed data. The
// send endpoint does not echo the created entity, so the authoritative
// collection is refetched and merged: when the server list carries the echo
// the temporary entry is dropped, otherwise it is retained confirmed.
func (c *Conversation) reconcile(ctx context.Context, temp Message) error {
	fetched, err := c.api.FetchMessages(ctx, c.chatID)
	if err != nil {
		// The send itself succeeded; keep the entry, just confirmed.
		c.confirmEntry(temp.UUID)
		return apperrors.Wrap(err, "reconcile messages")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := confirm(fetched)
	for _, m := range c.messages {
		if !m.Pending || m.UUID == temp.UUID {
			continue
		}
		if !containsEcho(fetched, m) {
			merged = append(merged, m)
		}
	}
	if !containsEcho(fetched, temp) {
		confirmed := temp
		confirmed.Pending = false
		merged = append(merged, confirmed)
	}
	sortByCreatedAt(merged)
	c.messages = merged
	return nil
}

func (c *Conversation) confirmEntry(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.messages {
		if c.messages[i].UUID == id {
			c.messages[i].Pending = false
			return
		}
	}
}

func (c *Conversation) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.messages[:0]
	for _, m := range c.messages {
		if m.UUID != id {
			kept = append(kept, m)
		}
	}
	c.messages = kept
}

func confirm(fetched []client.Message) []Message {
	out := make([]Message, 0, len(fetched))
	for _, m := range fetched {
		out = append(out, Message{Message: m, UUID: uuid.NewString()})
	}
	return out
}

// containsEcho reports whether the authoritative list already carries the
// optimistic entry, matched by owner and text.
func containsEcho(fetched []client.Message, m Message) bool {
	for _, f := range fetched {
		if f.OwnerUsername == m.OwnerUsername && f.Text == m.Text {
			return true
		}
	}
	return false
}

func sortByCreatedAt(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
