package chat

import (
	"context"
	"sync"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
)

// InboxAPI is the slice of the remote client the chat list depends on.
type InboxAPI interface {
	FetchChats(ctx context.Context) ([]client.Chat, error)
}

// Inbox holds the conversation list of the messages screen.
type Inbox struct {
	api InboxAPI

	mu    sync.RWMutex
	chats []client.Chat
}

// NewInbox creates an inbox over the given API.
func NewInbox(api InboxAPI) *Inbox {
	return &Inbox{api: api}
}

// Refresh replaces the chat list with the authoritative server state.
func (i *Inbox) Refresh(ctx context.Context) error {
	chats, err := i.api.FetchChats(ctx)
	if err != nil {
		return apperrors.Wrap(err, "refresh chats")
	}

	i.mu.Lock()
	i.chats = chats
	i.mu.Unlock()
	return nil
}

// Chats returns a copy of the current chat list.
func (i *Inbox) Chats() []client.Chat {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]client.Chat, len(i.chats))
	copy(out, i.chats)
	return out
}
