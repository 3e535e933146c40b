package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Chat is a conversation summary from the chat list endpoint.
type Chat struct {
	ChatID        string    `json:"chat_id"`
	Participant   string    `json:"participant"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type chatsResponse struct {
	Chats []Chat `json:"chats"`
}

// FetchChats returns the authenticated user's conversations.
func (c *Client) FetchChats(ctx context.Context) ([]Chat, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/chats", nil, "")
	if err != nil {
		return nil, err
	}

	var resp chatsResponse
	if err := c.doJSON(ctx, req, "fetch-chats", &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// Message is a single chat message as returned by the messages endpoint.
type Message struct {
	ChatID        string    `json:"chat_id"`
	Text          string    `json:"text"`
	OwnerUsername string    `json:"ownerUsername"`
	CreatedAt     time.Time `json:"created_at"`
}

// FetchMessages returns all messages of a conversation. The server returns a
// bare array; ordering is the caller's concern.
func (c *Client) FetchMessages(ctx context.Context, chatID string) ([]Message, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(chatID), nil, "")
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := c.doJSON(ctx, req, "fetch-messages", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage delivers a message. HTTP 200 is the only acknowledgment; the
// created entity is not echoed back.
func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/messages", msg, "")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, "send-message", nil)
}
