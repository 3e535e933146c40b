// Package client implements the typed HTTP client for the remote FitCheck
// API. It owns the wire contracts (request and response shapes) and attaches
// bearer credentials; all screen-level state lives in the core packages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fitcheck/fitcheck-go/pkg/httpclient"
)

// Doer abstracts the underlying HTTP execution so the circuit-breaker
// wrapper and the plain retrying client are interchangeable.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TokenProvider supplies the bearer token for authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenProvider interface {
	Token() string
}

// TokenFunc adapts a plain function to the TokenProvider interface.
type TokenFunc func() string

// Token implements TokenProvider.
func (f TokenFunc) Token() string { return f() }

// Config holds client construction parameters.
type Config struct {
	BaseURL string
	Tokens  TokenProvider
	Logger  *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithTokenProvider sets the bearer token source.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Config) { c.Tokens = tp }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Client is the typed FitCheck API client.
type Client struct {
	baseURL string
	http    Doer
	tokens  TokenProvider
	log     *slog.Logger
}

// New creates an API client against the given base URL.
func New(baseURL string, doer Doer, opts ...Option) *Client {
	cfg := Config{BaseURL: baseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		http:    doer,
		tokens:  cfg.Tokens,
		log:     log,
	}
}

// SetTokenProvider installs the bearer token source after construction.
// The session manager and the client reference each other, so the provider
// is wired once both exist at the composition root.
func (c *Client) SetTokenProvider(tp TokenProvider) {
	c.tokens = tp
}

// envelope is the {success, message} shape shared by auth and ack responses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// newRequest builds a request with JSON content type and, unless overridden,
// the current bearer token.
func (c *Client) newRequest(ctx context.Context, method, path string, body any, tokenOverride string) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := tokenOverride
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doJSON executes the request and decodes a 2xx response body into out.
// Non-2xx responses are translated into AppErrors via the shared envelope
// parser. out may be nil for ack-only endpoints.
func (c *Client) doJSON(ctx context.Context, req *http.Request, operation string, out any) error {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, operation)
	}

	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}
