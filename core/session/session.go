package session

import (
	"time"

	"github.com/fitcheck/fitcheck-go/client"
)

// Session is the authenticated identity held by the client for the current
// login: a bearer token, the profile attributes bound to it, and an optional
// local expiry.
type Session struct {
	// Token is the opaque bearer credential. Empty means unauthenticated.
	Token string

	// User holds the profile attributes associated with the token. It may be
	// partially populated right after sign-in and enriched by the follow-up
	// username resolution.
	User client.User

	// ExpiresAt bounds the persisted session when remember-me was chosen at
	// sign-in. The zero value means no local expiry.
	ExpiresAt time.Time
}

// IsExpired reports whether the session carries an expiry that has passed.
// Sessions without an expiry never expire locally.
func (s Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Username returns the username attribute of the session user, or "".
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username()
}

// State identifies where the manager is in its lifecycle.
type State int

const (
	// StateUninitialized means Initialize has not been called yet.
	StateUninitialized State = iota
	// StateLoading is the transient state while persisted credentials are
	// read or a sign-in is in flight. It is distinct from both terminal
	// states: screens must not render an authenticated or unauthenticated
	// branch until it resolves.
	StateLoading
	// StateUnauthenticated means no valid session is held.
	StateUnauthenticated
	// StateAuthenticated means a non-expired token is held in memory.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
