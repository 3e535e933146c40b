package eventbus

// Topics published by the session manager and feature coordinators.
const (
	// Session lifecycle
	EventSessionSignedIn  = "session:signed_in"
	EventSessionSignedOut = "session:signed_out"
	EventSessionExpired   = "session:expired"
	EventSessionRestored  = "session:restored"

	// Optimistic mutations
	EventMutationFailed = "mutation:failed"
)

// SessionEventData accompanies session lifecycle events.
type SessionEventData struct {
	Username string `json:"username,omitempty"`
}

// MutationEventData accompanies mutation failure events and carries the
// user-visible message for the transient notification.
type MutationEventData struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Message string `json:"message"`
}
