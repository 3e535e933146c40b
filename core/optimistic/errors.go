package optimistic

import "errors"

var (
	// ErrMutationInFlight is returned when a target already has a pending
	// mutation. The caller surfaces it by keeping the control disabled; it
	// never applies a second local change.
	ErrMutationInFlight = errors.New("mutation already in flight for target")
)
