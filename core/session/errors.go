package session

import "errors"

// ErrAlreadyInitialized is returned when Initialize is called twice.
var ErrAlreadyInitialized = errors.New("session manager already initialized")
