package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common failure classes.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrTransport      = errors.New("transport failure")
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal error")
)

// AppError represents a structured application error carrying a user-facing
// message. Operations that map to a discrete user action return an AppError
// instead of letting transport details leak past the caller.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates an error for input rejected before any network call.
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// Authentication creates an error for a server-side auth rejection. The
// message is surfaced to the user verbatim.
func Authentication(message string) *AppError {
	return &AppError{
		Code:    "AUTHENTICATION_FAILED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrAuthentication,
	}
}

// Transport creates an error for a request that failed to complete: network
// error, timeout, or non-success HTTP status. The message is a generic
// user-facing fallback; the underlying cause is preserved for logging.
func Transport(message string, err error) *AppError {
	return &AppError{
		Code:    "TRANSPORT_FAILURE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrTransport, err),
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage extracts the user-facing message from an error, falling back
// to the provided default for errors without one.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// HTTPStatus returns the HTTP status code associated with the error, or 500
// for errors without one.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
