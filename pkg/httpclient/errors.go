package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
)

// envelope mirrors the {success, message} body shape the FitCheck API uses
// for both success acks and failures.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. If the body carries the standard {success, message}
// envelope the server's message is preserved verbatim; otherwise the status
// code and raw body become the message, classified by status the same way.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", operation, resp.StatusCode, err)
	}

	var env envelope
	if json.Unmarshal(bodyBytes, &env) == nil && env.Message != "" {
		return mapStatusError(resp.StatusCode, env.Message)
	}

	message := fmt.Sprintf("%s returned status %d: %s", operation, resp.StatusCode, string(bodyBytes))
	return mapStatusError(resp.StatusCode, message)
}

func mapStatusError(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Unauthorized(message)
	case status == http.StatusNotFound:
		return apperrors.NotFound(message)
	case status == http.StatusBadRequest:
		return apperrors.Validation(message)
	case status >= 500:
		return apperrors.Transport(message, fmt.Errorf("server error %d", status))
	default:
		return &apperrors.AppError{
			Code:    "API_ERROR",
			Message: message,
			Status:  status,
		}
	}
}

