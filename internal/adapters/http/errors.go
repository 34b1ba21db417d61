package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dkeye/meetsync/internal/core"
)

// APIError is a non-2xx backend answer. Err holds the body decode failure
// when the backend did not send the JSON error shape.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps status codes onto the core error classes.
func (e *APIError) Is(target error) bool {
	switch target {
	case core.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case core.ErrConflict:
		return e.StatusCode == http.StatusConflict
	case core.ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

func newAPIError(status int, message string, cause error) *APIError {
	if message == "" {
		message = strings.ToLower(http.StatusText(status))
	}
	return &APIError{StatusCode: status, Message: message, Err: cause}
}
