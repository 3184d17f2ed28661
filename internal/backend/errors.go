package backend

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTransport marks failures where no HTTP response was received.
	ErrTransport = errors.New("backend unreachable")
	// ErrUnauthorized marks 401/403 responses: missing, invalid or expired token.
	ErrUnauthorized = errors.New("not authorized by backend")
)

// APIError is a non-2xx response. Message is the backend's own text,
// passed through as-is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, message string) error {
	err := error(&APIError{StatusCode: status, Message: message})
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		err = errors.Mark(err, ErrUnauthorized)
	}
	return err
}

// StatusCode reports the backend status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}
