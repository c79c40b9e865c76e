package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors surfaced by data-access operations.
var (
	// ErrNoToken means a session-scoped query was attempted with no
	// session token attached. No network call is made.
	ErrNoToken = errors.New("api: no session token attached")

	// ErrInvalidResponse means the server answered 2xx but the payload
	// failed schema validation. The operation fails rather than handing
	// back partially-typed data.
	ErrInvalidResponse = errors.New("api: response failed validation")
)

// APIError is a non-2xx response from the backend. The raw body is carried
// so callers can surface server-provided detail.
type APIError struct {
	StatusCode int
	Body       []byte
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s (status: %d)", e.Message, e.StatusCode)
}

// IsAuthRejection reports whether err is the server rejecting our
// credential. On session-scoped queries this triggers full session
// teardown.
func IsAuthRejection(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.StatusCode == http.StatusForbidden
}
