package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any 401 the backend returns after the
	// dispatcher has exhausted its one refresh-and-retry.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired means a refresh was attempted and failed; the whole
	// session has been cleared and the user must log in again. Callers must
	// treat this as "session ended", not as a transient error.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrUnavailable wraps transport-level failures (connection refused,
	// DNS, timeouts at the dial layer).
	ErrUnavailable = errors.New("server unavailable")
)

// Error is a backend-provided error response. Domain errors (validation,
// not-found, server errors) pass through the dispatcher untouched and reach
// the caller in this form.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 Error.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}
