package backend

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no backend URL has been configured
var ErrNotConfigured = errors.New("backend URL is not configured")

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("backend returned %d", e.Code)
}

// TransportError wraps failures to reach the backend or read its answer
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message collapses any client error into the line shown to the user. The
// backend's own message wins; everything else shows the fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Msg != "" {
		return statusErr.Msg
	}
	if errors.Is(err, ErrNotConfigured) {
		return fallback + " (backend URL is not configured)"
	}
	return fallback
}
