package api

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned on upstream 401. Callers must not retry the
	// request; they surface a login-required condition instead.
	ErrAuthRequired = errors.New("login required")

	// ErrNotFound is returned on upstream 404 so single-entry lookups can
	// distinguish "no data for this key" from failure.
	ErrNotFound = errors.New("not found")
)

// StatusError reports a non-2xx upstream response or a transport failure
// (including the client timeout).
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream request failed: %d %s", e.Status, e.Message)
	}
	return "upstream request failed: " + e.Message
}
