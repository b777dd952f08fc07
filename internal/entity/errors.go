package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionInvalid is returned when the backend rejects the stored
	// credential. It triggers session invalidation and a credential purge.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrLinkNotFound is returned when the backend reports that a link
	// doesn't exist or isn't owned by the current user.
	ErrLinkNotFound = errors.New("link not found")
	// ErrCredentialNotFound is returned when the credential store holds no token.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrDeletePending is returned when a delete is requested for a link
	// that already has a delete in flight.
	ErrDeletePending = errors.New("delete already pending for link")
)

// ValidationError reports input rejected by the client or the backend,
// such as a malformed URL or a taken custom alias. Field names the rejected
// input field, matching the backend's JSON field names.
type ValidationError struct {
	Field    string
	Messages []string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", strings.Join(e.Messages, ", "))
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, strings.Join(e.Messages, ", "))
}

// TransportError wraps a network or server failure. The wrapped operation
// left previous state untouched and may be retried by the caller.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
