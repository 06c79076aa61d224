package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine-readable classification callers branch on.
type ErrorKind string

const (
	// KindValidation marks a bad or missing filter field. Always
	// client-correctable and detected before any I/O.
	KindValidation ErrorKind = "validation_error"

	// KindInvalidRequester marks a requester id that does not resolve to a
	// known identity in the social graph.
	KindInvalidRequester ErrorKind = "invalid_requester"

	// KindBackendUnavailable marks a filter routed to a backend with no
	// live connection.
	KindBackendUnavailable ErrorKind = "backend_unavailable"

	// KindExecutionFailed marks a backend error mid-query. Never retried
	// automatically within the same request.
	KindExecutionFailed ErrorKind = "execution_failed"

	// KindCache marks a cache store/read failure. Always recovered locally
	// by treating the lookup as a miss; never surfaced to callers.
	KindCache ErrorKind = "cache_error"
)

// Error is the structured error surfaced by the search core. Callers receive
// a stable kind and message, never a raw backend stack trace.
type Error struct {
	Kind    ErrorKind
	Backend Backend // set for backend-scoped kinds
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err, or empty when err is not a
// domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	return ""
}

// NewValidationError reports a client-correctable filter problem.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidRequester reports an unknown requester identity.
func NewInvalidRequester(requesterID int64) *Error {
	return &Error{
		Kind:    KindInvalidRequester,
		Message: fmt.Sprintf("requester %d is not a known user", requesterID),
	}
}

// NewBackendUnavailable reports a filter routed to an unconfigured backend.
func NewBackendUnavailable(b Backend) *Error {
	return &Error{
		Kind:    KindBackendUnavailable,
		Backend: b,
		Message: fmt.Sprintf("no live connection for backend %q", b),
	}
}

// NewExecutionFailed wraps a backend failure with the backend identity.
func NewExecutionFailed(b Backend, err error) *Error {
	return &Error{
		Kind:    KindExecutionFailed,
		Backend: b,
		Message: fmt.Sprintf("backend %q query failed", b),
		Err:     err,
	}
}

// NewCacheError wraps a cache store failure.
func NewCacheError(err error) *Error {
	return &Error{Kind: KindCache, Message: "cache operation failed", Err: err}
}
