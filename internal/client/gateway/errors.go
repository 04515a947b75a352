package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind is the classification the gateway assigns to every failure.
type ErrorKind int

const (
	// KindRequestFailed covers rejected requests outside the specific
	// classifications below (typically 4xx responses with a detail message).
	KindRequestFailed ErrorKind = iota
	// KindUnauthorized is a 401: the credential is missing or stale. Triggers
	// session teardown.
	KindUnauthorized
	// KindForbidden is a 403: the identity lacks the required role.
	KindForbidden
	// KindServerError is any 5xx response.
	KindServerError
	// KindNetworkUnavailable is a transport failure with no response at all.
	KindNetworkUnavailable
)

// String names the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindServerError:
		return "server_error"
	case KindNetworkUnavailable:
		return "network_unavailable"
	default:
		return "request_failed"
	}
}

// Error is a classified gateway failure.
type Error struct {
	Kind   ErrorKind
	Status int
	Detail string
	cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return e.Kind.String()
}

// Unwrap exposes the transport cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Surface is the user-facing message for this failure. A structured detail
// from the server is surfaced verbatim; the classified kinds carry their own
// fixed wording; anything else falls back to a generic message.
func (e *Error) Surface() string {
	switch e.Kind {
	case KindUnauthorized:
		return "Session expired. Please login again."
	case KindForbidden:
		return "Access denied. Insufficient permissions."
	case KindServerError:
		return "Server error. Please try again later."
	case KindNetworkUnavailable:
		return "Network error. Please check your connection."
	}
	if e.Detail != "" {
		return e.Detail
	}
	return "An unexpected error occurred."
}

// KindOf extracts the classification from err, or KindRequestFailed with
// ok=false when err is not a gateway error.
func KindOf(err error) (ErrorKind, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return KindRequestFailed, false
}
