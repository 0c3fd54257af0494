package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure so callers can branch on the class
// of problem without string-matching messages or HTTP status codes.
type Kind string

const (
	// KindUnauthenticated means no token is stored locally; the call
	// never left the device.
	KindUnauthenticated Kind = "unauthenticated"

	// KindUnauthorized means the server rejected the presented token (401).
	KindUnauthorized Kind = "unauthorized"

	// KindNotFound means the requested entity does not exist (404).
	KindNotFound Kind = "not_found"

	// KindServer means the server failed internally (5xx).
	KindServer Kind = "server"

	// KindNetwork means the request could not be completed at the
	// transport level: DNS, connect, TLS, timeout.
	KindNetwork Kind = "network"

	// KindDecode means the server answered but the response body could
	// not be decoded into the expected shape.
	KindDecode Kind = "decode"

	// KindValidation means the request was rejected locally before
	// any network traffic.
	KindValidation Kind = "validation"
)

// Error is the failure type returned by every gateway operation.
//
// Kind is always set. Status carries the HTTP status code when the
// server answered, and is 0 for local and transport failures.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway: %s: %s (HTTP %d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: %s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from an error returned by a gateway
// operation. The second return is false when err did not originate
// from the gateway.
func KindOf(err error) (Kind, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return "", false
}

// IsAuthFailure reports whether err means the stored credentials are
// unusable, either because none exist or because the server rejected
// them. Both cases require a fresh login to recover.
func IsAuthFailure(err error) bool {
	kind, ok := KindOf(err)
	return ok && (kind == KindUnauthenticated || kind == KindUnauthorized)
}
