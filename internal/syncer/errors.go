package syncer

import "errors"

var (
	// ErrSyncInFlight is returned when LoadAll is called while a
	// previous LoadAll is still running. The caller should wait for
	// the running sync rather than stack another behind it.
	ErrSyncInFlight = errors.New("syncer: sync already in flight")

	// ErrNotLoggedIn is returned when an operation requires a session
	// and none exists. No network traffic is attempted.
	ErrNotLoggedIn = errors.New("syncer: not logged in")

	// ErrClosed is returned after Close; the repository no longer
	// touches the state store.
	ErrClosed = errors.New("syncer: repository closed")

	// ErrUnknownHome is returned when switching to a home the server
	// did not report.
	ErrUnknownHome = errors.New("syncer: unknown home")
)
