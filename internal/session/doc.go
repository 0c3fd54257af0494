// Package session persists client credentials and connection state.
//
// A single session row holds the bearer token, username, remote endpoint
// URL, and the identifier of the active home. The SQLite-backed store
// survives restarts; the in-memory store backs tests. Token expiry is
// inspected locally (without signature verification) so callers can
// treat a stale JWT as logged out before the server rejects it.
package session
