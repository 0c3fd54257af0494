// Package gateway is the typed HTTP client for the remote service.
//
// Every operation resolves the base URL and bearer token from the
// session store at call time, attaches a request id, and returns either
// a decoded response or a discriminated *Error. Callers branch on
// Error.Kind: unauthenticated and unauthorized demand a fresh login,
// network failures mark the client offline, decode failures mean a
// protocol mismatch worth logging loudly.
//
// Route templates are centralised in Routes and overridable from
// configuration for deployments behind a path prefix.
package gateway
