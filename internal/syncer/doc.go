// Package syncer keeps the local state in step with the remote service.
//
// The Repository owns the hierarchical load chain (homes, rooms of the
// active home, devices of the active home) plus the session lifecycle:
// login, register, logout. It publishes every completed stage to the
// state store as it lands, so a failure part-way leaves earlier stages
// usable rather than wiping the screen. Only one chain runs at a time;
// a concurrent request is rejected with ErrSyncInFlight.
package syncer
