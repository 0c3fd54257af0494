// Package database manages the local SQLite database for Gray Logic Remote.
//
// The local database is small and single-purpose: it persists the session
// (auth token, username, server endpoint, active home id) across process
// restarts, and records observed device state changes for offline history.
// The remote snapshot itself is never persisted here; it is rebuilt from
// the network on every session.
//
// Schema migrations are embedded into the binary via the migrations package
// and applied with Migrate on startup.
package database
