package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store defines the interface for session persistence.
//
// All reads reflect the latest committed write. SaveSession and
// ClearSession are atomic: token and username always change together,
// so a crash can never leave them in an inconsistent pairing.
type Store interface {
	// SaveSession persists the token and username as one logical write.
	SaveSession(ctx context.Context, token, username string) error

	// ClearSession removes the token and username, ending the session.
	// The endpoint and active home id are cleared with it.
	ClearSession(ctx context.Context) error

	// Token returns the current auth token, or "" when logged out.
	Token(ctx context.Context) (string, error)

	// Username returns the logged-in username, or "" when logged out.
	Username(ctx context.Context) (string, error)

	// IsLoggedIn reports whether a non-empty, non-expired token is present.
	IsLoggedIn(ctx context.Context) bool

	// SaveEndpoint persists the remote service base URL.
	SaveEndpoint(ctx context.Context, url string) error

	// Endpoint returns the persisted base URL, or the configured default
	// when none has been saved.
	Endpoint(ctx context.Context) (string, error)

	// SaveActiveHomeID persists the identifier of the active home.
	SaveActiveHomeID(ctx context.Context, id int64) error

	// ActiveHomeID returns the persisted active home id, or NoActiveHome.
	ActiveHomeID(ctx context.Context) (int64, error)

	// Session returns the full session value in one read.
	Session(ctx context.Context) (Session, error)
}

// SQLiteStore implements Store using the local SQLite database.
//
// The session lives in a single row (id = 1); every write is an upsert
// of that row inside a transaction, which gives the atomic token/username
// pairing for free under SQLite's single-writer model.
type SQLiteStore struct {
	db              *sql.DB
	defaultEndpoint string
}

// NewSQLiteStore creates a new SQLite-backed session store.
//
// Parameters:
//   - db: Open database with the session table migrated
//   - defaultEndpoint: Fallback base URL when none has been persisted
func NewSQLiteStore(db *sql.DB, defaultEndpoint string) *SQLiteStore {
	return &SQLiteStore{db: db, defaultEndpoint: defaultEndpoint}
}

// SaveSession persists the token and username atomically.
func (s *SQLiteStore) SaveSession(ctx context.Context, token, username string) error {
	if token == "" {
		return ErrEmptyToken
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, token, username, active_home_id, updated_at)
		 VALUES (1, ?, ?, -1, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   token = excluded.token,
		   username = excluded.username,
		   updated_at = excluded.updated_at`,
		token, username, now(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// ClearSession removes the session row entirely, returning every accessor
// to its logged-out default.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Token returns the current auth token, or "" when logged out.
func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Username returns the logged-in username, or "" when logged out.
func (s *SQLiteStore) Username(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	return sess.Username, nil
}

// IsLoggedIn reports whether a non-empty token is present and, when the
// token is a JWT, whether it has not yet expired. Opaque tokens are
// treated as non-expiring; expiry is then the server's call (401).
func (s *SQLiteStore) IsLoggedIn(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return false
	}
	return !TokenExpired(token)
}

// SaveEndpoint persists the remote service base URL.
func (s *SQLiteStore) SaveEndpoint(ctx context.Context, url string) error {
	if url == "" {
		return ErrEmptyEndpoint
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, endpoint, active_home_id, updated_at)
		 VALUES (1, ?, -1, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   endpoint = excluded.endpoint,
		   updated_at = excluded.updated_at`,
		url, now(),
	)
	if err != nil {
		return fmt.Errorf("saving endpoint: %w", err)
	}
	return nil
}

// Endpoint returns the persisted base URL, or the configured default.
func (s *SQLiteStore) Endpoint(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	return sess.Endpoint, nil
}

// SaveActiveHomeID persists the identifier of the active home.
func (s *SQLiteStore) SaveActiveHomeID(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, active_home_id, updated_at)
		 VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   active_home_id = excluded.active_home_id,
		   updated_at = excluded.updated_at`,
		id, now(),
	)
	if err != nil {
		return fmt.Errorf("saving active home id: %w", err)
	}
	return nil
}

// ActiveHomeID returns the persisted active home id, or NoActiveHome.
func (s *SQLiteStore) ActiveHomeID(ctx context.Context) (int64, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return NoActiveHome, err
	}
	return sess.ActiveHomeID, nil
}

// Session returns the full session value in one read.
// A missing row yields the logged-out defaults, not an error.
func (s *SQLiteStore) Session(ctx context.Context) (Session, error) {
	sess := Session{
		Endpoint:     s.defaultEndpoint,
		ActiveHomeID: NoActiveHome,
	}

	var token, username, endpoint sql.NullString
	var activeHomeID sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		"SELECT token, username, endpoint, active_home_id FROM session WHERE id = 1",
	).Scan(&token, &username, &endpoint, &activeHomeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return sess, nil
		}
		return sess, fmt.Errorf("reading session: %w", err)
	}

	if token.Valid {
		sess.Token = token.String
	}
	if username.Valid {
		sess.Username = username.String
	}
	if endpoint.Valid && endpoint.String != "" {
		sess.Endpoint = endpoint.String
	}
	if activeHomeID.Valid {
		sess.ActiveHomeID = activeHomeID.Int64
	}

	return sess, nil
}

// now returns the current UTC time formatted for SQLite storage.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
