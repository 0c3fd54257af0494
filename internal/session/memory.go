package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store with in-memory state.
//
// It exists for tests and for short-lived tooling that has no database.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu              sync.RWMutex
	sess            Session
	defaultEndpoint string
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(defaultEndpoint string) *MemoryStore {
	return &MemoryStore{
		sess: Session{
			Endpoint:     defaultEndpoint,
			ActiveHomeID: NoActiveHome,
		},
		defaultEndpoint: defaultEndpoint,
	}
}

// SaveSession persists the token and username atomically.
func (m *MemoryStore) SaveSession(_ context.Context, token, username string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess.Token = token
	m.sess.Username = username
	return nil
}

// ClearSession returns the store to its logged-out defaults.
func (m *MemoryStore) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{
		Endpoint:     m.defaultEndpoint,
		ActiveHomeID: NoActiveHome,
	}
	return nil
}

// Token returns the current auth token, or "" when logged out.
func (m *MemoryStore) Token(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Token, nil
}

// Username returns the logged-in username, or "" when logged out.
func (m *MemoryStore) Username(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Username, nil
}

// IsLoggedIn reports whether a non-empty, non-expired token is present.
func (m *MemoryStore) IsLoggedIn(_ context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Token != "" && !TokenExpired(m.sess.Token)
}

// SaveEndpoint persists the remote service base URL.
func (m *MemoryStore) SaveEndpoint(_ context.Context, url string) error {
	if url == "" {
		return ErrEmptyEndpoint
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess.Endpoint = url
	return nil
}

// Endpoint returns the persisted base URL, or the configured default.
func (m *MemoryStore) Endpoint(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Endpoint, nil
}

// SaveActiveHomeID persists the identifier of the active home.
func (m *MemoryStore) SaveActiveHomeID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess.ActiveHomeID = id
	return nil
}

// ActiveHomeID returns the persisted active home id, or NoActiveHome.
func (m *MemoryStore) ActiveHomeID(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.ActiveHomeID, nil
}

// Session returns the full session value in one read.
func (m *MemoryStore) Session(_ context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, nil
}
