package form

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/i18n"
)

// SessionStore holds the active form sessions in memory. Each session owns
// its own mutable state; the store only maps IDs to sessions, so a coarse
// RWMutex is enough.
type SessionStore struct {
	catalog *i18n.Catalog

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store over the shared catalog.
func NewSessionStore(catalog *i18n.Catalog) *SessionStore {
	return &SessionStore{
		catalog:  catalog,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session rendered in the given locale.
func (st *SessionStore) Create(loc i18n.Locale) *Session {
	s := NewSession(uuid.New().String(), st.catalog, loc)

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()

	return s
}

// Get returns the session with the given ID, or false when it does not
// exist.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Count reports the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
