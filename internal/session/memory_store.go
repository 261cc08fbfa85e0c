package session

import (
	"sync"
	"time"
)

// MemoryStore keeps session records in-process. Used in tests and local dev.
type MemoryStore struct {
	mu   sync.RWMutex
	sess map[string]Session
}

// NewMemoryStore initializes an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sess: make(map[string]Session)}
}

// Save stores or replaces a session record.
func (m *MemoryStore) Save(sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess[sess.ID] = sess
	return nil
}

// Get resolves a session id, treating expired records as absent.
func (m *MemoryStore) Get(id string) (Session, bool, error) {
	m.mu.RLock()
	sess, ok := m.sess[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false, nil
	}
	if time.Now().After(sess.ExpiresAt) {
		m.mu.Lock()
		delete(m.sess, id)
		m.mu.Unlock()
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Delete removes a session record; missing ids are a no-op.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, id)
	return nil
}
