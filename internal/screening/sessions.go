package screening

import (
	"sync"
	"time"

	"aasha-server/internal/models"
)

// Sessions keeps the live sessions of the local UI in memory.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session), now: time.Now}
}

// Create starts a new idle session.
func (r *Sessions) Create() *Session {
	sess := NewSession(models.NewID(), r.now())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with id or ErrSessionNotFound.
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sess, ok := r.sessions[id]; ok {
		return sess, nil
	}
	return nil, ErrSessionNotFound
}

// Remove forgets the session. Removing an unknown id is a no-op.
func (r *Sessions) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
