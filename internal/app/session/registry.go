package session

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned for unknown or expired session ids.
var ErrInvalidSession = errors.New("invalid session")

// Registry manages sessions with thread-safe access.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a new session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Open creates a session with a fresh id.
func (r *Registry) Open(now time.Time) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := newSession(uuid.New().String(), now)
	r.sessions[s.ID] = s
	return s
}

// Get retrieves a session by ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidSession, "session %q", id)
	}
	return s, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.close()
	}
}

// Prune removes sessions idle for longer than maxIdle and returns how many
// were removed. Sessions with a running workflow are never idle.
func (r *Registry) Prune(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) > maxIdle {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

// Count returns the number of sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
