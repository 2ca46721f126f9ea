package session

import (
	"context"
	"sync"
	"time"

	"github.com/osa030/careersinmusic/internal/app/notification"
	"github.com/osa030/careersinmusic/internal/app/session/state"
)

// Session is one client's view plus the workflow currently filling it.
// At most one workflow runs per session; starting another supersedes it.
type Session struct {
	ID        string
	CreatedAt time.Time

	view     *state.View
	watchers *notification.Manager

	mu         sync.Mutex
	current    *run
	lastActive time.Time
}

// run is one workflow execution bound to a session.
type run struct {
	ctx        context.Context
	cancel     context.CancelFunc
	token      uint64
	superseded chan struct{}
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		view:       state.NewView(),
		watchers:   notification.NewManager(),
		lastActive: now,
	}
}

// View returns the session's view state.
func (s *Session) View() *state.View {
	return s.view
}

// begin supersedes the running workflow, if any, and starts a new one.
func (s *Session) begin(parent context.Context, kind state.Kind, now time.Time) *run {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		close(s.current.superseded)
		s.current.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	r := &run{
		ctx:        ctx,
		cancel:     cancel,
		token:      s.view.Begin(kind),
		superseded: make(chan struct{}),
	}
	s.current = r
	s.lastActive = now
	return r
}

// end releases the run. It is safe to call for a superseded run.
func (s *Session) end(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.cancel()
	if s.current == r {
		s.current = nil
	}
}

// Running reports whether a workflow is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return 0
	}
	return now.Sub(s.lastActive)
}

// close stops the running workflow and drops all watchers.
func (s *Session) close() {
	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.mu.Unlock()
	s.watchers.Close()
}

func (r *run) wasSuperseded() bool {
	select {
	case <-r.superseded:
		return true
	default:
		return false
	}
}
