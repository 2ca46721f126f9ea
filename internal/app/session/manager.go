// Package session provides the session manager: it binds explorer workflows
// to per-client views, supersedes stale workflows and fans events out to
// watchers.
package session

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/app/explorer"
	"github.com/osa030/careersinmusic/internal/app/notification"
	"github.com/osa030/careersinmusic/internal/app/session/state"
)

// Runner executes explorer workflows.
type Runner interface {
	Search(ctx context.Context, q explorer.Query, token uint64, sink explorer.Sink) error
	Navigate(ctx context.Context, title, artist string, token uint64, sink explorer.Sink) error
}

// Sender delivers an event to the client that started the workflow.
type Sender func(explorer.Event) error

// Manager manages explorer sessions.
type Manager struct {
	runner   Runner
	registry *Registry
	maxIdle  time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new session manager. Sessions idle for longer than
// maxIdle are pruned once Start is running.
func NewManager(runner Runner, maxIdle time.Duration) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		runner:   runner,
		registry: NewRegistry(),
		maxIdle:  maxIdle,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the idle session pruner until ctx is done or Close is called.
func (m *Manager) Start(ctx context.Context) {
	interval := m.maxIdle / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if n := m.registry.Prune(m.now(), m.maxIdle); n > 0 {
				zlog.Info().Msgf("pruned idle sessions: count=%d remaining=%d", n, m.registry.Count())
			}
		}
	}
}

// Open creates a new session.
func (m *Manager) Open() *Session {
	s := m.registry.Open(m.now())
	zlog.Info().Msgf("session opened: session_id=%s sessions=%d", s.ID, m.registry.Count())
	return s
}

// Get retrieves a session by ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	return m.registry.Get(sessionID)
}

// Search starts a search workflow in the session, streaming applied events
// to send. If a newer workflow supersedes it, a superseded event is sent
// and Search returns nil.
func (m *Manager) Search(ctx context.Context, sessionID string, q explorer.Query, send Sender) error {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}
	return m.run(ctx, sessionID, state.KindSearch, send, func(ctx context.Context, token uint64, sink explorer.Sink) error {
		return m.runner.Search(ctx, q, token, sink)
	})
}

// Navigate starts an album workflow for a clicked album.
func (m *Manager) Navigate(ctx context.Context, sessionID, title, artist string, send Sender) error {
	q := explorer.Query{Title: title, Artist: artist}.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}
	if q.Mode() != explorer.ModeAlbum {
		return explorer.ErrNavigateNeedsAlbum
	}
	return m.run(ctx, sessionID, state.KindNavigate, send, func(ctx context.Context, token uint64, sink explorer.Sink) error {
		return m.runner.Navigate(ctx, q.Title, q.Artist, token, sink)
	})
}

func (m *Manager) run(
	ctx context.Context,
	sessionID string,
	kind state.Kind,
	send Sender,
	start func(context.Context, uint64, explorer.Sink) error,
) error {
	s, err := m.registry.Get(sessionID)
	if err != nil {
		return err
	}

	r := s.begin(ctx, kind, m.now())
	defer s.end(r)

	// The explorer serializes sink calls, so sendErr needs no lock.
	var sendErr error
	sink := func(ev explorer.Event) {
		if !s.view.Apply(ev) {
			zlog.Debug().Msgf("dropped stale event: session_id=%s type=%s token=%d", s.ID, ev.Type, ev.Token)
			return
		}
		s.watchers.Broadcast(ev)
		if sendErr != nil {
			return
		}
		if sendErr = send(ev); sendErr != nil {
			zlog.Debug().Msgf("client send failed, cancelling workflow: session_id=%s error=%v", s.ID, sendErr)
			r.cancel()
		}
	}

	runErr := start(r.ctx, r.token, sink)

	if r.wasSuperseded() {
		zlog.Info().Msgf("workflow superseded: session_id=%s token=%d", s.ID, r.token)
		if sendErr == nil {
			_ = send(explorer.Event{Type: explorer.EventSuperseded, Token: r.token, Timestamp: m.now()})
		}
		return nil
	}
	if sendErr != nil {
		return errors.Wrap(sendErr, "failed to send event")
	}
	return runErr
}

// Snapshot returns the session's current view.
func (m *Manager) Snapshot(sessionID string) (state.Snapshot, error) {
	s, err := m.registry.Get(sessionID)
	if err != nil {
		return state.Snapshot{}, err
	}
	s.touch(m.now())
	return s.view.Snapshot(), nil
}

// DiscographyPage returns one page of the session's discography grid.
func (m *Manager) DiscographyPage(sessionID string, page, size int, order state.Order) (state.Page, error) {
	s, err := m.registry.Get(sessionID)
	if err != nil {
		return state.Page{}, err
	}
	s.touch(m.now())
	return s.view.DiscographyPage(page, size, order)
}

// Watch streams every event applied to the session until ctx is done or the
// session is closed.
func (m *Manager) Watch(ctx context.Context, sessionID string, stream notification.Stream) error {
	s, err := m.registry.Get(sessionID)
	if err != nil {
		return err
	}

	sub := s.watchers.Subscribe()
	zlog.Debug().Msgf("watcher subscribed: session_id=%s subscription=%s", s.ID, sub.ID)

	err = s.watchers.Serve(ctx, sub, stream)
	zlog.Debug().Msgf("watcher ended: session_id=%s subscription=%s", s.ID, sub.ID)
	return err
}

// SessionCount returns the number of open sessions.
func (m *Manager) SessionCount() int {
	return m.registry.Count()
}

// Close stops the pruner and closes every session.
func (m *Manager) Close() {
	m.cancel()
	m.registry.Close()
}
