// Package notification fans applied view events out to session watchers.
package notification

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/app/explorer"
)

// DefaultBufferSize is the number of events queued per watcher before it is
// considered too slow and dropped.
const DefaultBufferSize = 64

// ErrWatcherTooSlow is returned by Serve when a watcher fell so far behind
// that its queue overflowed.
var ErrWatcherTooSlow = errors.New("watcher fell behind and was dropped")

// Stream represents a watcher's outgoing event stream.
type Stream interface {
	Send(*explorer.Event) error
}

// Subscription is one watcher's event queue.
type Subscription struct {
	ID string

	events     chan explorer.Event
	done       chan struct{}
	stopOnce   sync.Once
	overflowed atomic.Bool
}

func newSubscription(id string, size int) *Subscription {
	return &Subscription{
		ID:     id,
		events: make(chan explorer.Event, size),
		done:   make(chan struct{}),
	}
}

// Done returns a channel closed once the subscription is removed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Manager manages watcher subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	bufferSize    int
	closed        bool
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*Subscription),
		bufferSize:    DefaultBufferSize,
	}
}

// Subscribe adds a new subscription. Subscribing to a closed manager returns
// a subscription that is already done.
func (m *Manager) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := newSubscription(uuid.New().String(), m.bufferSize)
	if m.closed {
		sub.stop()
		return sub
	}
	m.subscriptions[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[subscriptionID]
	delete(m.subscriptions, subscriptionID)
	m.mu.Unlock()

	if ok {
		sub.stop()
	}
}

// Serve delivers queued events to stream until ctx is done or the
// subscription is removed. It is the only caller of stream.Send, so sends on
// one stream never overlap. A send error removes the subscription.
func (m *Manager) Serve(ctx context.Context, sub *Subscription, stream Stream) error {
	defer m.Unsubscribe(sub.ID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			if sub.overflowed.Load() {
				return ErrWatcherTooSlow
			}
			return nil
		case ev := <-sub.events:
			if err := stream.Send(&ev); err != nil {
				return errors.Wrap(err, "failed to send event to watcher")
			}
		}
	}
}

// Broadcast queues an event for every watcher without blocking. A watcher
// whose queue is full is dropped.
func (m *Manager) Broadcast(ev explorer.Event) {
	var slow []*Subscription

	m.mu.RLock()
	for _, sub := range m.subscriptions {
		select {
		case sub.events <- ev:
		default:
			slow = append(slow, sub)
		}
	}
	m.mu.RUnlock()

	for _, sub := range slow {
		zlog.Debug().Msgf("watcher queue full, dropping: subscription=%s", sub.ID)
		sub.overflowed.Store(true)
		m.Unsubscribe(sub.ID)
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions and ends their Serve loops. Later
// subscriptions end immediately.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := m.subscriptions
	m.subscriptions = make(map[string]*Subscription)
	m.closed = true
	m.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}
