// Package store is the central application store. Controllers dispatch
// actions into it; reducers compute the next AppState and subscribers are
// told about every change.
package store

import (
	"sync"
	"time"

	"instancectl/internal/action"
	"instancectl/internal/config"
	"instancectl/internal/namespace"
	"instancectl/internal/session"

	"github.com/google/uuid"
)

const subscriptionBufferSize = 100

// AppState is a complete snapshot of the application state.
type AppState struct {
	Auth      session.State
	Namespace namespace.State
	Config    config.InstancectlConfig
}

// StateChange is delivered to subscribers after every dispatched action.
type StateChange struct {
	Action action.Action
	Old    AppState
	New    AppState
}

// Subscription represents a subscription to state changes
type Subscription struct {
	ID      string
	Channel chan StateChange
	closed  bool
	mu      sync.RWMutex
}

// close closes the subscription channel. Callers hold the store lock, so a
// concurrent notify never sends on a closed channel.
func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.Channel)
		s.closed = true
	}
}

// IsClosed returns whether the subscription is closed
func (s *Subscription) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Metrics tracks store usage.
type Metrics struct {
	ActionsDispatched    int64
	LastDispatch         time.Time
	ActionsByType        map[action.Type]int64
	ActiveSubscriptions  int
	TotalSubscriptions   int
	TotalEventsDelivered int64
	DroppedEvents        int64
}

// Store holds the AppState. It is safe for concurrent use; dispatches are
// applied one at a time in arrival order.
type Store struct {
	mu            sync.RWMutex
	state         AppState
	subscriptions map[string]*Subscription
	metrics       Metrics
}

// New creates a store seeded with initial.
func New(initial AppState) *Store {
	return &Store{
		state:         initial,
		subscriptions: make(map[string]*Subscription),
		metrics: Metrics{
			ActionsByType: make(map[action.Type]int64),
		},
	}
}

// Reduce computes the next AppState from s and a.
//
// A successful SET_AUTHENTICATED also selects the session's default namespace.
func Reduce(s AppState, a action.Action) AppState {
	s.Auth = session.Reduce(s.Auth, a)
	s.Namespace = namespace.Reduce(s.Namespace, a)

	if set, ok := a.(session.SetAuthenticatedAction); ok && set.Authenticated {
		s.Namespace.Current = set.DefaultNamespace
	}
	return s
}

// Dispatch applies a and notifies subscribers.
func (s *Store) Dispatch(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.state
	s.state = Reduce(old, a)

	actionsDispatched.WithLabelValues(string(a.Type())).Inc()
	s.metrics.ActionsDispatched++
	s.metrics.ActionsByType[a.Type()]++
	s.metrics.LastDispatch = time.Now()

	s.notifySubscribers(StateChange{Action: a, Old: old, New: s.state})
}

// GetState returns the current state.
func (s *Store) GetState() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Auth returns the session slice of the current state.
func (s *Store) Auth() session.State {
	return s.GetState().Auth
}

// Config returns the configuration the store was seeded with.
func (s *Store) Config() config.InstancectlConfig {
	return s.GetState().Config
}

// Subscribe creates a subscription to state changes.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		ID:      uuid.NewString(),
		Channel: make(chan StateChange, subscriptionBufferSize),
	}
	s.subscriptions[sub.ID] = sub
	s.metrics.TotalSubscriptions++
	s.metrics.ActiveSubscriptions++
	return sub
}

// Unsubscribe removes a subscription and closes its channel. It is the only
// way to close a subscription and is safe to call more than once.
func (s *Store) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		sub.close()
		delete(s.subscriptions, sub.ID)
		s.metrics.ActiveSubscriptions--
	}
}

// GetMetrics returns a copy of the store metrics.
func (s *Store) GetMetrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.metrics
	m.ActionsByType = make(map[action.Type]int64, len(s.metrics.ActionsByType))
	for k, v := range s.metrics.ActionsByType {
		m.ActionsByType[k] = v
	}
	return m
}

// notifySubscribers must be called with s.mu held.
func (s *Store) notifySubscribers(change StateChange) {
	for _, sub := range s.subscriptions {
		select {
		case sub.Channel <- change:
			s.metrics.TotalEventsDelivered++
		default:
			// Channel is full, drop the change
			s.metrics.DroppedEvents++
			changesDropped.Inc()
		}
	}
}
