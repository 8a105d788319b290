// Package action defines the notifications that flow into the central store.
//
// Controllers never mutate application state directly. They emit actions
// through a Dispatcher, and reducers compute the next state from them.
package action

import "sync"

// Type identifies an action, e.g. "SET_AUTHENTICATED".
type Type string

// Action is a typed notification emitted by a controller.
type Action interface {
	Type() Type
}

// Dispatcher receives actions in emission order.
type Dispatcher interface {
	Dispatch(a Action)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(a Action)

// Dispatch calls f(a).
func (f DispatcherFunc) Dispatch(a Action) { f(a) }

// DispatchAll dispatches actions in order.
func DispatchAll(d Dispatcher, actions ...Action) {
	for _, a := range actions {
		d.Dispatch(a)
	}
}

// Recorder is a Dispatcher that keeps every action it receives.
// Headless callers and tests use it to inspect what a controller emitted.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

// Dispatch records a.
func (r *Recorder) Dispatch(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Types returns the recorded action types in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a.Type())
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
