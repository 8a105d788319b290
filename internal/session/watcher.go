package session

import (
	"context"
	"time"

	"instancectl/pkg/logging"
)

const watcherSubsystem = "SessionWatcher"

// StateGetter returns the current session state.
type StateGetter func() State

// Watcher periodically re-checks an authenticated session and expires it once
// the credentials stop working.
type Watcher struct {
	controller *Controller
	state      StateGetter
	interval   time.Duration
}

// NewWatcher creates a Watcher that checks every interval.
func NewWatcher(controller *Controller, state StateGetter, interval time.Duration) *Watcher {
	return &Watcher{controller: controller, state: state, interval: interval}
}

// Run blocks until ctx is done. A non-positive interval disables the watcher.
func (w *Watcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	logging.Debug(watcherSubsystem, "Checking session every %s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check runs a single validation pass and reports whether the session was expired.
// Sessions that are anonymous, in flight or already expired are left alone.
func (w *Watcher) Check(ctx context.Context) bool {
	s := w.state()
	if s.Phase() != PhaseAuthenticated {
		return false
	}

	if w.valid(ctx, s) {
		return false
	}
	if _, err := w.controller.ExpireSession(ctx); err != nil {
		logging.Error(watcherSubsystem, err, "Failed to expire session")
	}
	return true
}

func (w *Watcher) valid(ctx context.Context, s State) bool {
	deps := w.controller.deps
	if s.OIDC {
		ok, err := deps.Probe.IsAuthenticatedWithCookie(ctx)
		if err != nil {
			// Transport failures say nothing about the cookie; try again next tick.
			logging.Warn(watcherSubsystem, "Cookie probe failed: %v", err)
			return true
		}
		return ok
	}
	if err := deps.Validator.ValidateToken(ctx, deps.Tokens.Token()); err != nil {
		if ctx.Err() != nil {
			return true
		}
		logging.Info(watcherSubsystem, "Stored token no longer valid: %v", err)
		return false
	}
	return true
}
