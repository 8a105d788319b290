package session

import (
	"context"
	"errors"
	"fmt"

	"instancectl/internal/action"
	"instancectl/internal/namespace"
	"instancectl/pkg/logging"
)

const controllerSubsystem = "Session"

// Dependencies are the collaborators a Controller delegates to.
type Dependencies struct {
	Dispatcher action.Dispatcher
	Validator  TokenValidator
	Tokens     TokenStore
	Clearer    SessionClearer
	Probe      CookieProbe
	Config     ConfigSource
}

// Controller sequences the session lifecycle. Each operation dispatches its
// actions as it goes and also returns them in emission order.
//
// Overlapping calls are not coordinated: two concurrent Authenticate calls
// both run to completion and the later dispatch wins in the store.
type Controller struct {
	deps Dependencies
}

// NewController creates a Controller. Every dependency is required.
func NewController(deps Dependencies) (*Controller, error) {
	switch {
	case deps.Dispatcher == nil:
		return nil, errors.New("session controller requires a dispatcher")
	case deps.Validator == nil:
		return nil, errors.New("session controller requires a token validator")
	case deps.Tokens == nil:
		return nil, errors.New("session controller requires a token store")
	case deps.Clearer == nil:
		return nil, errors.New("session controller requires a session clearer")
	case deps.Probe == nil:
		return nil, errors.New("session controller requires a cookie probe")
	case deps.Config == nil:
		return nil, errors.New("session controller requires a config source")
	}
	return &Controller{deps: deps}, nil
}

// emitter dispatches actions and remembers them for the caller.
type emitter struct {
	d       action.Dispatcher
	emitted []action.Action
}

func (e *emitter) emit(a action.Action) {
	e.d.Dispatch(a)
	e.emitted = append(e.emitted, a)
}

func (c *Controller) newEmitter() *emitter {
	return &emitter{d: c.deps.Dispatcher}
}

// Authenticate validates and stores token. With oidc set the token is not
// validated, since the auth proxy already vouched for the session.
// A failure is dispatched as AUTHENTICATION_ERROR and returned as an
// *AuthenticationError; nothing is persisted in that case.
func (c *Controller) Authenticate(ctx context.Context, token string, oidc bool) ([]action.Action, error) {
	e := c.newEmitter()
	e.emit(AuthenticatingAction{})

	if err := c.authenticate(ctx, e, token, oidc); err != nil {
		authAttempts.WithLabelValues(modeLabel(oidc), "error").Inc()
		logging.Error(controllerSubsystem, err, "Authentication failed")
		e.emit(AuthenticationErrorAction{Message: err.Error()})
		return e.emitted, &AuthenticationError{Err: err}
	}

	authAttempts.WithLabelValues(modeLabel(oidc), "success").Inc()
	return e.emitted, nil
}

func (c *Controller) authenticate(ctx context.Context, e *emitter, token string, oidc bool) error {
	if !oidc {
		if err := c.deps.Validator.ValidateToken(ctx, token); err != nil {
			return err
		}
	}
	if err := c.deps.Tokens.SetToken(token, oidc); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	ns := c.deps.Tokens.DefaultNamespace(token)
	logging.Info(controllerSubsystem, "Authenticated (mode=%s, namespace=%s)", modeLabel(oidc), ns)
	e.emit(SetAuthenticatedAction{Authenticated: true, OIDC: oidc, DefaultNamespace: ns})
	if oidc {
		e.emit(SetSessionExpiredAction{Expired: false})
	}
	return nil
}

// Logout ends the session.
//
// For an OIDC session the remote clear is the only effect. It must run before
// any local state changes, otherwise the redirect to the proxy's logout
// endpoint is lost; the local state follows once the cookie check fails.
func (c *Controller) Logout(ctx context.Context) ([]action.Action, error) {
	if c.deps.Tokens.IsUsingOIDC() {
		logging.Info(controllerSubsystem, "Clearing OIDC session at the auth proxy")
		if err := c.deps.Clearer.ClearSession(ctx, c.deps.Config.Config().Auth); err != nil {
			return nil, fmt.Errorf("failed to clear remote session: %w", err)
		}
		return nil, nil
	}

	e := c.newEmitter()
	clearErr := c.deps.Tokens.ClearToken()
	if clearErr != nil {
		logging.Warn(controllerSubsystem, "Failed to remove stored token: %v", clearErr)
	}
	e.emit(SetAuthenticatedAction{Authenticated: false, OIDC: false, DefaultNamespace: ""})
	e.emit(namespace.ClearNamespacesAction{})
	logging.Info(controllerSubsystem, "Logged out")

	if clearErr != nil {
		return e.emitted, fmt.Errorf("failed to remove stored token: %w", clearErr)
	}
	return e.emitted, nil
}

// ExpireSession marks an OIDC session as expired and logs out.
func (c *Controller) ExpireSession(ctx context.Context) ([]action.Action, error) {
	sessionsExpired.Inc()
	e := c.newEmitter()
	if c.deps.Tokens.IsUsingOIDC() {
		e.emit(SetSessionExpiredAction{Expired: true})
	}
	logging.Warn(controllerSubsystem, "Session expired")

	emitted, err := c.Logout(ctx)
	return append(e.emitted, emitted...), err
}

// CheckCookieAuthentication re-enters Authenticate in OIDC mode when the auth
// proxy cookie is valid, and marks the session anonymous otherwise, removing
// any stored OIDC marker. A failing probe counts as "no valid cookie".
func (c *Controller) CheckCookieAuthentication(ctx context.Context) ([]action.Action, error) {
	ok, err := c.deps.Probe.IsAuthenticatedWithCookie(ctx)
	if err != nil {
		logging.Warn(controllerSubsystem, "Cookie probe failed: %v", err)
		ok = false
	}
	if ok {
		return c.Authenticate(ctx, "", true)
	}

	// Forget the OIDC marker so the next start does not restore a session
	// the proxy no longer holds.
	if c.deps.Tokens.IsUsingOIDC() {
		if err := c.deps.Tokens.ClearToken(); err != nil {
			logging.Warn(controllerSubsystem, "Failed to remove stored OIDC session: %v", err)
		}
	}

	e := c.newEmitter()
	e.emit(SetAuthenticatedAction{Authenticated: false, OIDC: false, DefaultNamespace: ""})
	return e.emitted, nil
}

// InitialState rebuilds the session from what the token store persisted
// by an earlier run.
func InitialState(tokens TokenStore) State {
	token := tokens.Token()
	oidc := tokens.IsUsingOIDC()
	s := State{
		Authenticated: token != "" || oidc,
		OIDC:          oidc,
	}
	if s.Authenticated {
		s.DefaultNamespace = tokens.DefaultNamespace(token)
	}
	return s
}
