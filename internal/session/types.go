package session

import (
	"instancectl/internal/action"
)

const (
	TypeAuthenticating      action.Type = "AUTHENTICATING"
	TypeSetAuthenticated    action.Type = "SET_AUTHENTICATED"
	TypeAuthenticationError action.Type = "AUTHENTICATION_ERROR"
	TypeSetSessionExpired   action.Type = "SET_AUTHENTICATION_SESSION_EXPIRED"
)

// State is the authentication slice of the application state.
type State struct {
	Authenticated    bool
	Authenticating   bool
	OIDC             bool
	DefaultNamespace string
	SessionExpired   bool
	ErrorMsg         string
}

// Phase is the coarse lifecycle position derived from State.
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseAuthenticating
	PhaseAuthenticated
	PhaseExpired
)

// String provides a human-readable representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// Phase reports where the session is in its lifecycle.
func (s State) Phase() Phase {
	switch {
	case s.Authenticating:
		return PhaseAuthenticating
	case s.Authenticated && s.SessionExpired:
		return PhaseExpired
	case s.Authenticated:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// AuthenticatingAction marks the start of an authentication attempt.
type AuthenticatingAction struct{}

func (AuthenticatingAction) Type() action.Type { return TypeAuthenticating }

// SetAuthenticatedAction records the outcome of a login or logout.
type SetAuthenticatedAction struct {
	Authenticated    bool
	OIDC             bool
	DefaultNamespace string
}

func (SetAuthenticatedAction) Type() action.Type { return TypeSetAuthenticated }

// AuthenticationErrorAction carries a user-visible authentication failure.
type AuthenticationErrorAction struct {
	Message string
}

func (AuthenticationErrorAction) Type() action.Type { return TypeAuthenticationError }

// SetSessionExpiredAction flags or clears an expired OIDC session.
type SetSessionExpiredAction struct {
	Expired bool
}

func (SetSessionExpiredAction) Type() action.Type { return TypeSetSessionExpired }

// Reduce computes the next session state. Unknown actions leave it unchanged.
// An authentication error keeps the previous Authenticated flag.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case AuthenticatingAction:
		s.Authenticating = true
		s.ErrorMsg = ""
	case SetAuthenticatedAction:
		s.Authenticated = a.Authenticated
		s.OIDC = a.OIDC
		s.DefaultNamespace = a.DefaultNamespace
		s.Authenticating = false
	case AuthenticationErrorAction:
		s.Authenticating = false
		s.ErrorMsg = a.Message
	case SetSessionExpiredAction:
		s.SessionExpired = a.Expired
	}
	return s
}

// Apply folds actions over s in order.
func Apply(s State, actions ...action.Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}
