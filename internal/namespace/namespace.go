// Package namespace holds the namespace slice of the application state: the
// namespace currently selected and the namespaces the session can see.
package namespace

import (
	"sort"

	"instancectl/internal/action"
)

const (
	TypeSetNamespace      action.Type = "SET_NAMESPACE"
	TypeReceiveNamespaces action.Type = "RECEIVE_NAMESPACES"
	TypeErrorNamespaces   action.Type = "ERROR_NAMESPACES"
	TypeClearNamespaces   action.Type = "CLEAR_NAMESPACES"
)

// State is the namespace slice of the application state.
type State struct {
	Current    string
	Namespaces []string
	ErrorMsg   string
}

// SetNamespaceAction selects the current namespace.
type SetNamespaceAction struct {
	Namespace string
}

func (SetNamespaceAction) Type() action.Type { return TypeSetNamespace }

// ReceiveNamespacesAction carries a freshly listed set of namespaces.
type ReceiveNamespacesAction struct {
	Namespaces []string
}

func (ReceiveNamespacesAction) Type() action.Type { return TypeReceiveNamespaces }

// ErrorNamespacesAction reports a failed listing.
type ErrorNamespacesAction struct {
	Message string
}

func (ErrorNamespacesAction) Type() action.Type { return TypeErrorNamespaces }

// ClearNamespacesAction drops all namespace-scoped state, e.g. on logout.
type ClearNamespacesAction struct{}

func (ClearNamespacesAction) Type() action.Type { return TypeClearNamespaces }

// Reduce computes the next namespace state. Unknown actions leave it unchanged.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case SetNamespaceAction:
		s.Current = a.Namespace
		s.ErrorMsg = ""
	case ReceiveNamespacesAction:
		names := append([]string(nil), a.Namespaces...)
		sort.Strings(names)
		s.Namespaces = names
		s.ErrorMsg = ""
	case ErrorNamespacesAction:
		s.ErrorMsg = a.Message
	case ClearNamespacesAction:
		return State{}
	}
	return s
}
