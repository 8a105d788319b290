package model

import (
	"context"
	"time"

	"instancectl/internal/store"
	"instancectl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const defaultCommandTimeout = 30 * time.Second

func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// ListenForStateChangesCmd waits for the next store notification.
// It returns nil once the subscription is closed.
func ListenForStateChangesCmd(sub *store.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-sub.Channel
		if !ok {
			return nil
		}
		return StateChangeMsg{Change: change}
	}
}

// ListenForLogEntriesCmd waits for the next log entry.
func ListenForLogEntriesCmd(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return NewLogEntryMsg{Entry: entry}
	}
}

// AuthenticateCmd logs in with a bearer token.
func AuthenticateCmd(s SessionActions, token string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext(timeout)
		defer cancel()
		_, err := s.Authenticate(ctx, token, false)
		return AuthResultMsg{Err: err}
	}
}

// CheckCookieCmd logs in with the auth proxy cookie, if there is a valid one.
func CheckCookieCmd(s SessionActions, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext(timeout)
		defer cancel()
		_, err := s.CheckCookieAuthentication(ctx)
		return CookieCheckResultMsg{Err: err}
	}
}

// LogoutCmd ends the session.
func LogoutCmd(s SessionActions, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext(timeout)
		defer cancel()
		_, err := s.Logout(ctx)
		return LogoutResultMsg{Err: err}
	}
}

// ExpireSessionCmd expires the session after the cluster rejected its credentials.
func ExpireSessionCmd(s SessionActions, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext(timeout)
		defer cancel()
		_, err := s.ExpireSession(ctx)
		return ExpireSessionResultMsg{Err: err}
	}
}

// LoadInstanceCmd fetches the default and deployed values of the target.
func LoadInstanceCmd(b InstanceBackend, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext(timeout)
		defer cancel()
		defaults, deployed, err := b.LoadInstance(ctx)
		return InstanceLoadedMsg{DefaultValues: defaults, DeployedValues: deployed, Err: err}
	}
}

// DeployCmd applies u to the cluster.
func DeployCmd(b InstanceBackend, u *unstructured.Unstructured, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext(timeout)
		defer cancel()
		obj, err := b.Deploy(ctx, u)
		return DeployResultMsg{Object: obj, Err: err}
	}
}
