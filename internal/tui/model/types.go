package model

import (
	"context"
	"time"

	"instancectl/internal/action"
	"instancectl/internal/form"
	"instancectl/internal/kube"
	"instancectl/internal/session"
	"instancectl/internal/store"
	"instancectl/pkg/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// AppMode represents the current mode of the application
type AppMode int

const (
	ModeLogin AppMode = iota
	ModeEditor
	ModeRestoreConfirm
	ModeLogOverlay
	ModeQuitting
)

// String provides a human-readable representation of the AppMode.
func (m AppMode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeEditor:
		return "editor"
	case ModeRestoreConfirm:
		return "restore-confirm"
	case ModeLogOverlay:
		return "log-overlay"
	case ModeQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Tab selects what the editor screen shows.
type Tab int

const (
	TabYAML Tab = iota
	TabDiff
)

// MessageType represents the type of status bar message
type MessageType int

const (
	StatusBarInfo MessageType = iota
	StatusBarSuccess
	StatusBarError
	StatusBarWarning
)

const (
	MaxActivityLogLines = 1000

	// RestoreConfirmText is the question asked before the draft is replaced
	// with the default values.
	RestoreConfirmText = "Are you sure you want to restore the default instance values?"
)

// SessionActions is the session lifecycle as the TUI drives it.
type SessionActions interface {
	Authenticate(ctx context.Context, token string, oidc bool) ([]action.Action, error)
	Logout(ctx context.Context) ([]action.Action, error)
	ExpireSession(ctx context.Context) ([]action.Action, error)
	CheckCookieAuthentication(ctx context.Context) ([]action.Action, error)
}

// InstanceBackend loads and deploys the instance being edited.
type InstanceBackend interface {
	LoadInstance(ctx context.Context) (defaultValues, deployedValues string, err error)
	Deploy(ctx context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error)
}

// StateSource is the read side of the application store.
type StateSource interface {
	GetState() store.AppState
	Subscribe() *store.Subscription
	Unsubscribe(sub *store.Subscription)
}

// TUIConfig holds everything the TUI needs from the application.
type TUIConfig struct {
	DebugMode   bool
	Target      kube.Target
	DiffContext int
	// CheckCookieOnStart runs the OIDC cookie check when the session starts anonymous.
	CheckCookieOnStart bool
	Session            SessionActions
	Instance           InstanceBackend
	Store              StateSource
	LogChannel         <-chan logging.LogEntry
	CommandTimeout     time.Duration
}

// Model is the state of the TUI.
type Model struct {
	// Terminal dimensions
	Width  int
	Height int

	QuitApp        bool
	CurrentAppMode AppMode
	LastAppMode    AppMode
	DebugMode      bool

	Target      kube.Target
	DiffContext int

	// Session mirror, refreshed from store notifications.
	Auth      session.State
	Namespace string

	// Busy is set while a backend command is running.
	Busy        bool
	BusyMessage string

	// Login screen
	TokenInput textinput.Model

	// Editor screen
	Form          *form.Controller
	FormLoaded    bool
	LoadError     string
	Editor        textarea.Model
	ActiveTab     Tab
	DiffViewport  viewport.Model
	PendingDeploy *unstructured.Unstructured

	// UI components
	Keys        KeyMap
	Help        help.Model
	Spinner     spinner.Model
	LogViewport viewport.Model

	StatusBarMessage     string
	StatusBarMessageType MessageType
	StatusBarClearCancel chan struct{}

	ActivityLog      []string
	ActivityLogDirty bool

	// Backends
	Session        SessionActions
	Instance       InstanceBackend
	Store          StateSource
	Subscription   *store.Subscription
	LogChannel     <-chan logging.LogEntry
	CommandTimeout time.Duration

	checkCookieOnStart bool
}

// SetStatusMessage shows message in the status bar and clears it after clearAfter.
// A newer message cancels the pending clear of an older one.
func (m *Model) SetStatusMessage(message string, msgType MessageType, clearAfter time.Duration) tea.Cmd {
	m.StatusBarMessage = message
	m.StatusBarMessageType = msgType

	if m.StatusBarClearCancel != nil {
		close(m.StatusBarClearCancel)
	}

	m.StatusBarClearCancel = make(chan struct{})
	captured := m.StatusBarClearCancel

	return tea.Tick(clearAfter, func(t time.Time) tea.Msg {
		select {
		case <-captured:
			return nil
		default:
			return ClearStatusBarMsg{}
		}
	})
}

// EditorFocused reports whether key presses go to a text field.
func (m *Model) EditorFocused() bool {
	switch m.CurrentAppMode {
	case ModeLogin:
		return true
	case ModeEditor:
		return m.ActiveTab == TabYAML
	default:
		return false
	}
}
