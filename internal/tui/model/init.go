package model

import (
	"errors"

	"instancectl/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InitialModel builds the TUI model and subscribes it to the store.
func InitialModel(cfg TUIConfig) (*Model, error) {
	switch {
	case cfg.Session == nil:
		return nil, errors.New("tui requires session actions")
	case cfg.Instance == nil:
		return nil, errors.New("tui requires an instance backend")
	case cfg.Store == nil:
		return nil, errors.New("tui requires a state source")
	}

	ti := textinput.New()
	ti.Placeholder = "Paste a bearer token"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 0
	ti.Width = 60
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "apiVersion: ..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	state := cfg.Store.GetState()

	m := &Model{
		CurrentAppMode:     ModeLogin,
		DebugMode:          cfg.DebugMode,
		Target:             cfg.Target,
		DiffContext:        cfg.DiffContext,
		Auth:               state.Auth,
		Namespace:          state.Namespace.Current,
		TokenInput:         ti,
		Editor:             ta,
		ActiveTab:          TabYAML,
		DiffViewport:       viewport.New(0, 0),
		Keys:               DefaultKeyMap(),
		Help:               help.New(),
		Spinner:            s,
		LogViewport:        viewport.New(0, 0),
		ActivityLog:        []string{},
		Session:            cfg.Session,
		Instance:           cfg.Instance,
		Store:              cfg.Store,
		LogChannel:         cfg.LogChannel,
		CommandTimeout:     cfg.CommandTimeout,
		checkCookieOnStart: cfg.CheckCookieOnStart,
	}
	m.Subscription = cfg.Store.Subscribe()

	if m.Auth.Phase() == session.PhaseAuthenticated {
		m.EnterEditor()
	}
	return m, nil
}

// Init starts the listeners and the first backend call.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.Spinner.Tick,
		textinput.Blink,
		ListenForStateChangesCmd(m.Subscription),
		ListenForLogEntriesCmd(m.LogChannel),
	}

	switch {
	case m.CurrentAppMode == ModeEditor:
		m.SetBusy("Loading instance")
		cmds = append(cmds, LoadInstanceCmd(m.Instance, m.CommandTimeout))
	case m.checkCookieOnStart:
		m.SetBusy("Checking auth proxy session")
		cmds = append(cmds, CheckCookieCmd(m.Session, m.CommandTimeout))
	}
	return tea.Batch(cmds...)
}

// EnterEditor switches to the editor screen.
func (m *Model) EnterEditor() {
	m.CurrentAppMode = ModeEditor
	m.TokenInput.Blur()
	m.TokenInput.Reset()
	m.ActiveTab = TabYAML
	m.Editor.Focus()
}

// EnterLogin switches to the login screen and forgets the loaded instance.
func (m *Model) EnterLogin() {
	m.CurrentAppMode = ModeLogin
	m.Editor.Blur()
	m.Editor.Reset()
	m.Form = nil
	m.FormLoaded = false
	m.LoadError = ""
	m.PendingDeploy = nil
	m.TokenInput.Focus()
}

// SetBusy shows the spinner with message.
func (m *Model) SetBusy(message string) {
	m.Busy = true
	m.BusyMessage = message
}

// ClearBusy hides the spinner.
func (m *Model) ClearBusy() {
	m.Busy = false
	m.BusyMessage = ""
}
