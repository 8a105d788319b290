package model

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	Submit          key.Binding
	CheckCookie     key.Binding
	Tab             key.Binding
	Deploy          key.Binding
	RestoreDefaults key.Binding
	CopyDiff        key.Binding
	Logout          key.Binding
	Reload          key.Binding
	ToggleLog       key.Binding
	CopyLogs        key.Binding
	Confirm         key.Binding
	Cancel          key.Binding
	Esc             key.Binding
	Quit            key.Binding
	ForceQuit       key.Binding
	Up              key.Binding
	Down            key.Binding
}

// DefaultKeyMap returns a KeyMap with the default bindings used by the TUI.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "log in"),
		),
		CheckCookie: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "use auth proxy session"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "yaml/diff"),
		),
		Deploy: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "deploy"),
		),
		RestoreDefaults: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "restore defaults"),
		),
		CopyDiff: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy diff"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
		Reload: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("f5", "reload instance"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "toggle log"),
		),
		CopyLogs: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy logs"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "yes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
		Esc: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// loginKeys is the help shown on the login screen.
type loginKeys struct{ k KeyMap }

func (l loginKeys) ShortHelp() []key.Binding {
	return []key.Binding{l.k.Submit, l.k.CheckCookie, l.k.ToggleLog, l.k.ForceQuit}
}

func (l loginKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{l.ShortHelp()}
}

// editorKeys is the help shown on the editor screen.
type editorKeys struct {
	k       KeyMap
	diffTab bool
}

func (e editorKeys) ShortHelp() []key.Binding {
	b := []key.Binding{e.k.Tab, e.k.Deploy, e.k.RestoreDefaults, e.k.CopyDiff, e.k.Logout, e.k.ToggleLog}
	if e.diffTab {
		return append(b, e.k.Quit)
	}
	return append(b, e.k.ForceQuit)
}

func (e editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{e.ShortHelp(), {e.k.Reload, e.k.Up, e.k.Down}}
}

// HelpKeys returns the bindings to advertise for the current mode.
func (m *Model) HelpKeys() help.KeyMap {
	if m.CurrentAppMode == ModeLogin {
		return loginKeys{k: m.Keys}
	}
	return editorKeys{k: m.Keys, diffTab: m.ActiveTab == TabDiff}
}
