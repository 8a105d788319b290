package controller

import (
	"strings"
	"time"

	"instancectl/internal/tui/model"
	"instancectl/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// For mocking in tests
var (
	clipboardWriteAll = clipboard.WriteAll
	statusTimeout     = 3 * time.Second
)

func handleKeyMsg(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.ForceQuit) {
		return quit(m)
	}

	switch m.CurrentAppMode {
	case model.ModeLogOverlay:
		return handleLogOverlayKey(m, msg)
	case model.ModeRestoreConfirm:
		return handleRestoreConfirmKey(m, msg)
	}

	if key.Matches(msg, m.Keys.ToggleLog) {
		m.LastAppMode = m.CurrentAppMode
		m.CurrentAppMode = model.ModeLogOverlay
		m.ActivityLogDirty = true
		return m, nil
	}

	switch m.CurrentAppMode {
	case model.ModeLogin:
		return handleLoginKey(m, msg)
	case model.ModeEditor:
		return handleEditorKey(m, msg)
	}
	return m, nil
}

func quit(m *model.Model) (*model.Model, tea.Cmd) {
	m.QuitApp = true
	m.CurrentAppMode = model.ModeQuitting
	if m.Subscription != nil {
		m.Store.Unsubscribe(m.Subscription)
	}
	return m, tea.Quit
}

func handleLogOverlayKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.ToggleLog), key.Matches(msg, m.Keys.Esc):
		m.CurrentAppMode = m.LastAppMode
		return m, nil
	case key.Matches(msg, m.Keys.CopyLogs):
		if err := clipboardWriteAll(strings.Join(m.ActivityLog, "\n")); err != nil {
			logging.Error(controllerSubsystem, err, "Failed to copy logs")
			return m, m.SetStatusMessage("Copy logs failed", model.StatusBarError, statusTimeout)
		}
		return m, m.SetStatusMessage("Logs copied to clipboard", model.StatusBarSuccess, statusTimeout)
	default:
		var cmd tea.Cmd
		m.LogViewport, cmd = m.LogViewport.Update(msg)
		return m, cmd
	}
}

func handleRestoreConfirmKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		m.Form.OnRestoreDefaults()
		m.Editor.SetValue(m.Form.Values())
		m.CurrentAppMode = model.ModeEditor
		refreshDiff(m)
		logging.Info(controllerSubsystem, "Draft reset to default values")
		return m, m.SetStatusMessage("Default values restored", model.StatusBarInfo, statusTimeout)
	case key.Matches(msg, m.Keys.Cancel):
		m.Form.CloseRestoreModal()
		m.CurrentAppMode = model.ModeEditor
	}
	return m, nil
}

func handleLoginKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Submit):
		if m.Busy {
			return m, nil
		}
		token := strings.TrimSpace(m.TokenInput.Value())
		if token == "" {
			return m, m.SetStatusMessage("Enter a token first", model.StatusBarWarning, statusTimeout)
		}
		m.SetBusy("Logging in")
		return m, model.AuthenticateCmd(m.Session, token, m.CommandTimeout)

	case key.Matches(msg, m.Keys.CheckCookie):
		if m.Busy {
			return m, nil
		}
		m.SetBusy("Checking auth proxy session")
		return m, model.CheckCookieCmd(m.Session, m.CommandTimeout)
	}

	var cmd tea.Cmd
	m.TokenInput, cmd = m.TokenInput.Update(msg)
	return m, cmd
}

func handleEditorKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Logout):
		if m.Busy {
			return m, nil
		}
		m.SetBusy("Logging out")
		return m, model.LogoutCmd(m.Session, m.CommandTimeout)

	case key.Matches(msg, m.Keys.Reload):
		if m.Busy {
			return m, nil
		}
		m.SetBusy("Loading instance")
		return m, model.LoadInstanceCmd(m.Instance, m.CommandTimeout)
	}

	if m.Form == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Tab):
		if m.ActiveTab == model.TabYAML {
			m.ActiveTab = model.TabDiff
			m.Editor.Blur()
			refreshDiff(m)
			m.DiffViewport.GotoTop()
			return m, nil
		}
		m.ActiveTab = model.TabYAML
		return m, m.Editor.Focus()

	case key.Matches(msg, m.Keys.Deploy):
		return submit(m)

	case key.Matches(msg, m.Keys.RestoreDefaults):
		m.Form.OpenRestoreModal()
		m.LastAppMode = model.ModeEditor
		m.CurrentAppMode = model.ModeRestoreConfirm
		return m, nil

	case key.Matches(msg, m.Keys.CopyDiff):
		diff := m.Form.Diff()
		if diff.Empty {
			return m, m.SetStatusMessage(diff.EmptyText, model.StatusBarInfo, statusTimeout)
		}
		if err := clipboardWriteAll(diff.Text); err != nil {
			logging.Error(controllerSubsystem, err, "Failed to copy diff")
			return m, m.SetStatusMessage("Copy diff failed", model.StatusBarError, statusTimeout)
		}
		return m, m.SetStatusMessage("Diff copied to clipboard", model.StatusBarSuccess, statusTimeout)
	}

	if m.ActiveTab == model.TabDiff {
		if key.Matches(msg, m.Keys.Quit) {
			return quit(m)
		}
		var cmd tea.Cmd
		m.DiffViewport, cmd = m.DiffViewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Editor, cmd = m.Editor.Update(msg)
	if v := m.Editor.Value(); v != m.Form.Values() {
		m.Form.OnDraftChange(v)
	}
	return m, cmd
}

func submit(m *model.Model) (*model.Model, tea.Cmd) {
	if m.Busy {
		return m, nil
	}
	m.PendingDeploy = nil
	if err := m.Form.OnSubmit(); err != nil {
		return m, m.SetStatusMessage("The draft cannot be deployed", model.StatusBarError, statusTimeout)
	}
	u := m.PendingDeploy
	m.PendingDeploy = nil
	if u == nil {
		return m, nil
	}
	m.SetBusy("Deploying")
	return m, model.DeployCmd(m.Instance, u, m.CommandTimeout)
}
