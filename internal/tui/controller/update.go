package controller

import (
	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"
	"instancectl/internal/tui/view"
	"instancectl/pkg/logging"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const controllerSubsystem = "TUI"

// Update routes msg to its handler and refreshes derived view state.
func Update(msg tea.Msg, m *model.Model) (*model.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		handleWindowSize(m, msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = handleKeyMsg(m, msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		cmds = append(cmds, cmd)

	case model.ClearStatusBarMsg:
		m.StatusBarMessage = ""
		m.StatusBarClearCancel = nil

	case model.NewLogEntryMsg:
		handleNewLogEntry(m, msg)
		cmds = append(cmds, model.ListenForLogEntriesCmd(m.LogChannel))

	case model.StateChangeMsg:
		cmds = append(cmds, handleStateChange(m, msg), model.ListenForStateChangesCmd(m.Subscription))

	case model.AuthResultMsg:
		cmds = append(cmds, handleAuthResult(m, msg))

	case model.CookieCheckResultMsg:
		cmds = append(cmds, handleCookieCheckResult(m, msg))

	case model.LogoutResultMsg:
		cmds = append(cmds, handleLogoutResult(m, msg))

	case model.ExpireSessionResultMsg:
		if msg.Err != nil {
			logging.Error(controllerSubsystem, msg.Err, "Failed to end expired session")
		}

	case model.InstanceLoadedMsg:
		cmds = append(cmds, handleInstanceLoaded(m, msg))

	case model.DeployResultMsg:
		cmds = append(cmds, handleDeployResult(m, msg))

	default:
		// Cursor blink and similar component messages.
		cmds = append(cmds, forwardToFocused(m, msg))
	}

	refreshLogViewport(m)
	return m, tea.Batch(cmds...)
}

func handleWindowSize(m *model.Model, msg tea.WindowSizeMsg) {
	m.Width = msg.Width
	m.Height = msg.Height

	bodyHeight := max(m.Height-view.Chrome, 0)
	panelHeight := max(bodyHeight-view.EditorReserved-design.EditorStyle.GetVerticalFrameSize(), 3)

	m.Editor.SetWidth(max(m.Width-design.EditorStyle.GetHorizontalFrameSize(), design.MinPanelWidth))
	m.Editor.SetHeight(panelHeight)

	m.DiffViewport.Width = max(m.Width-design.DiffPanelStyle.GetHorizontalFrameSize(), design.MinPanelWidth)
	m.DiffViewport.Height = panelHeight

	m.TokenInput.Width = max(min(60, m.Width-design.InputStyle.GetHorizontalFrameSize()-2), 10)

	m.LogViewport.Width, m.LogViewport.Height = view.LogOverlaySize(m.Width, bodyHeight)
	m.Help.Width = m.Width

	m.ActivityLogDirty = true
	refreshDiff(m)
}

func handleNewLogEntry(m *model.Model, msg model.NewLogEntryMsg) {
	if msg.Entry.Level >= logging.LevelInfo || m.DebugMode {
		model.AddRawLineToActivityLog(m, model.FormatLogEntry(msg.Entry))
	}
}

func forwardToFocused(m *model.Model, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.CurrentAppMode == model.ModeLogin:
		m.TokenInput, cmd = m.TokenInput.Update(msg)
	case m.CurrentAppMode == model.ModeEditor && m.ActiveTab == model.TabYAML:
		m.Editor, cmd = m.Editor.Update(msg)
	}
	return cmd
}

// refreshDiff recomputes the diff tab content from the form.
func refreshDiff(m *model.Model) {
	if m.Form == nil {
		m.DiffViewport.SetContent("")
		return
	}
	m.DiffViewport.SetContent(view.PrepareDiffContent(m.Form.Diff().Text))
}

func refreshLogViewport(m *model.Model) {
	if !m.ActivityLogDirty {
		return
	}
	atBottom := m.LogViewport.AtBottom()
	m.LogViewport.SetContent(view.PrepareLogContent(m.ActivityLog, m.LogViewport.Width))
	if m.CurrentAppMode != model.ModeLogOverlay || atBottom {
		m.LogViewport.GotoBottom()
	}
	m.ActivityLogDirty = false
}
