package view

import (
	"fmt"
	"strings"

	"instancectl/internal/tui/components"
	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
)

// Chrome is the number of lines taken by the header, status bar and help line.
const Chrome = 3

// Render renders the current UI.
func Render(m *model.Model) string {
	if m.CurrentAppMode == model.ModeQuitting {
		return "Bye.\n"
	}
	if m.Width == 0 || m.Height == 0 {
		return "Initializing..."
	}

	bodyHeight := max(m.Height-Chrome, 0)

	var body string
	switch m.CurrentAppMode {
	case model.ModeLogin:
		body = renderLogin(m, m.Width)
	case model.ModeEditor:
		body = renderEditor(m, m.Width)
	case model.ModeRestoreConfirm:
		body = components.Confirm(model.RestoreConfirmText, "Restore", "Cancel", m.Width, bodyHeight)
	case model.ModeLogOverlay:
		body = renderLogOverlay(m, m.Width, bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m),
		body,
		renderStatusBar(m),
		m.Help.View(m.HelpKeys()),
	)
}

func renderHeader(m *model.Model) string {
	h := components.NewHeader("instancectl").WithWidth(m.Width)
	if t := targetLabel(m); t != "" {
		h.WithSubtitle(t)
	}
	if m.Busy {
		h.WithSpinner(m.Spinner.View())
	}

	phase := m.Auth.Phase().String()
	right := design.PhaseStyle(phase).Render(phase)
	if m.Auth.OIDC {
		right += design.DimStyle.Render(" (oidc)")
	}
	return h.WithRightContent(right).Render()
}

func targetLabel(m *model.Model) string {
	if m.Target.Kind == "" {
		return ""
	}
	label := m.Target.Kind
	if m.Target.Name != "" {
		label += "/" + m.Target.Name
	}
	if ns := namespaceLabel(m); ns != "" {
		label += " in " + ns
	}
	return label
}

func namespaceLabel(m *model.Model) string {
	if m.Target.Namespace != "" {
		return m.Target.Namespace
	}
	return m.Namespace
}

func renderStatusBar(m *model.Model) string {
	sb := components.NewStatusBar(m.Width).
		WithMessage(m.StatusBarMessage, m.StatusBarMessageType)

	var left []string
	if m.Busy && m.BusyMessage != "" {
		left = append(left, m.BusyMessage+"...")
	} else {
		left = append(left, "mode: "+m.CurrentAppMode.String())
	}
	sb.WithLeftText(strings.Join(left, " "))

	if m.Form != nil {
		sb.WithRightText(fmt.Sprintf("on submit: %s", m.Form.DeploymentEvent()))
	}
	return sb.Render()
}
