package view

import (
	"instancectl/internal/tui/components"
	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
)

// SessionExpiredText is shown on the login screen after an expired OIDC session.
const SessionExpiredText = "Your session has expired. Log in again to continue."

func renderLogin(m *model.Model, width int) string {
	parts := []string{
		design.TitleStyle.Render("Log in to the cluster"),
		design.SubtitleStyle.Render("Paste a token, or press ctrl+o to reuse an auth proxy session."),
	}

	if m.Auth.SessionExpired {
		parts = append(parts, components.Alert(components.AlertWarning, SessionExpiredText, width))
	}
	if m.Auth.ErrorMsg != "" {
		parts = append(parts, components.Alert(components.AlertError, m.Auth.ErrorMsg, width))
	}

	inputStyle := design.InputStyle
	if m.TokenInput.Focused() {
		inputStyle = design.InputFocusedStyle
	}
	parts = append(parts, inputStyle.Render(m.TokenInput.View()))

	if m.Busy {
		parts = append(parts, m.Spinner.View()+" "+design.DimStyle.Render(m.BusyMessage))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
