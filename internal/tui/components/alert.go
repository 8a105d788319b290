package components

import (
	"instancectl/internal/tui/design"

	"github.com/charmbracelet/lipgloss"
)

// AlertKind selects the alert color.
type AlertKind int

const (
	AlertError AlertKind = iota
	AlertWarning
)

// Alert renders a bordered message box width cells wide. An empty text
// renders nothing.
func Alert(kind AlertKind, text string, width int) string {
	if text == "" {
		return ""
	}
	style := design.AlertErrorStyle
	if kind == AlertWarning {
		style = design.AlertWarningStyle
	}
	// Width covers the padding; the border is drawn outside it.
	inner := width - style.GetHorizontalBorderSize()
	if inner < design.MinPanelWidth {
		inner = design.MinPanelWidth
	}
	return style.Width(inner).Render(text)
}

// Confirm renders a yes/no dialog centered in a width x height area.
func Confirm(question, yes, no string, width, height int) string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		design.ButtonStyle.Render("[y] "+yes),
		"  ",
		design.ButtonSecondaryStyle.Render("[n] "+no),
	)
	body := lipgloss.JoinVertical(lipgloss.Center,
		design.TitleStyle.Render(question),
		buttons,
	)
	box := design.CenteredOverlayContainerStyle.Render(body)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
