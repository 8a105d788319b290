package view

import (
	"strings"

	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func renderLogOverlay(m *model.Model, width, height int) string {
	title := design.LogPanelTitleStyle.Render("Activity Log  (↑/↓ scroll  •  y copy  •  Esc close)")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.LogViewport.View())
	return design.LogOverlayStyle.
		Width(max(width-design.LogOverlayStyle.GetHorizontalFrameSize(), 0)).
		Height(max(height-design.LogOverlayStyle.GetVerticalFrameSize(), 0)).
		Render(content)
}

// LogOverlaySize returns the viewport dimensions that fit inside the overlay.
func LogOverlaySize(width, height int) (int, int) {
	w := width - design.LogOverlayStyle.GetHorizontalFrameSize()*2
	// Title line plus its margin.
	h := height - design.LogOverlayStyle.GetVerticalFrameSize()*2 - 2
	return max(w, 0), max(h, 0)
}

// PrepareLogContent truncates long lines to avoid viewport wrapping and applies
// color styles based on log level keywords.
func PrepareLogContent(lines []string, maxWidth int) string {
	out := make([]string, len(lines))
	for i, raw := range lines {
		line := raw
		if maxWidth > 0 && runewidth.StringWidth(line) > maxWidth {
			line = runewidth.Truncate(line, maxWidth, "…")
		}
		out[i] = styleLogLine(line)
	}
	return strings.Join(out, "\n")
}

func styleLogLine(l string) string {
	switch {
	case strings.Contains(l, "[ERROR]"):
		return design.LogErrorStyle.Render(l)
	case strings.Contains(l, "[WARN]"):
		return design.LogWarnStyle.Render(l)
	case strings.Contains(l, "[DEBUG]"):
		return design.LogDebugStyle.Render(l)
	default:
		return design.LogInfoStyle.Render(l)
	}
}
