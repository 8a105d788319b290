package view

import (
	"strings"

	"instancectl/internal/tui/components"
	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
)

// EditorReserved is the number of body lines not available to the editor:
// the tab row plus room for a three line alert.
const EditorReserved = 4

func renderEditor(m *model.Model, width int) string {
	if m.Form == nil {
		return renderLoading(m, width)
	}

	diff := m.Form.Diff()
	tabs := renderTabs(m.ActiveTab, "YAML", diff.Title)

	var panel string
	if m.ActiveTab == model.TabDiff {
		if diff.Empty {
			panel = design.DiffPanelStyle.Render(design.DimStyle.Render(diff.EmptyText))
		} else {
			panel = design.DiffPanelStyle.Render(m.DiffViewport.View())
		}
	} else {
		panel = design.EditorStyle.Render(m.Editor.View())
	}

	parts := []string{tabs, panel}
	if msg := m.Form.ParseError(); msg != "" {
		parts = append(parts, components.Alert(components.AlertError, msg, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderLoading(m *model.Model, width int) string {
	if m.LoadError != "" {
		return components.Alert(components.AlertError, "Failed to load instance: "+m.LoadError, width)
	}
	return m.Spinner.View() + " " + design.DimStyle.Render("Loading instance...")
}

func renderTabs(active model.Tab, titles ...string) string {
	rendered := make([]string, len(titles))
	for i, title := range titles {
		style := design.TabStyle
		if model.Tab(i) == active {
			style = design.TabActiveStyle
		}
		rendered[i] = style.Render(title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// PrepareDiffContent colors a unified diff line by line.
func PrepareDiffContent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = styleDiffLine(l)
	}
	return strings.Join(lines, "\n")
}

func styleDiffLine(l string) string {
	switch {
	case strings.HasPrefix(l, "---"), strings.HasPrefix(l, "+++"):
		return design.DiffHeaderStyle.Render(l)
	case strings.HasPrefix(l, "@@"):
		return design.DiffHunkStyle.Render(l)
	case strings.HasPrefix(l, "+"):
		return design.DiffAddedStyle.Render(l)
	case strings.HasPrefix(l, "-"):
		return design.DiffRemovedStyle.Render(l)
	default:
		return l
	}
}
