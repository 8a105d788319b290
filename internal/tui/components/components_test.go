package components

import (
	"strings"
	"testing"

	"instancectl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestHeader_Render(t *testing.T) {
	out := NewHeader("instancectl").
		WithSubtitle("Widget/w").
		WithRightContent("authenticated").
		WithWidth(60).
		Render()

	assert.Contains(t, out, "instancectl")
	assert.Contains(t, out, "Widget/w")
	assert.Contains(t, out, "authenticated")
	assert.Equal(t, 60, lipgloss.Width(out))
}

func TestHeader_NarrowDropsRightContent(t *testing.T) {
	out := NewHeader(strings.Repeat("t", 30)).
		WithRightContent("authenticated").
		WithWidth(20).
		Render()

	assert.NotContains(t, out, "authenticated")
	assert.LessOrEqual(t, lipgloss.Width(out), 20)
}

func TestStatusBar_Render(t *testing.T) {
	tests := []struct {
		name     string
		bar      *StatusBar
		contains []string
		excludes []string
	}{
		{
			name:     "message wins over side texts",
			bar:      NewStatusBar(60).WithLeftText("mode: editor").WithMessage("Deployed", model.StatusBarSuccess),
			contains: []string{"Deployed"},
			excludes: []string{"mode: editor"},
		},
		{
			name:     "both side texts",
			bar:      NewStatusBar(60).WithLeftText("mode: editor").WithRightText("on submit: upgrade"),
			contains: []string{"mode: editor", "on submit: upgrade"},
		},
		{
			name:     "empty message falls back to left text",
			bar:      NewStatusBar(60).WithLeftText("mode: login").WithMessage("", model.StatusBarError),
			contains: []string{"mode: login"},
		},
		{
			name: "zero width",
			bar:  NewStatusBar(0).WithLeftText("x"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.bar.Render()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestAlert(t *testing.T) {
	assert.Empty(t, Alert(AlertError, "", 40))

	out := Alert(AlertWarning, "Session expired", 40)
	assert.Contains(t, out, "Session expired")
	assert.Equal(t, 40, lipgloss.Width(out))
}

func TestConfirm(t *testing.T) {
	out := Confirm("Restore?", "Restore", "Cancel", 80, 12)

	assert.Contains(t, out, "Restore?")
	assert.Contains(t, out, "[y] Restore")
	assert.Equal(t, 12, lipgloss.Height(out))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "", TruncateString("abc", 0))
	assert.Equal(t, "abc", TruncateString("abc", 5))
	assert.LessOrEqual(t, lipgloss.Width(TruncateString("abcdefghij", 5)), 5)
}
