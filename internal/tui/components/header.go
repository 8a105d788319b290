package components

import (
	"strings"

	"instancectl/internal/tui/design"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Header represents the application header
type Header struct {
	Title        string
	Subtitle     string
	ShowSpinner  bool
	SpinnerView  string
	Width        int
	RightContent string
}

// NewHeader creates a new header
func NewHeader(title string) *Header {
	return &Header{
		Title: title,
		Width: 80,
	}
}

// WithSubtitle adds a subtitle
func (h *Header) WithSubtitle(subtitle string) *Header {
	h.Subtitle = subtitle
	return h
}

// WithSpinner shows a spinner in the header
func (h *Header) WithSpinner(spinnerView string) *Header {
	h.ShowSpinner = true
	h.SpinnerView = spinnerView
	return h
}

// WithRightContent adds content to the right side
func (h *Header) WithRightContent(content string) *Header {
	h.RightContent = content
	return h
}

// WithWidth sets the header width
func (h *Header) WithWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header
func (h *Header) Render() string {
	var leftParts []string
	if h.ShowSpinner && h.SpinnerView != "" {
		leftParts = append(leftParts, h.SpinnerView)
	}
	leftParts = append(leftParts, h.Title)
	if h.Subtitle != "" {
		leftParts = append(leftParts, design.TextSecondaryStyle.Render(h.Subtitle))
	}
	leftContent := strings.Join(leftParts, " ")

	content := leftContent
	if h.RightContent != "" {
		content = spread(leftContent, h.RightContent, h.Width-design.SpaceSM*2)
	}

	width := max(h.Width, 0)
	return design.HeaderStyle.
		Width(width).
		MaxWidth(width).
		Render(content)
}

// spread places left and right at the edges of width, dropping right when
// both do not fit.
func spread(left, right string, width int) string {
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth+2 <= width {
		return left + strings.Repeat(" ", width-leftWidth-rightWidth) + right
	}
	return TruncateString(left, width)
}

// TruncateString cuts s to width cells.
func TruncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
