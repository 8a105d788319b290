package components

import (
	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar represents the bottom status bar
type StatusBar struct {
	Width       int
	Message     string
	MessageType model.MessageType
	LeftText    string
	RightText   string
	ShowMessage bool
}

// NewStatusBar creates a new status bar
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{Width: width}
}

// WithMessage sets a status message
func (s *StatusBar) WithMessage(message string, msgType model.MessageType) *StatusBar {
	s.Message = message
	s.MessageType = msgType
	s.ShowMessage = message != ""
	return s
}

// WithLeftText sets the left side text
func (s *StatusBar) WithLeftText(text string) *StatusBar {
	s.LeftText = text
	return s
}

// WithRightText sets the right side text
func (s *StatusBar) WithRightText(text string) *StatusBar {
	s.RightText = text
	return s
}

// Render returns the styled status bar
func (s *StatusBar) Render() string {
	var content string
	switch {
	case s.ShowMessage:
		content = s.Message
	case s.LeftText != "" && s.RightText != "":
		content = spread(s.LeftText, s.RightText, s.Width-design.SpaceSM*2)
	case s.LeftText != "":
		content = s.LeftText
	default:
		content = s.RightText
	}

	width := max(s.Width, 0)
	return s.style().
		Width(width).
		MaxWidth(width).
		Render(content)
}

func (s *StatusBar) style() lipgloss.Style {
	if !s.ShowMessage {
		return design.StatusBarStyle
	}
	switch s.MessageType {
	case model.StatusBarSuccess:
		return design.StatusBarSuccessStyle
	case model.StatusBarError:
		return design.StatusBarErrorStyle
	case model.StatusBarWarning:
		return design.StatusBarWarningStyle
	default:
		return design.StatusBarInfoStyle
	}
}
