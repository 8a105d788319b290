package controller

import (
	"instancectl/internal/tui/model"

	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram creates the Bubble Tea program for the instance editor.
func NewProgram(cfg model.TUIConfig) (*tea.Program, error) {
	m, err := model.InitialModel(cfg)
	if err != nil {
		return nil, err
	}

	app := NewAppModel(m)
	return tea.NewProgram(app, tea.WithAltScreen()), nil
}
