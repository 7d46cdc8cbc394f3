package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/enginesniff/enginesniff/internal/scan"
)

// Run opens the interactive view over res until the user quits.
func Run(res scan.Result, rescanFunc func() (scan.Result, error)) error {
	m := NewModel(res, rescanFunc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
