package tui

import (
	"github.com/charmbracelet/lipgloss"

	"helpsync/types"
)

var (
	grabGreen = lipgloss.Color("#00B14F")
	deepGreen = lipgloss.Color("#00875A")
	amber     = lipgloss.Color("#FFA500")
	red       = lipgloss.Color("#E0362C")
	grey      = lipgloss.Color("#626262")
	white     = lipgloss.Color("#FAFAFA")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(grabGreen).Margin(1, 0)

	StatusStyle  = lipgloss.NewStyle().Foreground(grabGreen)
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(amber)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	InfoStyle    = lipgloss.NewStyle().Foreground(grey)

	// BoxStyle frames the last sync report
	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(deepGreen).
		Padding(1, 2)

	HighlightStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(white).
		Background(grabGreen).
		Padding(0, 1)
)

// stateStyle picks the style of the state line
func stateStyle(s types.State) lipgloss.Style {
	switch s {
	case types.StateDeleting:
		return WarningStyle
	case types.StateError:
		return ErrorStyle
	case types.StateIdle, types.StateComplete:
		return HighlightStyle
	}
	return StatusStyle
}
