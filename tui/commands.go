package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PollInterval is how often the dashboard refreshes
const PollInterval = 500 * time.Millisecond

// pollStatus creates a command to poll server status
func pollStatus(backend Backend) tea.Cmd {
	return func() tea.Msg {
		status, err := backend.GetStatus(context.Background())
		return StatusUpdateMsg{
			Status: status,
			Err:    err,
		}
	}
}

// trigger creates a command that starts action on the server
func trigger(backend Backend, action string, body interface{}) tea.Cmd {
	return func() tea.Msg {
		err := backend.Trigger(context.Background(), action, body)
		return ActionStartedMsg{Action: action, Err: err}
	}
}

// tickCmd creates a command that ticks every PollInterval
func tickCmd() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
