package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"helpsync/types"
)

// maxLogLines is how many activity lines the dashboard shows
const maxLogLines = 10

// Model represents the dashboard state (thin client)
type Model struct {
	Backend Backend

	// Local UI state (synced from the server)
	Status *types.StatusResponse
	Err    error
	Notice string

	// Confirming is set while the delete confirmation prompt is shown
	Confirming bool

	// Connection status
	Connected bool
}

// NewModel creates a new dashboard model
func NewModel(backend Backend) Model {
	return Model{Backend: backend}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	// Start polling immediately
	return tea.Batch(
		pollStatus(m.Backend),
		tickCmd(),
	)
}

// state returns the server state, idle before the first poll
func (m Model) state() types.State {
	if m.Status == nil {
		return types.StateIdle
	}
	return m.Status.State
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	if !m.Connected {
		msg := "❌ Not connected to helpsync server"
		if m.Err != nil {
			msg += ": " + m.Err.Error()
		}
		return ErrorStyle.Render(msg)
	}

	state := m.state()
	text, ok := stateText[state]
	if !ok {
		return ""
	}
	switch state {
	case types.StateIdle:
		return stateStyle(state).Render(text) + "\n\n" + InfoStyle.Render(TextIdleHint)
	case types.StateError:
		return stateStyle(state).Render(fmt.Sprintf(text, m.Status.Error))
	}
	return stateStyle(state).Render(text)
}

// progressBar renders the current progress as a text bar
func progressBar(p *types.Progress, width int) string {
	if p == nil || p.Total == 0 {
		return ""
	}
	filled := int(p.Percent() / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d/%d (%.0f%%)", bar, p.Current, p.Total, p.Percent())
}

// formatReport formats the last bulk operation for display
func formatReport(r *types.SyncReport) string {
	var b strings.Builder

	b.WriteString(HighlightStyle.Render(fmt.Sprintf("Last %s run", r.Operation)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Succeeded: %s\n", StatusStyle.Render(fmt.Sprint(r.SuccessCount))))
	b.WriteString(fmt.Sprintf("Failed: %s\n", ErrorStyle.Render(fmt.Sprint(r.FailureCount))))
	b.WriteString(fmt.Sprintf("Success rate: %.1f%%\n", r.SuccessRate()))

	shown := 0
	for _, item := range r.Items {
		if item.Outcome != types.OutcomeFailure {
			continue
		}
		if shown == 5 {
			b.WriteString(InfoStyle.Render(fmt.Sprintf("  ... %d more failures", r.FailureCount-shown)))
			b.WriteString("\n")
			break
		}
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("  ✗ %s: %s", item.ItemID, item.Detail)))
		b.WriteString("\n")
		shown++
	}

	return b.String()
}
