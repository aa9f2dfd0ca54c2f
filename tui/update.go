package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Backend), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case ActionStartedMsg:
		return m.handleActionStarted(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Confirming {
		return m.handleConfirm(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "f", "F":
		return m.start("fetch", nil)
	case "c", "C":
		return m.start("compare", nil)
	case "u", "U":
		if m.Status == nil || m.Status.NewCount == 0 {
			m.Notice = "Nothing to upload, run compare first"
			return m, nil
		}
		return m.start("upload", nil)
	case "x", "X":
		if m.Status == nil || m.Status.OrphanedCount == 0 {
			m.Notice = "Nothing to delete"
			return m, nil
		}
		m.Confirming = true
		m.Notice = ""
		return m, nil
	}
	return m, nil
}

// handleConfirm answers the delete confirmation prompt
func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.Confirming = false
		return m.start("delete", map[string]interface{}{"confirm": true})
	case "n", "N", "esc":
		m.Confirming = false
		m.Notice = "Deletion cancelled"
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) start(action string, body interface{}) (tea.Model, tea.Cmd) {
	if m.state().Busy() {
		m.Notice = fmt.Sprintf("Busy (%s), try again when the current operation finishes", m.state())
		return m, nil
	}
	m.Notice = fmt.Sprintf("Starting %s...", action)
	return m, trigger(m.Backend, action, body)
}

// handleStatusUpdate syncs local state from the server
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.Err = nil
	m.Status = msg.Status
	return m, nil
}

// handleActionStarted reports whether the server accepted the operation
func (m Model) handleActionStarted(msg ActionStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Notice = fmt.Sprintf("Failed to start %s: %v", msg.Action, msg.Err)
		return m, nil
	}
	m.Notice = fmt.Sprintf("%s started", msg.Action)
	return m, pollStatus(m.Backend)
}
