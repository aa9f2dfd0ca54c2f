package tui

import (
	"time"

	"helpsync/types"
)

// Messages for the tea program (polling-based)

// StatusUpdateMsg is sent when we receive status from the server
type StatusUpdateMsg struct {
	Status *types.StatusResponse
	Err    error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}

// ActionStartedMsg is sent when the server accepted or refused an operation
type ActionStartedMsg struct {
	Action string
	Err    error
}
