package types

import "time"

// State represents the sync session state machine
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateClassifying State = "classifying"
	StateComparing   State = "comparing"
	StateUploading   State = "uploading"
	StateDeleting    State = "deleting"
	StateComplete    State = "complete"
	StateError       State = "error"
)

// Busy reports whether an operation is in flight
func (s State) Busy() bool {
	switch s {
	case StateFetching, StateClassifying, StateComparing, StateUploading, StateDeleting:
		return true
	}
	return false
}

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// StatusResponse is the JSON response for GET /api/status
type StatusResponse struct {
	State             State       `json:"state"`
	Logs              []LogEntry  `json:"logs"`
	Progress          *Progress   `json:"progress,omitempty"`
	SourceCount       int         `json:"source_count"`
	ProductionCount   int         `json:"production_count"`
	ExcludedCount     int         `json:"excluded_count"`
	ExistingCount     int         `json:"existing_count"`
	NewCount          int         `json:"new_count"`
	OrphanedCount     int         `json:"orphaned_count"`
	KnowledgeSourceID string      `json:"knowledge_source_id,omitempty"`
	Truncated         bool        `json:"truncated,omitempty"`
	LastReport        *SyncReport `json:"last_report,omitempty"`
	Error             string      `json:"error,omitempty"`
}
