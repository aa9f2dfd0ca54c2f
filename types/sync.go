package types

import (
	"encoding/json"
	"time"
)

// Operation names a bulk sync operation
type Operation string

const (
	OperationCreate Operation = "create"
	OperationDelete Operation = "delete"
)

// Outcome is the result of one item in a bulk operation
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ItemResult records what happened to one article during a bulk operation
type ItemResult struct {
	ItemID     string          `json:"item_id"`
	Name       string          `json:"name,omitempty"`
	Outcome    Outcome         `json:"outcome"`
	StatusCode int             `json:"status_code,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	ErrorBody  json.RawMessage `json:"error_body,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// SyncReport aggregates the per-item results of one bulk operation
type SyncReport struct {
	RunID             string       `json:"run_id"`
	Operation         Operation    `json:"operation"`
	KnowledgeSourceID string       `json:"knowledge_source_id,omitempty"`
	StartedAt         time.Time    `json:"started_at"`
	FinishedAt        time.Time    `json:"finished_at"`
	SuccessCount      int          `json:"success_count"`
	FailureCount      int          `json:"failure_count"`
	Items             []ItemResult `json:"items"`
}

// Add appends an item result and updates the counters
func (r *SyncReport) Add(item ItemResult) {
	r.Items = append(r.Items, item)
	if item.Outcome == OutcomeSuccess {
		r.SuccessCount++
	} else {
		r.FailureCount++
	}
}

// Total returns the number of processed items
func (r SyncReport) Total() int {
	return r.SuccessCount + r.FailureCount
}

// SuccessRate returns the share of successful items as a percentage
func (r SyncReport) SuccessRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.Total()) * 100
}

// Progress is emitted after every processed item or fetched page.
// Total is zero when the final size is not known yet.
type Progress struct {
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Detail    string `json:"detail"`
}

// Percent returns completion in the 0-100 range
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total) * 100
}

// CallLogEntry records one remote call attempt
type CallLogEntry struct {
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	Success    bool          `json:"success"`
	Timestamp  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"duration"`
	Details    string        `json:"details"`
}
