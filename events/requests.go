package events

import (
	"context"
	"encoding/json"
	"log"
)

// Action names an operation that may be triggered from Kafka.
// Deletion is not triggerable: it needs operator confirmation.
type Action string

const (
	ActionFetch   Action = "fetch"
	ActionCompare Action = "compare"
	ActionUpload  Action = "upload"
	ActionRun     Action = "run"
)

// SyncRequest is the message consumed from the request topic
type SyncRequest struct {
	RequestID         string   `json:"request_id"`
	Action            Action   `json:"action"`
	KnowledgeSourceID string   `json:"knowledge_source_id,omitempty"`
	IDs               []string `json:"ids,omitempty"`
}

// Triggerable reports whether the action may be started from Kafka
func (a Action) Triggerable() bool {
	switch a {
	case ActionFetch, ActionCompare, ActionUpload, ActionRun:
		return true
	}
	return false
}

// Dispatcher executes a validated request
type Dispatcher func(ctx context.Context, req SyncRequest) error

// RequestHandler decodes sync requests and hands them to a Dispatcher
type RequestHandler struct {
	dispatch Dispatcher
}

// NewRequestHandler creates a handler for the request topic
func NewRequestHandler(dispatch Dispatcher) *RequestHandler {
	return &RequestHandler{dispatch: dispatch}
}

// HandleMessage marks malformed and unsupported requests so they are skipped
// for good; a request the dispatcher refuses stays unmarked.
func (h *RequestHandler) HandleMessage(ctx context.Context, value []byte) (bool, error) {
	var req SyncRequest
	if err := json.Unmarshal(value, &req); err != nil {
		log.Printf("❌ Dropping malformed sync request: %v", err)
		return true, nil
	}
	if !req.Action.Triggerable() {
		log.Printf("❌ Unsupported sync action %q, skipping", req.Action)
		return true, nil
	}

	log.Printf("📨 Sync request %s: %s", req.RequestID, req.Action)
	if err := h.dispatch(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
