package workflow

import (
	"context"
	"fmt"

	"helpsync/types"
)

// Action names a workflow operation that can be started in the background
type Action string

const (
	ActionFetch   Action = "fetch"
	ActionCompare Action = "compare"
	ActionUpload  Action = "upload"
	ActionDelete  Action = "delete"
	ActionRun     Action = "run"
)

// Request describes one background operation
type Request struct {
	Action            Action
	KnowledgeSourceID string
	IDs               []string
}

// ErrBusy is returned by Start while another operation is running
type ErrBusy struct {
	State types.State
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("operation already running (state=%s)", e.State)
}

// Start claims the session and launches req in the background.
// It fails with *ErrBusy when an operation is already in flight.
func (r *Runner) Start(ctx context.Context, req Request) error {
	begin, run, err := r.operation(req)
	if err != nil {
		return err
	}
	if err := r.stateManager.TryBegin(begin); err != nil {
		return &ErrBusy{State: r.stateManager.GetState()}
	}

	go func() {
		if err := run(ctx); err != nil {
			r.logger.Printf("❌ %s failed: %v", req.Action, err)
		}
	}()
	return nil
}

// operation returns the state req begins in and the work to run once it is claimed
func (r *Runner) operation(req Request) (types.State, func(context.Context) error, error) {
	switch req.Action {
	case ActionFetch:
		return types.StateFetching, r.runFetch, nil
	case ActionCompare:
		return types.StateComparing, func(ctx context.Context) error {
			return r.runCompare(ctx, req.KnowledgeSourceID)
		}, nil
	case ActionUpload:
		return types.StateUploading, func(ctx context.Context) error {
			_, err := r.runUpload(ctx, req.IDs)
			return err
		}, nil
	case ActionDelete:
		return types.StateDeleting, func(ctx context.Context) error {
			_, err := r.runDelete(ctx, req.IDs)
			return err
		}, nil
	case ActionRun:
		return types.StateFetching, r.runWorkflow, nil
	}
	return "", nil, fmt.Errorf("unknown action %q", req.Action)
}
