package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// RUN - Explicit Draft -> Previewed -> Committed workflow
// =============================================================================
//
// The draft/preview/confirm wizard is a first-class state machine here so
// the two-phase protocol can be driven and tested without any UI. A run can
// be committed straight from draft; a committed run is terminal.

type RunState string

const (
	RunDraft     RunState = "draft"
	RunPreviewed RunState = "previewed"
	RunCommitted RunState = "committed"
)

type Run struct {
	ID        string
	State     RunState
	Request   Request
	Response  *Response
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewRun(req Request) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        uuid.NewString(),
		State:     RunDraft,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Preview executes a dry run. Allowed from draft or previewed (re-preview
// with the same request is harmless; it regenerates the plan).
func (r *Run) Preview(ctx context.Context, s *Scheduler) (*Response, error) {
	if r.State == RunCommitted {
		return nil, &rota.ConflictError{Reason: "run already committed"}
	}
	resp, err := s.Preview(ctx, r.Request)
	if err != nil {
		return nil, err
	}
	r.State = RunPreviewed
	r.Response = resp
	r.UpdatedAt = time.Now().UTC()
	return resp, nil
}

// Commit persists the plan. Allowed from draft or previewed, once.
func (r *Run) Commit(ctx context.Context, s *Scheduler) (*Response, error) {
	if r.State == RunCommitted {
		return nil, &rota.ConflictError{Reason: "run already committed"}
	}
	resp, err := s.Commit(ctx, r.Request)
	if err != nil {
		return nil, err
	}
	r.State = RunCommitted
	r.Response = resp
	r.UpdatedAt = time.Now().UTC()
	return resp, nil
}
