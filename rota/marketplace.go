package rota

import (
	"context"
	"time"
)

// =============================================================================
// OPEN SHIFT MARKETPLACE
// =============================================================================
//
// Lists unassigned shifts and records staff requests to claim them. The
// approval workflow (and conversion of a claim into an assignment) lives in
// the integrating system; this engine only records the request.

type Marketplace struct {
	Shifts ShiftStore
	Claims ClaimStore
	Clock  func() time.Time
}

func NewMarketplace(shifts ShiftStore, claims ClaimStore) *Marketplace {
	return &Marketplace{Shifts: shifts, Claims: claims, Clock: time.Now}
}

// ListOpen returns all open shifts starting in the range.
func (m *Marketplace) ListOpen(ctx context.Context, r Range) ([]Shift, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	shifts, err := m.Shifts.Query(ctx, r, nil)
	if err != nil {
		return nil, err
	}
	open := shifts[:0:0]
	for _, s := range shifts {
		if s.Type == TypeOpen {
			open = append(open, s)
		}
	}
	return open, nil
}

// RequestClaim records a pending claim on an open shift. The shift must
// still be open; claiming an assigned or terminal shift is a conflict.
func (m *Marketplace) RequestClaim(ctx context.Context, shiftID ShiftID, staffID StaffID, notes string) (*ClaimRequest, error) {
	if staffID == "" {
		return nil, &ValidationError{Field: "staff_id", Message: "staff_id is required"}
	}
	shift, err := m.Shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Type != TypeOpen || shift.Status != StatusOpen {
		return nil, &ConflictError{ShiftID: shiftID, Expected: StatusOpen, Actual: shift.Status,
			Reason: "shift is no longer open"}
	}

	claim := ClaimRequest{
		ID:        NewClaimID(),
		ShiftID:   shiftID,
		StaffID:   staffID,
		Notes:     notes,
		Status:    ClaimPending,
		CreatedAt: m.Clock().UTC(),
	}
	if err := m.Claims.SaveClaim(ctx, claim); err != nil {
		return nil, err
	}
	return &claim, nil
}
