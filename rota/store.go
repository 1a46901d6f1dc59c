/*
store.go - Persistence interfaces for shifts, roles, and claims

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  ShiftStore: CRUD, half-open range query, bulk delete by period key,
              and compare-and-swap status transitions
  RoleStore:  Role template persistence
  ClaimStore: Open-shift claim request recording

INVARIANT ENFORCEMENT:
  Every implementation must call Shift.Validate() on Create and after
  applying a patch on Update, regardless of caller-side validation.

STATUS CAS:
  TransitionStatus is the only way attendance and assignment flows change
  a shift's status. It compares the current status against an expected
  value inside the store's critical section, so two devices clocking in
  on the same shift cannot both succeed.

IMPLEMENTATIONS:
  - rota/store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - transitions.go: Which status changes are legal
  - bulkdelete.go: Period selector resolution
*/
package rota

import (
	"context"
	"time"
)

// QueryScope optionally restricts a range query to one staff member.
type QueryScope struct {
	UserID *StaffID
}

// ShiftPatch is a partial update. Nil fields are left untouched.
type ShiftPatch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *Location
	ColorHex    *string

	// UserID assigns the shift. Assigning an open shift flips it to
	// assigned/scheduled. Unassign clears the assignee and reopens it.
	UserID   *StaffID
	Unassign bool

	// Status changes must be legal per ValidTransition.
	Status *ShiftStatus
}

// ShiftStore handles shift persistence.
type ShiftStore interface {
	// Query returns shifts whose start time falls in [r.Start, r.End),
	// optionally scoped to one user. Result order is by start time.
	Query(ctx context.Context, r Range, scope *QueryScope) ([]Shift, error)

	// Get returns a shift by id, or ErrShiftNotFound.
	Get(ctx context.Context, id ShiftID) (*Shift, error)

	// Create validates and persists a shift, minting an ID if absent.
	Create(ctx context.Context, s Shift) (*Shift, error)

	// Update applies a patch, re-validates, and persists.
	Update(ctx context.Context, id ShiftID, patch ShiftPatch) (*Shift, error)

	// Delete removes a single shift.
	Delete(ctx context.Context, id ShiftID) error

	// BulkDelete removes all shifts whose period key matches the selector
	// and returns the number deleted.
	BulkDelete(ctx context.Context, sel BulkDeleteSelector) (int, error)

	// TransitionStatus atomically moves a shift from the expected status to
	// the new one, applying mutate to the record inside the same critical
	// section. Returns ConflictError if the current status differs.
	TransitionStatus(ctx context.Context, id ShiftID, from, to ShiftStatus, mutate func(*Shift)) (*Shift, error)
}

// RoleStore handles role template persistence.
type RoleStore interface {
	SaveRole(ctx context.Context, role Role) error
	GetRole(ctx context.Context, id RoleID) (*Role, error)
	ListRoles(ctx context.Context, companyID CompanyID) ([]Role, error)
}

// ClaimStore records open-shift claim requests for the external approval
// workflow. Append-only: approval/denial happens outside this engine.
type ClaimStore interface {
	SaveClaim(ctx context.Context, claim ClaimRequest) error
	ListClaims(ctx context.Context) ([]ClaimRequest, error)
	ListClaimsByShift(ctx context.Context, shiftID ShiftID) ([]ClaimRequest, error)
}

// ApplyPatch mutates a shift in place per the patch, keeping the
// type/user/status coupling consistent. Shared by store implementations so
// memory and sqlite cannot drift. The caller re-validates afterwards.
func ApplyPatch(s *Shift, p ShiftPatch) error {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.StartTime != nil {
		s.StartTime = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		s.EndTime = p.EndTime.UTC()
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	if p.ColorHex != nil {
		s.ColorHex = *p.ColorHex
	}
	if p.Unassign {
		s.UserID = nil
		s.Type = TypeOpen
		s.Status = StatusOpen
	} else if p.UserID != nil {
		if s.Type == TypeOpen {
			if !ValidTransition(s.Status, StatusScheduled) {
				return &ConflictError{ShiftID: s.ID, Expected: StatusOpen, Actual: s.Status}
			}
			s.Status = StatusScheduled
		}
		s.Type = TypeAssigned
		uid := *p.UserID
		s.UserID = &uid
	}
	if p.Status != nil && *p.Status != s.Status {
		if !ValidTransition(s.Status, *p.Status) {
			return &ConflictError{ShiftID: s.ID, Actual: s.Status,
				Reason: "illegal transition " + string(s.Status) + " -> " + string(*p.Status)}
		}
		s.Status = *p.Status
	}
	return nil
}
