/*
errors.go - Centralized error types for the roster engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these to HTTP statuses via the Is* helpers.

ERROR CATEGORIES:
  1. Validation errors - Shift/selector invariant violations
  2. Conflict errors   - State machine or double-booking conflicts
  3. Authorization errors - Non-owner clock actions
  4. Not-found errors  - Unknown shift/role/claim ids
  5. Partial failure   - Aggregate result of bulk/commit operations

USAGE:
  if errors.Is(err, rota.ErrConflict) { ... }

  var authErr *rota.AuthorizationError
  if errors.As(err, &authErr) { ... }
*/
package rota

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all invariant violations.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a shift is not in the expected state for
	// the requested transition, or a seat is already filled.
	ErrConflict = errors.New("conflict")

	// ErrNotAuthorized is returned for clock actions by a non-assignee.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrShiftNotFound is returned on unknown shift ids.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrRoleNotFound is returned on unknown role ids.
	ErrRoleNotFound = errors.New("role not found")

	// ErrPartialFailure marks an aggregate result where some items failed.
	ErrPartialFailure = errors.New("some operations failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field violated an invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports a state machine violation on a specific shift.
type ConflictError struct {
	ShiftID  ShiftID
	Expected ShiftStatus
	Actual   ShiftStatus
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("conflict on shift %s: %s", e.ShiftID, e.Reason)
	}
	return fmt.Sprintf("conflict on shift %s: status is %q, want %q", e.ShiftID, e.Actual, e.Expected)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AuthorizationError reports a clock action by someone other than the assignee.
type AuthorizationError struct {
	StaffID StaffID
	ShiftID ShiftID
	Reason  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("staff %s not authorized on shift %s: %s", e.StaffID, e.ShiftID, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return ErrNotAuthorized }

// PartialFailure aggregates per-item errors from a bulk or commit operation.
// The operation never aborts on first error; callers inspect Errs.
type PartialFailure struct {
	Succeeded int
	Failed    int
	Errs      []error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("partial failure: %d succeeded, %d failed", e.Succeeded, e.Failed)
}

func (e *PartialFailure) Unwrap() error { return ErrPartialFailure }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict returns true for state machine or double-booking conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound) || errors.Is(err, ErrRoleNotFound)
}

// IsNotAuthorized returns true for ownership violations.
func IsNotAuthorized(err error) bool {
	return errors.Is(err, ErrNotAuthorized)
}
