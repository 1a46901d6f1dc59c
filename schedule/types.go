/*
Package schedule generates shift assignments from role templates.

PURPOSE:
  The auto-scheduler materializes candidate shifts from active RoleShift
  patterns over a resolved date range, fills them against externally
  provided qualified/available staff using a pluggable algorithm, and
  either returns the plan as a preview or persists it shift by shift.

TWO-PHASE PROTOCOL:
  Preview: never touches the store beyond reads. Safe to run concurrently
           with anything.
  Commit:  persists each planned shift via ShiftStore.Create, continuing
           past individual failures and reporting the true persisted count.

KEY CONCEPTS IN THIS FILE (types.go):
  - Request/Response: the scheduling contract
  - PlannedShift: one candidate seat, filled or not
  - Stats: coverage bookkeeping
  - Run: the Draft -> Previewed -> Committed workflow object

SEE ALSO:
  - scheduler.go: Orchestration
  - algorithms.go: Simple and Balanced pickers
  - materialize.go: Pattern -> candidate expansion
*/
package schedule

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// REQUEST / RESPONSE
// =============================================================================

type Algorithm string

const (
	AlgorithmSimple   Algorithm = "simple"
	AlgorithmBalanced Algorithm = "balanced"
)

type Request struct {
	CompanyID rota.CompanyID
	Period    rota.SchedulePeriod

	// Required iff Period is custom.
	StartDate string // "YYYY-MM-DD"
	EndDate   string // "YYYY-MM-DD", inclusive

	Algorithm        Algorithm
	AutoCreateShifts bool // false = preview, true = commit
}

// PlannedShift is one candidate seat produced by a scheduling run.
type PlannedShift struct {
	ShiftID          string
	Title            string
	RoleName         string
	StartTime        time.Time
	EndTime          time.Time
	DurationHours    decimal.Decimal
	IsFilled         bool
	UserID           *rota.StaffID
	UserName         string
	AssignmentReason string

	// Error is set on commit when this shift failed to persist.
	Error string

	roleID      rota.RoleID
	roleShiftID rota.RoleShiftID
	companyID   rota.CompanyID
}

type Stats struct {
	TotalShifts        int
	FilledShifts       int
	UnfilledShifts     int
	CoveragePercentage float64

	// CreatedShifts is the number actually persisted; zero on preview.
	CreatedShifts int
}

type Response struct {
	DateRange   rota.Range
	Shifts      []PlannedShift
	Stats       Stats
	Warnings    []string
	Suggestions []string
}

// coverage returns round(100*filled/total), computed in decimal to keep the
// rounding exact.
func coverage(filled, total int) float64 {
	if total == 0 {
		return 0
	}
	pct, _ := decimal.NewFromInt(int64(filled * 100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).Float64()
	return pct
}

// =============================================================================
// STAFF & AVAILABILITY - External directory contract
// =============================================================================

type Staff struct {
	ID   rota.StaffID
	Name string
}

// AvailabilityProvider is the external staff directory and leave system.
// The engine consumes qualification and leave results; it never computes
// them itself.
type AvailabilityProvider interface {
	// QualifiedStaff returns the staff eligible to work the role.
	QualifiedStaff(ctx context.Context, role rota.Role) ([]Staff, error)

	// OnLeave reports whether the staff member has approved leave covering
	// the given day.
	OnLeave(ctx context.Context, staffID rota.StaffID, day time.Time) (bool, error)
}
