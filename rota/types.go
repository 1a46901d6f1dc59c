/*
Package rota provides the core shift scheduling and roster engine.

PURPOSE:
  This package contains the domain types and algorithms for managing staff
  shift rosters: the shift model and its invariants, time-window math,
  filter composition, attendance clock-in/clock-out transitions, bulk
  deletion by calendar period, and the open-shift marketplace.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: A scheduled unit of work with a half-open [start, end) window
  - Role/RoleShift: Recurring templates used to materialize concrete shifts
  - ShiftStatus: State machine states (see transitions.go)
  - Typed IDs: Type-safe identifiers prevent mixing shift/staff/role IDs

DESIGN PRINCIPLES:
  1. Invariants live next to the type: Validate() is the single source of
     truth and is enforced at every store boundary, never trusted upstream
  2. UTC everywhere: all timestamps are normalized on validation
  3. Precision: decimal.Decimal for hour arithmetic, no float drift
  4. Templates are independent of their output: editing a RoleShift never
     retroactively alters already-materialized shifts

USAGE:
  shift := rota.Shift{
      CompanyID: "acme",
      Title:     "Morning Till",
      StartTime: start,
      EndTime:   start.Add(8 * time.Hour),
      Type:      rota.TypeAssigned,
      UserID:    &staffID,
      Status:    rota.StatusScheduled,
  }
  if err := shift.Validate(); err != nil { ... }

SEE ALSO:
  - transitions.go: Status state machine
  - timewindow.go: Week/month boundary math and period keys
  - store.go: Persistence interfaces
*/
package rota

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ShiftID string
type CompanyID string
type StaffID string
type RoleID string
type RoleShiftID string
type ClaimID string

func NewShiftID() ShiftID { return ShiftID(uuid.NewString()) }
func NewClaimID() ClaimID { return ClaimID(uuid.NewString()) }

// =============================================================================
// SHIFT - A scheduled unit of work
// =============================================================================

type ShiftType string

const (
	TypeAssigned ShiftType = "assigned"
	TypeOpen     ShiftType = "open"
)

type ShiftStatus string

const (
	StatusScheduled         ShiftStatus = "scheduled"
	StatusOpen              ShiftStatus = "open"
	StatusInProgress        ShiftStatus = "in-progress"
	StatusLate              ShiftStatus = "late"
	StatusCompleted         ShiftStatus = "completed"
	StatusCompletedEarly    ShiftStatus = "completed-early"
	StatusCompletedOvertime ShiftStatus = "completed-overtime"
	StatusCancelled         ShiftStatus = "cancelled"
)

// Location is a named place with coordinates. Geocoding is provided by an
// external location registry; this engine only stores the result.
type Location struct {
	Name    string
	Address string
	Lat     float64
	Lng     float64
}

// MaxShiftDuration bounds a single shift. Anything longer is two shifts.
const MaxShiftDuration = 24 * time.Hour

type Shift struct {
	ID          ShiftID
	CompanyID   CompanyID
	Title       string
	Description string

	// Half-open window [StartTime, EndTime), UTC.
	StartTime time.Time
	EndTime   time.Time

	Type   ShiftType
	UserID *StaffID // nil for open shifts
	Status ShiftStatus

	Location Location

	// Link back to the template that materialized this shift, if any.
	RoleID      RoleID
	RoleShiftID RoleShiftID

	ColorHex string // display metadata only

	// Attendance fields, written by the AttendanceTracker.
	ActualStart      *time.Time
	ActualEnd        *time.Time
	ClockInLocation  *Location
	ClockOutLocation *Location

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the shift invariants. Stores call this on every create
// and update regardless of what the caller already checked.
func (s *Shift) Validate() error {
	if s.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return &ValidationError{Field: "start_time", Message: "start_time and end_time are required"}
	}
	if !s.EndTime.After(s.StartTime) {
		return &ValidationError{Field: "end_time", Message: "end_time must be after start_time"}
	}
	if s.EndTime.Sub(s.StartTime) > MaxShiftDuration {
		return &ValidationError{Field: "end_time", Message: "shift duration exceeds 24 hours"}
	}
	switch s.Type {
	case TypeAssigned:
		if s.UserID == nil || *s.UserID == "" {
			return &ValidationError{Field: "user_id", Message: "assigned shift requires a user_id"}
		}
	case TypeOpen:
		if s.UserID != nil {
			return &ValidationError{Field: "user_id", Message: "open shift must not have a user_id"}
		}
	default:
		return &ValidationError{Field: "type", Message: "type must be assigned or open"}
	}
	if !validStatus(s.Status) {
		return &ValidationError{Field: "status", Message: "unknown status: " + string(s.Status)}
	}
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()
	return nil
}

func validStatus(st ShiftStatus) bool {
	switch st {
	case StatusScheduled, StatusOpen, StatusInProgress, StatusLate,
		StatusCompleted, StatusCompletedEarly, StatusCompletedOvertime, StatusCancelled:
		return true
	}
	return false
}

func (s Shift) Duration() time.Duration { return s.EndTime.Sub(s.StartTime) }

// DurationHours returns the scheduled length in hours, exact to the minute.
func (s Shift) DurationHours() decimal.Decimal {
	return decimal.NewFromInt(int64(s.Duration() / time.Minute)).
		Div(decimal.NewFromInt(60)).Round(2)
}

// WorkedHours returns actual hours between clock-in and clock-out, or zero
// if the shift has not been fully worked.
func (s Shift) WorkedHours() decimal.Decimal {
	if s.ActualStart == nil || s.ActualEnd == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.ActualEnd.Sub(*s.ActualStart) / time.Minute)).
		Div(decimal.NewFromInt(60)).Round(2)
}

// Overlaps reports whether two half-open shift windows intersect.
func (s Shift) Overlaps(other Shift) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}

// IsCompleted reports whether the shift reached any terminal completion state.
func (s Shift) IsCompleted() bool {
	switch s.Status {
	case StatusCompleted, StatusCompletedEarly, StatusCompletedOvertime:
		return true
	}
	return false
}

// =============================================================================
// ROLE - A job-function template that materializes shifts
// =============================================================================

type Role struct {
	ID             RoleID
	CompanyID      CompanyID
	Title          string
	QualifiedUsers []StaffID
	Shifts         []RoleShift
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RoleShift is a recurring weekly pattern. StartDay != EndDay means the
// pattern crosses midnight.
type RoleShift struct {
	ID            RoleShiftID
	Name          string
	StartDay      time.Weekday
	EndDay        time.Weekday
	StartTime     string // "HH:MM"
	EndTime       string // "HH:MM"
	RequiredStaff int
	Tasks         []string
	IsActive      bool
}

// Validate checks the pattern's clock strings and headcount.
func (rs *RoleShift) Validate() error {
	if rs.Name == "" {
		return &ValidationError{Field: "name", Message: "pattern name is required"}
	}
	if _, _, err := ParseClock(rs.StartTime); err != nil {
		return &ValidationError{Field: "start_time", Message: "invalid start_time: " + rs.StartTime}
	}
	if _, _, err := ParseClock(rs.EndTime); err != nil {
		return &ValidationError{Field: "end_time", Message: "invalid end_time: " + rs.EndTime}
	}
	if rs.RequiredStaff < 1 {
		return &ValidationError{Field: "required_staff", Message: "required_staff must be at least 1"}
	}
	return nil
}

// IsQualified reports whether the staff member is in the role's qualified set.
func (r Role) IsQualified(id StaffID) bool {
	for _, q := range r.QualifiedUsers {
		if q == id {
			return true
		}
	}
	return false
}

// =============================================================================
// CLAIM REQUEST - Marketplace record, approved externally
// =============================================================================

type ClaimStatus string

const (
	ClaimPending ClaimStatus = "pending"
)

type ClaimRequest struct {
	ID        ClaimID
	ShiftID   ShiftID
	StaffID   StaffID
	Notes     string
	Status    ClaimStatus
	CreatedAt time.Time
}
