/*
attendance.go - Clock-in/clock-out state transitions

PURPOSE:
  Moves a shift through the attendance portion of the state machine and
  records the actual worked window and clock locations.

TRANSITIONS:
  clock-in:  scheduled -> in-progress
  clock-out: in-progress -> completed | completed-early | completed-overtime

CLASSIFICATION:
  With scheduled end E and grace period g (default 15 minutes):
    now <  E - g  => completed-early
    now >  E + g  => completed-overtime
    otherwise     => completed

AUTHORIZATION:
  Only the assigned staff member may clock a shift. Anyone else gets an
  AuthorizationError and the shift is left untouched.

CONCURRENCY:
  Both operations go through ShiftStore.TransitionStatus, which does a
  compare-and-swap on the status, so two devices racing on the same shift
  resolve to exactly one winner.
*/
package rota

import (
	"context"
	"time"
)

// DefaultGracePeriod is the clock-out classification threshold.
const DefaultGracePeriod = 15 * time.Minute

type AttendanceTracker struct {
	Store       ShiftStore
	GracePeriod time.Duration
}

func NewAttendanceTracker(store ShiftStore) *AttendanceTracker {
	return &AttendanceTracker{Store: store, GracePeriod: DefaultGracePeriod}
}

// ClockIn transitions a scheduled shift to in-progress and records the
// actual start and location.
func (at *AttendanceTracker) ClockIn(ctx context.Context, shiftID ShiftID, staffID StaffID, loc Location, now time.Time) (*Shift, error) {
	shift, err := at.Store.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.UserID == nil || *shift.UserID != staffID {
		return nil, &AuthorizationError{StaffID: staffID, ShiftID: shiftID, Reason: "not the assigned staff member"}
	}
	if shift.Status != StatusScheduled {
		return nil, &ConflictError{ShiftID: shiftID, Expected: StatusScheduled, Actual: shift.Status}
	}

	now = now.UTC()
	return at.Store.TransitionStatus(ctx, shiftID, StatusScheduled, StatusInProgress, func(s *Shift) {
		s.ActualStart = &now
		l := loc
		s.ClockInLocation = &l
	})
}

// ClockOut transitions an in-progress shift to its completion state and
// records the actual end and location.
func (at *AttendanceTracker) ClockOut(ctx context.Context, shiftID ShiftID, staffID StaffID, loc Location, now time.Time) (*Shift, error) {
	shift, err := at.Store.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.UserID == nil || *shift.UserID != staffID {
		return nil, &AuthorizationError{StaffID: staffID, ShiftID: shiftID, Reason: "not the assigned staff member"}
	}
	if shift.Status != StatusInProgress {
		return nil, &ConflictError{ShiftID: shiftID, Expected: StatusInProgress, Actual: shift.Status}
	}

	now = now.UTC()
	target := at.classify(shift.EndTime, now)
	return at.Store.TransitionStatus(ctx, shiftID, StatusInProgress, target, func(s *Shift) {
		s.ActualEnd = &now
		l := loc
		s.ClockOutLocation = &l
	})
}

func (at *AttendanceTracker) classify(end, now time.Time) ShiftStatus {
	g := at.GracePeriod
	if g <= 0 {
		g = DefaultGracePeriod
	}
	switch {
	case now.Before(end.Add(-g)):
		return StatusCompletedEarly
	case now.After(end.Add(g)):
		return StatusCompletedOvertime
	default:
		return StatusCompleted
	}
}
