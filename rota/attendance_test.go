package rota_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/rota/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newScheduledShift persists a 09:00-17:00 shift assigned to alice.
func newScheduledShift(t *testing.T, mem *store.Memory) rota.Shift {
	t.Helper()
	shift, err := mem.Create(context.Background(), rota.Shift{
		Title:     "Front Desk",
		Type:      rota.TypeAssigned,
		UserID:    staffPtr("alice"),
		StartTime: utc(2025, time.June, 11, 9, 0),
		EndTime:   utc(2025, time.June, 11, 17, 0),
	})
	require.NoError(t, err)
	require.Equal(t, rota.StatusScheduled, shift.Status)
	return *shift
}

func clockInAlice(t *testing.T, tracker *rota.AttendanceTracker, id rota.ShiftID) {
	t.Helper()
	_, err := tracker.ClockIn(context.Background(), id, "alice",
		rota.Location{Name: "Front Door"}, utc(2025, time.June, 11, 9, 2))
	require.NoError(t, err)
}

// =============================================================================
// CLOCK-IN TESTS
// =============================================================================

func TestClockIn_TransitionsToInProgress(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	shift := newScheduledShift(t, mem)

	now := utc(2025, time.June, 11, 8, 55)
	got, err := tracker.ClockIn(context.Background(), shift.ID, "alice",
		rota.Location{Name: "Front Door", Lat: 51.5, Lng: -0.1}, now)
	require.NoError(t, err)

	assert.Equal(t, rota.StatusInProgress, got.Status)
	require.NotNil(t, got.ActualStart)
	assert.Equal(t, now, *got.ActualStart)
	require.NotNil(t, got.ClockInLocation)
	assert.Equal(t, "Front Door", got.ClockInLocation.Name)
}

func TestClockIn_WrongStaffRejected(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	shift := newScheduledShift(t, mem)

	_, err := tracker.ClockIn(context.Background(), shift.ID, "mallory",
		rota.Location{}, utc(2025, time.June, 11, 9, 0))
	require.Error(t, err)
	assert.True(t, rota.IsNotAuthorized(err))

	// The shift must be untouched.
	stored, err := mem.Get(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, rota.StatusScheduled, stored.Status)
	assert.Nil(t, stored.ActualStart)
}

func TestClockIn_TwiceConflicts(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	shift := newScheduledShift(t, mem)
	clockInAlice(t, tracker, shift.ID)

	_, err := tracker.ClockIn(context.Background(), shift.ID, "alice",
		rota.Location{}, utc(2025, time.June, 11, 9, 10))
	require.Error(t, err)
	assert.True(t, rota.IsConflict(err))
}

func TestClockIn_UnknownShift(t *testing.T) {
	tracker := rota.NewAttendanceTracker(store.NewMemory())
	_, err := tracker.ClockIn(context.Background(), "ghost", "alice",
		rota.Location{}, utc(2025, time.June, 11, 9, 0))
	assert.True(t, rota.IsNotFound(err))
}

// =============================================================================
// CLOCK-OUT CLASSIFICATION TESTS
// =============================================================================

// Shift ends 17:00 with the default 15 minute grace period.
func TestClockOut_Classification(t *testing.T) {
	tests := []struct {
		name string
		out  time.Time
		want rota.ShiftStatus
	}{
		{"well before end", utc(2025, time.June, 11, 16, 40), rota.StatusCompletedEarly},
		{"just inside early grace", utc(2025, time.June, 11, 16, 45), rota.StatusCompleted},
		{"exactly on time", utc(2025, time.June, 11, 17, 0), rota.StatusCompleted},
		{"inside late grace", utc(2025, time.June, 11, 17, 5), rota.StatusCompleted},
		{"at late grace boundary", utc(2025, time.June, 11, 17, 15), rota.StatusCompleted},
		{"past late grace", utc(2025, time.June, 11, 17, 20), rota.StatusCompletedOvertime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			tracker := rota.NewAttendanceTracker(mem)
			shift := newScheduledShift(t, mem)
			clockInAlice(t, tracker, shift.ID)

			got, err := tracker.ClockOut(context.Background(), shift.ID, "alice",
				rota.Location{Name: "Back Door"}, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			require.NotNil(t, got.ActualEnd)
			assert.Equal(t, tt.out, *got.ActualEnd)
			assert.True(t, got.IsCompleted())
		})
	}
}

func TestClockOut_WithoutClockInConflicts(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	shift := newScheduledShift(t, mem)

	_, err := tracker.ClockOut(context.Background(), shift.ID, "alice",
		rota.Location{}, utc(2025, time.June, 11, 17, 0))
	require.Error(t, err)
	assert.True(t, rota.IsConflict(err))
}

func TestClockOut_WrongStaffRejected(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	shift := newScheduledShift(t, mem)
	clockInAlice(t, tracker, shift.ID)

	_, err := tracker.ClockOut(context.Background(), shift.ID, "mallory",
		rota.Location{}, utc(2025, time.June, 11, 17, 0))
	assert.True(t, rota.IsNotAuthorized(err))
}

func TestClockOut_RecordsWorkedHours(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	shift := newScheduledShift(t, mem)

	_, err := tracker.ClockIn(context.Background(), shift.ID, "alice",
		rota.Location{}, utc(2025, time.June, 11, 9, 0))
	require.NoError(t, err)
	got, err := tracker.ClockOut(context.Background(), shift.ID, "alice",
		rota.Location{}, utc(2025, time.June, 11, 16, 30))
	require.NoError(t, err)

	assert.True(t, got.WorkedHours().Equal(decimal.NewFromFloat(7.5)),
		"worked %s hours", got.WorkedHours())
}

// =============================================================================
// CUSTOM GRACE PERIOD
// =============================================================================

func TestClockOut_CustomGracePeriod(t *testing.T) {
	mem := store.NewMemory()
	tracker := rota.NewAttendanceTracker(mem)
	tracker.GracePeriod = time.Hour
	shift := newScheduledShift(t, mem)
	clockInAlice(t, tracker, shift.ID)

	// 17:20 is overtime under the default grace but on time under an hour.
	got, err := tracker.ClockOut(context.Background(), shift.ID, "alice",
		rota.Location{}, utc(2025, time.June, 11, 17, 20))
	require.NoError(t, err)
	assert.Equal(t, rota.StatusCompleted, got.Status)
}
