package rota_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func staffPtr(id string) *rota.StaffID {
	s := rota.StaffID(id)
	return &s
}

// fixtureShifts returns a small roster with a mix of ownership, status,
// location, and start times around Wednesday 2025-06-11.
func fixtureShifts() []rota.Shift {
	return []rota.Shift{
		{
			ID:        "s-mine-today",
			Title:     "Morning Till",
			Type:      rota.TypeAssigned,
			UserID:    staffPtr("alice"),
			Status:    rota.StatusScheduled,
			Location:  rota.Location{Name: "Downtown"},
			StartTime: utc(2025, time.June, 11, 6, 0),
			EndTime:   utc(2025, time.June, 11, 14, 0),
		},
		{
			ID:        "s-other-week",
			Title:     "Evening Till",
			Type:      rota.TypeAssigned,
			UserID:    staffPtr("bob"),
			Status:    rota.StatusCompleted,
			Location:  rota.Location{Name: "Uptown"},
			StartTime: utc(2025, time.June, 13, 14, 0),
			EndTime:   utc(2025, time.June, 13, 22, 0),
		},
		{
			ID:        "s-open-month",
			Title:     "Weekend Cover",
			Type:      rota.TypeOpen,
			Status:    rota.StatusOpen,
			Location:  rota.Location{Name: "Downtown"},
			StartTime: utc(2025, time.June, 28, 8, 0),
			EndTime:   utc(2025, time.June, 28, 16, 0),
		},
		{
			ID:        "s-next-month",
			Title:     "Stocktake",
			Type:      rota.TypeAssigned,
			UserID:    staffPtr("alice"),
			Status:    rota.StatusScheduled,
			Location:  rota.Location{Name: "Warehouse"},
			StartTime: utc(2025, time.July, 2, 9, 0),
			EndTime:   utc(2025, time.July, 2, 17, 0),
		},
	}
}

func fixtureContext() rota.FilterContext {
	return rota.FilterContext{
		Now:         utc(2025, time.June, 11, 12, 0),
		CurrentUser: "alice",
	}
}

func ids(shifts []rota.Shift) []string {
	out := make([]string, len(shifts))
	for i, s := range shifts {
		out[i] = string(s.ID)
	}
	return out
}

// =============================================================================
// SINGLE FILTER TESTS
// =============================================================================

func TestFilter_Mine(t *testing.T) {
	// Own shifts plus all open shifts, never other people's assignments.
	got := rota.ApplyFilters(fixtureContext(), fixtureShifts(), rota.Mine())
	assert.Equal(t, []string{"s-mine-today", "s-open-month", "s-next-month"}, ids(got))
}

func TestFilter_ByStatus(t *testing.T) {
	got := rota.ApplyFilters(fixtureContext(), fixtureShifts(), rota.ByStatus("completed"))
	assert.Equal(t, []string{"s-other-week"}, ids(got))
}

func TestFilter_ByStatus_UnknownIsNoop(t *testing.T) {
	// An unrecognized status must not silently hide everything.
	got := rota.ApplyFilters(fixtureContext(), fixtureShifts(), rota.ByStatus("paused"))
	assert.Len(t, got, len(fixtureShifts()))
}

func TestFilter_ByLocation(t *testing.T) {
	got := rota.ApplyFilters(fixtureContext(), fixtureShifts(), rota.ByLocation("Downtown"))
	assert.Equal(t, []string{"s-mine-today", "s-open-month"}, ids(got))
}

func TestFilter_ByType(t *testing.T) {
	got := rota.ApplyFilters(fixtureContext(), fixtureShifts(), rota.ByType("open"))
	assert.Equal(t, []string{"s-open-month"}, ids(got))

	got = rota.ApplyFilters(fixtureContext(), fixtureShifts(), rota.ByType("anything"))
	assert.Len(t, got, len(fixtureShifts()), "unknown type is a no-op")
}

func TestFilter_RelativeDate(t *testing.T) {
	fc := fixtureContext()

	today := rota.ApplyFilters(fc, fixtureShifts(), rota.RelativeDate("today"))
	assert.Equal(t, []string{"s-mine-today"}, ids(today))

	week := rota.ApplyFilters(fc, fixtureShifts(), rota.RelativeDate("week"))
	assert.Equal(t, []string{"s-mine-today", "s-other-week"}, ids(week))

	month := rota.ApplyFilters(fc, fixtureShifts(), rota.RelativeDate("month"))
	assert.Equal(t, []string{"s-mine-today", "s-other-week", "s-open-month"}, ids(month))
}

func TestFilter_RelativeDate_ZeroStartNeverMatches(t *testing.T) {
	shifts := []rota.Shift{{ID: "s-unscheduled", Type: rota.TypeOpen, Status: rota.StatusOpen}}
	got := rota.ApplyFilters(fixtureContext(), shifts, rota.RelativeDate("week"))
	assert.Empty(t, got)
}

// =============================================================================
// COMPOSITION TESTS
// =============================================================================

func TestApplyFilters_ConjunctionAndOrder(t *testing.T) {
	fc := fixtureContext()
	a := rota.Mine()
	b := rota.ByLocation("Downtown")

	ab := rota.ApplyFilters(fc, fixtureShifts(), a, b)
	ba := rota.ApplyFilters(fc, fixtureShifts(), b, a)

	// AND semantics: both predicates hold; order never changes the result.
	assert.Equal(t, []string{"s-mine-today", "s-open-month"}, ids(ab))
	assert.Equal(t, ids(ab), ids(ba))
}

func TestApplyFilters_NoFiltersReturnsAll(t *testing.T) {
	in := fixtureShifts()
	got := rota.ApplyFilters(fixtureContext(), in)
	assert.Equal(t, ids(in), ids(got))
}

func TestApplyFilters_PreservesInputOrder(t *testing.T) {
	in := fixtureShifts()
	got := rota.ApplyFilters(fixtureContext(), in, rota.ByStatus("scheduled"))
	assert.Equal(t, []string{"s-mine-today", "s-next-month"}, ids(got))
}
