package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func staffPtr(id string) *rota.StaffID {
	s := rota.StaffID(id)
	return &s
}

func assignedShift(title string, staff string, start time.Time) rota.Shift {
	return rota.Shift{
		CompanyID: "acme",
		Title:     title,
		Type:      rota.TypeAssigned,
		UserID:    staffPtr(staff),
		StartTime: start,
		EndTime:   start.Add(8 * time.Hour),
		Location:  rota.Location{Name: "Downtown", Address: "1 High St", Lat: 51.5, Lng: -0.1},
		ColorHex:  "#3366FF",
	}
}

// =============================================================================
// SHIFT ROUNDTRIP
// =============================================================================

func TestSQLite_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, assignedShift("Till", "alice", utc(2025, time.June, 11, 9, 0)))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, rota.StatusScheduled, created.Status)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Till", got.Title)
	assert.Equal(t, created.StartTime, got.StartTime)
	assert.Equal(t, "Downtown", got.Location.Name)
	assert.Equal(t, 51.5, got.Location.Lat)
	assert.Equal(t, "#3366FF", got.ColorHex)
	require.NotNil(t, got.UserID)
	assert.Equal(t, rota.StaffID("alice"), *got.UserID)
}

func TestSQLite_Get_Unknown(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "ghost")
	assert.True(t, rota.IsNotFound(err))
}

func TestSQLite_Create_RejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	bad := assignedShift("Till", "alice", utc(2025, time.June, 11, 9, 0))
	bad.EndTime = bad.StartTime
	_, err := store.Create(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, rota.IsClientError(err))
}

// =============================================================================
// QUERY
// =============================================================================

func TestSQLite_Query(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, assignedShift("Early", "alice", utc(2025, time.June, 11, 6, 0)))
	require.NoError(t, err)
	_, err = store.Create(ctx, assignedShift("Late", "bob", utc(2025, time.June, 11, 14, 0)))
	require.NoError(t, err)
	_, err = store.Create(ctx, assignedShift("Next Month", "alice", utc(2025, time.July, 2, 9, 0)))
	require.NoError(t, err)

	june := rota.Range{Start: utc(2025, time.June, 1, 0, 0), End: utc(2025, time.July, 1, 0, 0)}

	all, err := store.Query(ctx, june, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Early", all[0].Title, "ordered by start time")
	assert.Equal(t, "Late", all[1].Title)

	uid := rota.StaffID("bob")
	bobs, err := store.Query(ctx, june, &rota.QueryScope{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "Late", bobs[0].Title)
}

// =============================================================================
// UPDATE / DELETE
// =============================================================================

func TestSQLite_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, assignedShift("Till", "alice", utc(2025, time.June, 11, 9, 0)))
	require.NoError(t, err)

	title := "Till (covered)"
	updated, err := store.Update(ctx, created.ID, rota.ShiftPatch{Title: &title, Unassign: true})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, rota.TypeOpen, updated.Type)
	assert.Equal(t, rota.StatusOpen, updated.Status)
	assert.Nil(t, updated.UserID)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, rota.TypeOpen, got.Type, "change persisted")
}

func TestSQLite_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, assignedShift("Till", "alice", utc(2025, time.June, 11, 9, 0)))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.True(t, rota.IsNotFound(store.Delete(ctx, created.ID)))
}

func TestSQLite_BulkDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, assignedShift("In Week", "alice", utc(2025, time.June, 9, 9, 0)))
	require.NoError(t, err)
	_, err = store.Create(ctx, assignedShift("In Week Too", "bob", utc(2025, time.June, 15, 9, 0)))
	require.NoError(t, err)
	_, err = store.Create(ctx, assignedShift("Next Week", "alice", utc(2025, time.June, 16, 9, 0)))
	require.NoError(t, err)

	n, err := store.BulkDelete(ctx, rota.BulkDeleteSelector{Week: "2025-W24"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	june := rota.Range{Start: utc(2025, time.June, 1, 0, 0), End: utc(2025, time.July, 1, 0, 0)}
	left, err := store.Query(ctx, june, nil)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Next Week", left[0].Title)
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

func TestSQLite_TransitionStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, assignedShift("Till", "alice", utc(2025, time.June, 11, 9, 0)))
	require.NoError(t, err)

	now := utc(2025, time.June, 11, 9, 2)
	got, err := store.TransitionStatus(ctx, created.ID, rota.StatusScheduled, rota.StatusInProgress,
		func(s *rota.Shift) {
			s.ActualStart = &now
			s.ClockInLocation = &rota.Location{Name: "Front Door"}
		})
	require.NoError(t, err)
	assert.Equal(t, rota.StatusInProgress, got.Status)

	// Mutations survive the roundtrip.
	stored, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualStart)
	assert.Equal(t, now, *stored.ActualStart)
	require.NotNil(t, stored.ClockInLocation)
	assert.Equal(t, "Front Door", stored.ClockInLocation.Name)

	// The same transition cannot be applied twice.
	_, err = store.TransitionStatus(ctx, created.ID, rota.StatusScheduled, rota.StatusInProgress, nil)
	require.Error(t, err)
	assert.True(t, rota.IsConflict(err))
}

func TestSQLite_TransitionStatus_IllegalEdge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, assignedShift("Till", "alice", utc(2025, time.June, 11, 9, 0)))
	require.NoError(t, err)

	_, err = store.TransitionStatus(ctx, created.ID, rota.StatusScheduled, rota.StatusCompleted, nil)
	require.Error(t, err)
	assert.True(t, rota.IsConflict(err))
}

// =============================================================================
// ROLES
// =============================================================================

func TestSQLite_Roles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	role := rota.Role{
		ID:             "role-barista",
		CompanyID:      "acme",
		Title:          "Barista",
		QualifiedUsers: []rota.StaffID{"alice", "bob"},
		Shifts: []rota.RoleShift{{
			ID:            "pat-1",
			Name:          "Morning",
			StartDay:      time.Monday,
			EndDay:        time.Monday,
			StartTime:     "08:00",
			EndTime:       "16:00",
			RequiredStaff: 2,
			IsActive:      true,
		}},
	}
	require.NoError(t, store.SaveRole(ctx, role))

	got, err := store.GetRole(ctx, "role-barista")
	require.NoError(t, err)
	assert.Equal(t, role.Title, got.Title)
	assert.Equal(t, role.QualifiedUsers, got.QualifiedUsers)
	require.Len(t, got.Shifts, 1)
	assert.Equal(t, role.Shifts[0], got.Shifts[0])

	// Saving again replaces the stored config.
	role.Title = "Senior Barista"
	require.NoError(t, store.SaveRole(ctx, role))
	got, err = store.GetRole(ctx, "role-barista")
	require.NoError(t, err)
	assert.Equal(t, "Senior Barista", got.Title)

	_, err = store.GetRole(ctx, "ghost")
	assert.True(t, rota.IsNotFound(err))

	all, err := store.ListRoles(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// CLAIMS AND RUNS
// =============================================================================

func TestSQLite_Claims(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	claim := rota.ClaimRequest{
		ID:        rota.NewClaimID(),
		ShiftID:   "shift-1",
		StaffID:   "bob",
		Notes:     "can cover",
		Status:    rota.ClaimPending,
		CreatedAt: utc(2025, time.June, 11, 10, 0),
	}
	require.NoError(t, store.SaveClaim(ctx, claim))

	byShift, err := store.ListClaimsByShift(ctx, "shift-1")
	require.NoError(t, err)
	require.Len(t, byShift, 1)
	assert.Equal(t, claim.ID, byShift[0].ID)
	assert.Equal(t, "can cover", byShift[0].Notes)

	all, err := store.ListClaims(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_Runs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := sqlite.RunRecord{
		ID:            "run-1",
		CompanyID:     "acme",
		Period:        "custom",
		Algorithm:     "balanced",
		RangeStart:    utc(2025, time.June, 9, 0, 0),
		RangeEnd:      utc(2025, time.June, 16, 0, 0),
		TotalShifts:   10,
		FilledShifts:  7,
		Unfilled:      3,
		CoveragePct:   70,
		CreatedShifts: 10,
		Committed:     true,
		CreatedAt:     utc(2025, time.June, 8, 12, 0),
	}
	require.NoError(t, store.SaveRun(ctx, run))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])
}
