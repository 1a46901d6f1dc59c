package rota_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/rota/store"
)

// =============================================================================
// OPEN SHIFT LISTING
// =============================================================================

func TestMarketplace_ListOpen(t *testing.T) {
	// GIVEN: A mix of open and assigned shifts in June
	mem := store.NewMemory()
	mkt := rota.NewMarketplace(mem, mem)
	ctx := context.Background()

	open, err := mem.Create(ctx, rota.Shift{
		Title:     "Weekend Cover",
		Type:      rota.TypeOpen,
		StartTime: utc(2025, time.June, 14, 8, 0),
		EndTime:   utc(2025, time.June, 14, 16, 0),
	})
	require.NoError(t, err)

	_, err = mem.Create(ctx, rota.Shift{
		Title:     "Morning Till",
		Type:      rota.TypeAssigned,
		UserID:    staffPtr("alice"),
		StartTime: utc(2025, time.June, 14, 6, 0),
		EndTime:   utc(2025, time.June, 14, 14, 0),
	})
	require.NoError(t, err)

	// WHEN: Listing open shifts for the month
	r := rota.Range{Start: utc(2025, time.June, 1, 0, 0), End: utc(2025, time.July, 1, 0, 0)}
	got, err := mkt.ListOpen(ctx, r)
	require.NoError(t, err)

	// THEN: Only the unassigned shift appears
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestMarketplace_ListOpen_InvalidRange(t *testing.T) {
	mkt := rota.NewMarketplace(store.NewMemory(), store.NewMemory())
	_, err := mkt.ListOpen(context.Background(), rota.Range{})
	require.Error(t, err)
	assert.True(t, rota.IsClientError(err))
}

// =============================================================================
// CLAIM REQUESTS
// =============================================================================

func TestMarketplace_RequestClaim(t *testing.T) {
	mem := store.NewMemory()
	mkt := rota.NewMarketplace(mem, mem)
	ctx := context.Background()

	shift, err := mem.Create(ctx, rota.Shift{
		Title:     "Weekend Cover",
		Type:      rota.TypeOpen,
		StartTime: utc(2025, time.June, 14, 8, 0),
		EndTime:   utc(2025, time.June, 14, 16, 0),
	})
	require.NoError(t, err)

	claim, err := mkt.RequestClaim(ctx, shift.ID, "bob", "happy to take this")
	require.NoError(t, err)

	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, shift.ID, claim.ShiftID)
	assert.Equal(t, rota.StaffID("bob"), claim.StaffID)
	assert.Equal(t, rota.ClaimPending, claim.Status)
	assert.Equal(t, "happy to take this", claim.Notes)

	// The claim is recorded; the shift itself stays open and unassigned.
	stored, err := mem.Get(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, rota.StatusOpen, stored.Status)
	assert.Nil(t, stored.UserID)

	claims, err := mem.ListClaimsByShift(ctx, shift.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, claim.ID, claims[0].ID)
}

func TestMarketplace_RequestClaim_AssignedShiftRejected(t *testing.T) {
	mem := store.NewMemory()
	mkt := rota.NewMarketplace(mem, mem)
	ctx := context.Background()

	shift, err := mem.Create(ctx, rota.Shift{
		Title:     "Morning Till",
		Type:      rota.TypeAssigned,
		UserID:    staffPtr("alice"),
		StartTime: utc(2025, time.June, 14, 6, 0),
		EndTime:   utc(2025, time.June, 14, 14, 0),
	})
	require.NoError(t, err)

	_, err = mkt.RequestClaim(ctx, shift.ID, "bob", "")
	require.Error(t, err)
	assert.True(t, rota.IsConflict(err))
}

func TestMarketplace_RequestClaim_MissingStaff(t *testing.T) {
	mem := store.NewMemory()
	mkt := rota.NewMarketplace(mem, mem)

	shift, err := mem.Create(context.Background(), rota.Shift{
		Title:     "Weekend Cover",
		Type:      rota.TypeOpen,
		StartTime: utc(2025, time.June, 14, 8, 0),
		EndTime:   utc(2025, time.June, 14, 16, 0),
	})
	require.NoError(t, err)

	_, err = mkt.RequestClaim(context.Background(), shift.ID, "", "")
	require.Error(t, err)
	assert.True(t, rota.IsClientError(err))
}

func TestMarketplace_RequestClaim_UnknownShift(t *testing.T) {
	mkt := rota.NewMarketplace(store.NewMemory(), store.NewMemory())
	_, err := mkt.RequestClaim(context.Background(), "ghost", "bob", "")
	assert.True(t, rota.IsNotFound(err))
}

func TestMarketplace_MultipleClaimsOnOneShift(t *testing.T) {
	// Several staff can request the same open shift; arbitration happens
	// in the integrating system.
	mem := store.NewMemory()
	mkt := rota.NewMarketplace(mem, mem)
	ctx := context.Background()

	shift, err := mem.Create(ctx, rota.Shift{
		Title:     "Weekend Cover",
		Type:      rota.TypeOpen,
		StartTime: utc(2025, time.June, 14, 8, 0),
		EndTime:   utc(2025, time.June, 14, 16, 0),
	})
	require.NoError(t, err)

	for _, staff := range []rota.StaffID{"bob", "carol", "dave"} {
		_, err := mkt.RequestClaim(ctx, shift.ID, staff, "")
		require.NoError(t, err)
	}

	claims, err := mem.ListClaimsByShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Len(t, claims, 3)
}
