package rota

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// BULK DELETION - Period selector resolution
// =============================================================================

// BulkDeleteSelector identifies a calendar period. Exactly one field is set.
type BulkDeleteSelector struct {
	Day   string // "YYYY-MM-DD"
	Week  string // "YYYY-Www"
	Month string // "YYYY-MM"
}

func (s BulkDeleteSelector) Validate() error {
	set := 0
	if s.Day != "" {
		set++
		if _, err := time.Parse("2006-01-02", s.Day); err != nil {
			return &ValidationError{Field: "day", Message: "day must be YYYY-MM-DD"}
		}
	}
	if s.Week != "" {
		set++
		var year, week int
		if n, err := fmt.Sscanf(s.Week, "%04d-W%02d", &year, &week); err != nil || n != 2 || week < 1 || week > 53 {
			return &ValidationError{Field: "week", Message: "week must be YYYY-Www"}
		}
	}
	if s.Month != "" {
		set++
		if _, err := time.Parse("2006-01", s.Month); err != nil {
			return &ValidationError{Field: "month", Message: "month must be YYYY-MM"}
		}
	}
	if set != 1 {
		return &ValidationError{Field: "selector", Message: "exactly one of day, week, month must be set"}
	}
	return nil
}

// Matches reports whether the shift's start time falls in the selected
// period. Keys are computed with the same functions used to tag shifts at
// creation time, so deletion scope exactly matches display scope.
func (s BulkDeleteSelector) Matches(shift Shift) bool {
	switch {
	case s.Day != "":
		return DayKey(shift.StartTime) == s.Day
	case s.Week != "":
		return ISOWeekKey(shift.StartTime) == s.Week
	case s.Month != "":
		return MonthKey(shift.StartTime) == s.Month
	}
	return false
}

// BulkDeletionService resolves a human period selection into a selector and
// delegates to the store.
type BulkDeletionService struct {
	Store ShiftStore
	Clock func() time.Time
}

func NewBulkDeletionService(store ShiftStore) *BulkDeletionService {
	return &BulkDeletionService{Store: store, Clock: time.Now}
}

// DeletePeriod deletes all shifts in the period containing now.
// Accepted periods: today, week, month.
func (b *BulkDeletionService) DeletePeriod(ctx context.Context, period string) (int, error) {
	now := b.Clock().UTC()
	var sel BulkDeleteSelector
	switch period {
	case "today":
		sel.Day = DayKey(now)
	case "week":
		sel.Week = ISOWeekKey(now)
	case "month":
		sel.Month = MonthKey(now)
	default:
		return 0, &ValidationError{Field: "period", Message: "period must be today, week, or month"}
	}
	return b.Store.BulkDelete(ctx, sel)
}

// DeleteSelector validates and applies an explicit selector.
func (b *BulkDeletionService) DeleteSelector(ctx context.Context, sel BulkDeleteSelector) (int, error) {
	if err := sel.Validate(); err != nil {
		return 0, err
	}
	return b.Store.BulkDelete(ctx, sel)
}
