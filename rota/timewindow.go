package rota

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME WINDOWS - Monday-aligned weeks and period keys
// =============================================================================
//
// The week/month key functions here are used BOTH to tag shifts at creation
// time and to resolve bulk-delete selectors. Deletion scope must exactly
// match display scope, so there is exactly one implementation of each.

// WeekStart returns the Monday of the week containing t, at 00:00:00 UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(wd - 1))
}

// WeekEnd returns the exclusive upper bound of the week containing t.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

// ISOWeekKey returns the "YYYY-Www" key per ISO-8601 week numbering.
// The date is shifted to the Thursday of its week; that Thursday's year is
// the ISO year, and the week number is ceil(dayOfYear(thursday)/7).
func ISOWeekKey(t time.Time) string {
	t = t.UTC()
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	thursday := t.AddDate(0, 0, 4-wd)
	week := (thursday.YearDay() + 6) / 7
	return fmt.Sprintf("%04d-W%02d", thursday.Year(), week)
}

// MonthKey returns the "YYYY-MM" key for the month containing t.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// DayKey returns the "YYYY-MM-DD" key for the day containing t.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayStart truncates t to 00:00:00 UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the month containing t, at 00:00 UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// RANGE - Half-open query window [Start, End)
// =============================================================================

type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return &ValidationError{Field: "range", Message: "start and end are required"}
	}
	if !r.End.After(r.Start) {
		return &ValidationError{Field: "range", Message: "range end must be after start"}
	}
	return nil
}

// =============================================================================
// PERIOD RESOLUTION - Human period selections to absolute ranges
// =============================================================================

type SchedulePeriod string

const (
	PeriodToday     SchedulePeriod = "today"
	PeriodTomorrow  SchedulePeriod = "tomorrow"
	PeriodThisWeek  SchedulePeriod = "this_week"
	PeriodThisMonth SchedulePeriod = "this_month"
	PeriodCustom    SchedulePeriod = "custom"
)

// ResolvePeriod converts a period selection into an absolute half-open range
// relative to now. custom requires an explicit range, all others ignore it.
func ResolvePeriod(p SchedulePeriod, now time.Time, custom *Range) (Range, error) {
	switch p {
	case PeriodToday:
		start := DayStart(now)
		return Range{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case PeriodTomorrow:
		start := DayStart(now).AddDate(0, 0, 1)
		return Range{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case PeriodThisWeek:
		return Range{Start: WeekStart(now), End: WeekEnd(now)}, nil
	case PeriodThisMonth:
		start := MonthStart(now)
		return Range{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case PeriodCustom:
		if custom == nil {
			return Range{}, &ValidationError{Field: "period", Message: "custom period requires start_date and end_date"}
		}
		if err := custom.Validate(); err != nil {
			return Range{}, err
		}
		return *custom, nil
	default:
		return Range{}, &ValidationError{Field: "period", Message: "unknown period: " + string(p)}
	}
}

// ParseClock parses an "HH:MM" clock string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(s) != 5 || len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock %q: hour out of range", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q: minute out of range", s)
	}
	return hour, minute, nil
}
