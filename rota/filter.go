/*
filter.go - Composable predicate filters over an in-memory shift set

PURPOSE:
  Narrows a range-query result for display or decision-making. Filters are
  pure, independent, and combined with logical AND, so composition order
  never changes the result set.

FILTERS:
  Mine():         user's own shifts plus open shifts
  ByStatus():     exact status match
  ByLocation():   location name match
  ByType():       assigned/open
  RelativeDate(): today/week/month against current wall-clock time
                  (distinct from the absolute range of the original query)

NO-OP POLICY:
  Unknown or empty filter values match everything rather than erroring.

FAILURE POLICY:
  A shift with a malformed (zero) start time is excluded by RelativeDate
  rather than raising an error: fail open on bad display data, fail closed
  on exclusion.
*/
package rota

import "time"

// FilterContext carries the wall-clock time and identity that ownership and
// relative-date filters evaluate against.
type FilterContext struct {
	Now         time.Time
	CurrentUser StaffID
}

// Filter is a pure predicate over a single shift.
type Filter func(FilterContext, Shift) bool

// ApplyFilters returns the shifts matching every filter. An empty filter
// list returns a copy of the input.
func ApplyFilters(fc FilterContext, shifts []Shift, filters ...Filter) []Shift {
	result := make([]Shift, 0, len(shifts))
outer:
	for _, s := range shifts {
		for _, f := range filters {
			if !f(fc, s) {
				continue outer
			}
		}
		result = append(result, s)
	}
	return result
}

// Mine matches the current user's shifts plus all open shifts.
func Mine() Filter {
	return func(fc FilterContext, s Shift) bool {
		if s.Type == TypeOpen {
			return true
		}
		return s.UserID != nil && *s.UserID == fc.CurrentUser
	}
}

// ByStatus matches shifts with the given status. Empty or unknown values
// are no-ops.
func ByStatus(status string) Filter {
	return func(_ FilterContext, s Shift) bool {
		if status == "" || !validStatus(ShiftStatus(status)) {
			return true
		}
		return s.Status == ShiftStatus(status)
	}
}

// ByLocation matches shifts at the named location. Empty is a no-op.
func ByLocation(name string) Filter {
	return func(_ FilterContext, s Shift) bool {
		if name == "" {
			return true
		}
		return s.Location.Name == name
	}
}

// ByType matches assigned or open shifts. Empty or unknown values are no-ops.
func ByType(t string) Filter {
	return func(_ FilterContext, s Shift) bool {
		if t != string(TypeAssigned) && t != string(TypeOpen) {
			return true
		}
		return s.Type == ShiftType(t)
	}
}

// RelativeDate matches shifts whose start falls in today, this week, or this
// month relative to FilterContext.Now. Unknown windows are no-ops. Shifts
// with a zero start time never match.
func RelativeDate(window string) Filter {
	return func(fc FilterContext, s Shift) bool {
		var r Range
		switch window {
		case "today":
			start := DayStart(fc.Now)
			r = Range{Start: start, End: start.AddDate(0, 0, 1)}
		case "week":
			r = Range{Start: WeekStart(fc.Now), End: WeekEnd(fc.Now)}
		case "month":
			start := MonthStart(fc.Now)
			r = Range{Start: start, End: start.AddDate(0, 1, 0)}
		default:
			return true
		}
		if s.StartTime.IsZero() {
			return false
		}
		return r.Contains(s.StartTime)
	}
}
