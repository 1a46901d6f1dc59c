package schedule

import (
	"sort"
	"time"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// MATERIALIZATION - RoleShift patterns to concrete candidate seats
// =============================================================================
//
// A pattern with required_staff N yields N candidates per occurrence, one
// per seat, each materializing as a single-assignee shift.

type candidate struct {
	role    rota.Role
	pattern rota.RoleShift
	start   time.Time
	end     time.Time
	seat    int
}

// materialize expands all active patterns of the given roles across the
// half-open range, ordered chronologically (ties broken by role title,
// pattern name, then seat, so runs are deterministic).
func materialize(roles []rota.Role, r rota.Range) []candidate {
	var out []candidate
	for day := rota.DayStart(r.Start); day.Before(r.End); day = day.AddDate(0, 0, 1) {
		for _, role := range roles {
			for _, pattern := range role.Shifts {
				if !pattern.IsActive || pattern.StartDay != day.Weekday() {
					continue
				}
				start, end, err := patternWindow(pattern, day)
				if err != nil {
					continue // invalid clock strings are skipped, not fatal
				}
				if !r.Contains(start) {
					continue
				}
				for seat := 0; seat < pattern.RequiredStaff; seat++ {
					out = append(out, candidate{
						role:    role,
						pattern: pattern,
						start:   start,
						end:     end,
						seat:    seat,
					})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		if a.role.Title != b.role.Title {
			return a.role.Title < b.role.Title
		}
		if a.pattern.Name != b.pattern.Name {
			return a.pattern.Name < b.pattern.Name
		}
		return a.seat < b.seat
	})
	return out
}

// patternWindow computes the absolute [start, end) for a pattern occurring
// on the given day. A differing end day, or an end clock at or before the
// start clock, means the pattern crosses midnight.
func patternWindow(p rota.RoleShift, day time.Time) (time.Time, time.Time, error) {
	sh, sm, err := rota.ParseClock(p.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := rota.ParseClock(p.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, time.UTC)
	if p.EndDay != p.StartDay || !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}
