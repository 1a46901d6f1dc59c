package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// STATIC AVAILABILITY - In-repo provider for tests, seeds, and single-tenant
// deployments without an external directory
// =============================================================================

// StaticAvailability resolves qualification from the role's own qualified
// set and leave from a fixed day-key map.
type StaticAvailability struct {
	Directory map[rota.StaffID]Staff

	// Leave maps staff id -> set of "YYYY-MM-DD" day keys with approved leave.
	Leave map[rota.StaffID]map[string]bool
}

func NewStaticAvailability(staff []Staff) *StaticAvailability {
	dir := make(map[rota.StaffID]Staff, len(staff))
	for _, s := range staff {
		dir[s.ID] = s
	}
	return &StaticAvailability{
		Directory: dir,
		Leave:     make(map[rota.StaffID]map[string]bool),
	}
}

// AddLeave records approved leave for a day.
func (sa *StaticAvailability) AddLeave(staffID rota.StaffID, day time.Time) {
	if sa.Leave[staffID] == nil {
		sa.Leave[staffID] = make(map[string]bool)
	}
	sa.Leave[staffID][rota.DayKey(day)] = true
}

// QualifiedStaff returns directory entries for the role's qualified set,
// in ascending id order. Unknown ids are skipped.
func (sa *StaticAvailability) QualifiedStaff(_ context.Context, role rota.Role) ([]Staff, error) {
	var out []Staff
	for _, id := range role.QualifiedUsers {
		if s, ok := sa.Directory[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (sa *StaticAvailability) OnLeave(_ context.Context, staffID rota.StaffID, day time.Time) (bool, error) {
	return sa.Leave[staffID][rota.DayKey(day)], nil
}
