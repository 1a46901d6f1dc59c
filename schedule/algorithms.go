package schedule

import (
	"sort"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// ASSIGNMENT ALGORITHMS - Pluggable pickers over eligible candidates
// =============================================================================
//
// Both algorithms receive the already-filtered eligible list (qualified, not
// on leave, no overlapping booking) and the running per-staff assignment
// counts for this run. Counts update immediately after each pick, so the
// balanced picker is a greedy online balancer, not a global optimum solver.

type picker interface {
	// Pick selects one staff member from eligible, or nil to leave the
	// seat unfilled. reason explains the choice for the response.
	Pick(eligible []Staff, counts map[rota.StaffID]int) (pick *Staff, reason string)
}

func pickerFor(a Algorithm) (picker, error) {
	switch a {
	case AlgorithmSimple, "":
		return simplePicker{}, nil
	case AlgorithmBalanced:
		return balancedPicker{}, nil
	default:
		return nil, &rota.ValidationError{Field: "algorithm", Message: "unknown algorithm: " + string(a)}
	}
}

// simplePicker takes the first eligible staff member. No load balancing.
type simplePicker struct{}

func (simplePicker) Pick(eligible []Staff, _ map[rota.StaffID]int) (*Staff, string) {
	if len(eligible) == 0 {
		return nil, ""
	}
	s := eligible[0]
	return &s, "first qualified and available"
}

// balancedPicker takes the eligible staff member with the fewest shifts
// assigned within this run, ties broken by ascending staff id.
type balancedPicker struct{}

func (balancedPicker) Pick(eligible []Staff, counts map[rota.StaffID]int) (*Staff, string) {
	if len(eligible) == 0 {
		return nil, ""
	}
	sorted := append([]Staff{}, eligible...)
	sort.Slice(sorted, func(i, j int) bool {
		ci, cj := counts[sorted[i].ID], counts[sorted[j].ID]
		if ci != cj {
			return ci < cj
		}
		return sorted[i].ID < sorted[j].ID
	})
	s := sorted[0]
	return &s, "fewest assignments this run"
}
