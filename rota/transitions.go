package rota

// Status state machine:
//
//   open      -> scheduled (assignment) | cancelled
//   scheduled -> in-progress (clock-in) | late | cancelled
//   late      -> in-progress | cancelled
//   in-progress -> completed | completed-early | completed-overtime | cancelled
//
// Completion states and cancelled are terminal.
var transitionMap = map[ShiftStatus][]ShiftStatus{
	StatusOpen:       {StatusScheduled, StatusCancelled},
	StatusScheduled:  {StatusInProgress, StatusLate, StatusCancelled},
	StatusLate:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCompletedEarly, StatusCompletedOvertime, StatusCancelled},
}

// ValidTransition reports whether from -> to is an allowed status change.
func ValidTransition(from, to ShiftStatus) bool {
	for _, allowed := range transitionMap[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InitialStatus returns the correct starting status for a shift type.
func InitialStatus(t ShiftType) ShiftStatus {
	if t == TypeOpen {
		return StatusOpen
	}
	return StatusScheduled
}
