/*
scheduler.go - Auto-scheduling orchestration

PURPOSE:
  Resolves the requested period, materializes candidate seats from role
  templates, fills them with the selected algorithm, and either returns
  the plan (preview) or persists it shift by shift (commit).

ELIGIBILITY (shared by both algorithms):
  A staff member is eligible for a seat when they are
  1. qualified for the role (external directory),
  2. not on approved leave covering the seat's date (external leave system),
  3. not already booked on an overlapping shift - existing shifts in the
     range and assignments made earlier in this run both count.

COMMIT SEMANTICS:
  Commit regenerates the plan from current store state rather than trusting
  a cached preview, then persists each shift via ShiftStore.Create. It
  never aborts on an individual failure; failed seats carry an Error in
  the response and Stats.CreatedShifts reports the true persisted count.
  Filled seats persist as assigned/scheduled, unfilled seats as open.

SEE ALSO:
  - materialize.go: Candidate expansion
  - algorithms.go: Simple and Balanced pickers
  - run.go: Draft -> Previewed -> Committed workflow wrapper
*/
package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/warp/rota-engine/rota"
)

type Scheduler struct {
	Shifts       rota.ShiftStore
	Roles        rota.RoleStore
	Availability AvailabilityProvider
	Clock        func() time.Time
}

func NewScheduler(shifts rota.ShiftStore, roles rota.RoleStore, availability AvailabilityProvider) *Scheduler {
	return &Scheduler{Shifts: shifts, Roles: roles, Availability: availability, Clock: time.Now}
}

// Preview generates an assignment plan without persisting anything.
func (s *Scheduler) Preview(ctx context.Context, req Request) (*Response, error) {
	return s.plan(ctx, req)
}

// Commit generates a fresh plan and persists it shift by shift.
func (s *Scheduler) Commit(ctx context.Context, req Request) (*Response, error) {
	resp, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	var failed int
	for i := range resp.Shifts {
		planned := &resp.Shifts[i]
		shift := plannedToShift(planned)
		created, err := s.Shifts.Create(ctx, shift)
		if err != nil {
			planned.Error = err.Error()
			failed++
			log.Printf("[Scheduler] commit: shift %q at %s failed: %v", planned.Title, planned.StartTime, err)
			continue
		}
		planned.ShiftID = string(created.ID)
		resp.Stats.CreatedShifts++
	}
	if failed > 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("%d of %d shifts could not be created", failed, resp.Stats.TotalShifts))
	}
	log.Printf("[Scheduler] commit: created %d/%d shifts (%s algorithm)",
		resp.Stats.CreatedShifts, resp.Stats.TotalShifts, req.Algorithm)
	return resp, nil
}

// plan is the shared resolution + assignment pass. Read-only.
func (s *Scheduler) plan(ctx context.Context, req Request) (*Response, error) {
	rng, err := s.resolveRange(req)
	if err != nil {
		return nil, err
	}

	roles, err := s.Roles.ListRoles(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	pick, err := pickerFor(req.Algorithm)
	if err != nil {
		return nil, err
	}

	candidates := materialize(roles, rng)

	// Existing bookings in range, per staff member, for overlap checks.
	existing, err := s.Shifts.Query(ctx, rng, nil)
	if err != nil {
		return nil, err
	}
	booked := make(map[rota.StaffID][]rota.Shift)
	for _, sh := range existing {
		if sh.UserID != nil {
			booked[*sh.UserID] = append(booked[*sh.UserID], sh)
		}
	}

	resp := &Response{DateRange: rng}
	counts := make(map[rota.StaffID]int)
	qualifiedCache := make(map[rota.RoleID][]Staff)
	unfilledByRole := make(map[string]int)

	for _, cand := range candidates {
		qualified, ok := qualifiedCache[cand.role.ID]
		if !ok {
			qualified, err = s.Availability.QualifiedStaff(ctx, cand.role)
			if err != nil {
				return nil, err
			}
			qualifiedCache[cand.role.ID] = qualified
		}

		eligible, err := s.eligible(ctx, qualified, cand, booked)
		if err != nil {
			return nil, err
		}

		planned := PlannedShift{
			Title:         cand.pattern.Name,
			RoleName:      cand.role.Title,
			StartTime:     cand.start,
			EndTime:       cand.end,
			companyID:     cand.role.CompanyID,
			roleID:        cand.role.ID,
			roleShiftID:   cand.pattern.ID,
			DurationHours: rota.Shift{StartTime: cand.start, EndTime: cand.end}.DurationHours(),
		}

		if staff, reason := pick.Pick(eligible, counts); staff != nil {
			planned.IsFilled = true
			planned.UserID = &staff.ID
			planned.UserName = staff.Name
			planned.AssignmentReason = reason
			counts[staff.ID]++
			booked[staff.ID] = append(booked[staff.ID], rota.Shift{
				StartTime: cand.start,
				EndTime:   cand.end,
			})
		} else {
			unfilledByRole[cand.role.Title]++
			if len(qualified) == 0 {
				resp.Warnings = append(resp.Warnings,
					fmt.Sprintf("No qualified staff for role %s on %s", cand.role.Title, rota.DayKey(cand.start)))
			} else {
				resp.Warnings = append(resp.Warnings,
					fmt.Sprintf("No available staff for %s (%s) on %s", cand.role.Title, cand.pattern.Name, rota.DayKey(cand.start)))
			}
		}

		resp.Shifts = append(resp.Shifts, planned)
	}

	resp.Stats.TotalShifts = len(resp.Shifts)
	for _, p := range resp.Shifts {
		if p.IsFilled {
			resp.Stats.FilledShifts++
		}
	}
	resp.Stats.UnfilledShifts = resp.Stats.TotalShifts - resp.Stats.FilledShifts
	resp.Stats.CoveragePercentage = coverage(resp.Stats.FilledShifts, resp.Stats.TotalShifts)

	for roleTitle, n := range unfilledByRole {
		resp.Suggestions = append(resp.Suggestions,
			fmt.Sprintf("Consider hiring or qualifying more staff for role %s (%d unfilled seats)", roleTitle, n))
	}
	return resp, nil
}

func (s *Scheduler) resolveRange(req Request) (rota.Range, error) {
	var custom *rota.Range
	if req.Period == rota.PeriodCustom {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return rota.Range{}, &rota.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"}
		}
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return rota.Range{}, &rota.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"}
		}
		// End date is inclusive in the request, exclusive internally.
		custom = &rota.Range{Start: start.UTC(), End: end.UTC().AddDate(0, 0, 1)}
	}
	return rota.ResolvePeriod(req.Period, s.Clock().UTC(), custom)
}

func (s *Scheduler) eligible(ctx context.Context, qualified []Staff, cand candidate, booked map[rota.StaffID][]rota.Shift) ([]Staff, error) {
	window := rota.Shift{StartTime: cand.start, EndTime: cand.end}
	var out []Staff
	for _, staff := range qualified {
		onLeave, err := s.Availability.OnLeave(ctx, staff.ID, rota.DayStart(cand.start))
		if err != nil {
			return nil, err
		}
		if onLeave {
			continue
		}
		overlaps := false
		for _, b := range booked[staff.ID] {
			if window.Overlaps(b) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, staff)
		}
	}
	return out, nil
}

func plannedToShift(p *PlannedShift) rota.Shift {
	shift := rota.Shift{
		CompanyID:   p.companyID,
		Title:       p.Title,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		RoleID:      p.roleID,
		RoleShiftID: p.roleShiftID,
	}
	if p.IsFilled {
		shift.Type = rota.TypeAssigned
		shift.Status = rota.StatusScheduled
		shift.UserID = p.UserID
	} else {
		shift.Type = rota.TypeOpen
		shift.Status = rota.StatusOpen
	}
	return shift
}
