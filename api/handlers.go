/*
handlers.go - HTTP API handlers for the roster engine

PURPOSE:
  Exposes the shift scheduling engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Shifts:
    GET    /api/shifts                 List shifts in a range (+filters)
    POST   /api/shifts                 Create shift
    GET    /api/shifts/{id}            Get shift
    PATCH  /api/shifts/{id}            Partial update
    DELETE /api/shifts/{id}            Delete shift
    POST   /api/shifts/bulk-delete     Bulk delete by period
    GET    /api/shifts/export          Roster export (.xlsx)

  Attendance:
    POST   /api/shifts/{id}/clock-in
    POST   /api/shifts/{id}/clock-out

  Scheduling:
    POST   /api/schedule/preview       Dry run
    POST   /api/schedule/generate      Commit
    GET    /api/schedule/runs          Run audit records

  Marketplace:
    GET    /api/open-shifts            Open shifts in a range
    POST   /api/open-shifts/{id}/request
    GET    /api/open-shifts/requests   Recorded claims

  Roles:
    GET    /api/roles
    POST   /api/roles
    GET    /api/roles/{id}

ERROR HANDLING:
  Domain errors map to HTTP status via the rota.Is* helpers:
  - 400: validation errors
  - 403: authorization errors
  - 404: unknown ids
  - 409: state machine / double-booking conflicts
  - 500: everything else

IDENTITY:
  Session identity is an external concern; staff/user ids arrive as
  explicit query or body parameters.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/schedule"
	"github.com/warp/rota-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// RunStore persists scheduling run audit records. Optional: a nil store
// disables run auditing.
type RunStore interface {
	SaveRun(ctx context.Context, run sqlite.RunRecord) error
	ListRuns(ctx context.Context) ([]sqlite.RunRecord, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Shifts      rota.ShiftStore
	Roles       rota.RoleStore
	Scheduler   *schedule.Scheduler
	Tracker     *rota.AttendanceTracker
	BulkDeleter *rota.BulkDeletionService
	Marketplace *rota.Marketplace
	RoleFactory *factory.RoleFactory
	Runs        RunStore

	// Clock is the wall-clock source for relative filters and attendance.
	Clock func() time.Time
}

// NewHandler wires a handler around a combined store (something implementing
// shift, role, and claim storage, like *sqlite.Store or the memory store).
func NewHandler(shifts rota.ShiftStore, roles rota.RoleStore, claims rota.ClaimStore, availability schedule.AvailabilityProvider) *Handler {
	return &Handler{
		Shifts:      shifts,
		Roles:       roles,
		Scheduler:   schedule.NewScheduler(shifts, roles, availability),
		Tracker:     rota.NewAttendanceTracker(shifts),
		BulkDeleter: rota.NewBulkDeletionService(shifts),
		Marketplace: rota.NewMarketplace(shifts, claims),
		RoleFactory: factory.NewRoleFactory(),
		Clock:       time.Now,
	}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts in [start, end), optionally narrowed by the
// filter query parameters.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var scope *rota.QueryScope
	if uid := q.Get("user_id"); uid != "" && q.Get("ownership") != "mine" {
		id := rota.StaffID(uid)
		scope = &rota.QueryScope{UserID: &id}
	}

	shifts, err := h.Shifts.Query(r.Context(), rng, scope)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	fc := rota.FilterContext{Now: h.Clock().UTC(), CurrentUser: rota.StaffID(q.Get("user_id"))}
	var filters []rota.Filter
	if q.Get("ownership") == "mine" {
		filters = append(filters, rota.Mine())
	}
	if v := q.Get("status"); v != "" {
		filters = append(filters, rota.ByStatus(v))
	}
	if v := q.Get("location"); v != "" {
		filters = append(filters, rota.ByLocation(v))
	}
	if v := q.Get("shift_type"); v != "" {
		filters = append(filters, rota.ByType(v))
	}
	if v := q.Get("date_filter"); v != "" {
		filters = append(filters, rota.RelativeDate(v))
	}
	shifts = rota.ApplyFilters(fc, shifts, filters...)

	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// GetShift returns a single shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Shifts.Get(r.Context(), rota.ShiftID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// CreateShift creates a new shift.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time (use RFC3339)")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time (use RFC3339)")
		return
	}

	shift := rota.Shift{
		CompanyID:   rota.CompanyID(req.CompanyID),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		Type:        rota.ShiftType(req.Type),
		Location: rota.Location{
			Name:    req.Location.Name,
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		},
		RoleID:   rota.RoleID(req.RoleID),
		ColorHex: req.ColorHex,
	}
	if shift.Type == "" {
		shift.Type = rota.TypeOpen
		if req.UserID != nil {
			shift.Type = rota.TypeAssigned
		}
	}
	if req.UserID != nil {
		uid := rota.StaffID(*req.UserID)
		shift.UserID = &uid
	}

	created, err := h.Shifts.Create(r.Context(), shift)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(*created))
}

// UpdateShift applies a partial update.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := rota.ShiftPatch{
		Title:       req.Title,
		Description: req.Description,
		ColorHex:    req.ColorHex,
		Unassign:    req.Unassign,
	}
	if req.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_time (use RFC3339)")
			return
		}
		patch.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_time (use RFC3339)")
			return
		}
		patch.EndTime = &t
	}
	if req.Location != nil {
		patch.Location = &rota.Location{
			Name:    req.Location.Name,
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		}
	}
	if req.UserID != nil {
		uid := rota.StaffID(*req.UserID)
		patch.UserID = &uid
	}
	if req.Status != nil {
		st := rota.ShiftStatus(*req.Status)
		patch.Status = &st
	}

	updated, err := h.Shifts.Update(r.Context(), rota.ShiftID(chi.URLParam(r, "id")), patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*updated))
}

// DeleteShift removes a single shift.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Shifts.Delete(r.Context(), rota.ShiftID(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteShifts removes all shifts in a calendar period.
func (h *Handler) BulkDeleteShifts(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		count int
		err   error
	)
	if req.Period != "" {
		count, err = h.BulkDeleter.DeletePeriod(r.Context(), req.Period)
	} else {
		count, err = h.BulkDeleter.DeleteSelector(r.Context(), rota.BulkDeleteSelector{
			Day:   req.Day,
			Week:  req.Week,
			Month: req.Month,
		})
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkDeleteResponse{DeletedCount: count})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ClockIn transitions a scheduled shift to in-progress.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Tracker.ClockIn)
}

// ClockOut transitions an in-progress shift to its completion state.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Tracker.ClockOut)
}

func (h *Handler) clock(w http.ResponseWriter, r *http.Request,
	op func(context.Context, rota.ShiftID, rota.StaffID, rota.Location, time.Time) (*rota.Shift, error)) {
	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StaffID == "" {
		writeError(w, http.StatusBadRequest, "staff_id is required")
		return
	}

	loc := rota.Location{
		Name:    req.Location.Name,
		Address: req.Location.Address,
		Lat:     req.Location.Lat,
		Lng:     req.Location.Lng,
	}
	shift, err := op(r.Context(), rota.ShiftID(chi.URLParam(r, "id")),
		rota.StaffID(req.StaffID), loc, h.Clock())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// PreviewSchedule runs the auto-scheduler without persisting anything.
func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	h.runSchedule(w, r, false)
}

// GenerateSchedule runs the auto-scheduler and persists the plan.
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	h.runSchedule(w, r, true)
}

func (h *Handler) runSchedule(w http.ResponseWriter, r *http.Request, commit bool) {
	var dto AutoScheduleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := schedule.Request{
		CompanyID:        rota.CompanyID(dto.CompanyID),
		Period:           rota.SchedulePeriod(dto.Period),
		StartDate:        dto.StartDate,
		EndDate:          dto.EndDate,
		Algorithm:        schedule.Algorithm(dto.Algorithm),
		AutoCreateShifts: commit || dto.AutoCreateShifts,
	}

	run := schedule.NewRun(req)
	var (
		resp *schedule.Response
		err  error
	)
	if req.AutoCreateShifts {
		resp, err = run.Commit(r.Context(), h.Scheduler)
		scheduleCommits.Inc()
	} else {
		resp, err = run.Preview(r.Context(), h.Scheduler)
		schedulePreviews.Inc()
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	shiftsCreated.Add(float64(resp.Stats.CreatedShifts))

	h.recordRun(r.Context(), run, resp)
	writeJSON(w, http.StatusOK, toScheduleResponseDTO(resp))
}

func (h *Handler) recordRun(ctx context.Context, run *schedule.Run, resp *schedule.Response) {
	if h.Runs == nil {
		return
	}
	rec := sqlite.RunRecord{
		ID:            run.ID,
		CompanyID:     string(run.Request.CompanyID),
		Period:        string(run.Request.Period),
		Algorithm:     string(run.Request.Algorithm),
		RangeStart:    resp.DateRange.Start,
		RangeEnd:      resp.DateRange.End,
		TotalShifts:   resp.Stats.TotalShifts,
		FilledShifts:  resp.Stats.FilledShifts,
		Unfilled:      resp.Stats.UnfilledShifts,
		CoveragePct:   resp.Stats.CoveragePercentage,
		CreatedShifts: resp.Stats.CreatedShifts,
		Committed:     run.State == schedule.RunCommitted,
		CreatedAt:     run.CreatedAt,
	}
	if err := h.Runs.SaveRun(ctx, rec); err != nil {
		// Auditing failures never fail the scheduling request itself.
		log.Printf("[API] failed to record schedule run %s: %v", run.ID, err)
	}
}

// ListRuns returns scheduling run audit records.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []RunDTO{})
		return
	}
	runs, err := h.Runs.ListRuns(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MARKETPLACE HANDLERS
// =============================================================================

// ListOpenShifts returns open shifts in a range.
func (h *Handler) ListOpenShifts(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	shifts, err := h.Marketplace.ListOpen(r.Context(), rng)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// RequestClaim records a claim on an open shift.
func (h *Handler) RequestClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	claim, err := h.Marketplace.RequestClaim(r.Context(),
		rota.ShiftID(chi.URLParam(r, "id")), rota.StaffID(req.StaffID), req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClaimDTO(*claim))
}

// ListClaims returns recorded claims for the external approval workflow.
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Marketplace.Claims.ListClaims(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ClaimDTO, len(claims))
	for i, c := range claims {
		dtos[i] = toClaimDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ROLE HANDLERS
// =============================================================================

// ListRoles returns role templates.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Roles.ListRoles(r.Context(), rota.CompanyID(r.URL.Query().Get("company_id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleJSONs(roles))
}

// GetRole returns a single role template.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.Roles.GetRole(r.Context(), rota.RoleID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleJSON(*role))
}

// CreateRole creates or replaces a role template from its JSON definition.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var rj factory.RoleJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role, err := h.RoleFactory.FromJSON(rj)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Roles.SaveRole(r.Context(), *role); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoleJSON(*role))
}

func toRoleJSON(role rota.Role) factory.RoleJSON {
	rj := factory.RoleJSON{
		ID:        string(role.ID),
		CompanyID: string(role.CompanyID),
		Title:     role.Title,
	}
	for _, u := range role.QualifiedUsers {
		rj.QualifiedUsers = append(rj.QualifiedUsers, string(u))
	}
	for _, p := range role.Shifts {
		active := p.IsActive
		rj.Shifts = append(rj.Shifts, factory.RoleShiftJSON{
			ID:            string(p.ID),
			Name:          p.Name,
			StartDay:      factory.WeekdayName(p.StartDay),
			EndDay:        factory.WeekdayName(p.EndDay),
			StartTime:     p.StartTime,
			EndTime:       p.EndTime,
			RequiredStaff: p.RequiredStaff,
			Tasks:         p.Tasks,
			IsActive:      &active,
		})
	}
	return rj
}

func toRoleJSONs(roles []rota.Role) []factory.RoleJSON {
	out := make([]factory.RoleJSON, len(roles))
	for i, r := range roles {
		out[i] = toRoleJSON(r)
	}
	return out
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// parseRange reads start/end query parameters as RFC3339 or YYYY-MM-DD.
// A date-only end is treated as inclusive (extended by one day).
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (rota.Range, bool) {
	q := r.URL.Query()
	start, startErr := parseDateParam(q.Get("start"), false)
	end, endErr := parseDateParam(q.Get("end"), true)
	if startErr != nil || endErr != nil {
		writeError(w, http.StatusBadRequest, "start and end must be RFC3339 or YYYY-MM-DD")
		return rota.Range{}, false
	}
	rng := rota.Range{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		writeDomainError(w, err)
		return rota.Range{}, false
	}
	return rng, true
}

func parseDateParam(s string, inclusiveDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if inclusiveDay {
		t = t.AddDate(0, 0, 1)
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case rota.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case rota.IsNotAuthorized(err):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "forbidden"})
	case rota.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case rota.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
