/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Shape validation (parseable dates, known enums) is done in handlers;
  domain invariants are enforced again at the store boundary.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/roles.go: RoleJSON type reused for role payloads
*/
package api

import (
	"time"

	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/schedule"
	"github.com/warp/rota-engine/store/sqlite"
)

// =============================================================================
// SHIFT TYPES
// =============================================================================

type LocationDTO struct {
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type ShiftDTO struct {
	ID          string      `json:"id"`
	CompanyID   string      `json:"company_id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	Type        string      `json:"type"`
	UserID      *string     `json:"user_id"`
	Status      string      `json:"status"`
	Location    LocationDTO `json:"location"`
	RoleID      string      `json:"role_id,omitempty"`
	RoleShiftID string      `json:"role_shift_id,omitempty"`
	ColorHex    string      `json:"color_hex,omitempty"`
	ActualStart *string     `json:"actual_start,omitempty"`
	ActualEnd   *string     `json:"actual_end,omitempty"`
	WorkedHours float64     `json:"worked_hours,omitempty"`
	WeekKey     string      `json:"week_key"`
	MonthKey    string      `json:"month_key"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

type CreateShiftRequest struct {
	CompanyID   string      `json:"company_id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	StartTime   string      `json:"start_time"` // RFC3339
	EndTime     string      `json:"end_time"`   // RFC3339
	Type        string      `json:"type"`
	UserID      *string     `json:"user_id,omitempty"`
	Location    LocationDTO `json:"location,omitempty"`
	RoleID      string      `json:"role_id,omitempty"`
	ColorHex    string      `json:"color_hex,omitempty"`
}

type UpdateShiftRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	StartTime   *string      `json:"start_time,omitempty"`
	EndTime     *string      `json:"end_time,omitempty"`
	Location    *LocationDTO `json:"location,omitempty"`
	UserID      *string      `json:"user_id,omitempty"`
	Unassign    bool         `json:"unassign,omitempty"`
	Status      *string      `json:"status,omitempty"`
	ColorHex    *string      `json:"color_hex,omitempty"`
}

type BulkDeleteRequest struct {
	// Either a relative period...
	Period string `json:"period,omitempty"` // today|week|month

	// ...or an explicit selector. Exactly one of these fields.
	Day   string `json:"day,omitempty"`
	Week  string `json:"week,omitempty"`
	Month string `json:"month,omitempty"`
}

type BulkDeleteResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// =============================================================================
// ATTENDANCE TYPES
// =============================================================================

type ClockRequest struct {
	StaffID  string      `json:"staff_id"`
	Location LocationDTO `json:"location"`
}

// =============================================================================
// SCHEDULING TYPES
// =============================================================================

type AutoScheduleRequestDTO struct {
	CompanyID        string `json:"company_id,omitempty"`
	Period           string `json:"period"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	Algorithm        string `json:"algorithm"`
	AutoCreateShifts bool   `json:"auto_create_shifts"`
}

type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PlannedShiftDTO struct {
	ShiftID          string  `json:"shift_id,omitempty"`
	Title            string  `json:"title"`
	RoleName         string  `json:"role_name"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	DurationHours    float64 `json:"duration_hours"`
	IsFilled         bool    `json:"is_filled"`
	UserName         string  `json:"user_name,omitempty"`
	UserID           *string `json:"user_id,omitempty"`
	AssignmentReason string  `json:"assignment_reason,omitempty"`
	Error            string  `json:"error,omitempty"`
}

type ScheduleStatsDTO struct {
	TotalShifts        int     `json:"total_shifts"`
	FilledShifts       int     `json:"filled_shifts"`
	UnfilledShifts     int     `json:"unfilled_shifts"`
	CoveragePercentage float64 `json:"coverage_percentage"`
	CreatedShifts      int     `json:"created_shifts,omitempty"`
}

type AutoScheduleResponseDTO struct {
	DateRange   DateRangeDTO      `json:"date_range"`
	Shifts      []PlannedShiftDTO `json:"shifts"`
	Stats       ScheduleStatsDTO  `json:"stats"`
	Warnings    []string          `json:"warnings"`
	Suggestions []string          `json:"suggestions"`
}

type RunDTO struct {
	ID                 string  `json:"id"`
	Period             string  `json:"period"`
	Algorithm          string  `json:"algorithm"`
	RangeStart         string  `json:"range_start"`
	RangeEnd           string  `json:"range_end"`
	TotalShifts        int     `json:"total_shifts"`
	FilledShifts       int     `json:"filled_shifts"`
	UnfilledShifts     int     `json:"unfilled_shifts"`
	CoveragePercentage float64 `json:"coverage_percentage"`
	CreatedShifts      int     `json:"created_shifts"`
	Committed          bool    `json:"committed"`
	CreatedAt          string  `json:"created_at"`
}

// =============================================================================
// MARKETPLACE TYPES
// =============================================================================

type ClaimRequestBody struct {
	StaffID string `json:"staff_id"`
	Notes   string `json:"notes,omitempty"`
}

type ClaimDTO struct {
	ID        string `json:"id"`
	ShiftID   string `json:"shift_id"`
	StaffID   string `json:"staff_id"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toShiftDTO(s rota.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:          string(s.ID),
		CompanyID:   string(s.CompanyID),
		Title:       s.Title,
		Description: s.Description,
		StartTime:   s.StartTime.Format(time.RFC3339),
		EndTime:     s.EndTime.Format(time.RFC3339),
		Type:        string(s.Type),
		Status:      string(s.Status),
		Location: LocationDTO{
			Name:    s.Location.Name,
			Address: s.Location.Address,
			Lat:     s.Location.Lat,
			Lng:     s.Location.Lng,
		},
		RoleID:      string(s.RoleID),
		RoleShiftID: string(s.RoleShiftID),
		ColorHex:    s.ColorHex,
		WeekKey:     rota.ISOWeekKey(s.StartTime),
		MonthKey:    rota.MonthKey(s.StartTime),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
	if s.UserID != nil {
		uid := string(*s.UserID)
		dto.UserID = &uid
	}
	if s.ActualStart != nil {
		v := s.ActualStart.Format(time.RFC3339)
		dto.ActualStart = &v
	}
	if s.ActualEnd != nil {
		v := s.ActualEnd.Format(time.RFC3339)
		dto.ActualEnd = &v
	}
	if worked := s.WorkedHours(); !worked.IsZero() {
		dto.WorkedHours, _ = worked.Float64()
	}
	return dto
}

func toShiftDTOs(shifts []rota.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	return dtos
}

func toScheduleResponseDTO(resp *schedule.Response) AutoScheduleResponseDTO {
	dto := AutoScheduleResponseDTO{
		DateRange: DateRangeDTO{
			Start: resp.DateRange.Start.Format(time.RFC3339),
			End:   resp.DateRange.End.Format(time.RFC3339),
		},
		Stats: ScheduleStatsDTO{
			TotalShifts:        resp.Stats.TotalShifts,
			FilledShifts:       resp.Stats.FilledShifts,
			UnfilledShifts:     resp.Stats.UnfilledShifts,
			CoveragePercentage: resp.Stats.CoveragePercentage,
			CreatedShifts:      resp.Stats.CreatedShifts,
		},
		Warnings:    resp.Warnings,
		Suggestions: resp.Suggestions,
	}
	if dto.Warnings == nil {
		dto.Warnings = []string{}
	}
	if dto.Suggestions == nil {
		dto.Suggestions = []string{}
	}
	dto.Shifts = make([]PlannedShiftDTO, len(resp.Shifts))
	for i, p := range resp.Shifts {
		hours, _ := p.DurationHours.Float64()
		sdto := PlannedShiftDTO{
			ShiftID:          p.ShiftID,
			Title:            p.Title,
			RoleName:         p.RoleName,
			StartTime:        p.StartTime.Format(time.RFC3339),
			EndTime:          p.EndTime.Format(time.RFC3339),
			DurationHours:    hours,
			IsFilled:         p.IsFilled,
			UserName:         p.UserName,
			AssignmentReason: p.AssignmentReason,
			Error:            p.Error,
		}
		if p.UserID != nil {
			uid := string(*p.UserID)
			sdto.UserID = &uid
		}
		dto.Shifts[i] = sdto
	}
	return dto
}

func toClaimDTO(c rota.ClaimRequest) ClaimDTO {
	return ClaimDTO{
		ID:        string(c.ID),
		ShiftID:   string(c.ShiftID),
		StaffID:   string(c.StaffID),
		Notes:     c.Notes,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toRunDTO(r sqlite.RunRecord) RunDTO {
	return RunDTO{
		ID:                 r.ID,
		Period:             r.Period,
		Algorithm:          r.Algorithm,
		RangeStart:         r.RangeStart.Format(time.RFC3339),
		RangeEnd:           r.RangeEnd.Format(time.RFC3339),
		TotalShifts:        r.TotalShifts,
		FilledShifts:       r.FilledShifts,
		UnfilledShifts:     r.Unfilled,
		CoveragePercentage: r.CoveragePct,
		CreatedShifts:      r.CreatedShifts,
		Committed:          r.Committed,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
}
