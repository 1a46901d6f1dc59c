/*
Package factory provides JSON to Role template conversion.

PURPOSE:
  Converts JSON role definitions into rota.Role and rota.RoleShift objects.
  This enables roster configuration without code changes - an admin can
  define role templates in JSON, and the factory creates the proper Go
  structs with defaults applied and weekday/clock strings validated.

JSON SCHEMA:
  {
    "id": "barista",
    "title": "Barista",
    "qualified_users": ["staff-1", "staff-2"],
    "shifts": [
      {
        "name": "Morning",
        "start_day": "monday",
        "end_day": "monday",
        "start_time": "08:00",
        "end_time": "16:00",
        "required_staff": 2,
        "tasks": ["open till", "restock"],
        "is_active": true
      }
    ]
  }

DEFAULTS:
  - end_day defaults to start_day
  - required_staff defaults to 1
  - is_active defaults to true

USAGE:
  f := factory.NewRoleFactory()
  role, err := f.ParseRole(jsonString)

SEE ALSO:
  - rota/types.go: Role and RoleShift definitions
  - schedule/materialize.go: How patterns become concrete shifts
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type RoleJSON struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	Title          string          `json:"title"`
	QualifiedUsers []string        `json:"qualified_users"`
	Shifts         []RoleShiftJSON `json:"shifts"`
}

type RoleShiftJSON struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	StartDay      string   `json:"start_day"`
	EndDay        string   `json:"end_day,omitempty"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	RequiredStaff int      `json:"required_staff,omitempty"`
	Tasks         []string `json:"tasks,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

type RoleFactory struct{}

func NewRoleFactory() *RoleFactory { return &RoleFactory{} }

// ParseRole converts a JSON role definition into a validated rota.Role.
func (f *RoleFactory) ParseRole(jsonStr string) (*rota.Role, error) {
	var rj RoleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("invalid role JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// ParseRoles converts a JSON array of role definitions.
func (f *RoleFactory) ParseRoles(data []byte) ([]rota.Role, error) {
	var rjs []RoleJSON
	if err := json.Unmarshal(data, &rjs); err != nil {
		return nil, fmt.Errorf("invalid roles JSON: %w", err)
	}
	roles := make([]rota.Role, 0, len(rjs))
	for _, rj := range rjs {
		role, err := f.FromJSON(rj)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

// FromJSON applies defaults and validates a single definition.
func (f *RoleFactory) FromJSON(rj RoleJSON) (*rota.Role, error) {
	if rj.Title == "" {
		return nil, &rota.ValidationError{Field: "title", Message: "role title is required"}
	}
	if rj.ID == "" {
		rj.ID = uuid.NewString()
	}

	role := rota.Role{
		ID:        rota.RoleID(rj.ID),
		CompanyID: rota.CompanyID(rj.CompanyID),
		Title:     rj.Title,
	}
	for _, u := range rj.QualifiedUsers {
		role.QualifiedUsers = append(role.QualifiedUsers, rota.StaffID(u))
	}

	for i, sj := range rj.Shifts {
		pattern, err := f.patternFromJSON(sj)
		if err != nil {
			return nil, fmt.Errorf("shift pattern %d (%s): %w", i, sj.Name, err)
		}
		role.Shifts = append(role.Shifts, *pattern)
	}
	return &role, nil
}

func (f *RoleFactory) patternFromJSON(sj RoleShiftJSON) (*rota.RoleShift, error) {
	startDay, err := parseWeekday(sj.StartDay)
	if err != nil {
		return nil, err
	}
	endDay := startDay
	if sj.EndDay != "" {
		if endDay, err = parseWeekday(sj.EndDay); err != nil {
			return nil, err
		}
	}

	pattern := rota.RoleShift{
		ID:            rota.RoleShiftID(sj.ID),
		Name:          sj.Name,
		StartDay:      startDay,
		EndDay:        endDay,
		StartTime:     sj.StartTime,
		EndTime:       sj.EndTime,
		RequiredStaff: sj.RequiredStaff,
		Tasks:         sj.Tasks,
		IsActive:      true,
	}
	if pattern.ID == "" {
		pattern.ID = rota.RoleShiftID(uuid.NewString())
	}
	if pattern.RequiredStaff == 0 {
		pattern.RequiredStaff = 1
	}
	if sj.IsActive != nil {
		pattern.IsActive = *sj.IsActive
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return &pattern, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &rota.ValidationError{Field: "day", Message: "unknown weekday: " + s}
	}
	return wd, nil
}

// WeekdayName returns the lowercase JSON form of a weekday.
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}
