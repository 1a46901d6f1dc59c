/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the rota persistence interfaces using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

INTERFACES IMPLEMENTED:
  rota.ShiftStore: Shift CRUD, range query, bulk delete, status CAS
  rota.RoleStore:  Role template persistence
  rota.ClaimStore: Open-shift claim requests

PERIOD KEYS:
  Every shift row carries day_key, week_key, and month_key columns computed
  with rota.DayKey/ISOWeekKey/MonthKey at write time. Bulk deletion matches
  on these columns, so deletion scope is guaranteed to agree with the keys
  shown to users - the key functions are the single source of truth.

STATUS CAS:
  TransitionStatus runs UPDATE ... WHERE id=? AND status=? and checks the
  affected-row count, so concurrent transitions on the same shift resolve
  to exactly one winner.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/rota.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - rota/store.go: Interface definitions
  - rota/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/rota-engine/rota"
)

// Store implements the rota storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		user_id TEXT,
		status TEXT NOT NULL,
		location_name TEXT NOT NULL DEFAULT '',
		location_address TEXT NOT NULL DEFAULT '',
		location_lat REAL NOT NULL DEFAULT 0,
		location_lng REAL NOT NULL DEFAULT 0,
		role_id TEXT NOT NULL DEFAULT '',
		role_shift_id TEXT NOT NULL DEFAULT '',
		color_hex TEXT NOT NULL DEFAULT '',
		actual_start TEXT,
		actual_end TEXT,
		clock_in_location TEXT,
		clock_out_location TEXT,
		day_key TEXT NOT NULL,
		week_key TEXT NOT NULL,
		month_key TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Range query hot path: start_time is stored RFC3339 UTC, so text
	-- comparison is chronological comparison.
	CREATE INDEX IF NOT EXISTS idx_shifts_start_time ON shifts(start_time);
	CREATE INDEX IF NOT EXISTS idx_shifts_user_start ON shifts(user_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_shifts_day_key ON shifts(day_key);
	CREATE INDEX IF NOT EXISTS idx_shifts_week_key ON shifts(week_key);
	CREATE INDEX IF NOT EXISTS idx_shifts_month_key ON shifts(month_key);
	CREATE INDEX IF NOT EXISTS idx_shifts_status ON shifts(status);

	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_roles_company ON roles(company_id);

	CREATE TABLE IF NOT EXISTS claim_requests (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL,
		staff_id TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_claims_shift ON claim_requests(shift_id);

	CREATE TABLE IF NOT EXISTS schedule_runs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL DEFAULT '',
		period TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL,
		total_shifts INTEGER NOT NULL,
		filled_shifts INTEGER NOT NULL,
		unfilled_shifts INTEGER NOT NULL,
		coverage_pct REAL NOT NULL,
		created_shifts INTEGER NOT NULL DEFAULT 0,
		committed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON schedule_runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (rota.ShiftStore interface)
// =============================================================================

const shiftColumns = `id, company_id, title, description, start_time, end_time,
	shift_type, user_id, status, location_name, location_address, location_lat,
	location_lng, role_id, role_shift_id, color_hex, actual_start, actual_end,
	clock_in_location, clock_out_location, created_at, updated_at`

func (s *Store) Query(ctx context.Context, r rota.Range, scope *rota.QueryScope) ([]rota.Shift, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE start_time >= ? AND start_time < ?`
	args := []any{formatTime(r.Start), formatTime(r.End)}
	if scope != nil && scope.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, string(*scope.UserID))
	}
	query += ` ORDER BY start_time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []rota.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	return shifts, rows.Err()
}

func (s *Store) Get(ctx context.Context, id rota.ShiftID) (*rota.Shift, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, string(id))
	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, rota.ErrShiftNotFound
	}
	return shift, err
}

func (s *Store) Create(ctx context.Context, shift rota.Shift) (*rota.Shift, error) {
	if shift.ID == "" {
		shift.ID = rota.NewShiftID()
	}
	if shift.Status == "" {
		shift.Status = rota.InitialStatus(shift.Type)
	}
	if err := shift.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts
		(id, company_id, title, description, start_time, end_time, shift_type,
		 user_id, status, location_name, location_address, location_lat,
		 location_lng, role_id, role_shift_id, color_hex, actual_start,
		 actual_end, clock_in_location, clock_out_location, day_key, week_key,
		 month_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shiftArgs(shift)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	return &shift, nil
}

func (s *Store) Update(ctx context.Context, id rota.ShiftID, patch rota.ShiftPatch) (*rota.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rota.ApplyPatch(shift, patch); err != nil {
		return nil, err
	}
	if err := shift.Validate(); err != nil {
		return nil, err
	}
	shift.UpdatedAt = time.Now().UTC()

	if err := s.writeShift(ctx, *shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *Store) writeShift(ctx context.Context, shift rota.Shift) error {
	args := shiftArgs(shift)
	// Move id to the end for the WHERE clause.
	args = append(args[1:], args[0])
	_, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET
		company_id=?, title=?, description=?, start_time=?, end_time=?,
		shift_type=?, user_id=?, status=?, location_name=?, location_address=?,
		location_lat=?, location_lng=?, role_id=?, role_shift_id=?, color_hex=?,
		actual_start=?, actual_end=?, clock_in_location=?, clock_out_location=?,
		day_key=?, week_key=?, month_key=?, created_at=?, updated_at=?
		WHERE id=?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id rota.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rota.ErrShiftNotFound
	}
	return nil
}

func (s *Store) BulkDelete(ctx context.Context, sel rota.BulkDeleteSelector) (int, error) {
	if err := sel.Validate(); err != nil {
		return 0, err
	}

	var column, key string
	switch {
	case sel.Day != "":
		column, key = "day_key", sel.Day
	case sel.Week != "":
		column, key = "week_key", sel.Week
	case sel.Month != "":
		column, key = "month_key", sel.Month
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM shifts WHERE `+column+` = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete shifts: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) TransitionStatus(ctx context.Context, id rota.ShiftID, from, to rota.ShiftStatus, mutate func(*rota.Shift)) (*rota.Shift, error) {
	if !rota.ValidTransition(from, to) {
		return nil, &rota.ConflictError{ShiftID: id, Actual: from,
			Reason: "illegal transition " + string(from) + " -> " + string(to)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.Status != from {
		return nil, &rota.ConflictError{ShiftID: id, Expected: from, Actual: shift.Status}
	}

	shift.Status = to
	if mutate != nil {
		mutate(shift)
	}
	shift.UpdatedAt = time.Now().UTC()

	args := shiftArgs(*shift)
	args = append(args[1:], args[0], string(from))
	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET
		company_id=?, title=?, description=?, start_time=?, end_time=?,
		shift_type=?, user_id=?, status=?, location_name=?, location_address=?,
		location_lat=?, location_lng=?, role_id=?, role_shift_id=?, color_hex=?,
		actual_start=?, actual_end=?, clock_in_location=?, clock_out_location=?,
		day_key=?, week_key=?, month_key=?, created_at=?, updated_at=?
		WHERE id=? AND status=?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to transition shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Lost the race: someone changed the status after our read.
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &rota.ConflictError{ShiftID: id, Expected: from, Actual: current.Status}
	}
	return shift, nil
}

// =============================================================================
// ROLE STORE (rota.RoleStore interface)
// =============================================================================

func (s *Store) SaveRole(ctx context.Context, role rota.Role) error {
	for i := range role.Shifts {
		if err := role.Shifts[i].Validate(); err != nil {
			return err
		}
	}
	configJSON, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("failed to encode role: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roles (id, company_id, title, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_id=excluded.company_id,
			title=excluded.title,
			config_json=excluded.config_json,
			updated_at=excluded.updated_at`,
		string(role.ID), string(role.CompanyID), role.Title, string(configJSON), now, now)
	if err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, id rota.RoleID) (*rota.Role, error) {
	var configJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM roles WHERE id = ?`, string(id)).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return nil, rota.ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	var role rota.Role
	if err := json.Unmarshal([]byte(configJSON), &role); err != nil {
		return nil, fmt.Errorf("failed to decode role %s: %w", id, err)
	}
	return &role, nil
}

func (s *Store) ListRoles(ctx context.Context, companyID rota.CompanyID) ([]rota.Role, error) {
	query := `SELECT config_json FROM roles`
	var args []any
	if companyID != "" {
		query += ` WHERE company_id = ?`
		args = append(args, string(companyID))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []rota.Role
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		var role rota.Role
		if err := json.Unmarshal([]byte(configJSON), &role); err != nil {
			continue // skip undecodable rows rather than failing the list
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// =============================================================================
// CLAIM STORE (rota.ClaimStore interface)
// =============================================================================

func (s *Store) SaveClaim(ctx context.Context, claim rota.ClaimRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claim_requests (id, shift_id, staff_id, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(claim.ID), string(claim.ShiftID), string(claim.StaffID),
		claim.Notes, string(claim.Status), formatTime(claim.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}

func (s *Store) ListClaims(ctx context.Context) ([]rota.ClaimRequest, error) {
	return s.listClaims(ctx, `SELECT id, shift_id, staff_id, notes, status, created_at
		FROM claim_requests ORDER BY created_at, id`)
}

func (s *Store) ListClaimsByShift(ctx context.Context, shiftID rota.ShiftID) ([]rota.ClaimRequest, error) {
	return s.listClaims(ctx, `SELECT id, shift_id, staff_id, notes, status, created_at
		FROM claim_requests WHERE shift_id = ? ORDER BY created_at, id`, string(shiftID))
}

func (s *Store) listClaims(ctx context.Context, query string, args ...any) ([]rota.ClaimRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []rota.ClaimRequest
	for rows.Next() {
		var c rota.ClaimRequest
		var id, shiftID, staffID, status, createdAt string
		if err := rows.Scan(&id, &shiftID, &staffID, &c.Notes, &status, &createdAt); err != nil {
			return nil, err
		}
		c.ID = rota.ClaimID(id)
		c.ShiftID = rota.ShiftID(shiftID)
		c.StaffID = rota.StaffID(staffID)
		c.Status = rota.ClaimStatus(status)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// =============================================================================
// SCHEDULE RUNS - Audit records of preview/commit runs
// =============================================================================

// RunRecord is the persisted audit row for a scheduling run.
type RunRecord struct {
	ID            string
	CompanyID     string
	Period        string
	Algorithm     string
	RangeStart    time.Time
	RangeEnd      time.Time
	TotalShifts   int
	FilledShifts  int
	Unfilled      int
	CoveragePct   float64
	CreatedShifts int
	Committed     bool
	CreatedAt     time.Time
}

func (s *Store) SaveRun(ctx context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_runs
		(id, company_id, period, algorithm, range_start, range_end, total_shifts,
		 filled_shifts, unfilled_shifts, coverage_pct, created_shifts, committed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CompanyID, run.Period, run.Algorithm,
		formatTime(run.RangeStart), formatTime(run.RangeEnd),
		run.TotalShifts, run.FilledShifts, run.Unfilled, run.CoveragePct,
		run.CreatedShifts, run.Committed, formatTime(run.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, period, algorithm, range_start, range_end,
		       total_shifts, filled_shifts, unfilled_shifts, coverage_pct,
		       created_shifts, committed, created_at
		FROM schedule_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var rangeStart, rangeEnd, createdAt string
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.Period, &r.Algorithm,
			&rangeStart, &rangeEnd, &r.TotalShifts, &r.FilledShifts, &r.Unfilled,
			&r.CoveragePct, &r.CreatedShifts, &r.Committed, &createdAt); err != nil {
			return nil, err
		}
		r.RangeStart, _ = time.Parse(time.RFC3339, rangeStart)
		r.RangeEnd, _ = time.Parse(time.RFC3339, rangeEnd)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// ROW HELPERS
// =============================================================================

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func shiftArgs(shift rota.Shift) []any {
	var userID any
	if shift.UserID != nil {
		userID = string(*shift.UserID)
	}
	return []any{
		string(shift.ID),
		string(shift.CompanyID),
		shift.Title,
		shift.Description,
		formatTime(shift.StartTime),
		formatTime(shift.EndTime),
		string(shift.Type),
		userID,
		string(shift.Status),
		shift.Location.Name,
		shift.Location.Address,
		shift.Location.Lat,
		shift.Location.Lng,
		string(shift.RoleID),
		string(shift.RoleShiftID),
		shift.ColorHex,
		nullTime(shift.ActualStart),
		nullTime(shift.ActualEnd),
		nullLocation(shift.ClockInLocation),
		nullLocation(shift.ClockOutLocation),
		rota.DayKey(shift.StartTime),
		rota.ISOWeekKey(shift.StartTime),
		rota.MonthKey(shift.StartTime),
		formatTime(shift.CreatedAt),
		formatTime(shift.UpdatedAt),
	}
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullLocation(l *rota.Location) any {
	if l == nil {
		return nil
	}
	b, _ := json.Marshal(l)
	return string(b)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*rota.Shift, error) {
	var (
		shift                                  rota.Shift
		id, shiftType, status                  string
		companyID, roleID, roleShiftID         string
		startTime, endTime, createdAt, updated string
		userID                                 sql.NullString
		actualStart, actualEnd                 sql.NullString
		clockIn, clockOut                      sql.NullString
	)
	err := row.Scan(&id, &companyID, &shift.Title, &shift.Description,
		&startTime, &endTime, &shiftType, &userID, &status,
		&shift.Location.Name, &shift.Location.Address, &shift.Location.Lat,
		&shift.Location.Lng, &roleID, &roleShiftID, &shift.ColorHex,
		&actualStart, &actualEnd, &clockIn, &clockOut, &createdAt, &updated)
	if err != nil {
		return nil, err
	}

	shift.ID = rota.ShiftID(id)
	shift.CompanyID = rota.CompanyID(companyID)
	shift.Type = rota.ShiftType(shiftType)
	shift.Status = rota.ShiftStatus(status)
	shift.RoleID = rota.RoleID(roleID)
	shift.RoleShiftID = rota.RoleShiftID(roleShiftID)
	if userID.Valid {
		uid := rota.StaffID(userID.String)
		shift.UserID = &uid
	}
	if shift.StartTime, err = time.Parse(time.RFC3339, startTime); err != nil {
		return nil, fmt.Errorf("corrupt start_time on shift %s: %w", id, err)
	}
	if shift.EndTime, err = time.Parse(time.RFC3339, endTime); err != nil {
		return nil, fmt.Errorf("corrupt end_time on shift %s: %w", id, err)
	}
	shift.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	shift.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	shift.ActualStart = parseNullTime(actualStart)
	shift.ActualEnd = parseNullTime(actualEnd)
	shift.ClockInLocation = parseNullLocation(clockIn)
	shift.ClockOutLocation = parseNullLocation(clockOut)
	return &shift, nil
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseNullLocation(ns sql.NullString) *rota.Location {
	if !ns.Valid {
		return nil
	}
	var l rota.Location
	if err := json.Unmarshal([]byte(ns.String), &l); err != nil {
		return nil
	}
	return &l
}
