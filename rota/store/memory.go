// Package store provides ShiftStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements rota.ShiftStore, rota.RoleStore, and rota.ClaimStore.
// All mutations happen under a single write lock, which makes
// TransitionStatus a true compare-and-swap.
type Memory struct {
	mu     sync.RWMutex
	shifts map[rota.ShiftID]rota.Shift
	roles  map[rota.RoleID]rota.Role
	claims []rota.ClaimRequest
	clock  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		shifts: make(map[rota.ShiftID]rota.Shift),
		roles:  make(map[rota.RoleID]rota.Role),
		clock:  time.Now,
	}
}

// SetClock overrides the timestamp source. Tests only.
func (m *Memory) SetClock(clock func() time.Time) { m.clock = clock }

// =============================================================================
// SHIFT STORE
// =============================================================================

func (m *Memory) Query(_ context.Context, r rota.Range, scope *rota.QueryScope) ([]rota.Shift, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []rota.Shift
	for _, s := range m.shifts {
		if !r.Contains(s.StartTime) {
			continue
		}
		if scope != nil && scope.UserID != nil {
			if s.UserID == nil || *s.UserID != *scope.UserID {
				continue
			}
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (m *Memory) Get(_ context.Context, id rota.ShiftID) (*rota.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, rota.ErrShiftNotFound
	}
	out := s
	return &out, nil
}

func (m *Memory) Create(_ context.Context, s rota.Shift) (*rota.Shift, error) {
	if s.ID == "" {
		s.ID = rota.NewShiftID()
	}
	if s.Status == "" {
		s.Status = rota.InitialStatus(s.Type)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.shifts[s.ID]; exists {
		return nil, &rota.ConflictError{ShiftID: s.ID, Reason: "shift id already exists"}
	}
	now := m.clock().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.shifts[s.ID] = s
	out := s
	return &out, nil
}

func (m *Memory) Update(_ context.Context, id rota.ShiftID, patch rota.ShiftPatch) (*rota.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, rota.ErrShiftNotFound
	}
	if err := rota.ApplyPatch(&s, patch); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.UpdatedAt = m.clock().UTC()
	m.shifts[id] = s
	out := s
	return &out, nil
}

func (m *Memory) Delete(_ context.Context, id rota.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[id]; !ok {
		return rota.ErrShiftNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *Memory) BulkDelete(_ context.Context, sel rota.BulkDeleteSelector) (int, error) {
	if err := sel.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, s := range m.shifts {
		if sel.Matches(s) {
			delete(m.shifts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) TransitionStatus(_ context.Context, id rota.ShiftID, from, to rota.ShiftStatus, mutate func(*rota.Shift)) (*rota.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, rota.ErrShiftNotFound
	}
	if s.Status != from {
		return nil, &rota.ConflictError{ShiftID: id, Expected: from, Actual: s.Status}
	}
	if !rota.ValidTransition(from, to) {
		return nil, &rota.ConflictError{ShiftID: id, Actual: from,
			Reason: "illegal transition " + string(from) + " -> " + string(to)}
	}
	s.Status = to
	if mutate != nil {
		mutate(&s)
	}
	s.UpdatedAt = m.clock().UTC()
	m.shifts[id] = s
	out := s
	return &out, nil
}

// =============================================================================
// ROLE STORE
// =============================================================================

func (m *Memory) SaveRole(_ context.Context, role rota.Role) error {
	for i := range role.Shifts {
		if err := role.Shifts[i].Validate(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.ID] = role
	return nil
}

func (m *Memory) GetRole(_ context.Context, id rota.RoleID) (*rota.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.roles[id]
	if !ok {
		return nil, rota.ErrRoleNotFound
	}
	out := r
	return &out, nil
}

func (m *Memory) ListRoles(_ context.Context, companyID rota.CompanyID) ([]rota.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []rota.Role
	for _, r := range m.roles {
		if companyID == "" || r.CompanyID == companyID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// CLAIM STORE
// =============================================================================

func (m *Memory) SaveClaim(_ context.Context, claim rota.ClaimRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = append(m.claims, claim)
	return nil
}

func (m *Memory) ListClaims(_ context.Context) ([]rota.ClaimRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]rota.ClaimRequest{}, m.claims...), nil
}

func (m *Memory) ListClaimsByShift(_ context.Context, shiftID rota.ShiftID) ([]rota.ClaimRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []rota.ClaimRequest
	for _, c := range m.claims {
		if c.ShiftID == shiftID {
			result = append(result, c)
		}
	}
	return result, nil
}
