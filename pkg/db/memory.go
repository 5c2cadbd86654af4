package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/harunaka/careshift/pkg/core/model"
)

// MemoryStore is an in-memory implementation of all store interfaces.
// It backs tests and local dry runs; pkg/postgres provides the
// production implementation.
type MemoryStore struct {
	mu sync.RWMutex

	Staff         []model.StaffMember
	ShiftTypes    []model.ShiftType
	Template      map[string]int
	WeeklyRules   []WeeklyRule
	DateOverrides []DateOverride
	SpecialEvents []model.SpecialEventRule
	Requests      map[string]*model.Request
	History       []model.ApprovalRecord
	Slots         map[string]*model.ShiftSlot
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Template: map[string]int{},
		Requests: map[string]*model.Request{},
		Slots:    map[string]*model.ShiftSlot{},
	}
}

func (m *MemoryStore) ListStaff(ctx context.Context, filter StaffFilter) ([]model.StaffMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.StaffMember, 0, len(m.Staff))
	for _, s := range m.Staff {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.ShiftTypeCode != "" && !s.CanWork(filter.ShiftTypeCode) {
			continue
		}
		if filter.SkillName != "" && !s.HasSkill(filter.SkillName) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (m *MemoryStore) GetStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.Staff {
		if m.Staff[i].ID == id {
			staff := m.Staff[i]
			return &staff, nil
		}
	}
	return nil, fmt.Errorf("staff %s: %w", id, model.ErrNotFound)
}

func (m *MemoryStore) ListShiftTypes(ctx context.Context) ([]model.ShiftType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ShiftType(nil), m.ShiftTypes...), nil
}

func (m *MemoryStore) GetTemplate(ctx context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	template := make(map[string]int, len(m.Template))
	for code, count := range m.Template {
		template[code] = count
	}
	return template, nil
}

func (m *MemoryStore) GetWeeklyRules(ctx context.Context) ([]WeeklyRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]WeeklyRule(nil), m.WeeklyRules...), nil
}

func (m *MemoryStore) GetDateOverrides(ctx context.Context) ([]DateOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]DateOverride(nil), m.DateOverrides...), nil
}

func (m *MemoryStore) GetSpecialEvents(ctx context.Context, startDate, endDate string) ([]model.SpecialEventRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []model.SpecialEventRule
	for _, ev := range m.SpecialEvents {
		// Overlap check on inclusive date ranges
		if ev.StartDate <= endDate && startDate <= ev.EndDate {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (m *MemoryStore) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.Requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, model.ErrNotFound)
	}
	copied := *req
	return &copied, nil
}

func (m *MemoryStore) ListRequests(ctx context.Context, startDate, endDate string) ([]model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requests []model.Request
	for _, req := range m.Requests {
		for _, date := range req.Dates {
			if startDate <= date && date <= endDate {
				requests = append(requests, *req)
				break
			}
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (m *MemoryStore) SaveRequest(ctx context.Context, req *model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *req
	m.Requests[req.ID] = &copied
	return nil
}

func (m *MemoryStore) AppendHistory(ctx context.Context, record model.ApprovalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.History = append(m.History, record)
	return nil
}

func (m *MemoryStore) GetHistory(ctx context.Context, requestID string) ([]model.ApprovalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []model.ApprovalRecord
	for _, rec := range m.History {
		if rec.RequestID == requestID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *MemoryStore) GetSlot(ctx context.Context, id string) (*model.ShiftSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slot, ok := m.Slots[id]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", id, model.ErrNotFound)
	}
	copied := *slot
	return &copied, nil
}

func (m *MemoryStore) ListSlots(ctx context.Context, startDate, endDate string) ([]model.ShiftSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var slots []model.ShiftSlot
	for _, slot := range m.Slots {
		if startDate <= slot.Date && slot.Date <= endDate {
			slots = append(slots, *slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].ID < slots[j].ID
	})
	return slots, nil
}

func (m *MemoryStore) FindStaffSlot(ctx context.Context, staffID, date string) (*model.ShiftSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, slot := range m.Slots {
		if slot.Date == date && slot.AssignedStaffID == staffID {
			copied := *slot
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("no slot held by staff %s on %s: %w", staffID, date, model.ErrNotFound)
}

// CommitAssignment writes an assignment with an optimistic version check.
// A stale expectedVersion fails with model.ErrConflict; the caller retries
// against fresh state. An assignment at the expected version replaces the
// current holder, which is how an approved exchange hands a slot over.
func (m *MemoryStore) CommitAssignment(ctx context.Context, slotID, staffID string, expectedVersion int) (*model.ShiftSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.Slots[slotID]
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", slotID, model.ErrNotFound)
	}
	if slot.Version != expectedVersion {
		return nil, fmt.Errorf("slot %s version %d (expected %d): %w",
			slotID, slot.Version, expectedVersion, model.ErrConflict)
	}

	slot.AssignedStaffID = staffID
	slot.Version++
	copied := *slot
	return &copied, nil
}
