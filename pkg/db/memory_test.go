package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunaka/careshift/pkg/core/model"
)

func slotStore() *MemoryStore {
	store := NewMemoryStore()
	store.Slots["slot-1"] = &model.ShiftSlot{
		ID:            "slot-1",
		Date:          "2025-03-10",
		ShiftTypeCode: "day",
		Version:       1,
	}
	return store
}

func TestCommitAssignment(t *testing.T) {
	store := slotStore()

	slot, err := store.CommitAssignment(context.Background(), "slot-1", "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, "s1", slot.AssignedStaffID)
	assert.Equal(t, 2, slot.Version)
}

func TestCommitAssignment_StaleVersion(t *testing.T) {
	store := slotStore()

	_, err := store.CommitAssignment(context.Background(), "slot-1", "s1", 1)
	require.NoError(t, err)

	_, err = store.CommitAssignment(context.Background(), "slot-1", "s2", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))

	// The first write survives
	slot, err := store.GetSlot(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", slot.AssignedStaffID)
}

func TestCommitAssignment_ReplacesHolderAtCurrentVersion(t *testing.T) {
	store := slotStore()
	store.Slots["slot-1"].AssignedStaffID = "s1"

	slot, err := store.CommitAssignment(context.Background(), "slot-1", "s2", 1)
	require.NoError(t, err)
	assert.Equal(t, "s2", slot.AssignedStaffID)
	assert.Equal(t, 2, slot.Version)

	// A writer still holding the old version lost the race
	_, err = store.CommitAssignment(context.Background(), "slot-1", "s3", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))
}

func TestCommitAssignment_UnknownSlot(t *testing.T) {
	_, err := slotStore().CommitAssignment(context.Background(), "missing", "s1", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestCommitAssignment_ConcurrentWritersSerialize(t *testing.T) {
	store := slotStore()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			staffID := string(rune('a' + n))
			_, errs[n] = store.CommitAssignment(context.Background(), "slot-1", staffID, 1)
		}(i)
	}
	wg.Wait()

	// Exactly one writer wins; the rest observe a conflict
	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.True(t, errors.Is(err, model.ErrConflict))
		}
	}
	assert.Equal(t, 1, won)

	slot, err := store.GetSlot(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Equal(t, 2, slot.Version)
	assert.NotEmpty(t, slot.AssignedStaffID)
}

func TestListStaff_Filters(t *testing.T) {
	store := NewMemoryStore()
	store.Staff = []model.StaffMember{
		{
			ID:           "s1",
			Category:     "care",
			WorkPatterns: []string{"early", "day"},
			Skills:       []model.Skill{{Name: "bodyCare", Level: 3}},
		},
		{
			ID:           "s2",
			Category:     "nurse",
			WorkPatterns: []string{"late"},
			Skills:       []model.Skill{{Name: "medication", Level: 5}},
		},
	}

	all, err := store.ListStaff(context.Background(), StaffFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	nurses, err := store.ListStaff(context.Background(), StaffFilter{Category: "nurse"})
	require.NoError(t, err)
	require.Len(t, nurses, 1)
	assert.Equal(t, "s2", nurses[0].ID)

	early, err := store.ListStaff(context.Background(), StaffFilter{ShiftTypeCode: "early"})
	require.NoError(t, err)
	require.Len(t, early, 1)
	assert.Equal(t, "s1", early[0].ID)

	skilled, err := store.ListStaff(context.Background(), StaffFilter{SkillName: "medication"})
	require.NoError(t, err)
	require.Len(t, skilled, 1)
	assert.Equal(t, "s2", skilled[0].ID)
}

func TestListRequests_DateRange(t *testing.T) {
	store := NewMemoryStore()
	store.Requests["r1"] = &model.Request{ID: "r1", Dates: []string{"2025-03-10"}}
	store.Requests["r2"] = &model.Request{ID: "r2", Dates: []string{"2025-03-20"}}
	store.Requests["r3"] = &model.Request{ID: "r3", Dates: []string{"2025-03-01", "2025-03-12"}}

	requests, err := store.ListRequests(context.Background(), "2025-03-09", "2025-03-15")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "r1", requests[0].ID)
	assert.Equal(t, "r3", requests[1].ID)
}

func TestGetRequest_ReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	store.Requests["r1"] = &model.Request{ID: "r1", Status: model.StatusPending}

	req, err := store.GetRequest(context.Background(), "r1")
	require.NoError(t, err)

	// Mutating the copy does not leak into the store
	req.Status = model.StatusApproved
	fresh, err := store.GetRequest(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, fresh.Status)
}

func TestGetSpecialEvents_OverlapOnly(t *testing.T) {
	store := NewMemoryStore()
	store.SpecialEvents = []model.SpecialEventRule{
		{ID: "ev1", StartDate: "2025-03-05", EndDate: "2025-03-08"},
		{ID: "ev2", StartDate: "2025-04-01", EndDate: "2025-04-02"},
	}

	events, err := store.GetSpecialEvents(context.Background(), "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev1", events[0].ID)
}

func TestFindStaffSlot(t *testing.T) {
	store := slotStore()
	store.Slots["slot-1"].AssignedStaffID = "s1"

	slot, err := store.FindStaffSlot(context.Background(), "s1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "slot-1", slot.ID)

	_, err = store.FindStaffSlot(context.Background(), "s2", "2025-03-10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
