package requirement

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/db"
)

func baseTemplate() map[string]int {
	return map[string]int{"early": 2, "day": 3, "late": 2}
}

func TestResolve_TemplateDefault(t *testing.T) {
	resolver, err := New(baseTemplate(), nil, nil, nil)
	require.NoError(t, err)

	count, err := resolver.Resolve("2025-03-07", "day")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestResolve_DateOverrideBeatsTemplate(t *testing.T) {
	overrides := []db.DateOverride{
		{Date: "2025-03-06", ShiftTypeCode: "day", RequiredCount: 4},
	}

	resolver, err := New(baseTemplate(), nil, overrides, nil)
	require.NoError(t, err)

	// Override applies on its date only
	count, err := resolver.Resolve("2025-03-06", "day")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	count, err = resolver.Resolve("2025-03-07", "day")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestResolve_WeeklyRuleBeatsTemplate(t *testing.T) {
	weekly := []db.WeeklyRule{
		{RRule: "FREQ=WEEKLY;BYDAY=SA,SU", ShiftTypeCode: "day", RequiredCount: 5},
	}

	resolver, err := New(baseTemplate(), weekly, nil, nil)
	require.NoError(t, err)

	// 2025-03-08 is a Saturday
	count, err := resolver.Resolve("2025-03-08", "day")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// 2025-03-10 is a Monday - falls back to template
	count, err = resolver.Resolve("2025-03-10", "day")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestResolve_OverrideBeatsWeeklyRule(t *testing.T) {
	weekly := []db.WeeklyRule{
		{RRule: "FREQ=WEEKLY;BYDAY=SA", ShiftTypeCode: "day", RequiredCount: 5},
	}
	overrides := []db.DateOverride{
		{Date: "2025-03-08", ShiftTypeCode: "day", RequiredCount: 1},
	}

	resolver, err := New(baseTemplate(), weekly, overrides, nil)
	require.NoError(t, err)

	count, err := resolver.Resolve("2025-03-08", "day")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolve_IncreaseEventStacksOnBase(t *testing.T) {
	events := []model.SpecialEventRule{
		{
			ID:        "ev1",
			Kind:      model.EventIncreaseRegular,
			StartDate: "2025-03-05",
			EndDate:   "2025-03-07",
			Delta:     2,
		},
	}

	resolver, err := New(baseTemplate(), nil, nil, events)
	require.NoError(t, err)

	count, err := resolver.Resolve("2025-03-06", "day")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// Outside the event range
	count, err = resolver.Resolve("2025-03-08", "day")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestResolve_IncreaseEventStacksOnOverride(t *testing.T) {
	overrides := []db.DateOverride{
		{Date: "2025-03-06", ShiftTypeCode: "day", RequiredCount: 4},
	}
	events := []model.SpecialEventRule{
		{Kind: model.EventIncreaseRegular, StartDate: "2025-03-06", EndDate: "2025-03-06", Delta: 1},
	}

	resolver, err := New(baseTemplate(), nil, overrides, events)
	require.NoError(t, err)

	count, err := resolver.Resolve("2025-03-06", "day")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestResolve_ExcludeFloorDoesNotChangeCount(t *testing.T) {
	events := []model.SpecialEventRule{
		{
			Kind:           model.EventExcludeFloor,
			StartDate:      "2025-03-06",
			EndDate:        "2025-03-06",
			TargetStaffIDs: []string{"s1", "s2"},
		},
	}

	resolver, err := New(baseTemplate(), nil, nil, events)
	require.NoError(t, err)

	count, err := resolver.Resolve("2025-03-06", "day")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.ElementsMatch(t, []string{"s1", "s2"}, resolver.ExcludedStaff("2025-03-06"))
	assert.Empty(t, resolver.ExcludedStaff("2025-03-07"))
}

func TestResolve_CustomEventUsesCallerDelta(t *testing.T) {
	events := []model.SpecialEventRule{
		{Kind: model.EventCustom, StartDate: "2025-03-06", EndDate: "2025-03-06", Delta: 9},
	}

	resolver, err := New(baseTemplate(), nil, nil, events,
		WithCustomDelta(func(date, shiftTypeCode string, rule model.SpecialEventRule) int {
			if shiftTypeCode == "day" {
				return -1
			}
			return 0
		}))
	require.NoError(t, err)

	count, err := resolver.Resolve("2025-03-06", "day")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = resolver.Resolve("2025-03-06", "early")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestResolve_UnknownShiftType(t *testing.T) {
	resolver, err := New(baseTemplate(), nil, nil, nil)
	require.NoError(t, err)

	_, err = resolver.Resolve("2025-03-06", "night")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestResolve_NegativeCountIsInvariantViolation(t *testing.T) {
	events := []model.SpecialEventRule{
		{Kind: model.EventCustom, StartDate: "2025-03-06", EndDate: "2025-03-06", Delta: -10},
	}

	resolver, err := New(baseTemplate(), nil, nil, events)
	require.NoError(t, err)

	_, err = resolver.Resolve("2025-03-06", "day")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvariant))
}

func TestResolve_MalformedDate(t *testing.T) {
	resolver, err := New(baseTemplate(), nil, nil, nil)
	require.NoError(t, err)

	_, err = resolver.Resolve("06/03/2025", "day")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestNew_BadRRule(t *testing.T) {
	weekly := []db.WeeklyRule{
		{RRule: "FREQ=NONSENSE", ShiftTypeCode: "day", RequiredCount: 5},
	}

	_, err := New(baseTemplate(), weekly, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse rrule")
}

func TestResolve_WeeklyRuleConcurrentUse(t *testing.T) {
	weekly := []db.WeeklyRule{
		{RRule: "FREQ=WEEKLY;BYDAY=SA,SU", ShiftTypeCode: "day", RequiredCount: 5},
	}

	resolver, err := New(baseTemplate(), weekly, nil, nil)
	require.NoError(t, err)

	// Resolution over a weekly rule must stay read-only; concurrent
	// callers on different dates see consistent results under -race
	dates := map[string]int{
		"2025-03-08": 5, // Saturday
		"2025-03-09": 5, // Sunday
		"2025-03-10": 3, // Monday, template fallback
		"2025-03-11": 3,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date, want := range dates {
				count, err := resolver.Resolve(date, "day")
				assert.NoError(t, err)
				assert.Equal(t, want, count, "date %s", date)
			}
		}()
	}
	wg.Wait()
}
