package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/requirement"
	"github.com/harunaka/careshift/pkg/db"
)

func testShiftTypes() []model.ShiftType {
	return []model.ShiftType{
		{Code: "early", Name: "Early", StartTime: "07:00", EndTime: "16:00", DurationHours: 8},
		{Code: "day", Name: "Day", StartTime: "10:00", EndTime: "19:00", DurationHours: 8},
	}
}

func testStaff() []model.StaffMember {
	skills := []model.Skill{
		{Name: "bodyCare", Level: 4},
		{Name: "mealAssist", Level: 3},
	}
	var staff []model.StaffMember
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		staff = append(staff, model.StaffMember{
			ID:           id,
			Name:         "Staff " + id,
			Category:     "care",
			Skills:       skills,
			WorkPatterns: []string{"early", "day"},
		})
	}
	return staff
}

func testResolver(t *testing.T, events []model.SpecialEventRule) *requirement.Resolver {
	t.Helper()
	resolver, err := requirement.New(
		map[string]int{"early": 1, "day": 2},
		nil, []db.DateOverride{}, events,
	)
	require.NoError(t, err)
	return resolver
}

func testConfig(t *testing.T) Config {
	return Config{
		PeriodStart: "2025-03-03",
		PeriodEnd:   "2025-03-05",
		Staff:       testStaff(),
		ShiftTypes:  testShiftTypes(),
		Resolver:    testResolver(t, nil),
		Profiles:    DefaultProfiles(42),
	}
}

func TestGenerate_ProducesOnePatternPerProfile(t *testing.T) {
	outcome, err := Generate(context.Background(), testConfig(t))
	require.NoError(t, err)

	require.Len(t, outcome.Patterns, 2)
	assert.False(t, outcome.Partial)

	names := []string{outcome.Patterns[0].Name, outcome.Patterns[1].Name}
	assert.ElementsMatch(t, []string{"balanced", "stable"}, names)

	for _, pattern := range outcome.Patterns {
		assert.NotEmpty(t, pattern.ID)
		assert.NotEmpty(t, pattern.Assignments)
		assert.GreaterOrEqual(t, pattern.Score, 0)
		assert.LessOrEqual(t, pattern.Score, 100)
	}
}

func TestGenerate_DeterministicForFixedSeed(t *testing.T) {
	first, err := Generate(context.Background(), testConfig(t))
	require.NoError(t, err)
	second, err := Generate(context.Background(), testConfig(t))
	require.NoError(t, err)

	require.Len(t, second.Patterns, len(first.Patterns))
	for i := range first.Patterns {
		assert.Equal(t, first.Patterns[i].Assignments, second.Patterns[i].Assignments)
		assert.Equal(t, first.Patterns[i].Metrics, second.Patterns[i].Metrics)
	}
}

func TestGenerate_MeetsRequirementOrRecordsFinding(t *testing.T) {
	cfg := testConfig(t)

	outcome, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		for _, date := range []string{"2025-03-03", "2025-03-04", "2025-03-05"} {
			for _, st := range cfg.ShiftTypes {
				required, err := cfg.Resolver.Resolve(date, st.Code)
				require.NoError(t, err)

				assigned := floorCount(pattern, date, st.Code)
				if assigned < required {
					assert.True(t, hasFinding(pattern, date, st.Code),
						"shortfall on %s/%s must be recorded", date, st.Code)
				}
			}
		}
	}
}

func TestGenerate_ShortfallRecordedWhenUnderstaffed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Staff = cfg.Staff[:1] // one person cannot fill early(1) + day(2)

	outcome, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		assert.NotEmpty(t, pattern.Findings)
		assert.Less(t, pattern.Metrics.RequirementCoverage, 1.0)
	}
}

func TestGenerate_HonorsApprovedLeave(t *testing.T) {
	cfg := testConfig(t)
	cfg.Requests = []model.Request{
		{
			ID:      "req-1",
			StaffID: "s1",
			Dates:   []string{"2025-03-04"},
			Type:    model.RequestRegular,
			Status:  model.StatusApproved,
		},
	}

	outcome, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		for cell, tasks := range pattern.Assignments {
			if cell.Date != "2025-03-04" {
				continue
			}
			for _, task := range tasks {
				assert.NotEqual(t, "s1", task.StaffID, "pattern %s assigned s1 during approved leave", pattern.Name)
			}
		}
		assert.Equal(t, 1.0, pattern.Metrics.LeaveSatisfaction)
	}
}

func TestGenerate_ExcludedStaffGetBackOfficeTask(t *testing.T) {
	cfg := testConfig(t)
	cfg.Resolver = testResolver(t, []model.SpecialEventRule{
		{
			Kind:           model.EventExcludeFloor,
			StartDate:      "2025-03-04",
			EndDate:        "2025-03-04",
			TargetStaffIDs: []string{"s2"},
		},
	})

	outcome, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		backOffice := false
		for cell, tasks := range pattern.Assignments {
			for _, task := range tasks {
				if task.StaffID != "s2" || cell.Date != "2025-03-04" {
					continue
				}
				// Never a floor-facing task on the excluded date
				assert.Equal(t, model.TaskBackOffice, task.Task)
				backOffice = true
			}
		}
		assert.True(t, backOffice, "pattern %s should give s2 a back-office task", pattern.Name)
	}
}

func TestGenerate_HandOverOnFirstDailySlot(t *testing.T) {
	outcome, err := Generate(context.Background(), testConfig(t))
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		perStaffDay := make(map[string]map[string][]model.TaskKind)
		for cell, tasks := range pattern.Assignments {
			for _, task := range tasks {
				if perStaffDay[task.StaffID] == nil {
					perStaffDay[task.StaffID] = make(map[string][]model.TaskKind)
				}
				perStaffDay[task.StaffID][cell.Date] = append(perStaffDay[task.StaffID][cell.Date], task.Task)
			}
		}

		for staffID, days := range perStaffDay {
			for date, kinds := range days {
				handOvers := 0
				for _, kind := range kinds {
					if kind == model.TaskHandOver {
						handOvers++
					}
				}
				assert.LessOrEqual(t, handOvers, 1,
					"staff %s has multiple hand-overs on %s", staffID, date)
			}
		}
	}
}

func TestGenerate_ExactlyOneBreakForMultiSlotStaff(t *testing.T) {
	outcome, err := Generate(context.Background(), testConfig(t))
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		breaks := make(map[string]int)
		slots := make(map[string]int)
		handOvers := make(map[string]int)
		for _, tasks := range pattern.Assignments {
			for _, task := range tasks {
				if task.Task == model.TaskBackOffice {
					continue
				}
				slots[task.StaffID]++
				if task.Task == model.TaskBreak {
					breaks[task.StaffID]++
				}
				if task.Task == model.TaskHandOver {
					handOvers[task.StaffID]++
				}
			}
		}
		for staffID, count := range slots {
			// The break never lands on a hand-over slot, so it requires at
			// least one ordinary slot in the sequence
			if count >= 2 && count > handOvers[staffID] {
				assert.Equal(t, 1, breaks[staffID],
					"staff %s with %d slots should have exactly one break", staffID, count)
			} else {
				assert.LessOrEqual(t, breaks[staffID], 1)
			}
		}
	}
}

func TestGenerate_TimeoutReturnsErrTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, testConfig(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTimeout))
}

func TestGenerate_CancellationMidRunReturnsCompletedPatterns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A custom event hook interleaves the two workers: the first to reach
	// the middle date proceeds and cancels the context from the final
	// date, the other parks until then and aborts at its next date check.
	var mu sync.Mutex
	firstThrough := false
	gate := make(chan struct{})
	var gateOnce sync.Once
	hook := func(date, shiftTypeCode string, rule model.SpecialEventRule) int {
		switch date {
		case "2025-03-04":
			mu.Lock()
			if !firstThrough {
				firstThrough = true
				mu.Unlock()
				return 0
			}
			mu.Unlock()
			<-gate
		case "2025-03-05":
			cancel()
			// The hook fires again for this date during the metrics pass;
			// the gate must only be closed once
			gateOnce.Do(func() { close(gate) })
		}
		return 0
	}

	events := []model.SpecialEventRule{
		{ID: "ev-pace", StartDate: "2025-03-04", EndDate: "2025-03-05", Kind: model.EventCustom},
	}
	resolver, err := requirement.New(
		map[string]int{"early": 1, "day": 2},
		nil, nil, events,
		requirement.WithCustomDelta(hook),
	)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.ShiftTypes = cfg.ShiftTypes[:1]
	cfg.Resolver = resolver

	outcome, err := Generate(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, outcome.Partial)
	require.Len(t, outcome.Patterns, 1)
	assert.NotEmpty(t, outcome.Patterns[0].Assignments)
}

func TestGenerate_ParallelWorkersShareWeeklyRuleResolver(t *testing.T) {
	weekly := []db.WeeklyRule{
		{RRule: "FREQ=WEEKLY;BYDAY=MO,TU", ShiftTypeCode: "day", RequiredCount: 3},
	}
	resolver, err := requirement.New(
		map[string]int{"early": 1, "day": 2},
		weekly, nil, nil,
	)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Resolver = resolver

	// Both profile workers resolve the same weekly rule concurrently;
	// results must match a sequential resolution under -race
	outcome, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, outcome.Patterns, 2)

	// 2025-03-03 is a Monday, so the day shift needs three staff there;
	// the margin profile may add one spare above the floor
	for _, pattern := range outcome.Patterns {
		assert.Empty(t, pattern.Findings)

		monday := model.SlotKey{Date: "2025-03-03", ShiftTypeCode: "day"}
		assert.GreaterOrEqual(t, len(pattern.Assignments[monday]), 3)

		wednesday := model.SlotKey{Date: "2025-03-05", ShiftTypeCode: "day"}
		assert.GreaterOrEqual(t, len(pattern.Assignments[wednesday]), 2)
	}
}

func TestGenerate_DeadlineInFutureCompletes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome, err := Generate(ctx, testConfig(t))
	require.NoError(t, err)
	assert.False(t, outcome.Partial)
	assert.Len(t, outcome.Patterns, 2)
}

func TestGenerate_ValidatesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Resolver = nil
	_, err := Generate(context.Background(), cfg)
	assert.True(t, errors.Is(err, model.ErrValidation))

	cfg = testConfig(t)
	cfg.Profiles = nil
	_, err = Generate(context.Background(), cfg)
	assert.True(t, errors.Is(err, model.ErrValidation))

	cfg = testConfig(t)
	cfg.PeriodEnd = "2025-03-01"
	_, err = Generate(context.Background(), cfg)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestGenerate_ProsAndConsFromThresholds(t *testing.T) {
	outcome, err := Generate(context.Background(), testConfig(t))
	require.NoError(t, err)

	for _, pattern := range outcome.Patterns {
		if pattern.Metrics.RequirementCoverage >= 0.95 {
			assert.Contains(t, pattern.Pros, "full staffing maintained")
		}
		if pattern.Metrics.LoadVariance > 2.0 {
			assert.Contains(t, pattern.Cons, "uneven workload distribution")
		}
	}
}

func floorCount(pattern model.SchedulePattern, date, code string) int {
	count := 0
	for _, task := range pattern.Assignments[model.SlotKey{Date: date, ShiftTypeCode: code}] {
		if task.Task != model.TaskBackOffice {
			count++
		}
	}
	return count
}

func hasFinding(pattern model.SchedulePattern, date, code string) bool {
	for _, finding := range pattern.Findings {
		if finding.Date == date && finding.ShiftTypeCode == code {
			return true
		}
	}
	return false
}
