package scheduler

import (
	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/requirement"
)

// Goal selects how a profile resolves ties and surplus staffing
type Goal string

const (
	// GoalBalanceLoad minimizes variance in per-staff shift counts
	GoalBalanceLoad Goal = "balance_load"

	// GoalMaximizeMargin keeps headcount above the floor where eligible
	// staff allow it, preferring the strongest staff per cell
	GoalMaximizeMargin Goal = "maximize_margin"
)

// Profile is one named optimization variant. Seed drives the deterministic
// tie-break; production callers vary it per run, tests fix it.
type Profile struct {
	Name string
	Goal Goal
	Seed int64
}

// DefaultProfiles returns the standard pattern set
func DefaultProfiles(seed int64) []Profile {
	return []Profile{
		{Name: "balanced", Goal: GoalBalanceLoad, Seed: seed},
		{Name: "stable", Goal: GoalMaximizeMargin, Seed: seed + 1},
	}
}

// TaskSpec is a candidate task for a time-of-day bucket. Staff are ranked
// against Skill to decide who gets which task.
type TaskSpec struct {
	Name  string
	Skill string
}

// DefaultBucketTasks is the standard task list per time-of-day bucket
func DefaultBucketTasks() map[model.TimeBucket][]TaskSpec {
	return map[model.TimeBucket][]TaskSpec{
		model.BucketMorning: {
			{Name: "morning body care round", Skill: "bodyCare"},
			{Name: "breakfast assistance", Skill: "mealAssist"},
			{Name: "medication round", Skill: "medication"},
		},
		model.BucketMidday: {
			{Name: "lunch assistance", Skill: "mealAssist"},
			{Name: "mobility support", Skill: "mobility"},
			{Name: "recreation session", Skill: "recreation"},
		},
		model.BucketAfternoon: {
			{Name: "afternoon body care round", Skill: "bodyCare"},
			{Name: "rehabilitation support", Skill: "mobility"},
			{Name: "family visit coordination", Skill: "communication"},
		},
		model.BucketEvening: {
			{Name: "dinner assistance", Skill: "mealAssist"},
			{Name: "evening medication round", Skill: "medication"},
			{Name: "night preparation", Skill: "bodyCare"},
		},
	}
}

// Config carries the read snapshot for one generation run
type Config struct {
	// PeriodStart and PeriodEnd bound the schedule, inclusive (model.DateFormat)
	PeriodStart string
	PeriodEnd   string

	// Staff is the roster snapshot
	Staff []model.StaffMember

	// ShiftTypes is the catalog; cells are built per date and shift type
	ShiftTypes []model.ShiftType

	// Requests are the period's leave/exchange requests. Approved leave is
	// honored during generation; all regular requests feed the
	// leave-satisfaction metric.
	Requests []model.Request

	// Resolver supplies effective requirements and floor exclusions
	Resolver *requirement.Resolver

	// Profiles to generate, one pattern each
	Profiles []Profile

	// BucketTasks overrides DefaultBucketTasks when non-nil
	BucketTasks map[model.TimeBucket][]TaskSpec
}

// Outcome is the result of a generation run. Partial is set when the
// context expired before every profile finished; Patterns then holds only
// the complete ones.
type Outcome struct {
	Patterns []model.SchedulePattern
	Partial  bool
}

// Pattern score blend weights and pro/con thresholds
const (
	weightCoverage          = 0.4
	weightLeaveSatisfaction = 0.3
	weightLoadBalance       = 0.3

	thresholdFullCoverage = 0.95
	thresholdLowCoverage  = 0.80
	thresholdLeaveHonored = 0.90
	thresholdHighVariance = 2.0
)
