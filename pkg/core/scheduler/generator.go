// Package scheduler generates complete candidate schedules ("patterns")
// for a period. Each optimization profile produces one pattern with a
// quality score, structured pros/cons, and unmet-requirement findings.
// Generation is a pure computation over a read snapshot and runs the
// profiles in parallel workers under a cancellable context.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harunaka/careshift/pkg/core/model"
)

// Generate produces one pattern per profile. On context expiry it returns
// whatever complete patterns exist with Outcome.Partial set; if nothing
// finished it fails with model.ErrTimeout. A half-built pattern is never
// returned.
func Generate(ctx context.Context, cfg Config) (*Outcome, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	dates, err := periodDates(cfg.PeriodStart, cfg.PeriodEnd)
	if err != nil {
		return nil, err
	}

	bucketTasks := cfg.BucketTasks
	if bucketTasks == nil {
		bucketTasks = DefaultBucketTasks()
	}

	results := make([]*model.SchedulePattern, len(cfg.Profiles))

	g, workerCtx := errgroup.WithContext(ctx)
	for i, profile := range cfg.Profiles {
		g.Go(func() error {
			pattern, err := generatePattern(workerCtx, cfg, profile, dates, bucketTasks)
			if err != nil {
				// Cancellation is handled below by collecting completed work
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
			results[i] = pattern
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	for _, pattern := range results {
		if pattern == nil {
			outcome.Partial = true
			continue
		}
		outcome.Patterns = append(outcome.Patterns, *pattern)
	}

	if len(outcome.Patterns) == 0 && outcome.Partial {
		return nil, fmt.Errorf("no pattern completed within the generation deadline: %w", model.ErrTimeout)
	}
	return outcome, nil
}

func validateConfig(cfg Config) error {
	if cfg.Resolver == nil {
		return fmt.Errorf("resolver is required: %w", model.ErrValidation)
	}
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required: %w", model.ErrValidation)
	}
	if len(cfg.ShiftTypes) == 0 {
		return fmt.Errorf("shift catalog is empty: %w", model.ErrValidation)
	}
	return nil
}

func periodDates(start, end string) ([]string, error) {
	startDay, err := time.Parse(model.DateFormat, start)
	if err != nil {
		return nil, fmt.Errorf("invalid period start %q: %w", start, model.ErrValidation)
	}
	endDay, err := time.Parse(model.DateFormat, end)
	if err != nil {
		return nil, fmt.Errorf("invalid period end %q: %w", end, model.ErrValidation)
	}
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("period end %s before start %s: %w", end, start, model.ErrValidation)
	}

	var dates []string
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format(model.DateFormat))
	}
	return dates, nil
}

// patternState tracks one pattern under construction
type patternState struct {
	assignments   map[model.SlotKey][]model.TaskAssignment
	assignedCount map[string]int             // per staff, floor-relevant cells
	assignedCells map[string][]model.SlotKey // per staff, in assignment order
	findings      []model.Finding
	tieBreak      *rand.Rand
}

func generatePattern(
	ctx context.Context,
	cfg Config,
	profile Profile,
	dates []string,
	bucketTasks map[model.TimeBucket][]TaskSpec,
) (*model.SchedulePattern, error) {
	state := &patternState{
		assignments:   make(map[model.SlotKey][]model.TaskAssignment),
		assignedCount: make(map[string]int),
		assignedCells: make(map[string][]model.SlotKey),
		tieBreak:      rand.New(rand.NewSource(profile.Seed)),
	}

	leaveDates := approvedLeaveDates(cfg.Requests)
	shiftTypes := sortedByStart(cfg.ShiftTypes)

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		excluded := toSet(cfg.Resolver.ExcludedStaff(date))

		for _, st := range shiftTypes {
			required, err := cfg.Resolver.Resolve(date, st.Code)
			if err != nil {
				return nil, err
			}
			if required == 0 {
				continue
			}

			cell := model.SlotKey{Date: date, ShiftTypeCode: st.Code}
			eligible := eligibleStaff(cfg.Staff, st, date, leaveDates, excluded)

			target := required
			if profile.Goal == GoalMaximizeMargin && len(eligible) > required {
				// Keep one spare head above the floor when the roster allows
				target = required + 1
			}

			chosen := selectStaff(state, profile, eligible, st.Code, target)
			for _, staff := range chosen {
				state.assignments[cell] = append(state.assignments[cell], model.TaskAssignment{
					StaffID: staff.ID,
					Task:    model.TaskFloor,
				})
				state.assignedCount[staff.ID]++
				state.assignedCells[staff.ID] = append(state.assignedCells[staff.ID], cell)
			}
			// Shortfalls are recorded, never silently dropped
			if len(chosen) < required {
				state.findings = append(state.findings, model.Finding{
					Date:          date,
					ShiftTypeCode: st.Code,
					Required:      required,
					Assigned:      len(chosen),
				})
			}
		}

		// Staff excluded from floor duty still receive a non-floor task
		assignBackOffice(state, cfg.Staff, shiftTypes, date, leaveDates, excluded)
	}

	layerTasks(state, cfg.Staff, cfg.ShiftTypes, bucketTasks)

	metrics := computeMetrics(cfg, state, dates)
	pros, cons := judge(metrics)

	return &model.SchedulePattern{
		ID:          uuid.NewString(),
		Name:        profile.Name,
		Assignments: state.assignments,
		Score:       patternScore(metrics),
		Metrics:     metrics,
		Pros:        pros,
		Cons:        cons,
		Findings:    state.findings,
	}, nil
}

// approvedLeaveDates maps staff ID to the set of dates covered by approved
// regular leave
func approvedLeaveDates(requests []model.Request) map[string]map[string]bool {
	leave := make(map[string]map[string]bool)
	for _, req := range requests {
		if req.Type != model.RequestRegular || req.Status != model.StatusApproved {
			continue
		}
		if leave[req.StaffID] == nil {
			leave[req.StaffID] = make(map[string]bool)
		}
		for _, date := range req.Dates {
			leave[req.StaffID][date] = true
		}
	}
	return leave
}

func eligibleStaff(
	staff []model.StaffMember,
	st model.ShiftType,
	date string,
	leaveDates map[string]map[string]bool,
	excluded map[string]bool,
) []model.StaffMember {
	bucket := bucketFor(st)

	var eligible []model.StaffMember
	for _, s := range staff {
		if !s.CanWork(st.Code) {
			continue
		}
		if s.Availability != nil && !s.Availability[bucket] {
			continue
		}
		if leaveDates[s.ID][date] {
			continue
		}
		if excluded[s.ID] {
			continue
		}
		eligible = append(eligible, s)
	}
	return eligible
}

// selectStaff picks up to target staff for a cell according to the
// profile's goal. Exact rank ties are broken by the seeded tie-break,
// never by map iteration order.
func selectStaff(state *patternState, profile Profile, eligible []model.StaffMember, shiftTypeCode string, target int) []model.StaffMember {
	ranked := append([]model.StaffMember(nil), eligible...)

	rankOf := func(s model.StaffMember) float64 {
		switch profile.Goal {
		case GoalMaximizeMargin:
			// Strongest first: overall skill weight plus preference for the shift type
			rank := avgSkillLevel(s)
			if s.Prefers(shiftTypeCode) {
				rank += 0.5
			}
			return rank
		default:
			// Least-loaded first, negated so higher rank still wins
			return -float64(state.assignedCount[s.ID])
		}
	}

	// Pre-shuffle with the seeded source so equal ranks resolve
	// deterministically for a given seed
	state.tieBreak.Shuffle(len(ranked), func(i, j int) {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankOf(ranked[i]) > rankOf(ranked[j])
	})

	if target > len(ranked) {
		target = len(ranked)
	}
	return ranked[:target]
}

func assignBackOffice(
	state *patternState,
	staff []model.StaffMember,
	shiftTypes []model.ShiftType,
	date string,
	leaveDates map[string]map[string]bool,
	excluded map[string]bool,
) {
	for _, s := range staff {
		if !excluded[s.ID] || leaveDates[s.ID][date] {
			continue
		}
		for _, st := range shiftTypes {
			if !s.CanWork(st.Code) {
				continue
			}
			cell := model.SlotKey{Date: date, ShiftTypeCode: st.Code}
			state.assignments[cell] = append(state.assignments[cell], model.TaskAssignment{
				StaffID: s.ID,
				Task:    model.TaskBackOffice,
				Detail:  "administrative support",
			})
			break
		}
	}
}

// layerTasks applies task details over each staff member's working-slot
// sequence: the fixed hand-over on the first slot of each day, skill-ranked
// bucket tasks elsewhere, and exactly one break near the midpoint of the
// sequence.
func layerTasks(state *patternState, staff []model.StaffMember, shiftTypes []model.ShiftType, bucketTasks map[model.TimeBucket][]TaskSpec) {
	staffByID := make(map[string]model.StaffMember, len(staff))
	for _, s := range staff {
		staffByID[s.ID] = s
	}
	typeByCode := make(map[string]model.ShiftType, len(shiftTypes))
	for _, st := range shiftTypes {
		typeByCode[st.Code] = st
	}

	for staffID, cells := range state.assignedCells {
		member := staffByID[staffID]

		sort.Slice(cells, func(i, j int) bool {
			if cells[i].Date != cells[j].Date {
				return cells[i].Date < cells[j].Date
			}
			return typeByCode[cells[i].ShiftTypeCode].StartTime < typeByCode[cells[j].ShiftTypeCode].StartTime
		})

		lastDate := ""
		for _, cell := range cells {
			task := state.taskFor(cell, staffID)
			if task == nil {
				continue
			}
			if cell.Date != lastDate {
				task.Task = model.TaskHandOver
				task.Detail = "shift hand-over"
				lastDate = cell.Date
			} else {
				bucket := bucketFor(typeByCode[cell.ShiftTypeCode])
				task.Task = model.TaskFloor
				task.Detail = bestTask(member, bucketTasks[bucket], state.tieBreak)
			}
		}

		insertBreak(state, cells, staffID)
	}
}

// insertBreak marks one slot near the midpoint of the sequence as the
// staff member's break, skipping hand-over slots
func insertBreak(state *patternState, cells []model.SlotKey, staffID string) {
	if len(cells) < 2 {
		return
	}
	for offset := 0; offset < len(cells); offset++ {
		idx := len(cells)/2 + offset
		if idx >= len(cells) {
			idx -= len(cells)
		}
		task := state.taskFor(cells[idx], staffID)
		if task == nil || task.Task == model.TaskHandOver {
			continue
		}
		task.Task = model.TaskBreak
		task.Detail = "rest break"
		return
	}
}

func (s *patternState) taskFor(cell model.SlotKey, staffID string) *model.TaskAssignment {
	tasks := s.assignments[cell]
	for i := range tasks {
		if tasks[i].StaffID == staffID {
			return &tasks[i]
		}
	}
	return nil
}

// bestTask ranks the bucket's task list by the member's skill level and
// returns the top task name; exact ties fall to the seeded tie-break
func bestTask(member model.StaffMember, tasks []TaskSpec, tieBreak *rand.Rand) string {
	if len(tasks) == 0 {
		return "floor duty"
	}

	best := tasks[0]
	bestLevel := member.SkillLevel(best.Skill)
	for _, task := range tasks[1:] {
		level := member.SkillLevel(task.Skill)
		if level > bestLevel {
			best, bestLevel = task, level
			continue
		}
		if level == bestLevel && tieBreak.Intn(2) == 0 {
			best = task
		}
	}
	return best.Name
}

func computeMetrics(cfg Config, state *patternState, dates []string) model.PatternMetrics {
	return model.PatternMetrics{
		LeaveSatisfaction:   leaveSatisfaction(cfg.Requests, state),
		RequirementCoverage: requirementCoverage(state, cfg, dates),
		LoadVariance:        loadVariance(state, cfg.Staff),
		WeeklyHours:         weeklyHours(state, cfg, dates),
	}
}

// leaveSatisfaction is the fraction of requested leave (staff, date) pairs
// the pattern leaves unassigned, across all regular requests regardless of
// approval state
func leaveSatisfaction(requests []model.Request, state *patternState) float64 {
	total, honored := 0, 0
	for _, req := range requests {
		if req.Type != model.RequestRegular {
			continue
		}
		for _, date := range req.Dates {
			total++
			if !isAssignedOn(state, req.StaffID, date) {
				honored++
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(honored) / float64(total)
}

func isAssignedOn(state *patternState, staffID, date string) bool {
	for _, cell := range state.assignedCells[staffID] {
		if cell.Date == date {
			return true
		}
	}
	return false
}

// requirementCoverage is the fraction of (date, shift type) cells with a
// positive requirement that the pattern fully staffs. Findings already hold
// the shortfalls, so coverage is derived from them.
func requirementCoverage(state *patternState, cfg Config, dates []string) float64 {
	totalCells := 0
	for _, date := range dates {
		for _, st := range cfg.ShiftTypes {
			required, err := cfg.Resolver.Resolve(date, st.Code)
			if err != nil || required == 0 {
				continue
			}
			totalCells++
		}
	}
	if totalCells == 0 {
		return 1.0
	}
	return float64(totalCells-len(state.findings)) / float64(totalCells)
}

func loadVariance(state *patternState, staff []model.StaffMember) float64 {
	if len(staff) == 0 {
		return 0
	}
	mean := 0.0
	for _, s := range staff {
		mean += float64(state.assignedCount[s.ID])
	}
	mean /= float64(len(staff))

	variance := 0.0
	for _, s := range staff {
		diff := float64(state.assignedCount[s.ID]) - mean
		variance += diff * diff
	}
	return variance / float64(len(staff))
}

// weeklyHours reports each staff member's average weekly assigned hours.
// The weekly-hour cap is modeled on StaffMember but not enforced here; the
// figure is surfaced so callers can review it.
func weeklyHours(state *patternState, cfg Config, dates []string) map[string]float64 {
	typeByCode := make(map[string]model.ShiftType, len(cfg.ShiftTypes))
	for _, st := range cfg.ShiftTypes {
		typeByCode[st.Code] = st
	}

	weeks := float64(len(dates)) / 7
	if weeks < 1 {
		weeks = 1
	}

	hours := make(map[string]float64)
	for staffID, cells := range state.assignedCells {
		total := 0.0
		for _, cell := range cells {
			total += typeByCode[cell.ShiftTypeCode].DurationHours
		}
		hours[staffID] = total / weeks
	}
	return hours
}

func patternScore(m model.PatternMetrics) int {
	loadBalance := 1 / (1 + m.LoadVariance)
	score := weightCoverage*m.RequirementCoverage +
		weightLeaveSatisfaction*m.LeaveSatisfaction +
		weightLoadBalance*loadBalance
	return int(math.Round(score * 100))
}

func judge(m model.PatternMetrics) (pros, cons []string) {
	if m.RequirementCoverage >= thresholdFullCoverage {
		pros = append(pros, "full staffing maintained")
	}
	if m.RequirementCoverage < thresholdLowCoverage {
		cons = append(cons, "significant staffing shortfalls")
	}
	if m.LeaveSatisfaction >= thresholdLeaveHonored {
		pros = append(pros, "leave requests honored")
	} else {
		cons = append(cons, "some leave requests conflict with staffing needs")
	}
	if m.LoadVariance <= thresholdHighVariance {
		pros = append(pros, "even workload distribution")
	} else {
		cons = append(cons, "uneven workload distribution")
	}
	return pros, cons
}

func bucketFor(st model.ShiftType) model.TimeBucket {
	hour := startHour(st.StartTime)
	switch {
	case hour < 10:
		return model.BucketMorning
	case hour < 13:
		return model.BucketMidday
	case hour < 17:
		return model.BucketAfternoon
	default:
		return model.BucketEvening
	}
}

func startHour(startTime string) int {
	if len(startTime) < 2 {
		return 0
	}
	hour, err := strconv.Atoi(startTime[:2])
	if err != nil {
		return 0
	}
	return hour
}

func sortedByStart(shiftTypes []model.ShiftType) []model.ShiftType {
	sorted := append([]model.ShiftType(nil), shiftTypes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func avgSkillLevel(s model.StaffMember) float64 {
	if len(s.Skills) == 0 {
		return 0
	}
	sum := 0
	for _, sk := range s.Skills {
		sum += sk.Level
	}
	return float64(sum) / float64(len(s.Skills))
}
