// Package requirement resolves the effective staffing requirement for a
// (date, shift type) pair by layering rule sources: specific-date overrides
// take precedence over weekly-recurring rules, which take precedence over
// the base template. Active special events then stack additively on top.
package requirement

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/db"
)

// CustomDelta computes the headcount delta contributed by a custom special
// event rule. It is supplied by the caller because custom rule semantics
// are application-defined.
type CustomDelta func(date, shiftTypeCode string, rule model.SpecialEventRule) int

type overrideKey struct {
	date          string
	shiftTypeCode string
}

type weeklyRule struct {
	options       rrule.ROption
	shiftTypeCode string
	requiredCount int
}

// Resolver holds a read snapshot of the requirement rule layers.
// It is safe for concurrent use once constructed.
type Resolver struct {
	template    map[string]int
	weekly      []weeklyRule
	overrides   map[overrideKey]int
	events      []model.SpecialEventRule
	customDelta CustomDelta
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCustomDelta sets the delta function applied for custom special events.
// The default uses the rule's own Delta field.
func WithCustomDelta(fn CustomDelta) Option {
	return func(r *Resolver) {
		r.customDelta = fn
	}
}

// New builds a Resolver from the rule layers. Weekly rule RRULE strings are
// parsed up front so Resolve never fails on rule syntax.
func New(
	template map[string]int,
	weeklyRules []db.WeeklyRule,
	dateOverrides []db.DateOverride,
	events []model.SpecialEventRule,
	opts ...Option,
) (*Resolver, error) {
	r := &Resolver{
		template:  template,
		overrides: make(map[overrideKey]int, len(dateOverrides)),
		events:    events,
		customDelta: func(date, shiftTypeCode string, rule model.SpecialEventRule) int {
			return rule.Delta
		},
	}

	for i, wr := range weeklyRules {
		rule, err := rrule.StrToRRule(wr.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for weekly rule %d: %w", i, err)
		}
		r.weekly = append(r.weekly, weeklyRule{
			options:       rule.OrigOptions,
			shiftTypeCode: wr.ShiftTypeCode,
			requiredCount: wr.RequiredCount,
		})
	}

	for _, ov := range dateOverrides {
		r.overrides[overrideKey{date: ov.Date, shiftTypeCode: ov.ShiftTypeCode}] = ov.RequiredCount
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolve returns the effective required headcount for the date and shift
// type. An unknown shift type (no template default) fails with
// model.ErrValidation; a negative resolved count fails with
// model.ErrInvariant.
func (r *Resolver) Resolve(date, shiftTypeCode string) (int, error) {
	day, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, model.ErrValidation)
	}

	base, err := r.baseCount(day, date, shiftTypeCode)
	if err != nil {
		return 0, err
	}

	count := base
	for _, ev := range r.events {
		if !ev.Covers(date) {
			continue
		}
		switch ev.Kind {
		case model.EventIncreaseRegular:
			count += ev.Delta
		case model.EventCustom:
			count += r.customDelta(date, shiftTypeCode, ev)
		case model.EventExcludeFloor:
			// Does not change the count; affects floor eligibility only
		}
	}

	if count < 0 {
		return 0, fmt.Errorf("resolved headcount %d for %s/%s: %w",
			count, date, shiftTypeCode, model.ErrInvariant)
	}
	return count, nil
}

// baseCount applies the precedence layers: override, then weekly rule,
// then template default
func (r *Resolver) baseCount(day time.Time, date, shiftTypeCode string) (int, error) {
	if count, ok := r.overrides[overrideKey{date: date, shiftTypeCode: shiftTypeCode}]; ok {
		return count, nil
	}

	for _, wr := range r.weekly {
		if wr.shiftTypeCode != shiftTypeCode {
			continue
		}
		if matchesDate(wr.options, day) {
			return wr.requiredCount, nil
		}
	}

	count, ok := r.template[shiftTypeCode]
	if !ok {
		return 0, fmt.Errorf("no template default for shift type %q: %w",
			shiftTypeCode, model.ErrValidation)
	}
	return count, nil
}

// ExcludedStaff returns the staff IDs barred from floor assignment on the
// given date by exclude_from_floor events. Excluded staff still receive
// non-floor tasks for their working slots.
func (r *Resolver) ExcludedStaff(date string) []string {
	var excluded []string
	seen := make(map[string]bool)
	for _, ev := range r.events {
		if ev.Kind != model.EventExcludeFloor || !ev.Covers(date) {
			continue
		}
		for _, id := range ev.TargetStaffIDs {
			if !seen[id] {
				seen[id] = true
				excluded = append(excluded, id)
			}
		}
	}
	return excluded
}

// matchesDate checks whether the rule fires on the given day.
// The search window is anchored a week either side of the date so weekly
// recurrences always produce an occurrence to compare against.
// A fresh rule is built per call so the snapshot stays immutable under
// concurrent resolution.
func matchesDate(options rrule.ROption, day time.Time) bool {
	searchStart := day.AddDate(0, 0, -7)
	searchEnd := day.AddDate(0, 0, 7)

	options.Dtstart = searchStart
	rule, err := rrule.NewRRule(options)
	if err != nil {
		return false
	}

	occurrences := rule.Between(searchStart, searchEnd, true)
	target := day.Format(model.DateFormat)
	for _, occurrence := range occurrences {
		if occurrence.Format(model.DateFormat) == target {
			return true
		}
	}
	return false
}
