package postgres

import (
	"context"
	"fmt"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/db"
)

// GetTemplate retrieves the base per-shift-type headcount template
func (s *Store) GetTemplate(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.Query(ctx, `
		SELECT shift_type_code, required_count
		FROM requirement_template
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirement template: %w", err)
	}
	defer rows.Close()

	template := make(map[string]int)
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("failed to scan template entry: %w", err)
		}
		template[code] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirement template: %w", err)
	}

	return template, nil
}

// GetWeeklyRules retrieves the recurring weekly requirement rules
func (s *Store) GetWeeklyRules(ctx context.Context) ([]db.WeeklyRule, error) {
	rows, err := s.q.Query(ctx, `
		SELECT rrule, shift_type_code, required_count
		FROM requirement_weekly_rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly rules: %w", err)
	}
	defer rows.Close()

	var rules []db.WeeklyRule
	for rows.Next() {
		var r db.WeeklyRule
		if err := rows.Scan(&r.RRule, &r.ShiftTypeCode, &r.RequiredCount); err != nil {
			return nil, fmt.Errorf("failed to scan weekly rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly rules: %w", err)
	}

	return rules, nil
}

// GetDateOverrides retrieves single-date headcount overrides
func (s *Store) GetDateOverrides(ctx context.Context) ([]db.DateOverride, error) {
	rows, err := s.q.Query(ctx, `
		SELECT shift_date, shift_type_code, required_count
		FROM requirement_date_overrides
		ORDER BY shift_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query date overrides: %w", err)
	}
	defer rows.Close()

	var overrides []db.DateOverride
	for rows.Next() {
		var o db.DateOverride
		if err := rows.Scan(&o.Date, &o.ShiftTypeCode, &o.RequiredCount); err != nil {
			return nil, fmt.Errorf("failed to scan date override: %w", err)
		}
		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating date overrides: %w", err)
	}

	return overrides, nil
}

// GetSpecialEvents retrieves special event rules whose date range overlaps
// the inclusive [startDate, endDate] window
func (s *Store) GetSpecialEvents(ctx context.Context, startDate, endDate string) ([]model.SpecialEventRule, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, type, title, start_date, end_date, target_staff_ids, kind, delta
		FROM special_events
		WHERE start_date <= $2 AND $1 <= end_date
		ORDER BY start_date
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query special events: %w", err)
	}
	defer rows.Close()

	var events []model.SpecialEventRule
	for rows.Next() {
		var ev model.SpecialEventRule
		var kind string
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Title, &ev.StartDate, &ev.EndDate,
			&ev.TargetStaffIDs, &kind, &ev.Delta); err != nil {
			return nil, fmt.Errorf("failed to scan special event: %w", err)
		}
		ev.Kind = model.SpecialEventKind(kind)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating special events: %w", err)
	}

	return events, nil
}
