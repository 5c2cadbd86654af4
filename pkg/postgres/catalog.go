package postgres

import (
	"context"
	"fmt"

	"github.com/harunaka/careshift/pkg/core/model"
)

// ListShiftTypes retrieves the fixed shift catalog ordered by start time
func (s *Store) ListShiftTypes(ctx context.Context) ([]model.ShiftType, error) {
	rows, err := s.q.Query(ctx, `
		SELECT code, name, start_time, end_time, duration_hours
		FROM shift_types
		ORDER BY start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift types: %w", err)
	}
	defer rows.Close()

	var types []model.ShiftType
	for rows.Next() {
		var t model.ShiftType
		if err := rows.Scan(&t.Code, &t.Name, &t.StartTime, &t.EndTime, &t.DurationHours); err != nil {
			return nil, fmt.Errorf("failed to scan shift type: %w", err)
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift types: %w", err)
	}

	return types, nil
}
