package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/db"
)

// skillRecord is the JSONB shape of one skill entry in the staff table
type skillRecord struct {
	Name            string `json:"name"`
	Level           int    `json:"level"`
	Certified       bool   `json:"certified"`
	ExperienceYears int    `json:"experience_years"`
}

// ListStaff retrieves roster members matching the filter. The category
// filter runs in SQL; shift type and skill eligibility are resolved
// through the model helpers like the in-memory store does.
func (s *Store) ListStaff(ctx context.Context, filter db.StaffFilter) ([]model.StaffMember, error) {
	query := `
		SELECT id, name, category, employment_type, skills, work_patterns,
		       availability, current_workload, recent_performance,
		       preferred_shift_types, team_affinity, weekly_hour_cap
		FROM staff
	`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY id`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var members []model.StaffMember
	for rows.Next() {
		var m model.StaffMember
		var skillsJSON, availabilityJSON []byte
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.EmploymentType,
			&skillsJSON, &m.WorkPatterns, &availabilityJSON,
			&m.CurrentWorkload, &m.RecentPerformance,
			&m.PreferredShiftTypes, &m.TeamAffinity, &m.WeeklyHourCap); err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		if err := decodeStaffJSON(&m, skillsJSON, availabilityJSON); err != nil {
			return nil, err
		}

		if filter.ShiftTypeCode != "" && !m.CanWork(filter.ShiftTypeCode) {
			continue
		}
		if filter.SkillName != "" && !m.HasSkill(filter.SkillName) {
			continue
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}

	return members, nil
}

// GetStaff retrieves a single roster member by ID
func (s *Store) GetStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	var m model.StaffMember
	var skillsJSON, availabilityJSON []byte
	err := s.q.QueryRow(ctx, `
		SELECT id, name, category, employment_type, skills, work_patterns,
		       availability, current_workload, recent_performance,
		       preferred_shift_types, team_affinity, weekly_hour_cap
		FROM staff
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Category, &m.EmploymentType,
		&skillsJSON, &m.WorkPatterns, &availabilityJSON,
		&m.CurrentWorkload, &m.RecentPerformance,
		&m.PreferredShiftTypes, &m.TeamAffinity, &m.WeeklyHourCap)
	if err != nil {
		return nil, translatePgError(err, fmt.Sprintf("staff %s", id))
	}
	if err := decodeStaffJSON(&m, skillsJSON, availabilityJSON); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeStaffJSON(m *model.StaffMember, skillsJSON, availabilityJSON []byte) error {
	if len(skillsJSON) > 0 {
		var records []skillRecord
		if err := json.Unmarshal(skillsJSON, &records); err != nil {
			return fmt.Errorf("failed to decode skills for staff %s: %w", m.ID, err)
		}
		for _, r := range records {
			m.Skills = append(m.Skills, model.Skill{
				Name:            r.Name,
				Level:           r.Level,
				Certified:       r.Certified,
				ExperienceYears: r.ExperienceYears,
			})
		}
	}
	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &m.Availability); err != nil {
			return fmt.Errorf("failed to decode availability for staff %s: %w", m.ID, err)
		}
	}
	return nil
}
