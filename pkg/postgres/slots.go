package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/harunaka/careshift/pkg/core/model"
)

const slotColumns = `id, shift_date, shift_type_code, required_skills, assigned_staff_id, priority, version`

// GetSlot retrieves a single shift slot by ID
func (s *Store) GetSlot(ctx context.Context, id string) (*model.ShiftSlot, error) {
	slot, err := scanSlot(s.q.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM shift_slots
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, translatePgError(err, fmt.Sprintf("slot %s", id))
	}
	return slot, nil
}

// ListSlots retrieves slots inside the inclusive [startDate, endDate] window
func (s *Store) ListSlots(ctx context.Context, startDate, endDate string) ([]model.ShiftSlot, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+slotColumns+`
		FROM shift_slots
		WHERE shift_date BETWEEN $1 AND $2
		ORDER BY shift_date, id
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []model.ShiftSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return slots, nil
}

// FindStaffSlot retrieves the slot a staff member holds on the given date
func (s *Store) FindStaffSlot(ctx context.Context, staffID, date string) (*model.ShiftSlot, error) {
	slot, err := scanSlot(s.q.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM shift_slots
		WHERE assigned_staff_id = $1 AND shift_date = $2
	`, staffID, date))
	if err != nil {
		return nil, translatePgError(err, fmt.Sprintf("no slot held by staff %s on %s", staffID, date))
	}
	return slot, nil
}

// CommitAssignment writes an assignment with an optimistic version check.
// The version predicate lives in the UPDATE itself, so two concurrent
// commits of the same slot serialize in the database and the loser gets
// model.ErrConflict. An assignment at the expected version replaces the
// current holder, which is how an approved exchange hands a slot over.
func (s *Store) CommitAssignment(ctx context.Context, slotID, staffID string, expectedVersion int) (*model.ShiftSlot, error) {
	slot, err := scanSlot(s.q.QueryRow(ctx, `
		UPDATE shift_slots
		SET assigned_staff_id = $2, version = version + 1
		WHERE id = $1 AND version = $3
		RETURNING `+slotColumns+`
	`, slotID, staffID, expectedVersion))
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to commit slot %s: %w", slotID, err)
	}

	// No row matched: distinguish a missing slot from a lost race
	var currentVersion int
	err = s.q.QueryRow(ctx, `SELECT version FROM shift_slots WHERE id = $1`, slotID).Scan(&currentVersion)
	if err != nil {
		return nil, translatePgError(err, fmt.Sprintf("slot %s", slotID))
	}
	return nil, fmt.Errorf("slot %s version %d (expected %d): %w",
		slotID, currentVersion, expectedVersion, model.ErrConflict)
}

func scanSlot(row pgx.Row) (*model.ShiftSlot, error) {
	var slot model.ShiftSlot
	var assignedStaffID *string
	if err := row.Scan(&slot.ID, &slot.Date, &slot.ShiftTypeCode, &slot.RequiredSkills,
		&assignedStaffID, &slot.Priority, &slot.Version); err != nil {
		return nil, err
	}
	if assignedStaffID != nil {
		slot.AssignedStaffID = *assignedStaffID
	}
	return &slot, nil
}
