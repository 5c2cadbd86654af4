package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/model"
)

// ApplyPatternStore defines the slot operations needed to commit a
// generated schedule pattern
type ApplyPatternStore interface {
	ListSlots(ctx context.Context, startDate, endDate string) ([]model.ShiftSlot, error)
	CommitAssignment(ctx context.Context, slotID, staffID string, expectedVersion int) (*model.ShiftSlot, error)
}

// ApplyPatternResult reports what a pattern commit changed
type ApplyPatternResult struct {
	CommittedSlots int
	SkippedCells   []model.SlotKey // cells with no matching open slot
}

// ApplySchedulePattern writes a chosen pattern's floor assignments into the
// period's open slots. This is the engine's only mutation path for
// schedules; each write goes through the optimistic per-slot version check,
// so a concurrent commit of the same slot fails with model.ErrConflict and
// nothing else is rolled back - the caller re-runs against fresh state.
func ApplySchedulePattern(
	ctx context.Context,
	store ApplyPatternStore,
	pattern model.SchedulePattern,
	periodStart, periodEnd string,
	logger *zap.Logger,
) (*ApplyPatternResult, error) {
	logger.Debug("Starting applySchedulePattern",
		zap.String("pattern", pattern.Name),
		zap.String("pattern_id", pattern.ID))

	slots, err := store.ListSlots(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch period slots: %w", err)
	}

	// Index open slots per cell; each slot takes one staff member
	open := make(map[model.SlotKey][]model.ShiftSlot)
	for _, slot := range slots {
		if slot.AssignedStaffID != "" {
			continue
		}
		key := model.SlotKey{Date: slot.Date, ShiftTypeCode: slot.ShiftTypeCode}
		open[key] = append(open[key], slot)
	}

	result := &ApplyPatternResult{}
	for cell, tasks := range pattern.Assignments {
		for _, task := range tasks {
			if task.Task == model.TaskBackOffice {
				continue
			}

			pool := open[cell]
			if len(pool) == 0 {
				result.SkippedCells = append(result.SkippedCells, cell)
				break
			}
			slot := pool[0]
			open[cell] = pool[1:]

			committed, err := store.CommitAssignment(ctx, slot.ID, task.StaffID, slot.Version)
			if err != nil {
				return nil, fmt.Errorf("failed to commit slot %s: %w", slot.ID, err)
			}
			result.CommittedSlots++

			logger.Debug("Committed slot",
				zap.String("slot_id", committed.ID),
				zap.String("staff_id", committed.AssignedStaffID),
				zap.String("date", committed.Date))
		}
	}

	logger.Info("Applied schedule pattern",
		zap.String("pattern", pattern.Name),
		zap.Int("committed_slots", result.CommittedSlots),
		zap.Int("skipped_cells", len(result.SkippedCells)))
	return result, nil
}
