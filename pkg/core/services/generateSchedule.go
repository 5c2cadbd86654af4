package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/scheduler"
	"github.com/harunaka/careshift/pkg/db"
)

// GenerateScheduleStore defines the database operations needed for
// full-period schedule generation
type GenerateScheduleStore interface {
	RequirementRuleStore
	ListStaff(ctx context.Context, filter db.StaffFilter) ([]model.StaffMember, error)
	ListShiftTypes(ctx context.Context) ([]model.ShiftType, error)
	ListRequests(ctx context.Context, startDate, endDate string) ([]model.Request, error)
}

// GenerateScheduleOptions tunes one generation run
type GenerateScheduleOptions struct {
	// Seed drives the deterministic tie-break. Zero means derive from the
	// current time, varying the production output per run.
	Seed int64

	// Timeout bounds the run. Zero means no service-imposed deadline
	// beyond the caller's context.
	Timeout time.Duration
}

// GenerateSchedule produces candidate schedule patterns for the period.
// On timeout the completed patterns are returned with Partial set; with no
// completed pattern the run fails with model.ErrTimeout.
func GenerateSchedule(
	ctx context.Context,
	store GenerateScheduleStore,
	periodStart, periodEnd string,
	opts GenerateScheduleOptions,
	logger *zap.Logger,
) (*scheduler.Outcome, error) {
	logger.Debug("Starting generateSchedule",
		zap.String("period_start", periodStart),
		zap.String("period_end", periodEnd))

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resolver, err := BuildResolver(ctx, store, periodStart, periodEnd, logger)
	if err != nil {
		return nil, err
	}

	staff, err := store.ListStaff(ctx, db.StaffFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	logger.Debug("Found staff", zap.Int("count", len(staff)))

	shiftTypes, err := store.ListShiftTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift catalog: %w", err)
	}

	requests, err := store.ListRequests(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	logger.Debug("Found requests in period", zap.Int("count", len(requests)))

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.Info("Running schedule generation", zap.Int64("seed", seed))
	outcome, err := scheduler.Generate(ctx, scheduler.Config{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Staff:       staff,
		ShiftTypes:  shiftTypes,
		Requests:    requests,
		Resolver:    resolver,
		Profiles:    scheduler.DefaultProfiles(seed),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Schedule generation completed",
		zap.Int("patterns", len(outcome.Patterns)),
		zap.Bool("partial", outcome.Partial))

	for _, pattern := range outcome.Patterns {
		for _, finding := range pattern.Findings {
			logger.Warn("Unmet staffing requirement",
				zap.String("pattern", pattern.Name),
				zap.String("date", finding.Date),
				zap.String("shift_type", finding.ShiftTypeCode),
				zap.Int("required", finding.Required),
				zap.Int("assigned", finding.Assigned))
		}
	}

	return outcome, nil
}
