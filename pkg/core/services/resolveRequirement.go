package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/requirement"
	"github.com/harunaka/careshift/pkg/db"
)

// RequirementRuleStore defines the database operations needed to build a
// requirement resolver
type RequirementRuleStore interface {
	GetTemplate(ctx context.Context) (map[string]int, error)
	GetWeeklyRules(ctx context.Context) ([]db.WeeklyRule, error)
	GetDateOverrides(ctx context.Context) ([]db.DateOverride, error)
	GetSpecialEvents(ctx context.Context, startDate, endDate string) ([]model.SpecialEventRule, error)
}

// BuildResolver loads the rule layers for the period and constructs a
// resolver snapshot over them
func BuildResolver(
	ctx context.Context,
	store RequirementRuleStore,
	periodStart, periodEnd string,
	logger *zap.Logger,
) (*requirement.Resolver, error) {
	logger.Debug("Loading requirement rule layers",
		zap.String("period_start", periodStart),
		zap.String("period_end", periodEnd))

	template, err := store.GetTemplate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load base template: %w", err)
	}

	weeklyRules, err := store.GetWeeklyRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly rules: %w", err)
	}

	overrides, err := store.GetDateOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load date overrides: %w", err)
	}

	events, err := store.GetSpecialEvents(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load special events: %w", err)
	}

	logger.Debug("Loaded rule layers",
		zap.Int("template_entries", len(template)),
		zap.Int("weekly_rules", len(weeklyRules)),
		zap.Int("date_overrides", len(overrides)),
		zap.Int("special_events", len(events)))

	return requirement.New(template, weeklyRules, overrides, events)
}

// ResolveRequirement returns the effective required headcount for one
// (date, shift type) pair
func ResolveRequirement(
	ctx context.Context,
	store RequirementRuleStore,
	date, shiftTypeCode string,
	logger *zap.Logger,
) (int, error) {
	resolver, err := BuildResolver(ctx, store, date, date, logger)
	if err != nil {
		return 0, err
	}

	count, err := resolver.Resolve(date, shiftTypeCode)
	if err != nil {
		return 0, err
	}

	logger.Info("Resolved staffing requirement",
		zap.String("date", date),
		zap.String("shift_type", shiftTypeCode),
		zap.Int("required", count))
	return count, nil
}
