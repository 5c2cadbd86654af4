package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/exchange"
	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/db"
)

// ExchangeProposalStore defines the database operations needed to generate
// exchange proposals
type ExchangeProposalStore interface {
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	SaveRequest(ctx context.Context, req *model.Request) error
	GetStaff(ctx context.Context, id string) (*model.StaffMember, error)
	ListStaff(ctx context.Context, filter db.StaffFilter) ([]model.StaffMember, error)
	GetSlot(ctx context.Context, id string) (*model.ShiftSlot, error)
	FindStaffSlot(ctx context.Context, staffID, date string) (*model.ShiftSlot, error)
}

// GenerateExchangeProposals produces ranked replacement proposals for the
// request. An exhausted candidate pool fails with
// model.ErrNoEligibleCandidate - an expected, user-visible outcome the
// caller maps to guidance rather than an alarm. A pending exchange request
// moves to exchange_pending once proposals exist.
func GenerateExchangeProposals(
	ctx context.Context,
	store ExchangeProposalStore,
	requestID string,
	maxProposals int,
	logger *zap.Logger,
) ([]model.ExchangeProposal, error) {
	logger.Debug("Starting generateExchangeProposals", zap.String("request_id", requestID))

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("request %s is already %s: %w", req.ID, req.Status, model.ErrConflict)
	}
	if len(req.Dates) == 0 {
		return nil, fmt.Errorf("request %s has no dates: %w", req.ID, model.ErrValidation)
	}

	slot, err := findOriginalSlot(ctx, store, req)
	if err != nil {
		return nil, err
	}
	logger.Debug("Located original slot",
		zap.String("slot_id", slot.ID),
		zap.String("date", slot.Date),
		zap.String("shift_type", slot.ShiftTypeCode))

	requester, err := store.GetStaff(ctx, req.StaffID)
	if err != nil {
		return nil, err
	}

	// Narrow the directory to the slot's shift type up front; the engine
	// applies the remaining prerequisites
	candidates, err := store.ListStaff(ctx, db.StaffFilter{ShiftTypeCode: slot.ShiftTypeCode})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	logger.Debug("Candidate pool before prerequisites", zap.Int("count", len(candidates)))

	opts := []exchange.Option{}
	if maxProposals > 0 {
		opts = append(opts, exchange.WithMaxProposals(maxProposals))
	}

	proposals, err := exchange.NewEngine(opts...).Propose(exchange.ProposeInput{
		Requester:    *requester,
		OriginalSlot: *slot,
		Candidates:   candidates,
	})
	if err != nil {
		return nil, err
	}

	if len(proposals) == 0 {
		logger.Info("No eligible replacement candidates",
			zap.String("request_id", req.ID),
			zap.String("slot_id", slot.ID))
		return nil, fmt.Errorf("request %s: %w", req.ID, model.ErrNoEligibleCandidate)
	}

	// A pending exchange request advances now that proposals exist
	if req.Type == model.RequestExchange && req.Status == model.StatusPending {
		req.Status = model.StatusExchangePending
		if err := store.SaveRequest(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to advance request %s: %w", req.ID, err)
		}
	}

	logger.Info("Generated exchange proposals",
		zap.String("request_id", req.ID),
		zap.Int("count", len(proposals)),
		zap.String("top_candidate", proposals[0].CandidateStaffID),
		zap.Int("top_score", proposals[0].Score.Total))

	return proposals, nil
}

// findOriginalSlot resolves the shift slot the requester currently holds,
// preferring an explicit binding over a date lookup
func findOriginalSlot(ctx context.Context, store ExchangeProposalStore, req *model.Request) (*model.ShiftSlot, error) {
	if req.OriginalSlotID != "" {
		return store.GetSlot(ctx, req.OriginalSlotID)
	}
	return store.FindStaffSlot(ctx, req.StaffID, req.Dates[0])
}
