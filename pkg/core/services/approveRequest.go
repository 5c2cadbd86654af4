package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/lifecycle"
	"github.com/harunaka/careshift/pkg/core/model"
)

// RequestDecisionStore defines the database operations needed to approve
// or reject a request
type RequestDecisionStore interface {
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	SaveRequest(ctx context.Context, req *model.Request) error
	AppendHistory(ctx context.Context, record model.ApprovalRecord) error
	GetHistory(ctx context.Context, requestID string) ([]model.ApprovalRecord, error)
	GetSlot(ctx context.Context, id string) (*model.ShiftSlot, error)
	CommitAssignment(ctx context.Context, slotID, staffID string, expectedVersion int) (*model.ShiftSlot, error)
}

// ApproveRequestInput carries an approval decision. Selection is required
// when the request is exchange_pending; it is the proposal the admin chose.
type ApproveRequestInput struct {
	RequestID  string
	ApproverID string
	Notes      string
	Selection  *model.ExchangeProposal
}

// ApproveRequest transitions the request to approved and commits the
// selected proposal's assignment when one is bound. Re-approving an
// already-approved request is idempotent and returns the existing record.
// A lost concurrent commit fails with model.ErrConflict before any state
// is written; the caller retries against fresh state.
func ApproveRequest(
	ctx context.Context,
	store RequestDecisionStore,
	in ApproveRequestInput,
	logger *zap.Logger,
) (model.ApprovalRecord, error) {
	logger.Debug("Starting approveRequest",
		zap.String("request_id", in.RequestID),
		zap.String("approver", in.ApproverID))

	req, err := store.GetRequest(ctx, in.RequestID)
	if err != nil {
		return model.ApprovalRecord{}, err
	}

	history, err := store.GetHistory(ctx, in.RequestID)
	if err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("failed to load request history: %w", err)
	}

	record, changed, err := lifecycle.New().Approve(req, lifecycle.ApproveInput{
		ApproverID: in.ApproverID,
		Notes:      in.Notes,
		Selection:  in.Selection,
	}, history)
	if err != nil {
		return model.ApprovalRecord{}, err
	}
	if !changed {
		logger.Info("Request already approved, returning existing record",
			zap.String("request_id", req.ID),
			zap.String("record_id", record.ID))
		return record, nil
	}

	// Commit the replacement assignment before persisting the decision so
	// a lost slot race never leaves an approved request without cover
	if in.Selection != nil {
		if err := commitProposal(ctx, store, in.Selection, logger); err != nil {
			return model.ApprovalRecord{}, err
		}
	}

	if err := store.SaveRequest(ctx, req); err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("failed to save request %s: %w", req.ID, err)
	}
	if err := store.AppendHistory(ctx, record); err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("failed to append approval record: %w", err)
	}

	logger.Info("Request approved",
		zap.String("request_id", req.ID),
		zap.String("record_id", record.ID),
		zap.String("approver", in.ApproverID))
	return record, nil
}

// commitProposal writes the candidate into the original slot with an
// optimistic version check, asserting engine invariants first
func commitProposal(ctx context.Context, store RequestDecisionStore, selection *model.ExchangeProposal, logger *zap.Logger) error {
	// Invariants are asserted before the commit; a violation aborts the
	// transaction instead of persisting inconsistent state
	if selection.Score.Total < 0 || selection.Score.Total > 100 {
		logger.Error("Proposal score outside bounds",
			zap.String("proposal_id", selection.ID),
			zap.Int("score", selection.Score.Total))
		return fmt.Errorf("proposal %s score %d outside 0-100: %w",
			selection.ID, selection.Score.Total, model.ErrInvariant)
	}

	slot, err := store.GetSlot(ctx, selection.OriginalSlot.ID)
	if err != nil {
		return err
	}

	committed, err := store.CommitAssignment(ctx, slot.ID, selection.CandidateStaffID, slot.Version)
	if err != nil {
		return err
	}

	logger.Info("Committed replacement assignment",
		zap.String("slot_id", committed.ID),
		zap.String("staff_id", committed.AssignedStaffID),
		zap.Int("version", committed.Version))
	return nil
}

// RejectRequest transitions the request to rejected. The reason is
// mandatory and lands in the approval record.
func RejectRequest(
	ctx context.Context,
	store RequestDecisionStore,
	requestID, rejectorID, reason string,
	logger *zap.Logger,
) (model.ApprovalRecord, error) {
	logger.Debug("Starting rejectRequest",
		zap.String("request_id", requestID),
		zap.String("rejector", rejectorID))

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return model.ApprovalRecord{}, err
	}

	record, err := lifecycle.New().Reject(req, rejectorID, reason)
	if err != nil {
		return model.ApprovalRecord{}, err
	}

	if err := store.SaveRequest(ctx, req); err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("failed to save request %s: %w", req.ID, err)
	}
	if err := store.AppendHistory(ctx, record); err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("failed to append approval record: %w", err)
	}

	logger.Info("Request rejected",
		zap.String("request_id", req.ID),
		zap.String("record_id", record.ID))
	return record, nil
}
