// Package lifecycle implements the state machine governing leave and
// exchange request status. Every successful transition produces an
// append-only ApprovalRecord; approved and rejected are terminal states.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harunaka/careshift/pkg/core/model"
)

// Machine applies status transitions to requests. The clock and ID source
// are injectable for tests.
type Machine struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Machine
type Option func(*Machine)

// WithClock overrides the transition timestamp source
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIDSource overrides the approval record ID source
func WithIDSource(newID func() string) Option {
	return func(m *Machine) {
		m.newID = newID
	}
}

// New creates a Machine with real time and UUID record IDs
func New(opts ...Option) *Machine {
	m := &Machine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ApproveInput carries what an approval needs. Selection must be set when
// approving an exchange_pending request; it is the proposal the admin chose.
type ApproveInput struct {
	ApproverID string
	Notes      string
	Selection  *model.ExchangeProposal
}

// Approve transitions a request to approved and returns the audit record.
// Approving an already-approved request is a no-op returning the existing
// record (changed=false). Any other transition from a terminal state fails
// with model.ErrConflict. The caller persists both the mutated request and
// the record.
func (m *Machine) Approve(req *model.Request, in ApproveInput, history []model.ApprovalRecord) (model.ApprovalRecord, bool, error) {
	if in.ApproverID == "" {
		return model.ApprovalRecord{}, false, fmt.Errorf("approver id is required: %w", model.ErrValidation)
	}

	switch req.Status {
	case model.StatusApproved:
		// Idempotent re-approval: surface the original record, no new side effect
		for _, rec := range history {
			if rec.Action == model.ActionApproved {
				return rec, false, nil
			}
		}
		return model.ApprovalRecord{}, false, fmt.Errorf(
			"request %s approved but has no approval record: %w", req.ID, model.ErrInvariant)

	case model.StatusRejected:
		return model.ApprovalRecord{}, false, fmt.Errorf(
			"request %s is already rejected: %w", req.ID, model.ErrConflict)

	case model.StatusExchangePending:
		if in.Selection == nil {
			return model.ApprovalRecord{}, false, fmt.Errorf(
				"approving an exchange request requires a proposal selection: %w", model.ErrValidation)
		}

	case model.StatusPending:
		// No extra requirements beyond the approver id

	default:
		return model.ApprovalRecord{}, false, fmt.Errorf(
			"request %s has unknown status %q: %w", req.ID, req.Status, model.ErrValidation)
	}

	record := model.ApprovalRecord{
		ID:             m.newID(),
		RequestID:      req.ID,
		Action:         model.ActionApproved,
		PerformedBy:    in.ApproverID,
		PerformedAt:    m.now().Format(time.RFC3339),
		Notes:          in.Notes,
		PreviousStatus: req.Status,
		NewStatus:      model.StatusApproved,
	}
	req.Status = model.StatusApproved

	return record, true, nil
}

// Reject transitions a request to rejected. A non-empty reason is required;
// rejection from any terminal state fails with model.ErrConflict.
func (m *Machine) Reject(req *model.Request, rejectorID, reason string) (model.ApprovalRecord, error) {
	if reason == "" {
		return model.ApprovalRecord{}, fmt.Errorf("rejection reason is required: %w", model.ErrValidation)
	}
	if req.Status.IsTerminal() {
		return model.ApprovalRecord{}, fmt.Errorf(
			"request %s is already %s: %w", req.ID, req.Status, model.ErrConflict)
	}

	record := model.ApprovalRecord{
		ID:             m.newID(),
		RequestID:      req.ID,
		Action:         model.ActionRejected,
		PerformedBy:    rejectorID,
		PerformedAt:    m.now().Format(time.RFC3339),
		Notes:          reason,
		PreviousStatus: req.Status,
		NewStatus:      model.StatusRejected,
	}
	req.Status = model.StatusRejected

	return record, nil
}
