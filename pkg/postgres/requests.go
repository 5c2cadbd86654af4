package postgres

import (
	"context"
	"fmt"

	"github.com/harunaka/careshift/pkg/core/model"
)

// GetRequest retrieves a single request by ID
func (s *Store) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	var reqType, status string
	var originalSlotID *string
	err := s.q.QueryRow(ctx, `
		SELECT id, staff_id, dates, reason, type, status, original_slot_id
		FROM requests
		WHERE id = $1
	`, id).Scan(&req.ID, &req.StaffID, &req.Dates, &req.Reason, &reqType, &status, &originalSlotID)
	if err != nil {
		return nil, translatePgError(err, fmt.Sprintf("request %s", id))
	}

	req.Type = model.RequestType(reqType)
	req.Status = model.RequestStatus(status)
	if originalSlotID != nil {
		req.OriginalSlotID = *originalSlotID
	}
	return &req, nil
}

// ListRequests retrieves requests with at least one date inside the
// inclusive [startDate, endDate] window
func (s *Store) ListRequests(ctx context.Context, startDate, endDate string) ([]model.Request, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, staff_id, dates, reason, type, status, original_slot_id
		FROM requests
		WHERE EXISTS (
			SELECT 1 FROM unnest(dates) AS d WHERE d BETWEEN $1 AND $2
		)
		ORDER BY id
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var req model.Request
		var reqType, status string
		var originalSlotID *string
		if err := rows.Scan(&req.ID, &req.StaffID, &req.Dates, &req.Reason,
			&reqType, &status, &originalSlotID); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		req.Type = model.RequestType(reqType)
		req.Status = model.RequestStatus(status)
		if originalSlotID != nil {
			req.OriginalSlotID = *originalSlotID
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// SaveRequest inserts or updates a request
func (s *Store) SaveRequest(ctx context.Context, req *model.Request) error {
	var originalSlotID *string
	if req.OriginalSlotID != "" {
		originalSlotID = &req.OriginalSlotID
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO requests (id, staff_id, dates, reason, type, status, original_slot_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET dates = EXCLUDED.dates,
		    reason = EXCLUDED.reason,
		    status = EXCLUDED.status,
		    original_slot_id = EXCLUDED.original_slot_id
	`, req.ID, req.StaffID, req.Dates, req.Reason,
		string(req.Type), string(req.Status), originalSlotID)
	if err != nil {
		return fmt.Errorf("failed to save request %s: %w", req.ID, err)
	}
	return nil
}

// AppendHistory writes one audit record. Records are insert-only; there is
// no update path.
func (s *Store) AppendHistory(ctx context.Context, record model.ApprovalRecord) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO approval_records
			(id, request_id, action, performed_by, performed_at, notes, previous_status, new_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, record.ID, record.RequestID, string(record.Action), record.PerformedBy,
		record.PerformedAt, record.Notes, string(record.PreviousStatus), string(record.NewStatus))
	if err != nil {
		return fmt.Errorf("failed to append approval record %s: %w", record.ID, err)
	}
	return nil
}

// GetHistory retrieves the audit trail for a request in write order
func (s *Store) GetHistory(ctx context.Context, requestID string) ([]model.ApprovalRecord, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, request_id, action, performed_by, performed_at, notes, previous_status, new_status
		FROM approval_records
		WHERE request_id = $1
		ORDER BY performed_at, id
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval records: %w", err)
	}
	defer rows.Close()

	var records []model.ApprovalRecord
	for rows.Next() {
		var rec model.ApprovalRecord
		var action, previousStatus, newStatus string
		if err := rows.Scan(&rec.ID, &rec.RequestID, &action, &rec.PerformedBy,
			&rec.PerformedAt, &rec.Notes, &previousStatus, &newStatus); err != nil {
			return nil, fmt.Errorf("failed to scan approval record: %w", err)
		}
		rec.Action = model.ApprovalAction(action)
		rec.PreviousStatus = model.RequestStatus(previousStatus)
		rec.NewStatus = model.RequestStatus(newStatus)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval records: %w", err)
	}

	return records, nil
}
