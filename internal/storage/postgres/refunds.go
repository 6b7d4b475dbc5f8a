package postgres

import (
	"context"
	"fmt"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateRefundPolicy(ctx context.Context, p *model.RefundPolicy) error {
	query := `
		INSERT INTO refund_policies (name, refund_percentage, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(ctx, query, p.Name, p.RefundPercentage, p.IsActive).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create refund policy: %w", err)
	}

	return nil
}

func (s *Store) GetRefundPolicy(ctx context.Context, id int64) (*model.RefundPolicy, error) {
	query := `
		SELECT id, name, refund_percentage, is_active, created_at
		FROM refund_policies
		WHERE id = $1
	`

	var p model.RefundPolicy
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.RefundPercentage,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get refund policy: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get refund policy: %w", err)
	}

	return &p, nil
}

func (s *Store) CreateRefundRequest(ctx context.Context, r *model.BookingRefundRequest) error {
	query := `
		INSERT INTO booking_refund_requests
			(booking_id, learner_id, refund_policy_id, reason, approved_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(
		ctx, query,
		r.BookingID,
		r.LearnerID,
		r.RefundPolicyID,
		r.Reason,
		r.ApprovedAmount,
		r.Status,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create refund request: %w", err)
	}

	return nil
}

func (s *Store) GetRefundRequest(ctx context.Context, id int64) (*model.BookingRefundRequest, error) {
	query := `
		SELECT id, booking_id, learner_id, refund_policy_id, reason,
		       approved_amount, status, reviewed_by, reviewed_at, created_at
		FROM booking_refund_requests
		WHERE id = $1
	`

	var r model.BookingRefundRequest
	err := s.db.QueryRow(ctx, query, id).Scan(
		&r.ID,
		&r.BookingID,
		&r.LearnerID,
		&r.RefundPolicyID,
		&r.Reason,
		&r.ApprovedAmount,
		&r.Status,
		&r.ReviewedBy,
		&r.ReviewedAt,
		&r.CreatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get refund request: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get refund request: %w", err)
	}

	return &r, nil
}

func (s *Store) UpdateRefundRequest(ctx context.Context, r *model.BookingRefundRequest) error {
	query := `
		UPDATE booking_refund_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4
	`

	tag, err := s.db.Exec(ctx, query, r.Status, r.ReviewedBy, r.ReviewedAt, r.ID)
	if err != nil {
		return fmt.Errorf("update refund request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update refund request: %w", storage.ErrNotFound)
	}

	return nil
}
