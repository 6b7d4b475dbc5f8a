package postgres

import (
	"context"
	"fmt"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO bookings
			(learner_id, tutor_id, subject_id, unit_price, sessions,
			 total_amount, system_fee_amount, system_fee_id, payment_status, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx, query,
		b.LearnerID,
		b.TutorID,
		b.SubjectID,
		b.UnitPrice,
		b.Sessions,
		b.TotalAmount,
		b.SystemFeeAmount,
		b.SystemFeeID,
		b.PaymentStatus,
		b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	query := `
		SELECT id, learner_id, tutor_id, subject_id, unit_price, sessions,
		       total_amount, system_fee_amount, system_fee_id, payment_status,
		       status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var b model.Booking
	err := s.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.LearnerID,
		&b.TutorID,
		&b.SubjectID,
		&b.UnitPrice,
		&b.Sessions,
		&b.TotalAmount,
		&b.SystemFeeAmount,
		&b.SystemFeeID,
		&b.PaymentStatus,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get booking: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return &b, nil
}

func (s *Store) UpdateBookingAmounts(ctx context.Context, id int64, sessions int, totalAmount, feeAmount int64) error {
	query := `
		UPDATE bookings
		SET sessions = $1, total_amount = $2, system_fee_amount = $3, updated_at = now()
		WHERE id = $4
	`

	tag, err := s.db.Exec(ctx, query, sessions, totalAmount, feeAmount, id)
	if err != nil {
		return fmt.Errorf("update booking amounts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update booking amounts: %w", storage.ErrNotFound)
	}

	return nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2`

	tag, err := s.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update booking status: %w", storage.ErrNotFound)
	}

	return nil
}

func (s *Store) UpdateBookingPaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $1, updated_at = now() WHERE id = $2`

	tag, err := s.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update booking payment status: %w", storage.ErrNotFound)
	}

	return nil
}
