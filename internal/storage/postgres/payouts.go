package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateTutorPayout(ctx context.Context, p *model.TutorPayout) error {
	query := `
		INSERT INTO tutor_payouts
			(wallet_id, booking_id, completion_id, amount, system_fee_amount,
			 status, scheduled_release_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx, query,
		p.WalletID,
		p.BookingID,
		p.CompletionID,
		p.Amount,
		p.SystemFeeAmount,
		p.Status,
		p.ScheduledReleaseAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tutor payout: %w", err)
	}

	return nil
}

const payoutColumns = `id, wallet_id, booking_id, completion_id, amount, system_fee_amount,
	status, trigger_reason, scheduled_release_at, released_at, wallet_transaction_id,
	created_at, updated_at`

func scanPayout(row interface{ Scan(...any) error }) (*model.TutorPayout, error) {
	var p model.TutorPayout
	err := row.Scan(
		&p.ID,
		&p.WalletID,
		&p.BookingID,
		&p.CompletionID,
		&p.Amount,
		&p.SystemFeeAmount,
		&p.Status,
		&p.Trigger,
		&p.ScheduledReleaseAt,
		&p.ReleasedAt,
		&p.WalletTransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetTutorPayout(ctx context.Context, id int64) (*model.TutorPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM tutor_payouts WHERE id = $1`

	p, err := scanPayout(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get tutor payout: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get tutor payout: %w", err)
	}

	return p, nil
}

func (s *Store) GetPayoutByCompletion(ctx context.Context, completionID int64) (*model.TutorPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM tutor_payouts WHERE completion_id = $1`

	p, err := scanPayout(s.db.QueryRow(ctx, query, completionID))
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get payout by completion: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get payout by completion: %w", err)
	}

	return p, nil
}

// ListOpenPayoutsByBooking returns a booking's payouts that still hold
// escrow, oldest first.
func (s *Store) ListOpenPayoutsByBooking(ctx context.Context, bookingID int64) ([]*model.TutorPayout, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM tutor_payouts
		WHERE booking_id = $1 AND status IN ($2, $3, $4)
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, bookingID,
		model.PayoutStatusPending, model.PayoutStatusReadyForPayout, model.PayoutStatusOnHold)
	if err != nil {
		return nil, fmt.Errorf("list open payouts by booking: %w", err)
	}
	defer rows.Close()

	var payouts []*model.TutorPayout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tutor payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open payouts: %w", err)
	}

	return payouts, nil
}

// ListDuePayoutsForRelease selects ready payouts due before the cutoff.
// The rows are locked until the enclosing transaction finishes, so an
// overlapping batch blocks here and re-evaluates the status predicate
// against the committed rows instead of double-releasing them.
func (s *Store) ListDuePayoutsForRelease(ctx context.Context, releasedBefore time.Time) ([]*model.TutorPayout, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM tutor_payouts
		WHERE status = $1 AND scheduled_release_at < $2
		ORDER BY id ASC
		FOR UPDATE
	`

	rows, err := s.db.Query(ctx, query, model.PayoutStatusReadyForPayout, releasedBefore)
	if err != nil {
		return nil, fmt.Errorf("list due payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*model.TutorPayout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tutor payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due payouts: %w", err)
	}

	return payouts, nil
}

// AdvancePayoutStatus performs the conditional transition from -> to and
// reports whether the row actually was in the expected status.
func (s *Store) AdvancePayoutStatus(ctx context.Context, id int64, from, to model.PayoutStatus, trigger *model.PayoutTrigger) (bool, error) {
	query := `
		UPDATE tutor_payouts
		SET status = $1, trigger_reason = COALESCE($2, trigger_reason), updated_at = now()
		WHERE id = $3 AND status = $4
	`

	tag, err := s.db.Exec(ctx, query, to, trigger, id, from)
	if err != nil {
		return false, fmt.Errorf("advance payout status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkPayoutPaid is the terminal conditional transition out of
// ready_for_payout. A false return means another run already paid the row.
func (s *Store) MarkPayoutPaid(ctx context.Context, id int64, transactionID int64, releasedAt time.Time) (bool, error) {
	query := `
		UPDATE tutor_payouts
		SET status = $1, released_at = $2, wallet_transaction_id = $3, updated_at = now()
		WHERE id = $4 AND status = $5
	`

	tag, err := s.db.Exec(ctx, query,
		model.PayoutStatusPaid, releasedAt, transactionID, id, model.PayoutStatusReadyForPayout)
	if err != nil {
		return false, fmt.Errorf("mark payout paid: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
