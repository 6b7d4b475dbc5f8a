package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateScheduleCompletion(ctx context.Context, c *model.ScheduleCompletion) error {
	query := `
		INSERT INTO schedule_completions (booking_id, session_number, status, confirm_deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx, query,
		c.BookingID,
		c.SessionNumber,
		c.Status,
		c.ConfirmDeadline,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create schedule completion: %w", err)
	}

	return nil
}

const completionColumns = `id, booking_id, session_number, status, confirm_deadline,
	confirmed_at, auto_completed_at, report_reason, created_at, updated_at`

func scanCompletion(row interface{ Scan(...any) error }) (*model.ScheduleCompletion, error) {
	var c model.ScheduleCompletion
	err := row.Scan(
		&c.ID,
		&c.BookingID,
		&c.SessionNumber,
		&c.Status,
		&c.ConfirmDeadline,
		&c.ConfirmedAt,
		&c.AutoCompletedAt,
		&c.ReportReason,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetScheduleCompletion(ctx context.Context, id int64) (*model.ScheduleCompletion, error) {
	query := `SELECT ` + completionColumns + ` FROM schedule_completions WHERE id = $1`

	c, err := scanCompletion(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get schedule completion: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get schedule completion: %w", err)
	}

	return c, nil
}

// ListDueCompletions returns completions still waiting for confirmation
// whose deadline has passed, locked for the enclosing transaction.
func (s *Store) ListDueCompletions(ctx context.Context, deadlineBefore time.Time) ([]*model.ScheduleCompletion, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM schedule_completions
		WHERE status = $1 AND confirm_deadline <= $2
		ORDER BY id ASC
		FOR UPDATE
	`

	rows, err := s.db.Query(ctx, query, model.CompletionStatusPendingConfirm, deadlineBefore)
	if err != nil {
		return nil, fmt.Errorf("list due completions: %w", err)
	}
	defer rows.Close()

	var completions []*model.ScheduleCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due completions: %w", err)
	}

	return completions, nil
}

func (s *Store) UpdateScheduleCompletion(ctx context.Context, c *model.ScheduleCompletion) error {
	query := `
		UPDATE schedule_completions
		SET status = $1, confirmed_at = $2, auto_completed_at = $3, report_reason = $4, updated_at = now()
		WHERE id = $5
	`

	tag, err := s.db.Exec(ctx, query, c.Status, c.ConfirmedAt, c.AutoCompletedAt, c.ReportReason, c.ID)
	if err != nil {
		return fmt.Errorf("update schedule completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update schedule completion: %w", storage.ErrNotFound)
	}

	return nil
}
