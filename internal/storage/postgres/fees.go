package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateSystemFee(ctx context.Context, f *model.SystemFee) error {
	query := `
		INSERT INTO system_fees (name, percentage, fixed_amount, effective_from, effective_to, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(
		ctx, query,
		f.Name,
		f.Percentage,
		f.FixedAmount,
		f.EffectiveFrom,
		f.EffectiveTo,
		f.IsActive,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create system fee: %w", err)
	}

	return nil
}

const systemFeeColumns = `id, name, percentage, fixed_amount, effective_from, effective_to, is_active, created_at`

func (s *Store) scanSystemFee(row interface{ Scan(...any) error }, label string) (*model.SystemFee, error) {
	var f model.SystemFee
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Percentage,
		&f.FixedAmount,
		&f.EffectiveFrom,
		&f.EffectiveTo,
		&f.IsActive,
		&f.CreatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", label, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return &f, nil
}

func (s *Store) GetSystemFee(ctx context.Context, id int64) (*model.SystemFee, error) {
	query := `SELECT ` + systemFeeColumns + ` FROM system_fees WHERE id = $1`
	return s.scanSystemFee(s.db.QueryRow(ctx, query, id), "get system fee")
}

// ActiveSystemFee resolves the policy in effect at the given instant.
// When windows overlap, the smallest id wins.
func (s *Store) ActiveSystemFee(ctx context.Context, at time.Time) (*model.SystemFee, error) {
	query := `
		SELECT ` + systemFeeColumns + `
		FROM system_fees
		WHERE is_active
		  AND effective_from <= $1
		  AND (effective_to IS NULL OR effective_to > $1)
		ORDER BY id ASC
		LIMIT 1
	`
	return s.scanSystemFee(s.db.QueryRow(ctx, query, at), "active system fee")
}
