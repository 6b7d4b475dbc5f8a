package postgres

import (
	"context"
	"fmt"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (wallet_id, amount, bank_account_id, status, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(
		ctx, query,
		w.WalletID,
		w.Amount,
		w.BankAccountID,
		w.Status,
		w.Reference,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("create withdrawal: %w", err)
	}

	return nil
}

func (s *Store) GetWithdrawal(ctx context.Context, id int64) (*model.Withdrawal, error) {
	query := `
		SELECT id, wallet_id, amount, bank_account_id, status, reference,
		       wallet_transaction_id, processed_by, processed_at, created_at
		FROM withdrawals
		WHERE id = $1
	`

	var w model.Withdrawal
	err := s.db.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.WalletID,
		&w.Amount,
		&w.BankAccountID,
		&w.Status,
		&w.Reference,
		&w.WalletTransactionID,
		&w.ProcessedBy,
		&w.ProcessedAt,
		&w.CreatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get withdrawal: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}

	return &w, nil
}

func (s *Store) UpdateWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	query := `
		UPDATE withdrawals
		SET status = $1, wallet_transaction_id = $2, processed_by = $3, processed_at = $4
		WHERE id = $5
	`

	tag, err := s.db.Exec(ctx, query, w.Status, w.WalletTransactionID, w.ProcessedBy, w.ProcessedAt, w.ID)
	if err != nil {
		return fmt.Errorf("update withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update withdrawal: %w", storage.ErrNotFound)
	}

	return nil
}
