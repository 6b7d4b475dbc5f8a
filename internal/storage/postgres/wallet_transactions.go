package postgres

import (
	"context"
	"fmt"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateWalletTransaction(ctx context.Context, t *model.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions
			(wallet_id, amount, type, reason, status, balance_before, balance_after,
			 reference, booking_id, withdrawal_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(
		ctx, query,
		t.WalletID,
		t.Amount,
		t.Type,
		t.Reason,
		t.Status,
		t.BalanceBefore,
		t.BalanceAfter,
		t.Reference,
		t.BookingID,
		t.WithdrawalID,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create wallet transaction: %w", err)
	}

	return nil
}

// UpdateWalletTransactionStatus is the only permitted mutation of the audit
// log: a pending withdrawal debit settling into completed or failed.
func (s *Store) UpdateWalletTransactionStatus(ctx context.Context, id int64, status model.TransactionStatus) error {
	query := `UPDATE wallet_transactions SET status = $1 WHERE id = $2`

	tag, err := s.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update wallet transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet transaction status: %w", storage.ErrNotFound)
	}

	return nil
}

func (s *Store) ListWalletTransactions(ctx context.Context, walletID int64) ([]*model.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, amount, type, reason, status, balance_before,
		       balance_after, reference, booking_id, withdrawal_id, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []*model.WalletTransaction
	for rows.Next() {
		var t model.WalletTransaction
		err := rows.Scan(
			&t.ID,
			&t.WalletID,
			&t.Amount,
			&t.Type,
			&t.Reason,
			&t.Status,
			&t.BalanceBefore,
			&t.BalanceAfter,
			&t.Reference,
			&t.BookingID,
			&t.WithdrawalID,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		txns = append(txns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transactions: %w", err)
	}

	return txns, nil
}
