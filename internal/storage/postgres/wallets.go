package postgres

import (
	"context"
	"fmt"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

func (s *Store) CreateWallet(ctx context.Context, w *model.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, available, locked)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, w.UserID, w.Available, w.Locked).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}

	return nil
}

const walletColumns = `id, user_id, available, locked, created_at, updated_at`

func (s *Store) scanWallet(row interface{ Scan(...any) error }, label string) (*model.Wallet, error) {
	var w model.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Available, &w.Locked, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", label, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return &w, nil
}

func (s *Store) GetWallet(ctx context.Context, id int64) (*model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return s.scanWallet(s.db.QueryRow(ctx, query, id), "get wallet")
}

func (s *Store) GetWalletByUserID(ctx context.Context, userID int64) (*model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return s.scanWallet(s.db.QueryRow(ctx, query, userID), "get wallet by user")
}

func (s *Store) GetPlatformWallet(ctx context.Context) (*model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id IS NULL`
	return s.scanWallet(s.db.QueryRow(ctx, query), "get platform wallet")
}

// UpdateWalletBalances sets both balance fields. The non-negativity check
// constraints on the table back up the service-layer guards.
func (s *Store) UpdateWalletBalances(ctx context.Context, id int64, available, locked int64) error {
	query := `
		UPDATE wallets
		SET available = $1, locked = $2, updated_at = now()
		WHERE id = $3
	`

	tag, err := s.db.Exec(ctx, query, available, locked, id)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet balances: %w", storage.ErrNotFound)
	}

	return nil
}
