package postgres

import (
	"context"
	"fmt"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

const userColumns = `id, email, name, role, created_at`

func (s *Store) scanUser(row interface{ Scan(...any) error }, label string) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", label, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, id), "get user by id")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, email), "get user by email")
}

func (s *Store) GetBankAccount(ctx context.Context, id int64) (*model.BankAccount, error) {
	query := `
		SELECT id, user_id, bank_name, account_number, holder_name, created_at
		FROM bank_accounts
		WHERE id = $1
	`

	var a model.BankAccount
	err := s.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.BankName,
		&a.AccountNumber,
		&a.HolderName,
		&a.CreatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("get bank account: %w", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get bank account: %w", err)
	}

	return &a, nil
}
