package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

type WithdrawalService struct {
	store  storage.Store
	clock  clock.Clock
	logger *zap.Logger
}

func NewWithdrawalService(store storage.Store, clk clock.Clock, logger *zap.Logger) *WithdrawalService {
	return &WithdrawalService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Create opens a withdrawal: the amount moves from available to locked and
// the pending debit lands in the audit log, all inside one transaction.
// Any failure after the first write rolls the whole thing back.
func (s *WithdrawalService) Create(ctx context.Context, userID, amount, bankAccountID int64) (*model.Withdrawal, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	account, err := s.store.GetBankAccount(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrNotAccountOwner
	}

	var withdrawal *model.Withdrawal
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		wallet, err := tx.GetWalletByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if wallet.Available < amount {
			return ErrInsufficientFunds
		}

		withdrawal = &model.Withdrawal{
			WalletID:      wallet.ID,
			Amount:        amount,
			BankAccountID: bankAccountID,
			Status:        model.WithdrawalStatusPending,
			Reference:     uuid.New().String(),
		}
		if err := tx.CreateWithdrawal(ctx, withdrawal); err != nil {
			return err
		}

		newAvailable := wallet.Available - amount
		if err := tx.UpdateWalletBalances(ctx, wallet.ID, newAvailable, wallet.Locked+amount); err != nil {
			return err
		}

		txn, err := recordAvailableChange(ctx, tx, wallet.ID, amount,
			model.TransactionTypeDebit, model.TransactionReasonWithdrawal, model.TransactionStatusPending,
			wallet.Available, newAvailable, nil, &withdrawal.ID)
		if err != nil {
			return err
		}

		withdrawal.WalletTransactionID = &txn.ID
		return tx.UpdateWithdrawal(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal created",
		zap.Int64("withdrawal_id", withdrawal.ID),
		zap.Int64("wallet_id", withdrawal.WalletID),
		zap.Int64("amount", amount),
	)

	return withdrawal, nil
}

// Approve releases the locked amount outward and settles the pending debit.
func (s *WithdrawalService) Approve(ctx context.Context, withdrawalID, adminID int64) error {
	return s.process(ctx, withdrawalID, adminID, model.WithdrawalStatusApproved)
}

// Reject returns the locked amount to the available balance, fails the
// original debit and appends a reversal credit.
func (s *WithdrawalService) Reject(ctx context.Context, withdrawalID, adminID int64) error {
	return s.process(ctx, withdrawalID, adminID, model.WithdrawalStatusRejected)
}

func (s *WithdrawalService) process(ctx context.Context, withdrawalID, adminID int64, verdict model.WithdrawalStatus) error {
	admin, err := s.store.GetUserByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("validate admin: %w", err)
	}

	err = s.store.InTx(ctx, func(tx storage.Store) error {
		withdrawal, err := tx.GetWithdrawal(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal.Status != model.WithdrawalStatusPending {
			return ErrInvalidTransition
		}

		wallet, err := tx.GetWallet(ctx, withdrawal.WalletID)
		if err != nil {
			return err
		}
		if wallet.Locked < withdrawal.Amount {
			return fmt.Errorf("withdrawal %d exceeds locked balance: %w", withdrawalID, ErrLedgerCorrupt)
		}

		switch verdict {
		case model.WithdrawalStatusApproved:
			if err := tx.UpdateWalletBalances(ctx, wallet.ID, wallet.Available, wallet.Locked-withdrawal.Amount); err != nil {
				return err
			}
			if withdrawal.WalletTransactionID != nil {
				if err := tx.UpdateWalletTransactionStatus(ctx, *withdrawal.WalletTransactionID, model.TransactionStatusCompleted); err != nil {
					return err
				}
			}

		case model.WithdrawalStatusRejected:
			newAvailable := wallet.Available + withdrawal.Amount
			if err := tx.UpdateWalletBalances(ctx, wallet.ID, newAvailable, wallet.Locked-withdrawal.Amount); err != nil {
				return err
			}
			if withdrawal.WalletTransactionID != nil {
				if err := tx.UpdateWalletTransactionStatus(ctx, *withdrawal.WalletTransactionID, model.TransactionStatusFailed); err != nil {
					return err
				}
			}
			_, err = recordAvailableChange(ctx, tx, wallet.ID, withdrawal.Amount,
				model.TransactionTypeCredit, model.TransactionReasonWithdrawalReversal, model.TransactionStatusCompleted,
				wallet.Available, newAvailable, nil, &withdrawal.ID)
			if err != nil {
				return err
			}
		}

		now := s.clock.Now()
		withdrawal.Status = verdict
		withdrawal.ProcessedBy = &admin.ID
		withdrawal.ProcessedAt = &now
		return tx.UpdateWithdrawal(ctx, withdrawal)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Withdrawal processed",
		zap.Int64("withdrawal_id", withdrawalID),
		zap.String("status", string(verdict)),
		zap.String("admin", admin.Email),
	)

	return nil
}
