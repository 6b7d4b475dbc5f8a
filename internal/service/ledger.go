package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

// recordAvailableChange appends the audit row for a change already applied
// to a wallet's available balance. before/after snapshot the available
// field around the change; amount is the positive magnitude.
func recordAvailableChange(
	ctx context.Context,
	st storage.Store,
	walletID int64,
	amount int64,
	typ model.TransactionType,
	reason model.TransactionReason,
	status model.TransactionStatus,
	before, after int64,
	bookingID, withdrawalID *int64,
) (*model.WalletTransaction, error) {
	txn := &model.WalletTransaction{
		WalletID:      walletID,
		Amount:        amount,
		Type:          typ,
		Reason:        reason,
		Status:        status,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     uuid.New().String(),
		BookingID:     bookingID,
		WithdrawalID:  withdrawalID,
	}

	if err := st.CreateWalletTransaction(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}
