// Package storage defines the persistence boundary of the ledger.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lessonledger/ledger/internal/model"
)

// ErrNotFound is returned by read-one operations when no row matches.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary for the ledger. The abstraction keeps
// the service layer free of SQL and lets tests run against an in-memory
// implementation.
//
// InTx runs fn against a view of the store bound to one database
// transaction; every operation inside shares it. fn returning an error
// rolls the whole transaction back, nil commits it. The settlement and
// withdrawal flows rely on this as their atomicity primitive.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error

	// Users and bank accounts: read-only reference validation.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetBankAccount(ctx context.Context, id int64) (*model.BankAccount, error)

	// Wallets.
	CreateWallet(ctx context.Context, w *model.Wallet) error
	GetWallet(ctx context.Context, id int64) (*model.Wallet, error)
	GetWalletByUserID(ctx context.Context, userID int64) (*model.Wallet, error)
	GetPlatformWallet(ctx context.Context) (*model.Wallet, error)
	UpdateWalletBalances(ctx context.Context, id int64, available, locked int64) error

	// Wallet transactions: append-only audit log.
	CreateWalletTransaction(ctx context.Context, t *model.WalletTransaction) error
	UpdateWalletTransactionStatus(ctx context.Context, id int64, status model.TransactionStatus) error
	ListWalletTransactions(ctx context.Context, walletID int64) ([]*model.WalletTransaction, error)

	// Fee schedules.
	CreateSystemFee(ctx context.Context, f *model.SystemFee) error
	GetSystemFee(ctx context.Context, id int64) (*model.SystemFee, error)
	// ActiveSystemFee resolves the policy in effect at the given instant;
	// the smallest id wins when windows overlap.
	ActiveSystemFee(ctx context.Context, at time.Time) (*model.SystemFee, error)

	// Bookings.
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	UpdateBookingAmounts(ctx context.Context, id int64, sessions int, totalAmount, feeAmount int64) error
	UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) error
	UpdateBookingPaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error

	// Schedule completions.
	CreateScheduleCompletion(ctx context.Context, c *model.ScheduleCompletion) error
	GetScheduleCompletion(ctx context.Context, id int64) (*model.ScheduleCompletion, error)
	ListDueCompletions(ctx context.Context, deadlineBefore time.Time) ([]*model.ScheduleCompletion, error)
	UpdateScheduleCompletion(ctx context.Context, c *model.ScheduleCompletion) error

	// Tutor payouts.
	CreateTutorPayout(ctx context.Context, p *model.TutorPayout) error
	GetTutorPayout(ctx context.Context, id int64) (*model.TutorPayout, error)
	GetPayoutByCompletion(ctx context.Context, completionID int64) (*model.TutorPayout, error)
	ListOpenPayoutsByBooking(ctx context.Context, bookingID int64) ([]*model.TutorPayout, error)
	// ListDuePayoutsForRelease selects ready payouts scheduled strictly
	// before the given cutoff, locking the rows for the enclosing
	// transaction.
	ListDuePayoutsForRelease(ctx context.Context, releasedBefore time.Time) ([]*model.TutorPayout, error)
	// AdvancePayoutStatus transitions a payout from one status to another
	// and reports whether the row was in the expected status. The
	// conditional update is the exclusive gate against double release.
	AdvancePayoutStatus(ctx context.Context, id int64, from, to model.PayoutStatus, trigger *model.PayoutTrigger) (bool, error)
	// MarkPayoutPaid is the terminal transition from ready_for_payout,
	// stamping the release time and linking the audit transaction.
	MarkPayoutPaid(ctx context.Context, id int64, transactionID int64, releasedAt time.Time) (bool, error)

	// Withdrawals.
	CreateWithdrawal(ctx context.Context, w *model.Withdrawal) error
	GetWithdrawal(ctx context.Context, id int64) (*model.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, w *model.Withdrawal) error

	// Refund policies and requests.
	CreateRefundPolicy(ctx context.Context, p *model.RefundPolicy) error
	GetRefundPolicy(ctx context.Context, id int64) (*model.RefundPolicy, error)
	CreateRefundRequest(ctx context.Context, r *model.BookingRefundRequest) error
	GetRefundRequest(ctx context.Context, id int64) (*model.BookingRefundRequest, error)
	UpdateRefundRequest(ctx context.Context, r *model.BookingRefundRequest) error
}
