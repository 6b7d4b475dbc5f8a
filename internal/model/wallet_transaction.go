package model

import "time"

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

type TransactionReason string

const (
	TransactionReasonBookingPayout      TransactionReason = "booking_payout"
	TransactionReasonPlatformFee        TransactionReason = "platform_fee"
	TransactionReasonEscrowLock         TransactionReason = "escrow_lock"
	TransactionReasonWithdrawal         TransactionReason = "withdrawal"
	TransactionReasonWithdrawalReversal TransactionReason = "withdrawal_reversal"
	TransactionReasonRefund             TransactionReason = "refund"
	TransactionReasonDisputeRefund      TransactionReason = "dispute_refund"
	TransactionReasonRetainedShare      TransactionReason = "retained_share"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// WalletTransaction is an immutable audit row for one change to a wallet's
// available balance. Amount is a positive magnitude; Type carries the sign.
// BalanceBefore and BalanceAfter snapshot the available balance around the
// change, so BalanceAfter == BalanceBefore + Delta() always holds.
type WalletTransaction struct {
	ID            int64             `json:"id"`
	WalletID      int64             `json:"wallet_id"`
	Amount        int64             `json:"amount"`
	Type          TransactionType   `json:"type"`
	Reason        TransactionReason `json:"reason"`
	Status        TransactionStatus `json:"status"`
	BalanceBefore int64             `json:"balance_before"`
	BalanceAfter  int64             `json:"balance_after"`
	Reference     string            `json:"reference"` // uuid correlation key
	BookingID     *int64            `json:"booking_id,omitempty"`
	WithdrawalID  *int64            `json:"withdrawal_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Delta returns the signed effect on the available balance.
func (t *WalletTransaction) Delta() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}
