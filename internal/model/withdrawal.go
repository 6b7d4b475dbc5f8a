package model

import "time"

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a user-initiated debit awaiting administrative approval.
// Creating one locks the amount on the wallet; approval releases the lock
// outward, rejection returns it to the available balance.
type Withdrawal struct {
	ID                  int64            `json:"id"`
	WalletID            int64            `json:"wallet_id"`
	Amount              int64            `json:"amount"`
	BankAccountID       int64            `json:"bank_account_id"`
	Status              WithdrawalStatus `json:"status"`
	Reference           string           `json:"reference"` // uuid idempotency key
	WalletTransactionID *int64           `json:"wallet_transaction_id,omitempty"`
	ProcessedBy         *int64           `json:"processed_by,omitempty"`
	ProcessedAt         *time.Time       `json:"processed_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

type BankAccount struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	HolderName    string    `json:"holder_name"`
	CreatedAt     time.Time `json:"created_at"`
}
