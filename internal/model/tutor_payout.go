package model

import "time"

type PayoutStatus string

const (
	PayoutStatusPending        PayoutStatus = "pending"
	PayoutStatusReadyForPayout PayoutStatus = "ready_for_payout"
	PayoutStatusPaid           PayoutStatus = "paid"
	PayoutStatusOnHold         PayoutStatus = "on_hold"
	PayoutStatusCanceled       PayoutStatus = "canceled"
)

type PayoutTrigger string

const (
	PayoutTriggerLearnerConfirmed PayoutTrigger = "learner_confirmed"
	PayoutTriggerAutoCompleted    PayoutTrigger = "auto_completed"
	PayoutTriggerHoldReleased     PayoutTrigger = "hold_released"
)

// TutorPayout is the tutor's earned share for one lesson, pending release.
// Amount is the tutor's cut and SystemFeeAmount the platform's cut of the
// same lesson; together they equal the slice of escrow released when the
// payout is paid. Status moves forward only, except that a dispute can park
// it on hold and a lost dispute cancels it.
type TutorPayout struct {
	ID                  int64          `json:"id"`
	WalletID            int64          `json:"wallet_id"` // tutor's wallet
	BookingID           int64          `json:"booking_id"`
	CompletionID        int64          `json:"completion_id"`
	Amount              int64          `json:"amount"`
	SystemFeeAmount     int64          `json:"system_fee_amount"`
	Status              PayoutStatus   `json:"status"`
	Trigger             *PayoutTrigger `json:"trigger,omitempty"`
	ScheduledReleaseAt  time.Time      `json:"scheduled_release_at"`
	ReleasedAt          *time.Time     `json:"released_at,omitempty"`
	WalletTransactionID *int64         `json:"wallet_transaction_id,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// TotalToRelease is the slice of escrow this payout settles.
func (p *TutorPayout) TotalToRelease() int64 {
	return p.Amount + p.SystemFeeAmount
}
