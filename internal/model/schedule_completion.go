package model

import "time"

type CompletionStatus string

const (
	CompletionStatusPendingConfirm   CompletionStatus = "pending_confirm"
	CompletionStatusLearnerConfirmed CompletionStatus = "learner_confirmed"
	CompletionStatusAutoCompleted    CompletionStatus = "auto_completed"
	CompletionStatusReportedOnHold   CompletionStatus = "reported_on_hold"
	CompletionStatusCanceled         CompletionStatus = "canceled"
)

// ScheduleCompletion tracks one lesson's confirmation lifecycle, which
// gates the release of its payout. A lesson waits for the learner to
// confirm until ConfirmDeadline, after which the auto-complete sweep
// finishes it. A report parks it on hold until an admin resolves the
// dispute, either releasing the lesson or canceling it with a refund.
type ScheduleCompletion struct {
	ID              int64            `json:"id"`
	BookingID       int64            `json:"booking_id"`
	SessionNumber   int              `json:"session_number"`
	Status          CompletionStatus `json:"status"`
	ConfirmDeadline time.Time        `json:"confirm_deadline"`
	ConfirmedAt     *time.Time       `json:"confirmed_at,omitempty"`
	AutoCompletedAt *time.Time       `json:"auto_completed_at,omitempty"`
	ReportReason    *string          `json:"report_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
