package service

import "errors"

// Business-rule violations. Callers translate these to user-facing
// messages; nothing here mutates state before raising them.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNoActiveFee         = errors.New("no active fee policy")
	ErrInsufficientFunds   = errors.New("insufficient available balance")
	ErrAlreadyConfirmed    = errors.New("schedule already completed")
	ErrScheduleOnHold      = errors.New("schedule is on hold")
	ErrPayoutOnHold        = errors.New("payout is on hold")
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")
	ErrBookingAlreadyPaid  = errors.New("booking is already paid")
	ErrBookingNotPaid      = errors.New("booking is not paid")
	ErrNotAccountOwner     = errors.New("bank account does not belong to requester")
	ErrNotBookingLearner   = errors.New("user is not the booking's learner")
	ErrPolicyInactive      = errors.New("refund policy is not active")
	ErrRefundExceedsEscrow = errors.New("refund amount exceeds remaining escrow")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// ErrLedgerCorrupt marks a consistency fault: a locked balance no longer
// covers an obligation it must cover. It indicates the ledger invariant was
// already broken upstream, so batch jobs abort and alert instead of
// skipping the row.
var ErrLedgerCorrupt = errors.New("ledger consistency fault")
