package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking freezes the financial terms of a block of lessons at creation
// time. TotalAmount is unit price times sessions and excludes the platform
// fee; SystemFeeAmount is tracked separately and carved out of escrow at
// settlement. SystemFeeID pins the fee schedule the amounts were derived
// from, so recalculation never picks up a newer schedule.
type Booking struct {
	ID              int64         `json:"id"`
	LearnerID       int64         `json:"learner_id"`
	TutorID         int64         `json:"tutor_id"`
	SubjectID       int64         `json:"subject_id"`
	UnitPrice       int64         `json:"unit_price"`
	Sessions        int           `json:"sessions"`
	TotalAmount     int64         `json:"total_amount"`
	SystemFeeAmount int64         `json:"system_fee_amount"`
	SystemFeeID     int64         `json:"system_fee_id"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
