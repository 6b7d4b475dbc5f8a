package model

import "time"

// RefundPolicy is a named percentage rule for computing how much of a
// booking is returned to the learner.
type RefundPolicy struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	RefundPercentage float64   `json:"refund_percentage"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

type RefundRequestStatus string

const (
	RefundRequestStatusPending  RefundRequestStatus = "pending"
	RefundRequestStatusApproved RefundRequestStatus = "approved"
	RefundRequestStatusRejected RefundRequestStatus = "rejected"
)

// BookingRefundRequest records a learner's claim against a confirmed
// booking. ApprovedAmount is computed from the policy once at creation and
// never recomputed, even if the policy changes afterwards.
type BookingRefundRequest struct {
	ID             int64               `json:"id"`
	BookingID      int64               `json:"booking_id"`
	LearnerID      int64               `json:"learner_id"`
	RefundPolicyID int64               `json:"refund_policy_id"`
	Reason         string              `json:"reason"`
	ApprovedAmount int64               `json:"approved_amount"`
	Status         RefundRequestStatus `json:"status"`
	ReviewedBy     *int64              `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}
