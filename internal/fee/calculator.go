// Package fee holds the pure arithmetic for booking fees and refunds.
// All amounts are int64 minor units; percentage components round half-up
// to the nearest unit.
package fee

import (
	"fmt"
	"math"
)

// Quote is the result of pricing a booking against a fee policy.
// BaseAmount is what the learner is charged (unit price times sessions);
// FeeAmount is the platform's cut, tracked separately and carved out of
// escrow at settlement rather than added on top.
type Quote struct {
	BaseAmount int64
	FeeAmount  int64
}

// Calculate prices a booking. Percentage and fixed are the optional
// components of the fee policy; either or both may be nil.
func Calculate(unitPrice int64, sessions int, percentage *float64, fixed *int64) (Quote, error) {
	if unitPrice <= 0 {
		return Quote{}, fmt.Errorf("unit price must be positive, got %d", unitPrice)
	}
	if sessions <= 0 {
		return Quote{}, fmt.Errorf("session count must be positive, got %d", sessions)
	}

	base := unitPrice * int64(sessions)

	var feeAmount int64
	if percentage != nil {
		if *percentage < 0 || *percentage > 100 {
			return Quote{}, fmt.Errorf("fee percentage out of range: %v", *percentage)
		}
		feeAmount += int64(math.Round(float64(base) * *percentage / 100))
	}
	if fixed != nil {
		if *fixed < 0 {
			return Quote{}, fmt.Errorf("fixed fee must not be negative, got %d", *fixed)
		}
		feeAmount += *fixed
	}

	return Quote{BaseAmount: base, FeeAmount: feeAmount}, nil
}

// RefundAmount applies a percentage refund policy to a booking total.
func RefundAmount(totalAmount int64, percentage float64) (int64, error) {
	if totalAmount < 0 {
		return 0, fmt.Errorf("total amount must not be negative, got %d", totalAmount)
	}
	if percentage < 0 || percentage > 100 {
		return 0, fmt.Errorf("refund percentage out of range: %v", percentage)
	}

	return int64(math.Round(float64(totalAmount) * percentage / 100)), nil
}

// SplitAcrossSessions divides an amount into per-session shares, putting
// the division remainder on the last session so the shares always sum back
// to the whole.
func SplitAcrossSessions(amount int64, sessions int) []int64 {
	share := amount / int64(sessions)
	shares := make([]int64, sessions)
	for i := range shares {
		shares[i] = share
	}
	shares[sessions-1] += amount - share*int64(sessions)
	return shares
}
