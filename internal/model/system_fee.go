package model

import "time"

// SystemFee is a named platform fee policy with an effective window.
// Percentage and FixedAmount are independent optional components; the fee
// for a booking is base*percentage/100 plus the fixed amount, whichever
// parts are set. Rows referenced by bookings are never edited; a new row
// supersedes them instead.
type SystemFee struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Percentage    *float64   `json:"percentage,omitempty"`
	FixedAmount   *int64     `json:"fixed_amount,omitempty"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// EffectiveAt reports whether the policy window covers the given instant.
func (f *SystemFee) EffectiveAt(at time.Time) bool {
	if !f.IsActive || at.Before(f.EffectiveFrom) {
		return false
	}
	return f.EffectiveTo == nil || at.Before(*f.EffectiveTo)
}
