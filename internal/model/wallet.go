package model

import "time"

// Wallet holds a user's funds split into a spendable and a reserved part.
// The platform wallet is the single row with UserID == nil.
//
// All monetary amounts in this package are int64 minor units.
type Wallet struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"` // nil for the platform wallet
	Available int64     `json:"available"`
	Locked    int64     `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPlatform reports whether this is the platform control wallet.
func (w *Wallet) IsPlatform() bool {
	return w.UserID == nil
}
