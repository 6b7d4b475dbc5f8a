// Package alert delivers operator alerts for conditions that need a human,
// such as ledger consistency faults detected during settlement.
package alert

import "context"

// Notifier delivers an operator alert. Implementations must not block the
// caller on delivery failures; alerting is best-effort on top of the error
// that is already propagating.
type Notifier interface {
	Alert(ctx context.Context, message string)
}

// Nop discards alerts. Used in tests and when no channel is configured.
type Nop struct{}

func (Nop) Alert(context.Context, string) {}
