// Package clock abstracts the single source of "now" so day-boundary
// logic is injectable in tests.
package clock

import "time"

// Clock yields the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a clock frozen at a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Calendar derives business days from a clock in one fixed zone, so the
// payout schedule never mixes UTC days with local days.
type Calendar struct {
	clock  Clock
	offset *time.Location
}

// NewCalendar builds a calendar at the given fixed UTC offset in hours.
func NewCalendar(c Clock, offsetHours int) *Calendar {
	return &Calendar{
		clock:  c,
		offset: time.FixedZone("business", offsetHours*3600),
	}
}

// Now returns the current instant in the business zone.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.offset)
}

// Today returns midnight of the current business day.
func (c *Calendar) Today() time.Time {
	now := c.Now()
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, c.offset)
}

// EndOfToday returns the first instant of the next business day. A payout
// scheduled at any time within today is due before this cutoff.
func (c *Calendar) EndOfToday() time.Time {
	return c.Today().AddDate(0, 0, 1)
}
