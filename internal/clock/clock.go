// Package clock provides the single source of "now" for service calls. Core
// packages never read the system clock; callers read it once and pass it down.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Used by tests and the --today flag.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }

// Resolve returns *override when set, otherwise c.Now().
func Resolve(c Clock, override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	if c == nil {
		return System{}.Now()
	}
	return c.Now()
}
