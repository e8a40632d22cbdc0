package model

import (
	"time"

	"k8s.io/utils/clock"
)

// NowFunc returns the default-value function for timezone-aware
// timestamps: the clock's current instant expressed in loc. A nil clock
// uses the real clock and a nil loc means time.Local.
func NowFunc(c clock.PassiveClock, loc *time.Location) func() time.Time {
	if c == nil {
		c = clock.RealClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time {
		return c.Now().In(loc)
	}
}

// MakeAware interprets a naive wall-clock value (its own location is
// ignored) as a time in loc.
func MakeAware(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
