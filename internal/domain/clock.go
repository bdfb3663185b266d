package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package-level time source behind "now" in relative time
// formatting. Tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// NowMillis returns the current time from the package clock in epoch milliseconds.
func NowMillis() int64 {
	return clock.Now().UnixMilli()
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}
