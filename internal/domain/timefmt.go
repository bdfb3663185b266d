package domain

import (
	"fmt"
	"time"
)

// AbsoluteTimeLayout renders as "2025-08-27 01:23".
const AbsoluteTimeLayout = "2006-01-02 15:04"

// FormatAbsoluteTime formats epoch millis in the local display timezone.
func FormatAbsoluteTime(epochMillis int64) string {
	return FormatAbsoluteTimeIn(epochMillis, time.Local)
}

// FormatAbsoluteTimeIn formats epoch millis in loc. A nil loc means UTC.
func FormatAbsoluteTimeIn(epochMillis int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(epochMillis).In(loc).Format(AbsoluteTimeLayout)
}

// FormatRelativeTime renders the distance between an event and now, e.g.
// "just now", "42s ago", "12m ago", "3h from now", "2d ago". Units are floored.
func FormatRelativeTime(epochMillis, nowMillis int64) string {
	diff := nowMillis - epochMillis
	direction := "ago"
	if diff < 0 {
		direction = "from now"
		diff = -diff
	}
	s := diff / 1000

	switch {
	case s < 5:
		return "just now"
	case s < 60:
		return fmt.Sprintf("%ds %s", s, direction)
	case s < 3600:
		return fmt.Sprintf("%dm %s", s/60, direction)
	case s < 86400:
		return fmt.Sprintf("%dh %s", s/3600, direction)
	default:
		return fmt.Sprintf("%dd %s", s/86400, direction)
	}
}

// FormatRelativeTimeNow is FormatRelativeTime against the package clock.
func FormatRelativeTimeNow(epochMillis int64) string {
	return FormatRelativeTime(epochMillis, NowMillis())
}
