package telemetry

import (
	"fmt"
	"time"
)

// Timestamp layouts. Everything is rendered in UTC so that lexical order
// matches chronological order.
const (
	TimestampLayout = "2006-01-02T15:04:05.000Z"
	TimeLayout      = "15:04:05"
)

const millisPerDay = 24 * 60 * 60 * 1000

// FormatTimestamp renders t as a sortable UTC date-time with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatTime renders the UTC time of day of t.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTimestamp parses a value produced by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// Uptime renders the time elapsed between start and now as
// "<DD> days and <HH:MM:SS> since <start>".
//
// The residual is the signed elapsed milliseconds minus the day count taken
// as a plain number, so it is not the remainder after whole days. For a
// positive uptime the time of day still comes out right to within a
// millisecond; when now precedes start the residual is meaningless.
func Uptime(start, now time.Time) string {
	elapsed := now.UnixMilli() - start.UnixMilli()
	days := abs64(elapsed) / millisPerDay
	residual := elapsed - days

	return fmt.Sprintf("%02d days and %s since %s",
		days,
		FormatTime(time.UnixMilli(residual)),
		FormatTimestamp(start),
	)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
