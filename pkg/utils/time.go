package utils

import (
	"time"
)

// SecondsBetween returns to - from in seconds, negative when from is later.
func SecondsBetween(from, to time.Time) float64 {
	return to.Sub(from).Seconds()
}

// FormatTimestamp formats t as RFC3339 in UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
