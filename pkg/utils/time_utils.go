package utils

import (
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04"
)

// ParseDate parses a calendar date in YYYY-MM-DD format.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseTimeOfDay validates a wall-clock time in HH:MM format and returns it
// normalized. The value is stored as-is in a TIME column.
func ParseTimeOfDay(value string) (string, error) {
	t, err := time.Parse(timeOfDayLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return t.Format(timeOfDayLayout), nil
}

// FormatTime formats a timestamp in ISO 8601 format.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses an ISO 8601 formatted timestamp.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
