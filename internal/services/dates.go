package services

import (
	"fmt"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// AddDays returns the calendar date n days after value (n may be negative),
// anchored at midnight in value's location. No timezone conversion happens.
func AddDays(value time.Time, n int) time.Time {
	return DateAtLocation(value, value.Location()).AddDate(0, 0, n)
}

// DaysBetween returns the number of whole calendar days from a to b (b - a),
// truncated toward zero.
func DaysBetween(a time.Time, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func FormatISODate(value time.Time) string {
	return value.Format(isoDateLayout)
}

// ParseISODate parses a strict YYYY-MM-DD date at midnight in the given
// location. Anything else fails with ErrInvalidDate.
func ParseISODate(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	trimmed := strings.TrimSpace(raw)
	parsed, err := time.ParseInLocation(isoDateLayout, trimmed, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, raw)
	}
	return parsed, nil
}

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}
