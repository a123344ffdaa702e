package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BusinessLocation is the fixed timezone used for every day boundary and
// threshold comparison (IST, UTC+05:30), independent of the client locale.
var BusinessLocation = time.FixedZone("IST", 5*60*60+30*60)

const DateLayout = "2006-01-02"

// BusinessDate returns midnight of t's business day.
func BusinessDate(t time.Time) time.Time {
	local := t.In(BusinessLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, BusinessLocation)
}

// DayRange returns the half-open interval [start, end) of t's business day.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := BusinessDate(t)
	return start, start.AddDate(0, 0, 1)
}

// ParseBusinessDate parses YYYY-MM-DD as a business-local midnight.
func ParseBusinessDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, BusinessLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseClock parses an "HH:mm" (or "HH:mm:ss") wall-clock value into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q: expected HH:mm", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock %q: bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock %q: bad minute", s)
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as HH:mm.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
