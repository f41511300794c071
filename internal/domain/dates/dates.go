// Package dates holds calendar-day parsing and arithmetic shared by the
// membership engine. All computations are local calendar days; time of day
// and timezone offsets are stripped on entry.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical calendar-date format used in storage and transport.
const Layout = "2006-01-02"

// ErrInvalidDate is returned when a date field cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Day strips the time-of-day component, leaving midnight UTC on the same
// calendar day.
// INVARIANT: Day(Day(t)) == Day(t)
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD calendar date. Full timestamps (RFC 3339) are
// accepted by taking their date part, since imported rows may carry either.
// POST: Returns midnight UTC on the parsed day, or ErrInvalidDate
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i == len(Layout) {
		s = s[:i]
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Format renders a date in the canonical layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
