package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Slot color constants (presentation hint stored with the slot).
const (
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorPurple = "purple"
	ColorOrange = "orange"
	ColorPink   = "pink"
)

// ValidColors contains all valid color values.
var ValidColors = []string{ColorBlue, ColorGreen, ColorPurple, ColorOrange, ColorPink}

// Domain errors
var (
	ErrInvalidDay     = errors.New("day of week must be 1 (Monday) through 7 (Sunday)")
	ErrEmptyStartTime = errors.New("start time cannot be empty")
	ErrEmptyEndTime   = errors.New("end time cannot be empty")
	ErrInvalidColor   = errors.New("color is not a known slot color")
)

// ClassSlot represents a recurring weekly class. Attendance records reference
// a slot together with a concrete calendar date.
type ClassSlot struct {
	ID        string
	Name      string
	DayOfWeek int    // 1 = Monday .. 7 = Sunday
	StartTime string // HH:MM format
	EndTime   string // HH:MM format
	Color     string
}

// Validate checks if the ClassSlot has valid data.
// PRE: ClassSlot struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ClassSlot) Validate() error {
	if c.DayOfWeek < 1 || c.DayOfWeek > 7 {
		return ErrInvalidDay
	}
	if strings.TrimSpace(c.StartTime) == "" {
		return ErrEmptyStartTime
	}
	if strings.TrimSpace(c.EndTime) == "" {
		return ErrEmptyEndTime
	}
	if c.Color != "" && !isValidColor(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

// DurationHours returns the session length in hours.
// PRE: StartTime and EndTime are in HH:MM format
// POST: Returns duration as float64 hours, or error if times can't be parsed
func (c *ClassSlot) DurationHours() (float64, error) {
	start, err := time.Parse("15:04", c.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", c.StartTime, err)
	}
	end, err := time.Parse("15:04", c.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", c.EndTime, err)
	}
	dur := end.Sub(start)
	if dur <= 0 {
		dur += 24 * time.Hour // handle overnight classes
	}
	return dur.Hours(), nil
}

// OccursOn reports whether the slot runs on the given calendar day.
// INVARIANT: ClassSlot fields are not mutated
func (c *ClassSlot) OccursOn(date time.Time) bool {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Go's Sunday is 0, ours is 7
	}
	return weekday == c.DayOfWeek
}

func isValidColor(color string) bool {
	for _, v := range ValidColors {
		if v == color {
			return true
		}
	}
	return false
}
