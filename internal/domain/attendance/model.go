package attendance

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyStudentID = errors.New("attendance must reference a student")
	ErrEmptyClassSlot = errors.New("attendance must reference a class slot")
	ErrEmptyDate      = errors.New("attendance date cannot be zero")
)

// Record marks that a student attended one class slot on one day. Records
// are toggled into and out of existence — presence is the flag, there is no
// counter to increment.
type Record struct {
	ID          string
	StudentID   string
	Date        time.Time // calendar day
	ClassSlotID string
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Record) Validate() error {
	if r.StudentID == "" {
		return ErrEmptyStudentID
	}
	if r.ClassSlotID == "" {
		return ErrEmptyClassSlot
	}
	if r.Date.IsZero() {
		return ErrEmptyDate
	}
	return nil
}
