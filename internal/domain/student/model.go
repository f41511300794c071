package student

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrEmptyName            = errors.New("student name cannot be empty")
	ErrNameTooLong          = errors.New("student name cannot exceed 100 characters")
	ErrEmptyRegistrationDay = errors.New("registration date cannot be zero")
)

// Student holds state for the Student concept. Deleting a student cascades
// to their memberships and attendance records.
type Student struct {
	ID               string
	Name             string
	Phone            string
	RegistrationDate time.Time // set once at creation, never changed automatically
	Remarks          string    // free text; automated processes only append
}

// Validate checks if the Student has valid data.
// PRE: Student struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if s.RegistrationDate.IsZero() {
		return ErrEmptyRegistrationDay
	}
	return nil
}

// AppendRemark adds a line to the remarks trail, preserving existing text.
// PRE: line is non-empty
// POST: Remarks ends with line; prior remarks are newline-separated above it
func (s *Student) AppendRemark(line string) {
	if line == "" {
		return
	}
	if s.Remarks == "" {
		s.Remarks = line
		return
	}
	s.Remarks = s.Remarks + "\n" + line
}
