// Package membership holds the studio's core billing-window concept: a
// purchased, dated access window per student, with optional hold (pause)
// intervals and the status classification every view depends on.
package membership

import (
	"errors"
	"time"

	"yogao/internal/domain/dates"
)

// Payment method constants
const (
	PaymentCard = "card"
	PaymentCash = "cash"
)

// Domain errors
var (
	ErrEmptyStudentID       = errors.New("membership must reference a student")
	ErrEmptyPassID          = errors.New("membership must reference a pass")
	ErrEmptyStartDate       = errors.New("start date cannot be zero")
	ErrEndBeforeStart       = errors.New("end date cannot be before start date")
	ErrHalfHold             = errors.New("hold start and end dates must be set together")
	ErrInvalidPayment       = errors.New("payment method must be 'card' or 'cash'")
	ErrReceiptWithoutCash   = errors.New("cash receipt flag requires cash payment")
	ErrHoldEndBeforeStart   = errors.New("hold end date cannot be before hold start date")
)

// Membership is one purchased access window. A student may hold several
// (renewal history is retained); EndDate is derived from the pass duration
// and any hold but stored denormalized for fast reads.
type Membership struct {
	ID                string
	StudentID         string
	PassID            string
	StartDate         time.Time
	EndDate           time.Time
	Price             int // snapshot of the catalog price at purchase/edit time
	PaymentDate       time.Time
	PaymentMethod     string // card or cash
	CashReceiptIssued bool   // meaningful only for cash payments
	HoldStartDate     time.Time // zero when no hold
	HoldEndDate       time.Time // zero when no hold
}

// Validate checks if the Membership has valid data.
// PRE: Membership struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Membership) Validate() error {
	if m.StudentID == "" {
		return ErrEmptyStudentID
	}
	if m.PassID == "" {
		return ErrEmptyPassID
	}
	if m.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if m.EndDate.Before(m.StartDate) {
		return ErrEndBeforeStart
	}
	if m.HoldStartDate.IsZero() != m.HoldEndDate.IsZero() {
		return ErrHalfHold
	}
	if m.HasHold() && m.HoldEndDate.Before(m.HoldStartDate) {
		return ErrHoldEndBeforeStart
	}
	if m.PaymentMethod != PaymentCard && m.PaymentMethod != PaymentCash {
		return ErrInvalidPayment
	}
	if m.CashReceiptIssued && m.PaymentMethod != PaymentCash {
		return ErrReceiptWithoutCash
	}
	return nil
}

// HasHold reports whether a hold interval is set.
func (m *Membership) HasHold() bool {
	return !m.HoldStartDate.IsZero() && !m.HoldEndDate.IsZero()
}

// HoldingOn reports whether the membership is paused on the given day.
// INVARIANT: Membership fields are not mutated
func (m *Membership) HoldingOn(date time.Time) bool {
	if !m.HasHold() {
		return false
	}
	d := dates.Day(date)
	start := dates.Day(m.HoldStartDate)
	end := dates.Day(m.HoldEndDate)
	if end.Before(start) {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// Contains reports whether the given day falls inside the coverage window.
// INVARIANT: Membership fields are not mutated
func (m *Membership) Contains(date time.Time) bool {
	d := dates.Day(date)
	start := dates.Day(m.StartDate)
	end := dates.Day(m.EndDate)
	return !d.Before(start) && !d.After(end)
}

// ClampCashReceipt forces the receipt flag off for non-cash payments.
// POST: CashReceiptIssued is false unless PaymentMethod is cash
func (m *Membership) ClampCashReceipt() {
	if m.PaymentMethod != PaymentCash {
		m.CashReceiptIssued = false
	}
}

// ApplyHold extends a base end date by the inclusive length of a hold
// interval. An absent or inverted interval leaves the base end unchanged —
// that is a defensive default, not a validation failure. Callers must pass
// a freshly derived base end (from the pass duration), never a previously
// adjusted stored end date, so repeated edits cannot compound the extension.
// INVARIANT: pure — same inputs always yield the same output
func ApplyHold(baseEnd, holdStart, holdEnd time.Time) time.Time {
	if holdStart.IsZero() || holdEnd.IsZero() {
		return baseEnd
	}
	start := dates.Day(holdStart)
	end := dates.Day(holdEnd)
	if end.Before(start) {
		return baseEnd
	}
	days := dates.DaysBetween(start, end) + 1
	return dates.Day(baseEnd).AddDate(0, 0, days)
}
