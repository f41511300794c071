package membership_test

import (
	"testing"
	"time"

	"yogao/internal/domain/membership"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validMembership() membership.Membership {
	return membership.Membership{
		ID:            "m1",
		StudentID:     "s1",
		PassID:        "monthly-3x",
		StartDate:     date(2024, 1, 1),
		EndDate:       date(2024, 1, 30),
		Price:         170000,
		PaymentDate:   date(2024, 1, 1),
		PaymentMethod: membership.PaymentCard,
	}
}

// TestMembership_Validate tests the invariants on Membership.
func TestMembership_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*membership.Membership)
		wantErr error
	}{
		{"valid", func(m *membership.Membership) {}, nil},
		{"missing student", func(m *membership.Membership) { m.StudentID = "" }, membership.ErrEmptyStudentID},
		{"missing pass", func(m *membership.Membership) { m.PassID = "" }, membership.ErrEmptyPassID},
		{"zero start", func(m *membership.Membership) { m.StartDate = time.Time{}; m.EndDate = time.Time{} }, membership.ErrEmptyStartDate},
		{"end before start", func(m *membership.Membership) { m.EndDate = date(2023, 12, 31) }, membership.ErrEndBeforeStart},
		{"half hold", func(m *membership.Membership) { m.HoldStartDate = date(2024, 1, 5) }, membership.ErrHalfHold},
		{"inverted hold", func(m *membership.Membership) {
			m.HoldStartDate = date(2024, 1, 10)
			m.HoldEndDate = date(2024, 1, 5)
		}, membership.ErrHoldEndBeforeStart},
		{"bad payment method", func(m *membership.Membership) { m.PaymentMethod = "cheque" }, membership.ErrInvalidPayment},
		{"receipt with card", func(m *membership.Membership) { m.CashReceiptIssued = true }, membership.ErrReceiptWithoutCash},
		{"receipt with cash ok", func(m *membership.Membership) {
			m.PaymentMethod = membership.PaymentCash
			m.CashReceiptIssued = true
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMembership()
			tt.mutate(&m)
			if err := m.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestApplyHold tests hold-interval extension of a base end date.
func TestApplyHold(t *testing.T) {
	base := date(2024, 3, 31)

	tests := []struct {
		name                string
		holdStart, holdEnd  time.Time
		want                time.Time
	}{
		{"no hold", time.Time{}, time.Time{}, base},
		{"only start set", date(2024, 3, 1), time.Time{}, base},
		{"single day hold", date(2024, 3, 10), date(2024, 3, 10), date(2024, 4, 1)},
		{"week hold inclusive", date(2024, 3, 1), date(2024, 3, 7), date(2024, 4, 7)},
		{"inverted hold ignored", date(2024, 3, 10), date(2024, 3, 5), base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := membership.ApplyHold(base, tt.holdStart, tt.holdEnd)
			if !got.Equal(tt.want) {
				t.Errorf("ApplyHold() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestApplyHold_Idempotent verifies repeated application against a freshly
// derived base yields the same result — extensions never compound.
func TestApplyHold_Idempotent(t *testing.T) {
	base := date(2024, 3, 31)
	holdStart := date(2024, 3, 1)
	holdEnd := date(2024, 3, 7)

	first := membership.ApplyHold(base, holdStart, holdEnd)
	second := membership.ApplyHold(base, holdStart, holdEnd)
	if !first.Equal(second) {
		t.Errorf("ApplyHold not idempotent against a fresh base: %v != %v", first, second)
	}
}

// TestMembership_HoldingOn tests the hold-day check.
func TestMembership_HoldingOn(t *testing.T) {
	m := validMembership()
	m.HoldStartDate = date(2024, 1, 10)
	m.HoldEndDate = date(2024, 1, 15)

	tests := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"before hold", date(2024, 1, 9), false},
		{"first hold day", date(2024, 1, 10), true},
		{"inside hold", date(2024, 1, 12), true},
		{"last hold day", date(2024, 1, 15), true},
		{"after hold", date(2024, 1, 16), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.HoldingOn(tt.day); got != tt.want {
				t.Errorf("HoldingOn(%v) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}

	noHold := validMembership()
	if noHold.HoldingOn(date(2024, 1, 12)) {
		t.Error("HoldingOn() = true for membership without hold")
	}
}

// TestMembership_ClampCashReceipt tests the card/receipt invariant.
func TestMembership_ClampCashReceipt(t *testing.T) {
	m := validMembership()
	m.PaymentMethod = membership.PaymentCard
	m.CashReceiptIssued = true
	m.ClampCashReceipt()
	if m.CashReceiptIssued {
		t.Error("ClampCashReceipt() left receipt true for card payment")
	}

	m.PaymentMethod = membership.PaymentCash
	m.CashReceiptIssued = true
	m.ClampCashReceipt()
	if !m.CashReceiptIssued {
		t.Error("ClampCashReceipt() cleared receipt for cash payment")
	}
}
