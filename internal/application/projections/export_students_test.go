package projections

import (
	"context"
	"testing"

	"yogao/internal/domain/membership"
	"yogao/internal/domain/pass"
	"yogao/internal/domain/student"
)

func TestQueryExportStudents_OneRowPerMembership(t *testing.T) {
	students := &memStudentStore{students: []student.Student{
		{ID: "s-1", Name: "Kim", Phone: "010-1234-5678",
			RegistrationDate: day(2026, 1, 10), Remarks: "prefers morning classes"},
		{ID: "s-2", Name: "Lee", RegistrationDate: day(2026, 2, 1)},
	}}
	memberships := &memMembershipStore{memberships: []membership.Membership{
		{ID: "m-1", StudentID: "s-1", PassID: pass.Monthly3x,
			StartDate: day(2026, 1, 10), EndDate: day(2026, 2, 8),
			Price: 170000, PaymentDate: day(2026, 1, 10),
			PaymentMethod: membership.PaymentCash, CashReceiptIssued: true},
		{ID: "m-2", StudentID: "s-1", PassID: pass.Monthly3x,
			StartDate: day(2026, 2, 9), EndDate: day(2026, 3, 12),
			Price: 170000, PaymentMethod: membership.PaymentCard,
			HoldStartDate: day(2026, 2, 20), HoldEndDate: day(2026, 2, 23)},
	}}

	rows, err := QueryExportStudents(context.Background(), ExportStudentsDeps{
		StudentStore:    students,
		MembershipStore: memberships,
	})
	if err != nil {
		t.Fatalf("QueryExportStudents: %v", err)
	}

	// Two rows for s-1's memberships plus a bare row for s-2.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	first := rows[0]
	if first.StudentID != "s-1" || first.StudentName != "Kim" || first.StudentPhone != "010-1234-5678" {
		t.Errorf("student fields = %+v", first)
	}
	if first.StudentRegistrationDate != "2026-01-10" {
		t.Errorf("StudentRegistrationDate = %q", first.StudentRegistrationDate)
	}
	if first.MembershipID != "m-1" || first.MembershipPassID != pass.Monthly3x {
		t.Errorf("membership fields = %+v", first)
	}
	if first.MembershipPrice != "170000" || first.MembershipPaymentDate != "2026-01-10" {
		t.Errorf("price/payment = %q/%q", first.MembershipPrice, first.MembershipPaymentDate)
	}
	if first.MembershipCashReceiptIssued != "true" {
		t.Errorf("CashReceiptIssued = %q", first.MembershipCashReceiptIssued)
	}
	if first.MembershipHoldStartDate != "" {
		t.Errorf("hold start = %q, want empty", first.MembershipHoldStartDate)
	}

	second := rows[1]
	if second.MembershipID != "m-2" || second.StudentID != "s-1" {
		t.Errorf("second row = %+v", second)
	}
	if second.MembershipPaymentDate != "" {
		t.Errorf("payment date = %q, want empty", second.MembershipPaymentDate)
	}
	if second.MembershipHoldStartDate != "2026-02-20" || second.MembershipHoldEndDate != "2026-02-23" {
		t.Errorf("hold = %q..%q", second.MembershipHoldStartDate, second.MembershipHoldEndDate)
	}

	bare := rows[2]
	if bare.StudentID != "s-2" || bare.MembershipID != "" || bare.MembershipPassID != "" {
		t.Errorf("bare row = %+v", bare)
	}
}
