package projections

import (
	"context"
	"strconv"

	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/membership"
)

// ExportRow is one flat student-membership pair in the exchange format the
// import reconciler reads back. All fields are strings; empty membership
// fields mean the student has no membership.
type ExportRow struct {
	StudentID               string
	StudentName             string
	StudentPhone            string
	StudentRegistrationDate string
	StudentRemarks          string

	MembershipID                string
	MembershipPassID            string
	MembershipStartDate         string
	MembershipEndDate           string
	MembershipPrice             string
	MembershipPaymentDate       string
	MembershipPaymentMethod     string
	MembershipCashReceiptIssued string
	MembershipHoldStartDate     string
	MembershipHoldEndDate       string
}

// ExportStudentsDeps holds dependencies for ExportStudents.
type ExportStudentsDeps struct {
	StudentStore    StudentStore
	MembershipStore MembershipStore
}

// QueryExportStudents flattens every student into exchange rows: one row
// per membership, or a single membership-less row for students without
// one. Stored end dates and prices are exported as-is.
// POST: Re-importing the rows reproduces the same students and memberships
func QueryExportStudents(ctx context.Context, deps ExportStudentsDeps) ([]ExportRow, error) {
	students, err := deps.StudentStore.List(ctx, studentStore.ListFilter{})
	if err != nil {
		return nil, err
	}

	var rows []ExportRow
	for _, s := range students {
		base := ExportRow{
			StudentID:               s.ID,
			StudentName:             s.Name,
			StudentPhone:            s.Phone,
			StudentRegistrationDate: dates.Format(s.RegistrationDate),
			StudentRemarks:          s.Remarks,
		}

		ms, err := deps.MembershipStore.ListByStudentID(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		if len(ms) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, m := range ms {
			row := base
			fillMembership(&row, m)
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func fillMembership(row *ExportRow, m membership.Membership) {
	row.MembershipID = m.ID
	row.MembershipPassID = m.PassID
	row.MembershipStartDate = dates.Format(m.StartDate)
	row.MembershipEndDate = dates.Format(m.EndDate)
	row.MembershipPrice = strconv.Itoa(m.Price)
	row.MembershipPaymentMethod = m.PaymentMethod
	row.MembershipCashReceiptIssued = strconv.FormatBool(m.CashReceiptIssued)
	if !m.PaymentDate.IsZero() {
		row.MembershipPaymentDate = dates.Format(m.PaymentDate)
	}
	if m.HasHold() {
		row.MembershipHoldStartDate = dates.Format(m.HoldStartDate)
		row.MembershipHoldEndDate = dates.Format(m.HoldEndDate)
	}
}
