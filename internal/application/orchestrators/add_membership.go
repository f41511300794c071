package orchestrators

import (
	"context"
	"log/slog"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/pass"

	"github.com/google/uuid"
)

// AddMembershipInput carries input for the orchestrator.
type AddMembershipInput struct {
	StudentID         string
	PassID            string
	StartDate         time.Time
	PaymentDate       time.Time
	PaymentMethod     string
	CashReceiptIssued bool
}

// AddMembershipDeps holds dependencies for AddMembership.
type AddMembershipDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	Catalog         *pass.Catalog
}

// AddMembershipResult reports the created membership and whether it was
// chained onto the student's previous pass.
type AddMembershipResult struct {
	MembershipID string
	EndDate      time.Time
	Chained      bool
}

// ExecuteAddMembership purchases a renewal pass for an existing student.
// When the student's latest pass projects an end date later than the new
// start date, the new pass continues from that end date. A long gap falls
// back to computing from the start date.
// PRE: StudentID names an existing student, PassID is in the catalog
// POST: Membership is persisted with the chained or standalone end date
// INVARIANT: Card payments never carry a cash receipt flag
func ExecuteAddMembership(ctx context.Context, input AddMembershipInput, deps AddMembershipDeps) (AddMembershipResult, error) {
	def, err := deps.Catalog.Get(input.PassID)
	if err != nil {
		return AddMembershipResult{}, err
	}
	if input.StartDate.IsZero() {
		return AddMembershipResult{}, membership.ErrEmptyStartDate
	}
	if _, err := deps.StudentStore.GetByID(ctx, input.StudentID); err != nil {
		return AddMembershipResult{}, ErrStudentNotFound
	}

	start := dates.Day(input.StartDate)
	endDate := pass.ComputeEndDate(start, def.Duration)
	chained := false

	existing, err := deps.MembershipStore.ListByStudentID(ctx, input.StudentID)
	if err != nil {
		return AddMembershipResult{}, err
	}
	if latest, ok := latestByEndDate(existing); ok {
		candidate := pass.ComputeEndDate(dates.Day(latest.EndDate), def.Duration)
		if candidate.After(start) {
			endDate = candidate
			chained = true
		}
	}

	m := membership.Membership{
		ID:                uuid.New().String(),
		StudentID:         input.StudentID,
		PassID:            def.ID,
		StartDate:         start,
		EndDate:           endDate,
		Price:             def.Price,
		PaymentDate:       dates.Day(input.PaymentDate),
		PaymentMethod:     input.PaymentMethod,
		CashReceiptIssued: input.CashReceiptIssued,
	}
	m.ClampCashReceipt()
	if err := m.Validate(); err != nil {
		return AddMembershipResult{}, err
	}

	if err := deps.MembershipStore.Save(ctx, m); err != nil {
		return AddMembershipResult{}, err
	}

	slog.Info("membership_added",
		"student_id", input.StudentID,
		"pass_id", def.ID,
		"end_date", dates.Format(endDate),
		"chained", chained,
	)

	return AddMembershipResult{MembershipID: m.ID, EndDate: endDate, Chained: chained}, nil
}

// latestByEndDate returns the membership with the greatest end date.
func latestByEndDate(ms []membership.Membership) (membership.Membership, bool) {
	if len(ms) == 0 {
		return membership.Membership{}, false
	}
	latest := ms[0]
	for _, m := range ms[1:] {
		if m.EndDate.After(latest.EndDate) {
			latest = m
		}
	}
	return latest, true
}
