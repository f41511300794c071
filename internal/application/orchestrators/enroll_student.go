package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/pass"
	"yogao/internal/domain/student"

	"github.com/google/uuid"
)

// EnrollStudentInput carries input for the orchestrator. The first pass is
// purchased together with the enrollment.
type EnrollStudentInput struct {
	Name              string
	Phone             string
	Remarks           string
	PassID            string
	StartDate         time.Time
	PaymentDate       time.Time
	PaymentMethod     string
	CashReceiptIssued bool
}

// EnrollStudentDeps holds dependencies for EnrollStudent.
type EnrollStudentDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	Catalog         *pass.Catalog
	Now             func() time.Time
}

// EnrollStudentResult reports the created record IDs.
type EnrollStudentResult struct {
	StudentID    string
	MembershipID string
}

// ExecuteEnrollStudent registers a new student with their first membership.
// PRE: Input names a catalog pass and a valid start date
// POST: Student and membership are persisted; membership end date is
// computed from the pass duration; registration date is today
// INVARIANT: Card payments never carry a cash receipt flag
func ExecuteEnrollStudent(ctx context.Context, input EnrollStudentInput, deps EnrollStudentDeps) (EnrollStudentResult, error) {
	def, err := deps.Catalog.Get(input.PassID)
	if err != nil {
		return EnrollStudentResult{}, err
	}
	if input.StartDate.IsZero() {
		return EnrollStudentResult{}, membership.ErrEmptyStartDate
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	s := student.Student{
		ID:               uuid.New().String(),
		Name:             input.Name,
		Phone:            input.Phone,
		RegistrationDate: dates.Day(now()),
		Remarks:          input.Remarks,
	}
	if err := s.Validate(); err != nil {
		return EnrollStudentResult{}, err
	}

	start := dates.Day(input.StartDate)
	m := membership.Membership{
		ID:                uuid.New().String(),
		StudentID:         s.ID,
		PassID:            def.ID,
		StartDate:         start,
		EndDate:           pass.ComputeEndDate(start, def.Duration),
		Price:             def.Price,
		PaymentDate:       dates.Day(input.PaymentDate),
		PaymentMethod:     input.PaymentMethod,
		CashReceiptIssued: input.CashReceiptIssued,
	}
	m.ClampCashReceipt()
	if err := m.Validate(); err != nil {
		return EnrollStudentResult{}, err
	}

	if err := deps.StudentStore.Save(ctx, s); err != nil {
		return EnrollStudentResult{}, err
	}
	if err := deps.MembershipStore.Save(ctx, m); err != nil {
		// Roll back the student so a failed enrollment leaves no orphan.
		if delErr := deps.StudentStore.Delete(ctx, s.ID); delErr != nil {
			slog.Error("enroll_rollback_failed", "student_id", s.ID, "err", delErr)
		}
		return EnrollStudentResult{}, err
	}

	slog.Info("student_enrolled",
		"student_id", s.ID,
		"pass_id", def.ID,
		"start_date", dates.Format(m.StartDate),
		"end_date", dates.Format(m.EndDate),
	)

	return EnrollStudentResult{StudentID: s.ID, MembershipID: m.ID}, nil
}

// ErrStudentNotFound is returned when an operation references a missing student.
var ErrStudentNotFound = errors.New("student not found")
