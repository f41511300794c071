package orchestrators

import (
	"context"
	"log/slog"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/pass"
)

// StudentPatch carries optional student field updates. Nil means unchanged.
type StudentPatch struct {
	Name             *string
	Phone            *string
	Remarks          *string
	RegistrationDate *time.Time
}

// UpdateStudentInput carries input for the orchestrator. MembershipID is
// optional: when set, the membership patch is applied alongside the student
// edit; when empty, only the student fields change.
type UpdateStudentInput struct {
	StudentID    string
	MembershipID string
	Student      StudentPatch
	Membership   MembershipPatch
}

// UpdateStudentDeps holds dependencies for UpdateStudent.
type UpdateStudentDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	Catalog         *pass.Catalog
}

// ExecuteUpdateStudent edits a student and, optionally, one of their
// memberships in a single operation. The membership edit delegates to
// ExecuteUpdateMembership with an ownership check against StudentID.
// PRE: StudentID names an existing student
// POST: Patched fields persisted; membership end date recomputed when edited
func ExecuteUpdateStudent(ctx context.Context, input UpdateStudentInput, deps UpdateStudentDeps) error {
	s, err := deps.StudentStore.GetByID(ctx, input.StudentID)
	if err != nil {
		return ErrStudentNotFound
	}

	if input.Student.Name != nil {
		s.Name = *input.Student.Name
	}
	if input.Student.Phone != nil {
		s.Phone = *input.Student.Phone
	}
	if input.Student.Remarks != nil {
		s.Remarks = *input.Student.Remarks
	}
	if input.Student.RegistrationDate != nil {
		s.RegistrationDate = dates.Day(*input.Student.RegistrationDate)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if input.MembershipID != "" {
		err := ExecuteUpdateMembership(ctx, UpdateMembershipInput{
			StudentID:    input.StudentID,
			MembershipID: input.MembershipID,
			Patch:        input.Membership,
		}, UpdateMembershipDeps{
			MembershipStore: deps.MembershipStore,
			Catalog:         deps.Catalog,
		})
		if err != nil {
			return err
		}
	}

	if err := deps.StudentStore.Save(ctx, s); err != nil {
		return err
	}

	slog.Info("student_updated",
		"student_id", s.ID,
		"membership_id", input.MembershipID,
	)
	return nil
}
