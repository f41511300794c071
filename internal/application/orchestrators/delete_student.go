package orchestrators

import (
	"context"
	"log/slog"

	attendanceStore "yogao/internal/adapters/storage/attendance"
	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
)

// DeleteStudentDeps holds dependencies for DeleteStudent.
type DeleteStudentDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	AttendanceStore attendanceStore.Store
}

// ExecuteDeleteStudent removes a student together with all their memberships
// and attendance records.
// PRE: studentID names an existing student
// POST: Student, memberships, and attendance rows are gone
// INVARIANT: No other student's records are touched
func ExecuteDeleteStudent(ctx context.Context, studentID string, deps DeleteStudentDeps) error {
	if _, err := deps.StudentStore.GetByID(ctx, studentID); err != nil {
		return ErrStudentNotFound
	}

	// Explicit deletes keep behavior identical when FK cascades are off
	// (e.g. in-memory test stores).
	if err := deps.MembershipStore.DeleteByStudentID(ctx, studentID); err != nil {
		return err
	}
	if err := deps.AttendanceStore.DeleteByStudentID(ctx, studentID); err != nil {
		return err
	}
	if err := deps.StudentStore.Delete(ctx, studentID); err != nil {
		return err
	}

	slog.Info("student_deleted", "student_id", studentID)
	return nil
}
