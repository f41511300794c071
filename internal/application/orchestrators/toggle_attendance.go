package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	attendanceStore "yogao/internal/adapters/storage/attendance"
	scheduleStore "yogao/internal/adapters/storage/schedule"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/attendance"
	"yogao/internal/domain/dates"

	"github.com/google/uuid"
)

// ToggleAttendanceInput carries input for the orchestrator.
type ToggleAttendanceInput struct {
	StudentID   string
	Date        time.Time
	ClassSlotID string
}

// ToggleAttendanceDeps holds dependencies for ToggleAttendance.
type ToggleAttendanceDeps struct {
	StudentStore    studentStore.Store
	AttendanceStore attendanceStore.Store
	ScheduleStore   scheduleStore.Store
}

// ToggleAttendanceResult reports the new presence state.
type ToggleAttendanceResult struct {
	Present  bool
	RecordID string
}

// ExecuteToggleAttendance flips a student's presence mark for one class on
// one day. Marking twice is a no-op pair: present, then absent again.
// PRE: StudentID and ClassSlotID name existing records
// POST: Record exists iff it did not before; Result reports the new state
// INVARIANT: At most one record per (student, date, slot) triple
func ExecuteToggleAttendance(ctx context.Context, input ToggleAttendanceInput, deps ToggleAttendanceDeps) (ToggleAttendanceResult, error) {
	if _, err := deps.StudentStore.GetByID(ctx, input.StudentID); err != nil {
		return ToggleAttendanceResult{}, ErrStudentNotFound
	}
	if _, err := deps.ScheduleStore.GetByID(ctx, input.ClassSlotID); err != nil {
		return ToggleAttendanceResult{}, err
	}

	day := dates.Day(input.Date)

	existing, err := deps.AttendanceStore.Find(ctx, input.StudentID, day, input.ClassSlotID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ToggleAttendanceResult{}, err
	}
	if err == nil {
		if err := deps.AttendanceStore.Delete(ctx, existing.ID); err != nil {
			return ToggleAttendanceResult{}, err
		}
		slog.Info("attendance_unmarked",
			"student_id", input.StudentID,
			"date", dates.Format(day),
			"class_slot_id", input.ClassSlotID,
		)
		return ToggleAttendanceResult{Present: false}, nil
	}

	r := attendance.Record{
		ID:          uuid.New().String(),
		StudentID:   input.StudentID,
		Date:        day,
		ClassSlotID: input.ClassSlotID,
	}
	if err := r.Validate(); err != nil {
		return ToggleAttendanceResult{}, err
	}
	if err := deps.AttendanceStore.Save(ctx, r); err != nil {
		return ToggleAttendanceResult{}, err
	}

	slog.Info("attendance_marked",
		"student_id", input.StudentID,
		"date", dates.Format(day),
		"class_slot_id", input.ClassSlotID,
	)
	return ToggleAttendanceResult{Present: true, RecordID: r.ID}, nil
}
