package projections

import (
	"context"
	"time"

	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/attendance"
	"yogao/internal/domain/expense"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/schedule"
	"yogao/internal/domain/student"
)

// StudentStore interface for student queries.
type StudentStore interface {
	GetByID(ctx context.Context, id string) (student.Student, error)
	List(ctx context.Context, filter studentStore.ListFilter) ([]student.Student, error)
	Count(ctx context.Context, filter studentStore.ListFilter) (int, error)
}

// MembershipStore interface for membership queries.
type MembershipStore interface {
	ListByStudentID(ctx context.Context, studentID string) ([]membership.Membership, error)
	List(ctx context.Context, filter membershipStore.ListFilter) ([]membership.Membership, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error)
}

// ScheduleStore interface for class slot queries.
type ScheduleStore interface {
	GetByID(ctx context.Context, id string) (schedule.ClassSlot, error)
	List(ctx context.Context) ([]schedule.ClassSlot, error)
}

// ExpenseStore interface for expense queries.
type ExpenseStore interface {
	List(ctx context.Context, filter expenseStore.ListFilter) ([]expense.Expense, error)
}
