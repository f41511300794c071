package projections

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/attendance"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/expense"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/schedule"
	"yogao/internal/domain/student"
)

var errMockNotFound = errors.New("not found")

// memStudentStore is an in-memory StudentStore for projection tests.
type memStudentStore struct {
	students []student.Student
}

func (m *memStudentStore) GetByID(_ context.Context, id string) (student.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			return s, nil
		}
	}
	return student.Student{}, errMockNotFound
}

func (m *memStudentStore) List(_ context.Context, filter studentStore.ListFilter) ([]student.Student, error) {
	var out []student.Student
	for _, s := range m.students {
		if filter.Search != "" &&
			!strings.Contains(s.Name, filter.Search) &&
			!strings.Contains(s.Phone, filter.Search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStudentStore) Count(ctx context.Context, filter studentStore.ListFilter) (int, error) {
	ss, err := m.List(ctx, filter)
	return len(ss), err
}

// memMembershipStore is an in-memory MembershipStore for projection tests.
type memMembershipStore struct {
	memberships []membership.Membership
}

func (m *memMembershipStore) ListByStudentID(_ context.Context, studentID string) ([]membership.Membership, error) {
	var out []membership.Membership
	for _, ms := range m.memberships {
		if ms.StudentID == studentID {
			out = append(out, ms)
		}
	}
	return out, nil
}

func (m *memMembershipStore) List(_ context.Context, _ membershipStore.ListFilter) ([]membership.Membership, error) {
	return m.memberships, nil
}

// memAttendanceStore is an in-memory AttendanceStore for projection tests.
type memAttendanceStore struct {
	records []attendance.Record
}

func (m *memAttendanceStore) ListByDate(_ context.Context, date time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range m.records {
		if dates.SameDay(r.Date, date) {
			out = append(out, r)
		}
	}
	return out, nil
}

// memScheduleStore is an in-memory ScheduleStore for projection tests.
type memScheduleStore struct {
	slots []schedule.ClassSlot
}

func (m *memScheduleStore) GetByID(_ context.Context, id string) (schedule.ClassSlot, error) {
	for _, c := range m.slots {
		if c.ID == id {
			return c, nil
		}
	}
	return schedule.ClassSlot{}, errMockNotFound
}

func (m *memScheduleStore) List(_ context.Context) ([]schedule.ClassSlot, error) {
	return m.slots, nil
}

// memExpenseStore is an in-memory ExpenseStore for projection tests.
type memExpenseStore struct {
	expenses []expense.Expense
}

func (m *memExpenseStore) List(_ context.Context, filter expenseStore.ListFilter) ([]expense.Expense, error) {
	var out []expense.Expense
	for _, e := range m.expenses {
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// day is shorthand for a UTC calendar date in tests.
func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
