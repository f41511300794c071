package web

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	accountStore "yogao/internal/adapters/storage/account"
	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"

	accountDomain "yogao/internal/domain/account"
	attendanceDomain "yogao/internal/domain/attendance"
	"yogao/internal/domain/dates"
	expenseDomain "yogao/internal/domain/expense"
	membershipDomain "yogao/internal/domain/membership"
	scheduleDomain "yogao/internal/domain/schedule"
	studentDomain "yogao/internal/domain/student"
)

// --- Mock stores backing the handlers under test ---

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

func (m *mockAccountStore) GetByID(ctx context.Context, id string) (accountDomain.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) Save(ctx context.Context, a accountDomain.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Delete(ctx context.Context, id string) error {
	delete(m.accounts, id)
	return nil
}

func (m *mockAccountStore) List(ctx context.Context, filter accountStore.ListFilter) ([]accountDomain.Account, error) {
	var list []accountDomain.Account
	for _, a := range m.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		list = append(list, a)
	}
	return list, nil
}

func (m *mockAccountStore) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockStudentStore struct {
	students map[string]studentDomain.Student
}

func (m *mockStudentStore) GetByID(ctx context.Context, id string) (studentDomain.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return studentDomain.Student{}, sql.ErrNoRows
}

func (m *mockStudentStore) GetByNameAndPhone(ctx context.Context, name, phone string) (studentDomain.Student, error) {
	for _, s := range m.students {
		if s.Name == name && s.Phone == phone {
			return s, nil
		}
	}
	return studentDomain.Student{}, sql.ErrNoRows
}

func (m *mockStudentStore) Save(ctx context.Context, s studentDomain.Student) error {
	m.students[s.ID] = s
	return nil
}

func (m *mockStudentStore) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func (m *mockStudentStore) matches(s studentDomain.Student, filter studentStore.ListFilter) bool {
	if filter.Search == "" {
		return true
	}
	return strings.Contains(s.Name, filter.Search) || strings.Contains(s.Phone, filter.Search)
}

func (m *mockStudentStore) List(ctx context.Context, filter studentStore.ListFilter) ([]studentDomain.Student, error) {
	var list []studentDomain.Student
	for _, s := range m.students {
		if m.matches(s, filter) {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if filter.Offset > 0 {
		if filter.Offset >= len(list) {
			return nil, nil
		}
		list = list[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (m *mockStudentStore) Count(ctx context.Context, filter studentStore.ListFilter) (int, error) {
	n := 0
	for _, s := range m.students {
		if m.matches(s, filter) {
			n++
		}
	}
	return n, nil
}

type mockMembershipStore struct {
	memberships map[string]membershipDomain.Membership
}

func (m *mockMembershipStore) GetByID(ctx context.Context, id string) (membershipDomain.Membership, error) {
	if v, ok := m.memberships[id]; ok {
		return v, nil
	}
	return membershipDomain.Membership{}, sql.ErrNoRows
}

func (m *mockMembershipStore) Save(ctx context.Context, v membershipDomain.Membership) error {
	m.memberships[v.ID] = v
	return nil
}

func (m *mockMembershipStore) Delete(ctx context.Context, id string) error {
	delete(m.memberships, id)
	return nil
}

func (m *mockMembershipStore) DeleteByStudentID(ctx context.Context, studentID string) error {
	for id, v := range m.memberships {
		if v.StudentID == studentID {
			delete(m.memberships, id)
		}
	}
	return nil
}

func (m *mockMembershipStore) ListByStudentID(ctx context.Context, studentID string) ([]membershipDomain.Membership, error) {
	var list []membershipDomain.Membership
	for _, v := range m.memberships {
		if v.StudentID == studentID {
			list = append(list, v)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate.Before(list[j].StartDate) })
	return list, nil
}

func (m *mockMembershipStore) List(ctx context.Context, filter membershipStore.ListFilter) ([]membershipDomain.Membership, error) {
	var list []membershipDomain.Membership
	for _, v := range m.memberships {
		if filter.PassID != "" && v.PassID != filter.PassID {
			continue
		}
		if !filter.EndFrom.IsZero() && v.EndDate.Before(filter.EndFrom) {
			continue
		}
		if !filter.EndTo.IsZero() && v.EndDate.After(filter.EndTo) {
			continue
		}
		if !filter.StartFrom.IsZero() && v.StartDate.Before(filter.StartFrom) {
			continue
		}
		if !filter.StartTo.IsZero() && v.StartDate.After(filter.StartTo) {
			continue
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate.Before(list[j].StartDate) })
	return list, nil
}

type mockAttendanceStore struct {
	records map[string]attendanceDomain.Record
}

func (m *mockAttendanceStore) GetByID(ctx context.Context, id string) (attendanceDomain.Record, error) {
	if v, ok := m.records[id]; ok {
		return v, nil
	}
	return attendanceDomain.Record{}, sql.ErrNoRows
}

func (m *mockAttendanceStore) Find(ctx context.Context, studentID string, date time.Time, classSlotID string) (attendanceDomain.Record, error) {
	for _, v := range m.records {
		if v.StudentID == studentID && v.ClassSlotID == classSlotID && dates.SameDay(v.Date, date) {
			return v, nil
		}
	}
	return attendanceDomain.Record{}, sql.ErrNoRows
}

func (m *mockAttendanceStore) Save(ctx context.Context, v attendanceDomain.Record) error {
	m.records[v.ID] = v
	return nil
}

func (m *mockAttendanceStore) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceStore) DeleteByStudentID(ctx context.Context, studentID string) error {
	for id, v := range m.records {
		if v.StudentID == studentID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *mockAttendanceStore) ListByDate(ctx context.Context, date time.Time) ([]attendanceDomain.Record, error) {
	var list []attendanceDomain.Record
	for _, v := range m.records {
		if dates.SameDay(v.Date, date) {
			list = append(list, v)
		}
	}
	return list, nil
}

func (m *mockAttendanceStore) ListByStudentID(ctx context.Context, studentID string) ([]attendanceDomain.Record, error) {
	var list []attendanceDomain.Record
	for _, v := range m.records {
		if v.StudentID == studentID {
			list = append(list, v)
		}
	}
	return list, nil
}

func (m *mockAttendanceStore) ListByDateRange(ctx context.Context, from, to time.Time) ([]attendanceDomain.Record, error) {
	var list []attendanceDomain.Record
	for _, v := range m.records {
		if !v.Date.Before(from) && !v.Date.After(to) {
			list = append(list, v)
		}
	}
	return list, nil
}

type mockScheduleStore struct {
	slots map[string]scheduleDomain.ClassSlot
}

func (m *mockScheduleStore) GetByID(ctx context.Context, id string) (scheduleDomain.ClassSlot, error) {
	if v, ok := m.slots[id]; ok {
		return v, nil
	}
	return scheduleDomain.ClassSlot{}, sql.ErrNoRows
}

func (m *mockScheduleStore) Save(ctx context.Context, v scheduleDomain.ClassSlot) error {
	m.slots[v.ID] = v
	return nil
}

func (m *mockScheduleStore) Delete(ctx context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

func (m *mockScheduleStore) List(ctx context.Context) ([]scheduleDomain.ClassSlot, error) {
	var list []scheduleDomain.ClassSlot
	for _, v := range m.slots {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].DayOfWeek != list[j].DayOfWeek {
			return list[i].DayOfWeek < list[j].DayOfWeek
		}
		return list[i].StartTime < list[j].StartTime
	})
	return list, nil
}

func (m *mockScheduleStore) ListByDay(ctx context.Context, dayOfWeek int) ([]scheduleDomain.ClassSlot, error) {
	var list []scheduleDomain.ClassSlot
	for _, v := range m.slots {
		if v.DayOfWeek == dayOfWeek {
			list = append(list, v)
		}
	}
	return list, nil
}

type mockExpenseStore struct {
	expenses map[string]expenseDomain.Expense
}

func (m *mockExpenseStore) GetByID(ctx context.Context, id string) (expenseDomain.Expense, error) {
	if v, ok := m.expenses[id]; ok {
		return v, nil
	}
	return expenseDomain.Expense{}, sql.ErrNoRows
}

func (m *mockExpenseStore) Save(ctx context.Context, v expenseDomain.Expense) error {
	m.expenses[v.ID] = v
	return nil
}

func (m *mockExpenseStore) Delete(ctx context.Context, id string) error {
	delete(m.expenses, id)
	return nil
}

func (m *mockExpenseStore) List(ctx context.Context, filter expenseStore.ListFilter) ([]expenseDomain.Expense, error) {
	var list []expenseDomain.Expense
	for _, v := range m.expenses {
		if filter.Category != "" && v.Category != filter.Category {
			continue
		}
		if !filter.From.IsZero() && v.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && v.Date.After(filter.To) {
			continue
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	return list, nil
}

// newFullStores returns a Stores with all mock stores initialized.
func newFullStores() *Stores {
	return &Stores{
		AccountStore:    &mockAccountStore{accounts: make(map[string]accountDomain.Account)},
		StudentStore:    &mockStudentStore{students: make(map[string]studentDomain.Student)},
		MembershipStore: &mockMembershipStore{memberships: make(map[string]membershipDomain.Membership)},
		AttendanceStore: &mockAttendanceStore{records: make(map[string]attendanceDomain.Record)},
		ScheduleStore:   &mockScheduleStore{slots: make(map[string]scheduleDomain.ClassSlot)},
		ExpenseStore:    &mockExpenseStore{expenses: make(map[string]expenseDomain.Expense)},
	}
}
