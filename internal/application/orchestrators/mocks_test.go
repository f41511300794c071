package orchestrators

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"yogao/internal/adapters/email"
	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/account"
	"yogao/internal/domain/attendance"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/expense"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/schedule"
	"yogao/internal/domain/student"
)

// Misses report sql.ErrNoRows, matching the SQLite stores' contract.
var errMockNotFound = sql.ErrNoRows

// memStudentStore is an in-memory studentStore.Store for orchestrator tests.
type memStudentStore struct {
	students map[string]student.Student
	saveErr  error
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{students: make(map[string]student.Student)}
}

func (m *memStudentStore) GetByID(_ context.Context, id string) (student.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return student.Student{}, errMockNotFound
	}
	return s, nil
}

func (m *memStudentStore) GetByNameAndPhone(_ context.Context, name, phone string) (student.Student, error) {
	for _, s := range m.students {
		if s.Name == name && s.Phone == phone {
			return s, nil
		}
	}
	return student.Student{}, errMockNotFound
}

func (m *memStudentStore) Save(_ context.Context, s student.Student) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.students[s.ID] = s
	return nil
}

func (m *memStudentStore) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func (m *memStudentStore) List(_ context.Context, filter studentStore.ListFilter) ([]student.Student, error) {
	var out []student.Student
	for _, s := range m.students {
		if filter.Search != "" && !strings.Contains(s.Name, filter.Search) && !strings.Contains(s.Phone, filter.Search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStudentStore) Count(_ context.Context, filter studentStore.ListFilter) (int, error) {
	all, _ := m.List(context.Background(), filter)
	return len(all), nil
}

// memMembershipStore is an in-memory membershipStore.Store.
type memMembershipStore struct {
	memberships map[string]membership.Membership
	saveErr     error
}

func newMemMembershipStore() *memMembershipStore {
	return &memMembershipStore{memberships: make(map[string]membership.Membership)}
}

func (m *memMembershipStore) GetByID(_ context.Context, id string) (membership.Membership, error) {
	v, ok := m.memberships[id]
	if !ok {
		return membership.Membership{}, errMockNotFound
	}
	return v, nil
}

func (m *memMembershipStore) Save(_ context.Context, v membership.Membership) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.memberships[v.ID] = v
	return nil
}

func (m *memMembershipStore) Delete(_ context.Context, id string) error {
	delete(m.memberships, id)
	return nil
}

func (m *memMembershipStore) DeleteByStudentID(_ context.Context, studentID string) error {
	for id, v := range m.memberships {
		if v.StudentID == studentID {
			delete(m.memberships, id)
		}
	}
	return nil
}

func (m *memMembershipStore) ListByStudentID(_ context.Context, studentID string) ([]membership.Membership, error) {
	var out []membership.Membership
	for _, v := range m.memberships {
		if v.StudentID == studentID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memMembershipStore) List(_ context.Context, filter membershipStore.ListFilter) ([]membership.Membership, error) {
	var out []membership.Membership
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
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// memAttendanceStore is an in-memory attendanceStore.Store.
type memAttendanceStore struct {
	records map[string]attendance.Record
}

func newMemAttendanceStore() *memAttendanceStore {
	return &memAttendanceStore{records: make(map[string]attendance.Record)}
}

func (m *memAttendanceStore) GetByID(_ context.Context, id string) (attendance.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return attendance.Record{}, errMockNotFound
	}
	return r, nil
}

func (m *memAttendanceStore) Find(_ context.Context, studentID string, date time.Time, classSlotID string) (attendance.Record, error) {
	for _, r := range m.records {
		if r.StudentID == studentID && dates.SameDay(r.Date, date) && r.ClassSlotID == classSlotID {
			return r, nil
		}
	}
	return attendance.Record{}, errMockNotFound
}

func (m *memAttendanceStore) Save(_ context.Context, r attendance.Record) error {
	m.records[r.ID] = r
	return nil
}

func (m *memAttendanceStore) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *memAttendanceStore) DeleteByStudentID(_ context.Context, studentID string) error {
	for id, r := range m.records {
		if r.StudentID == studentID {
			delete(m.records, id)
		}
	}
	return nil
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

func (m *memAttendanceStore) ListByStudentID(_ context.Context, studentID string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range m.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAttendanceStore) ListByDateRange(_ context.Context, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range m.records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// memScheduleStore is an in-memory scheduleStore.Store.
type memScheduleStore struct {
	slots map[string]schedule.ClassSlot
}

func newMemScheduleStore() *memScheduleStore {
	return &memScheduleStore{slots: make(map[string]schedule.ClassSlot)}
}

func (m *memScheduleStore) GetByID(_ context.Context, id string) (schedule.ClassSlot, error) {
	s, ok := m.slots[id]
	if !ok {
		return schedule.ClassSlot{}, errMockNotFound
	}
	return s, nil
}

func (m *memScheduleStore) Save(_ context.Context, s schedule.ClassSlot) error {
	m.slots[s.ID] = s
	return nil
}

func (m *memScheduleStore) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

func (m *memScheduleStore) List(_ context.Context) ([]schedule.ClassSlot, error) {
	var out []schedule.ClassSlot
	for _, s := range m.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (m *memScheduleStore) ListByDay(_ context.Context, dayOfWeek int) ([]schedule.ClassSlot, error) {
	var out []schedule.ClassSlot
	for _, s := range m.slots {
		if s.DayOfWeek == dayOfWeek {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// memExpenseStore is an in-memory expenseStore.Store.
type memExpenseStore struct {
	expenses map[string]expense.Expense
}

func newMemExpenseStore() *memExpenseStore {
	return &memExpenseStore{expenses: make(map[string]expense.Expense)}
}

func (m *memExpenseStore) GetByID(_ context.Context, id string) (expense.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return expense.Expense{}, errMockNotFound
	}
	return e, nil
}

func (m *memExpenseStore) Save(_ context.Context, e expense.Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m *memExpenseStore) Delete(_ context.Context, id string) error {
	delete(m.expenses, id)
	return nil
}

func (m *memExpenseStore) List(_ context.Context, filter expenseStore.ListFilter) ([]expense.Expense, error) {
	var out []expense.Expense
	for _, e := range m.expenses {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// mockSender records sent emails.
type mockSender struct {
	sent    []email.SendRequest
	sendErr error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.sendErr != nil {
		return email.SendResult{}, m.sendErr
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "mock-1", SentAt: time.Now()}, nil
}

func (m *mockSender) SendBatch(_ context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	var out []email.SendResult
	for _, req := range reqs {
		r, err := m.Send(context.Background(), req)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// memAccountStore is an in-memory account store for the auth orchestrators.
type memAccountStore struct {
	accounts map[string]account.Account
	saveErr  error
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]account.Account)}
}

func (m *memAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errMockNotFound
	}
	return a, nil
}

func (m *memAccountStore) GetByEmail(_ context.Context, addr string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == addr {
			return a, nil
		}
	}
	return account.Account{}, errMockNotFound
}

func (m *memAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *memAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// day is shorthand for a UTC calendar date in tests.
func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
