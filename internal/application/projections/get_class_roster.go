package projections

import (
	"context"
	"errors"
	"sort"
	"time"

	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/schedule"
	"yogao/internal/domain/student"
)

var ErrClassSlotNotFound = errors.New("class slot not found")

// RosterEntry is one eligible student on the roster with their attendance
// state for the slot.
type RosterEntry struct {
	Student  student.Student
	Present  bool
	RecordID string // attendance record id when Present
}

// GetClassRosterQuery carries query parameters.
type GetClassRosterQuery struct {
	Date        time.Time
	ClassSlotID string
}

// GetClassRosterDeps holds dependencies for GetClassRoster.
type GetClassRosterDeps struct {
	StudentStore    StudentStore
	MembershipStore MembershipStore
	AttendanceStore AttendanceStore
	ScheduleStore   ScheduleStore
}

// GetClassRosterResult carries the query result.
type GetClassRosterResult struct {
	Slot     schedule.ClassSlot
	Eligible []RosterEntry // sorted by student name
}

// QueryGetClassRoster lists the students who may attend a class on a date:
// those with a membership covering the date who are not on hold that day,
// each flagged with whether they are already marked present.
// PRE: ClassSlotID references an existing slot
// POST: Eligible is sorted by student name; Present reflects stored records
func QueryGetClassRoster(ctx context.Context, query GetClassRosterQuery, deps GetClassRosterDeps) (GetClassRosterResult, error) {
	slot, err := deps.ScheduleStore.GetByID(ctx, query.ClassSlotID)
	if err != nil {
		return GetClassRosterResult{}, ErrClassSlotNotFound
	}
	date := dates.Day(query.Date)

	students, err := deps.StudentStore.List(ctx, studentStore.ListFilter{})
	if err != nil {
		return GetClassRosterResult{}, err
	}

	records, err := deps.AttendanceStore.ListByDate(ctx, date)
	if err != nil {
		return GetClassRosterResult{}, err
	}
	presentByStudent := make(map[string]string)
	for _, r := range records {
		if r.ClassSlotID == query.ClassSlotID {
			presentByStudent[r.StudentID] = r.ID
		}
	}

	var eligible []RosterEntry
	for _, s := range students {
		ms, err := deps.MembershipStore.ListByStudentID(ctx, s.ID)
		if err != nil {
			return GetClassRosterResult{}, err
		}
		covered := false
		for _, m := range ms {
			if m.Contains(date) && !m.HoldingOn(date) {
				covered = true
				break
			}
		}
		if !covered {
			continue
		}
		entry := RosterEntry{Student: s}
		if id, ok := presentByStudent[s.ID]; ok {
			entry.Present = true
			entry.RecordID = id
		}
		eligible = append(eligible, entry)
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].Student.Name < eligible[j].Student.Name
	})

	return GetClassRosterResult{Slot: slot, Eligible: eligible}, nil
}
