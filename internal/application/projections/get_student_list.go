package projections

import (
	"context"
	"time"

	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/student"
)

// GetStudentListQuery carries query parameters.
type GetStudentListQuery struct {
	Search string // matches name or phone substring
	Limit  int
	Offset int
}

// StudentWithStatus pairs a student with their classified membership state.
type StudentWithStatus struct {
	Student             student.Student
	Status              membership.Status
	Representative      membership.Membership
	CombinedCoverageEnd time.Time
	Memberships         []membership.Membership
}

// GetStudentListResult carries the query result.
type GetStudentListResult struct {
	Students []StudentWithStatus
	Total    int
}

// GetStudentListDeps holds dependencies for GetStudentList.
type GetStudentListDeps struct {
	StudentStore    StudentStore
	MembershipStore MembershipStore
}

// QueryGetStudentList retrieves students with their membership status.
// Status is recomputed on every read from the stored memberships; nothing
// is cached between requests.
// PRE: today is a calendar day
// POST: Returns students in store order with per-student classification
func QueryGetStudentList(ctx context.Context, today time.Time, query GetStudentListQuery, deps GetStudentListDeps) (GetStudentListResult, error) {
	filter := studentStore.ListFilter{
		Limit:  query.Limit,
		Offset: query.Offset,
		Search: query.Search,
	}
	students, err := deps.StudentStore.List(ctx, filter)
	if err != nil {
		return GetStudentListResult{}, err
	}
	total, err := deps.StudentStore.Count(ctx, filter)
	if err != nil {
		return GetStudentListResult{}, err
	}

	result := make([]StudentWithStatus, 0, len(students))
	for _, s := range students {
		ms, err := deps.MembershipStore.ListByStudentID(ctx, s.ID)
		if err != nil {
			return GetStudentListResult{}, err
		}
		summary := membership.Classify(today, ms)
		result = append(result, StudentWithStatus{
			Student:             s,
			Status:              summary.Status,
			Representative:      summary.Representative,
			CombinedCoverageEnd: summary.CombinedCoverageEnd,
			Memberships:         ms,
		})
	}

	return GetStudentListResult{Students: result, Total: total}, nil
}
