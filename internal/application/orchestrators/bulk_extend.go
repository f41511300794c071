package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
)

// Domain errors
var (
	ErrInvalidExtension = errors.New("extension days must be positive")
	ErrEmptyReason      = errors.New("extension reason cannot be empty")
)

// BulkExtendInput carries input for the orchestrator.
type BulkExtendInput struct {
	Days   int
	Reason string
}

// BulkExtendDeps holds dependencies for BulkExtend.
type BulkExtendDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	Now             func() time.Time
}

// BulkExtendResult reports how many students were extended.
type BulkExtendResult struct {
	StudentsAffected    int
	MembershipsExtended int
}

// ExecuteBulkExtend pushes out membership end dates for every currently
// active student, e.g. after a studio closure. A student qualifies when any
// of their memberships ends today or later and is not on hold today; all
// memberships of a qualifying student are extended.
// PRE: Days > 0, Reason is non-empty
// POST: Qualifying students' memberships extended by Days; one remark line
// appended per student
// INVARIANT: Students with no active membership are untouched
func ExecuteBulkExtend(ctx context.Context, input BulkExtendInput, deps BulkExtendDeps) (BulkExtendResult, error) {
	if input.Days <= 0 {
		return BulkExtendResult{}, ErrInvalidExtension
	}
	if input.Reason == "" {
		return BulkExtendResult{}, ErrEmptyReason
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	today := dates.Day(now())

	all, err := deps.MembershipStore.List(ctx, membershipStore.ListFilter{})
	if err != nil {
		return BulkExtendResult{}, err
	}

	qualifying := make(map[string]bool)
	for _, m := range all {
		if !dates.Day(m.EndDate).Before(today) && !m.HoldingOn(today) {
			qualifying[m.StudentID] = true
		}
	}
	if len(qualifying) == 0 {
		return BulkExtendResult{}, nil
	}

	result := BulkExtendResult{StudentsAffected: len(qualifying)}
	for _, m := range all {
		if !qualifying[m.StudentID] {
			continue
		}
		m.EndDate = m.EndDate.AddDate(0, 0, input.Days)
		if err := deps.MembershipStore.Save(ctx, m); err != nil {
			return result, err
		}
		result.MembershipsExtended++
	}

	remark := fmt.Sprintf("[%s] Extended %d days: %s", dates.Format(today), input.Days, input.Reason)
	for studentID := range qualifying {
		s, err := deps.StudentStore.GetByID(ctx, studentID)
		if err != nil {
			slog.Error("bulk_extend_remark_failed", "student_id", studentID, "err", err)
			continue
		}
		s.AppendRemark(remark)
		if err := deps.StudentStore.Save(ctx, s); err != nil {
			return result, err
		}
	}

	slog.Info("bulk_extend",
		"days", input.Days,
		"students", result.StudentsAffected,
		"memberships", result.MembershipsExtended,
	)
	return result, nil
}
