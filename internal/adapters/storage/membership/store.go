package membership

import (
	"context"
	"time"

	domain "yogao/internal/domain/membership"
)

// Store persists Membership state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Membership, error)
	Save(ctx context.Context, value domain.Membership) error
	Delete(ctx context.Context, id string) error
	DeleteByStudentID(ctx context.Context, studentID string) error
	ListByStudentID(ctx context.Context, studentID string) ([]domain.Membership, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Membership, error)
}

// ListFilter carries filtering parameters for List operations. Zero-value
// time bounds are ignored.
type ListFilter struct {
	Limit     int
	Offset    int
	PassID    string
	EndFrom   time.Time // end_date >= EndFrom
	EndTo     time.Time // end_date <= EndTo
	StartFrom time.Time // start_date >= StartFrom
	StartTo   time.Time // start_date <= StartTo
}
