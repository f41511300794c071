package attendance

import (
	"context"
	"time"

	domain "yogao/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	Find(ctx context.Context, studentID string, date time.Time, classSlotID string) (domain.Record, error)
	Save(ctx context.Context, value domain.Record) error
	Delete(ctx context.Context, id string) error
	DeleteByStudentID(ctx context.Context, studentID string) error
	ListByDate(ctx context.Context, date time.Time) ([]domain.Record, error)
	ListByStudentID(ctx context.Context, studentID string) ([]domain.Record, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Record, error)
}
