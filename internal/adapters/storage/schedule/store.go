package schedule

import (
	"context"

	domain "yogao/internal/domain/schedule"
)

// Store persists ClassSlot state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.ClassSlot, error)
	Save(ctx context.Context, value domain.ClassSlot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.ClassSlot, error)
	ListByDay(ctx context.Context, dayOfWeek int) ([]domain.ClassSlot, error)
}
