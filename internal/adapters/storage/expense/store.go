package expense

import (
	"context"
	"time"

	domain "yogao/internal/domain/expense"
)

// Store persists Expense state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Expense, error)
	Save(ctx context.Context, value domain.Expense) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Expense, error)
}

// ListFilter carries filtering parameters for List operations. Zero-value
// time bounds are ignored.
type ListFilter struct {
	Limit    int
	Offset   int
	Category string
	From     time.Time // date >= From
	To       time.Time // date <= To
}
