package expense

import (
	"context"
	"database/sql"
	"fmt"

	"yogao/internal/adapters/storage"
	"yogao/internal/domain/dates"
	domain "yogao/internal/domain/expense"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ExpenseStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const expenseColumns = "id, date, category, description, amount"

// GetByID retrieves an Expense by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expense WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Expense{}, fmt.Errorf("expense not found: %w", err)
	}
	return entity, err
}

// Save persists an Expense to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Expense) error {
	query := `INSERT INTO expense (id, date, category, description, amount) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date=excluded.date, category=excluded.category,
		description=excluded.description, amount=excluded.amount`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		dates.Format(entity.Date),
		entity.Category,
		entity.Description,
		entity.Amount,
	)
	return err
}

// Delete removes an Expense from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM expense WHERE id = ?", id)
	return err
}

// List retrieves Expenses based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Expense, error) {
	where := " WHERE 1=1"
	var args []any

	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}
	if !filter.From.IsZero() {
		where += " AND date >= ?"
		args = append(args, dates.Format(filter.From))
	}
	if !filter.To.IsZero() {
		where += " AND date <= ?"
		args = append(args, dates.Format(filter.To))
	}

	query := "SELECT " + expenseColumns + " FROM expense" + where + " ORDER BY date DESC, id ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Expense
	for rows.Next() {
		entity, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanExpense extracts an Expense from a row scanner function.
func scanExpense(scan func(dest ...interface{}) error) (domain.Expense, error) {
	var entity domain.Expense
	var date string
	err := scan(
		&entity.ID,
		&date,
		&entity.Category,
		&entity.Description,
		&entity.Amount,
	)
	if err != nil {
		return domain.Expense{}, err
	}
	entity.Date, _ = dates.Parse(date)
	return entity, nil
}
