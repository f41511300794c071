package schedule

import (
	"context"
	"database/sql"
	"fmt"

	"yogao/internal/adapters/storage"
	domain "yogao/internal/domain/schedule"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ClassSlotStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const slotColumns = "id, name, day_of_week, start_time, end_time, color"

// GetByID retrieves a ClassSlot by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ClassSlot, error) {
	query := "SELECT " + slotColumns + " FROM class_slot WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanSlot(row.Scan)
	if err == sql.ErrNoRows {
		return domain.ClassSlot{}, fmt.Errorf("class slot not found: %w", err)
	}
	return entity, err
}

// Save persists a ClassSlot to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ClassSlot) error {
	query := `INSERT INTO class_slot (id, name, day_of_week, start_time, end_time, color) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, day_of_week=excluded.day_of_week,
		start_time=excluded.start_time, end_time=excluded.end_time, color=excluded.color`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.DayOfWeek,
		entity.StartTime,
		entity.EndTime,
		entity.Color,
	)
	return err
}

// Delete removes a ClassSlot from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM class_slot WHERE id = ?", id)
	return err
}

// List retrieves all ClassSlots ordered by day then start time.
// PRE: none
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ClassSlot, error) {
	query := "SELECT " + slotColumns + " FROM class_slot ORDER BY day_of_week ASC, start_time ASC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

// ListByDay retrieves all ClassSlots on one weekday (1 = Monday .. 7 = Sunday).
// PRE: dayOfWeek is in range 1..7
// POST: Returns matching entities ordered by start time
func (s *SQLiteStore) ListByDay(ctx context.Context, dayOfWeek int) ([]domain.ClassSlot, error) {
	query := "SELECT " + slotColumns + " FROM class_slot WHERE day_of_week = ? ORDER BY start_time ASC"
	rows, err := s.db.QueryContext(ctx, query, dayOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

func collectSlots(rows *sql.Rows) ([]domain.ClassSlot, error) {
	var results []domain.ClassSlot
	for rows.Next() {
		entity, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanSlot extracts a ClassSlot from a row scanner function.
func scanSlot(scan func(dest ...interface{}) error) (domain.ClassSlot, error) {
	var entity domain.ClassSlot
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.DayOfWeek,
		&entity.StartTime,
		&entity.EndTime,
		&entity.Color,
	)
	if err != nil {
		return domain.ClassSlot{}, err
	}
	return entity, nil
}
