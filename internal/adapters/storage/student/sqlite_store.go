package student

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"yogao/internal/adapters/storage"
	"yogao/internal/domain/dates"
	domain "yogao/internal/domain/student"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new StudentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const studentColumns = "id, name, phone, registration_date, remarks"

// GetByID retrieves a Student by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Student, error) {
	query := "SELECT " + studentColumns + " FROM student WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanStudent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Student{}, fmt.Errorf("student not found: %w", err)
	}
	return entity, err
}

// GetByNameAndPhone retrieves a Student by the (name, phone) pair. Used by
// the import reconciler to match incoming records to existing students.
// PRE: name is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByNameAndPhone(ctx context.Context, name, phone string) (domain.Student, error) {
	query := "SELECT " + studentColumns + " FROM student WHERE name = ? AND phone = ?"
	row := s.db.QueryRowContext(ctx, query, name, phone)

	entity, err := scanStudent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Student{}, fmt.Errorf("student not found: %w", err)
	}
	return entity, err
}

// Save persists a Student to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Student) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fields := []string{"id", "name", "phone", "registration_date", "remarks"}
	placeholders := []string{"?", "?", "?", "?", "?"}
	updates := []string{
		"name=excluded.name",
		"phone=excluded.phone",
		"registration_date=excluded.registration_date",
		"remarks=excluded.remarks",
	}

	query := fmt.Sprintf(
		"INSERT INTO student (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Phone,
		dates.Format(entity.RegistrationDate),
		entity.Remarks,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Student from the database. Memberships and attendance
// records cascade via foreign keys.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM student WHERE id = ?", id)
	return err
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Search != "" {
		where += " AND (name LIKE ? OR phone LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// Count returns the total number of students matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM student"+where, args...).Scan(&count)
	return count, err
}

// List retrieves Students based on the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Student, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + studentColumns + " FROM student" + where + " ORDER BY name ASC"

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

	var results []domain.Student
	for rows.Next() {
		entity, err := scanStudent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, nil
}

// scanStudent extracts a Student from a row scanner function.
func scanStudent(scan func(dest ...interface{}) error) (domain.Student, error) {
	var entity domain.Student
	var registrationDate string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Phone,
		&registrationDate,
		&entity.Remarks,
	)
	if err != nil {
		return domain.Student{}, err
	}
	entity.RegistrationDate, _ = dates.Parse(registrationDate)
	return entity, nil
}
