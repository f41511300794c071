package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yogao/internal/adapters/storage"
	domain "yogao/internal/domain/attendance"
	"yogao/internal/domain/dates"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const recordColumns = "id, student_id, date, class_slot_id"

// GetByID retrieves a Record by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("attendance record not found: %w", err)
	}
	return entity, err
}

// Find retrieves the record for a (student, date, slot) triple. Used by the
// toggle operation to decide between insert and delete.
// PRE: studentID and classSlotID are non-empty
// POST: Returns the entity, or sql.ErrNoRows wrapped if absent
func (s *SQLiteStore) Find(ctx context.Context, studentID string, date time.Time, classSlotID string) (domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance WHERE student_id = ? AND date = ? AND class_slot_id = ?"
	row := s.db.QueryRowContext(ctx, query, studentID, dates.Format(date), classSlotID)

	entity, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("attendance record not found: %w", err)
	}
	return entity, err
}

// Save persists a Record to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Record) error {
	query := `INSERT INTO attendance (id, student_id, date, class_slot_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET student_id=excluded.student_id, date=excluded.date, class_slot_id=excluded.class_slot_id`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.StudentID,
		dates.Format(entity.Date),
		entity.ClassSlotID,
	)
	return err
}

// Delete removes a Record from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	return err
}

// DeleteByStudentID removes all Records belonging to a student.
// PRE: studentID is non-empty
// POST: All records for the student are removed
func (s *SQLiteStore) DeleteByStudentID(ctx context.Context, studentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE student_id = ?", studentID)
	return err
}

// ListByDate retrieves all Records for one calendar day.
// PRE: date is a valid date
// POST: Returns matching entities
func (s *SQLiteStore) ListByDate(ctx context.Context, date time.Time) ([]domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance WHERE date = ? ORDER BY class_slot_id, student_id"
	rows, err := s.db.QueryContext(ctx, query, dates.Format(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByStudentID retrieves all Records for a student, newest first.
// PRE: studentID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByStudentID(ctx context.Context, studentID string) ([]domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance WHERE student_id = ? ORDER BY date DESC"
	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByDateRange retrieves all Records with from <= date <= to.
// PRE: from and to are valid dates
// POST: Returns matching entities ordered by date
func (s *SQLiteStore) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance WHERE date >= ? AND date <= ? ORDER BY date ASC"
	rows, err := s.db.QueryContext(ctx, query, dates.Format(from), dates.Format(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	var results []domain.Record
	for rows.Next() {
		entity, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanRecord extracts a Record from a row scanner function.
func scanRecord(scan func(dest ...interface{}) error) (domain.Record, error) {
	var entity domain.Record
	var date string
	err := scan(
		&entity.ID,
		&entity.StudentID,
		&date,
		&entity.ClassSlotID,
	)
	if err != nil {
		return domain.Record{}, err
	}
	entity.Date, _ = dates.Parse(date)
	return entity, nil
}
