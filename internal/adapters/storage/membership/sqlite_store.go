package membership

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"yogao/internal/adapters/storage"
	"yogao/internal/domain/dates"
	domain "yogao/internal/domain/membership"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MembershipStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const membershipColumns = "id, student_id, pass_id, start_date, end_date, price, payment_date, payment_method, cash_receipt_issued, hold_start_date, hold_end_date"

// GetByID retrieves a Membership by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Membership, error) {
	query := "SELECT " + membershipColumns + " FROM membership WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Membership{}, fmt.Errorf("membership not found: %w", err)
	}
	return entity, err
}

// Save persists a Membership to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Membership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fields := []string{
		"id", "student_id", "pass_id", "start_date", "end_date", "price",
		"payment_date", "payment_method", "cash_receipt_issued",
		"hold_start_date", "hold_end_date",
	}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{
		"student_id=excluded.student_id",
		"pass_id=excluded.pass_id",
		"start_date=excluded.start_date",
		"end_date=excluded.end_date",
		"price=excluded.price",
		"payment_date=excluded.payment_date",
		"payment_method=excluded.payment_method",
		"cash_receipt_issued=excluded.cash_receipt_issued",
		"hold_start_date=excluded.hold_start_date",
		"hold_end_date=excluded.hold_end_date",
	}

	query := fmt.Sprintf(
		"INSERT INTO membership (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.StudentID,
		entity.PassID,
		dates.Format(entity.StartDate),
		dates.Format(entity.EndDate),
		entity.Price,
		nullableDate(entity.PaymentDate),
		entity.PaymentMethod,
		boolToInt(entity.CashReceiptIssued),
		nullableDate(entity.HoldStartDate),
		nullableDate(entity.HoldEndDate),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Membership from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM membership WHERE id = ?", id)
	return err
}

// DeleteByStudentID removes all Memberships belonging to a student.
// PRE: studentID is non-empty
// POST: All memberships for the student are removed
func (s *SQLiteStore) DeleteByStudentID(ctx context.Context, studentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM membership WHERE student_id = ?", studentID)
	return err
}

// ListByStudentID retrieves all Memberships for a student ordered by start
// date, oldest first.
// PRE: studentID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByStudentID(ctx context.Context, studentID string) ([]domain.Membership, error) {
	query := "SELECT " + membershipColumns + " FROM membership WHERE student_id = ? ORDER BY start_date ASC, id ASC"
	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

// List retrieves Memberships based on the filter, ordered by start date.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Membership, error) {
	where := " WHERE 1=1"
	var args []any

	if filter.PassID != "" {
		where += " AND pass_id = ?"
		args = append(args, filter.PassID)
	}
	if !filter.EndFrom.IsZero() {
		where += " AND end_date >= ?"
		args = append(args, dates.Format(filter.EndFrom))
	}
	if !filter.EndTo.IsZero() {
		where += " AND end_date <= ?"
		args = append(args, dates.Format(filter.EndTo))
	}
	if !filter.StartFrom.IsZero() {
		where += " AND start_date >= ?"
		args = append(args, dates.Format(filter.StartFrom))
	}
	if !filter.StartTo.IsZero() {
		where += " AND start_date <= ?"
		args = append(args, dates.Format(filter.StartTo))
	}

	query := "SELECT " + membershipColumns + " FROM membership" + where + " ORDER BY start_date ASC, id ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 10000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func collectMemberships(rows *sql.Rows) ([]domain.Membership, error) {
	var results []domain.Membership
	for rows.Next() {
		entity, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanMembership extracts a Membership from a row scanner function.
func scanMembership(scan func(dest ...interface{}) error) (domain.Membership, error) {
	var entity domain.Membership
	var startDate, endDate string
	var paymentDate, holdStart, holdEnd sql.NullString
	var cashReceipt int
	err := scan(
		&entity.ID,
		&entity.StudentID,
		&entity.PassID,
		&startDate,
		&endDate,
		&entity.Price,
		&paymentDate,
		&entity.PaymentMethod,
		&cashReceipt,
		&holdStart,
		&holdEnd,
	)
	if err != nil {
		return domain.Membership{}, err
	}
	entity.StartDate, _ = dates.Parse(startDate)
	entity.EndDate, _ = dates.Parse(endDate)
	if paymentDate.Valid && paymentDate.String != "" {
		entity.PaymentDate, _ = dates.Parse(paymentDate.String)
	}
	if holdStart.Valid && holdStart.String != "" {
		entity.HoldStartDate, _ = dates.Parse(holdStart.String)
	}
	if holdEnd.Valid && holdEnd.String != "" {
		entity.HoldEndDate, _ = dates.Parse(holdEnd.String)
	}
	entity.CashReceiptIssued = cashReceipt != 0
	return entity, nil
}

// nullableDate formats a date for storage, mapping the zero time to NULL.
func nullableDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return dates.Format(t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
