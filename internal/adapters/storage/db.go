package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables. All date columns store YYYY-MM-DD strings; timestamps
	// store RFC 3339.
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS student (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		registration_date TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS membership (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		pass_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		price INTEGER NOT NULL,
		payment_date TEXT,
		payment_method TEXT NOT NULL DEFAULT 'card',
		cash_receipt_issued INTEGER NOT NULL DEFAULT 0,
		hold_start_date TEXT,
		hold_end_date TEXT,
		FOREIGN KEY (student_id) REFERENCES student(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_membership_student ON membership(student_id);
	CREATE INDEX IF NOT EXISTS idx_membership_end_date ON membership(end_date);

	CREATE TABLE IF NOT EXISTS class_slot (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		date TEXT NOT NULL,
		class_slot_id TEXT NOT NULL,
		UNIQUE (student_id, date, class_slot_id),
		FOREIGN KEY (student_id) REFERENCES student(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);

	CREATE TABLE IF NOT EXISTS expense (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		amount INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expense_date ON expense(date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
