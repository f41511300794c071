package orchestrators

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/membership"
	"yogao/internal/domain/pass"
	"yogao/internal/domain/student"

	"github.com/google/uuid"
)

// ImportRecord is one flat row from an exported student file. All fields
// are raw strings; parsing and validation happen per record. Membership
// fields are optional as a group, keyed on PassID being present.
type ImportRecord struct {
	StudentID               string
	StudentName             string
	StudentPhone            string
	StudentRegistrationDate string
	StudentRemarks          string

	MembershipID                string
	MembershipPassID            string
	MembershipStartDate         string
	MembershipEndDate           string
	MembershipPrice             string
	MembershipPaymentDate       string
	MembershipPaymentMethod     string
	MembershipCashReceiptIssued string
	MembershipHoldStartDate     string
	MembershipHoldEndDate       string
}

// ImportStudentsInput carries the parsed records.
type ImportStudentsInput struct {
	Records []ImportRecord
}

// ImportStudentsDeps holds dependencies for ImportStudents.
type ImportStudentsDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	Catalog         *pass.Catalog
	Now             func() time.Time
}

// ImportStudentsRowError describes why one record was skipped.
type ImportStudentsRowError struct {
	Index  int
	Reason string
}

// ImportStudentsResult holds aggregate counts and per-record errors.
type ImportStudentsResult struct {
	Total   int
	Created int
	Updated int
	Errors  []ImportStudentsRowError
}

// ExecuteImportStudents reconciles exported records back into the store.
// Matching is by student ID: a known ID replaces the stored student fields
// wholesale and merges the membership row; an unknown ID creates both.
// Records that fail validation are reported individually and do not stop
// the rest of the import.
// PRE: Records parsed from a trusted export format
// POST: Valid records applied; Result counts partition the input
// INVARIANT: A record error never rolls back previously applied records
func ExecuteImportStudents(ctx context.Context, input ImportStudentsInput, deps ImportStudentsDeps) (ImportStudentsResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	today := dates.Day(now())

	result := ImportStudentsResult{Total: len(input.Records)}

	for i, rec := range input.Records {
		if strings.TrimSpace(rec.StudentID) == "" {
			result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: "student id is required"})
			continue
		}
		if strings.TrimSpace(rec.StudentName) == "" {
			result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: "student name is required"})
			continue
		}

		s := student.Student{
			ID:               rec.StudentID,
			Name:             rec.StudentName,
			Phone:            rec.StudentPhone,
			RegistrationDate: today,
			Remarks:          rec.StudentRemarks,
		}
		if rec.StudentRegistrationDate != "" {
			d, err := dates.Parse(rec.StudentRegistrationDate)
			if err != nil {
				result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: "invalid registration date: " + rec.StudentRegistrationDate})
				continue
			}
			s.RegistrationDate = d
		}
		if err := s.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: err.Error()})
			continue
		}

		var m *membership.Membership
		if rec.MembershipPassID != "" {
			parsed, reason := parseImportMembership(rec, deps.Catalog, today)
			if reason != "" {
				result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: reason})
				continue
			}
			m = parsed
		}

		_, lookupErr := deps.StudentStore.GetByID(ctx, rec.StudentID)
		exists := lookupErr == nil

		if err := deps.StudentStore.Save(ctx, s); err != nil {
			slog.Error("students_import_save_failed", "index", i, "student_id", rec.StudentID, "err", err)
			result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: "save failed (see server log)"})
			continue
		}

		if m != nil {
			if exists && rec.MembershipID == "" {
				// Merge onto the student's latest membership (by end date)
				// when the record does not pin one by ID.
				if existing, err := deps.MembershipStore.ListByStudentID(ctx, rec.StudentID); err == nil {
					if latest, ok := latestByEndDate(existing); ok {
						m.ID = latest.ID
					}
				}
			}
			if err := deps.MembershipStore.Save(ctx, *m); err != nil {
				slog.Error("students_import_save_failed", "index", i, "student_id", rec.StudentID, "err", err)
				result.Errors = append(result.Errors, ImportStudentsRowError{Index: i, Reason: "save failed (see server log)"})
				continue
			}
		}

		if exists {
			result.Updated++
		} else {
			result.Created++
		}
	}

	slog.Info("students_import",
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)
	return result, nil
}

// parseImportMembership converts raw record fields into a Membership.
// Returns a non-empty reason string on validation failure.
func parseImportMembership(rec ImportRecord, catalog *pass.Catalog, today time.Time) (*membership.Membership, string) {
	if !catalog.Has(rec.MembershipPassID) {
		return nil, "unknown pass: " + rec.MembershipPassID
	}

	m := membership.Membership{
		ID:            rec.MembershipID,
		StudentID:     rec.StudentID,
		PassID:        rec.MembershipPassID,
		StartDate:     today,
		EndDate:       today,
		PaymentMethod: membership.PaymentCard,
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	var err error
	if rec.MembershipStartDate != "" {
		if m.StartDate, err = dates.Parse(rec.MembershipStartDate); err != nil {
			return nil, "invalid start date: " + rec.MembershipStartDate
		}
	}
	if rec.MembershipEndDate != "" {
		if m.EndDate, err = dates.Parse(rec.MembershipEndDate); err != nil {
			return nil, "invalid end date: " + rec.MembershipEndDate
		}
	}
	m.PaymentDate = m.StartDate
	if rec.MembershipPaymentDate != "" {
		if m.PaymentDate, err = dates.Parse(rec.MembershipPaymentDate); err != nil {
			return nil, "invalid payment date: " + rec.MembershipPaymentDate
		}
	}
	if rec.MembershipPrice != "" {
		if m.Price, err = strconv.Atoi(rec.MembershipPrice); err != nil {
			return nil, "invalid price: " + rec.MembershipPrice
		}
	}
	if rec.MembershipPaymentMethod == membership.PaymentCash {
		m.PaymentMethod = membership.PaymentCash
	}
	m.CashReceiptIssued = rec.MembershipCashReceiptIssued == "true"
	if rec.MembershipHoldStartDate != "" && rec.MembershipHoldEndDate != "" {
		if m.HoldStartDate, err = dates.Parse(rec.MembershipHoldStartDate); err != nil {
			return nil, "invalid hold start date: " + rec.MembershipHoldStartDate
		}
		if m.HoldEndDate, err = dates.Parse(rec.MembershipHoldEndDate); err != nil {
			return nil, "invalid hold end date: " + rec.MembershipHoldEndDate
		}
	}

	m.ClampCashReceipt()
	if err := m.Validate(); err != nil {
		return nil, err.Error()
	}
	return &m, ""
}
