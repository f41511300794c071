package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"yogao/internal/adapters/http/middleware"
	"yogao/internal/application/orchestrators"
	"yogao/internal/application/projections"
	"yogao/internal/domain/dates"
)

// csvHeader is the column order of the exchange format. Import accepts
// exactly this header; export always writes it.
var csvHeader = []string{
	"student_id",
	"student_name",
	"student_phone",
	"student_registration_date",
	"student_remarks",
	"membership_id",
	"membership_pass_id",
	"membership_start_date",
	"membership_end_date",
	"membership_price",
	"membership_payment_date",
	"membership_payment_method",
	"membership_cash_receipt_issued",
	"membership_hold_start_date",
	"membership_hold_end_date",
}

// handleExportStudents handles GET /api/students/export
func handleExportStudents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := projections.ExportStudentsDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
	}
	rows, err := projections.QueryExportStudents(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}

	filename := fmt.Sprintf("students-%s.csv", dates.Format(dates.Day(timeNow())))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return
	}
	for _, row := range rows {
		record := []string{
			row.StudentID,
			row.StudentName,
			row.StudentPhone,
			row.StudentRegistrationDate,
			row.StudentRemarks,
			row.MembershipID,
			row.MembershipPassID,
			row.MembershipStartDate,
			row.MembershipEndDate,
			row.MembershipPrice,
			row.MembershipPaymentDate,
			row.MembershipPaymentMethod,
			row.MembershipCashReceiptIssued,
			row.MembershipHoldStartDate,
			row.MembershipHoldEndDate,
		}
		if err := cw.Write(record); err != nil {
			return
		}
	}
	cw.Flush()
}

var errBadCSVHeader = errors.New("csv header does not match the export format")

// parseImportCSV reads the exchange CSV back into import records.
func parseImportCSV(r io.Reader) ([]orchestrators.ImportRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, errBadCSVHeader
	}
	for i, col := range header {
		if strings.TrimSpace(col) != csvHeader[i] {
			return nil, errBadCSVHeader
		}
	}

	var records []orchestrators.ImportRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, orchestrators.ImportRecord{
			StudentID:               row[0],
			StudentName:             row[1],
			StudentPhone:            row[2],
			StudentRegistrationDate: row[3],
			StudentRemarks:          row[4],

			MembershipID:                row[5],
			MembershipPassID:            row[6],
			MembershipStartDate:         row[7],
			MembershipEndDate:           row[8],
			MembershipPrice:             row[9],
			MembershipPaymentDate:       row[10],
			MembershipPaymentMethod:     row[11],
			MembershipCashReceiptIssued: row[12],
			MembershipHoldStartDate:     row[13],
			MembershipHoldEndDate:       row[14],
		})
	}
	return records, nil
}

// handleImportStudents handles POST /api/students/import. The body is
// either a multipart form with a "file" part or a raw CSV upload.
func handleImportStudents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Missing file upload", http.StatusBadRequest)
			return
		}
		defer file.Close()
		reader = file
	}

	records, err := parseImportCSV(reader)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(records) == 0 {
		http.Error(w, "No records to import", http.StatusBadRequest)
		return
	}

	deps := orchestrators.ImportStudentsDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
		Catalog:         catalog,
		Now:             timeNow,
	}
	result, err := orchestrators.ExecuteImportStudents(r.Context(), orchestrators.ImportStudentsInput{Records: records}, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// expiryAlertRequest optionally overrides the digest recipient.
type expiryAlertRequest struct {
	Email string `json:"email"`
}

// handleSendExpiryAlerts handles POST /api/alerts/expiry. The digest goes
// to the logged-in operator unless the body names another address.
func handleSendExpiryAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if emailSender == nil {
		http.Error(w, "Email sending is not configured", http.StatusServiceUnavailable)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	to := sess.Email
	if r.ContentLength > 0 {
		var req expiryAlertRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if req.Email != "" {
			to = req.Email
		}
	}

	deps := orchestrators.SendExpiryAlertsDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
		Sender:          emailSender,
		Now:             timeNow,
	}
	result, err := orchestrators.ExecuteSendExpiryAlerts(r.Context(), orchestrators.SendExpiryAlertsInput{OperatorEmail: to}, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
