package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"yogao/internal/adapters/http/middleware"
	"yogao/internal/application/listutil"
	"yogao/internal/application/orchestrators"
	"yogao/internal/application/projections"
	accountDomain "yogao/internal/domain/account"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/pass"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDate reads a YYYY-MM-DD query or form value; empty input returns a
// zero time with no error.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return dates.Parse(s)
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"isAdmin":      func() bool { return role == accountDomain.RoleAdmin },
		"csrfToken":    func() string { return csrf.Token(r) },
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return dates.Format(t)
		},
		"formatWon": formatWon,
		"passLabel": func(id string) string {
			if p, err := catalog.Get(id); err == nil {
				return p.Label
			}
			return id
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"statusLabel": statusLabel,
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// formatWon renders a KRW amount with thousands separators.
func formatWon(amount int) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := []byte{}
	digits := []byte{}
	for amount > 0 || len(digits) == 0 {
		digits = append(digits, byte('0'+amount%10))
		amount /= 10
	}
	for i := len(digits) - 1; i >= 0; i-- {
		s = append(s, digits[i])
		if i > 0 && i%3 == 0 {
			s = append(s, ',')
		}
	}
	out := string(s) + "원"
	if neg {
		return "-" + out
	}
	return out
}

// statusLabel maps a status kind to the badge text shown in lists.
func statusLabel(kind string) string {
	switch kind {
	case "active":
		return "Active"
	case "expiring_soon":
		return "Expiring soon"
	case "expired":
		return "Expired"
	case "holding":
		return "On hold"
	case "pending_start":
		return "Starts soon"
	default:
		return "No pass"
	}
}

// requireAdmin loads the session and rejects non-admin callers.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// registerRoutes wires every page and API route onto the mux.
func registerRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/change-password", handleChangePassword)
	mux.Handle("/dashboard", middleware.RequireAuth(http.HandlerFunc(handleDashboardPage)))
	mux.Handle("/students", middleware.RequireAuth(http.HandlerFunc(handleStudents)))
	mux.Handle("/students/{id}", middleware.RequireAuth(http.HandlerFunc(handleStudentDetail)))
	mux.Handle("/financials", middleware.RequireAuth(http.HandlerFunc(handleFinancialsPage)))

	// JSON API
	mux.Handle("/api/students", middleware.RequireAuth(http.HandlerFunc(handleStudents)))
	mux.Handle("/api/students/{id}", middleware.RequireAuth(http.HandlerFunc(handleStudentDetail)))
	mux.Handle("/api/students/{id}/memberships", middleware.RequireAuth(http.HandlerFunc(handleAddMembership)))
	mux.Handle("/api/students/bulk-extend", middleware.RequireAuth(http.HandlerFunc(handleBulkExtend)))
	mux.Handle("/api/students/import", middleware.RequireAuth(http.HandlerFunc(handleImportStudents)))
	mux.Handle("/api/students/export", middleware.RequireAuth(http.HandlerFunc(handleExportStudents)))
	mux.Handle("/api/passes", middleware.RequireAuth(http.HandlerFunc(handlePasses)))
	mux.Handle("/api/schedule", middleware.RequireAuth(http.HandlerFunc(handleClassSlots)))
	mux.Handle("/api/schedule/{id}", middleware.RequireAuth(http.HandlerFunc(handleClassSlotDetail)))
	mux.Handle("/api/roster", middleware.RequireAuth(http.HandlerFunc(handleClassRoster)))
	mux.Handle("/api/attendance/toggle", middleware.RequireAuth(http.HandlerFunc(handleToggleAttendance)))
	mux.Handle("/api/expenses", middleware.RequireAuth(http.HandlerFunc(handleExpenses)))
	mux.Handle("/api/expenses/{id}", middleware.RequireAuth(http.HandlerFunc(handleExpenseDetail)))
	mux.Handle("/api/dashboard", middleware.RequireAuth(http.HandlerFunc(handleDashboardAPI)))
	mux.Handle("/api/financial-report", middleware.RequireAuth(http.HandlerFunc(handleFinancialReport)))
	mux.Handle("/api/alerts/expiry", middleware.RequireAuth(http.HandlerFunc(handleSendExpiryAlerts)))
}

// handleHome redirects the root to the dashboard.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogin handles GET (form) and POST (submit) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("yogao_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChangePassword handles GET (form) and POST (update) for /change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "change_password.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.ChangePasswordInput{
			AccountID:       sess.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}
		deps := orchestrators.ChangePasswordDeps{
			AccountStore: stores.AccountStore,
		}

		if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// enrollStudentRequest is the JSON body for POST /api/students.
type enrollStudentRequest struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Remarks           string `json:"remarks"`
	PassID            string `json:"passId"`
	StartDate         string `json:"startDate"`
	PaymentDate       string `json:"paymentDate"`
	PaymentMethod     string `json:"paymentMethod"`
	CashReceiptIssued bool   `json:"cashReceiptIssued"`
}

// handleStudents handles GET (list) and POST (enroll) for /students
func handleStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isHTML := isHTMLRequest(r)

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), []string{"name"}, nil)

		query := projections.GetStudentListQuery{
			Search: lp.Search,
			Limit:  lp.PerPage,
			Offset: (lp.Page - 1) * lp.PerPage,
		}
		deps := projections.GetStudentListDeps{
			StudentStore:    stores.StudentStore,
			MembershipStore: stores.MembershipStore,
		}

		result, err := projections.QueryGetStudentList(ctx, dates.Day(timeNow()), query, deps)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTML {
			renderTemplate(w, r, "students.html", map[string]any{
				"Students": result.Students,
				"PageInfo": listutil.NewPageInfo(lp.Page, lp.PerPage, result.Total),
				"Search":   lp.Search,
				"Passes":   catalog.List(),
			})
			return
		}

		writeJSON(w, http.StatusOK, result)
		return
	}

	if r.Method == "POST" {
		var req enrollStudentRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			req.Name = r.FormValue("Name")
			req.Phone = r.FormValue("Phone")
			req.Remarks = r.FormValue("Remarks")
			req.PassID = r.FormValue("PassID")
			req.StartDate = r.FormValue("StartDate")
			req.PaymentDate = r.FormValue("PaymentDate")
			req.PaymentMethod = r.FormValue("PaymentMethod")
			req.CashReceiptIssued = r.FormValue("CashReceiptIssued") == "on"
		} else {
			if err := strictDecode(r, &req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}

		startDate, err := parseDate(req.StartDate)
		if err != nil {
			http.Error(w, "Invalid start date", http.StatusBadRequest)
			return
		}
		paymentDate, err := parseDate(req.PaymentDate)
		if err != nil {
			http.Error(w, "Invalid payment date", http.StatusBadRequest)
			return
		}

		input := orchestrators.EnrollStudentInput{
			Name:              req.Name,
			Phone:             req.Phone,
			Remarks:           req.Remarks,
			PassID:            req.PassID,
			StartDate:         startDate,
			PaymentDate:       paymentDate,
			PaymentMethod:     req.PaymentMethod,
			CashReceiptIssued: req.CashReceiptIssued,
		}
		deps := orchestrators.EnrollStudentDeps{
			StudentStore:    stores.StudentStore,
			MembershipStore: stores.MembershipStore,
			Catalog:         catalog,
			Now:             timeNow,
		}

		result, err := orchestrators.ExecuteEnrollStudent(ctx, input, deps)
		if err != nil {
			if errors.Is(err, pass.ErrUnknownPass) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			internalError(w, err)
			return
		}

		if isHTML {
			http.Redirect(w, r, "/students", http.StatusSeeOther)
		} else {
			writeJSON(w, http.StatusCreated, result)
		}
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// updateStudentRequest is the JSON body for PUT /api/students/{id}. Nil
// fields are left unchanged; the end date is recomputed server-side.
type updateStudentRequest struct {
	MembershipID string `json:"membershipId"`

	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	Remarks          *string `json:"remarks"`
	RegistrationDate *string `json:"registrationDate"`

	PassID            *string `json:"passId"`
	StartDate         *string `json:"startDate"`
	PaymentDate       *string `json:"paymentDate"`
	PaymentMethod     *string `json:"paymentMethod"`
	CashReceiptIssued *bool   `json:"cashReceiptIssued"`
	HoldStartDate     *string `json:"holdStartDate"`
	HoldEndDate       *string `json:"holdEndDate"`
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := dates.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// handleStudentDetail handles GET, PUT, and DELETE for /students/{id}
func handleStudentDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := r.PathValue("id")
	if studentID == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case "GET":
		s, err := stores.StudentStore.GetByID(ctx, studentID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		ms, err := stores.MembershipStore.ListByStudentID(ctx, studentID)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "student_detail.html", map[string]any{
				"Student":     s,
				"Memberships": ms,
				"Passes":      catalog.List(),
				"CSRFToken":   csrf.Token(r),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"student":     s,
			"memberships": ms,
		})

	case "PUT":
		var req updateStudentRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.UpdateStudentInput{
			StudentID:    studentID,
			MembershipID: req.MembershipID,
			Student: orchestrators.StudentPatch{
				Name:    req.Name,
				Phone:   req.Phone,
				Remarks: req.Remarks,
			},
			Membership: orchestrators.MembershipPatch{
				PassID:            req.PassID,
				PaymentMethod:     req.PaymentMethod,
				CashReceiptIssued: req.CashReceiptIssued,
			},
		}

		var err error
		if input.Student.RegistrationDate, err = parseDatePtr(req.RegistrationDate); err != nil {
			http.Error(w, "Invalid registration date", http.StatusBadRequest)
			return
		}
		if input.Membership.StartDate, err = parseDatePtr(req.StartDate); err != nil {
			http.Error(w, "Invalid start date", http.StatusBadRequest)
			return
		}
		if input.Membership.PaymentDate, err = parseDatePtr(req.PaymentDate); err != nil {
			http.Error(w, "Invalid payment date", http.StatusBadRequest)
			return
		}
		if input.Membership.HoldStartDate, err = parseDatePtr(req.HoldStartDate); err != nil {
			http.Error(w, "Invalid hold start date", http.StatusBadRequest)
			return
		}
		if input.Membership.HoldEndDate, err = parseDatePtr(req.HoldEndDate); err != nil {
			http.Error(w, "Invalid hold end date", http.StatusBadRequest)
			return
		}

		deps := orchestrators.UpdateStudentDeps{
			StudentStore:    stores.StudentStore,
			MembershipStore: stores.MembershipStore,
			Catalog:         catalog,
		}
		if err := orchestrators.ExecuteUpdateStudent(ctx, input, deps); err != nil {
			switch {
			case errors.Is(err, orchestrators.ErrStudentNotFound),
				errors.Is(err, orchestrators.ErrMembershipNotFound):
				http.NotFound(w, r)
			case errors.Is(err, pass.ErrUnknownPass):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				internalError(w, err)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case "DELETE":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		deps := orchestrators.DeleteStudentDeps{
			StudentStore:    stores.StudentStore,
			MembershipStore: stores.MembershipStore,
			AttendanceStore: stores.AttendanceStore,
		}
		if err := orchestrators.ExecuteDeleteStudent(ctx, studentID, deps); err != nil {
			if errors.Is(err, orchestrators.ErrStudentNotFound) {
				http.NotFound(w, r)
				return
			}
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// addMembershipRequest is the JSON body for POST /api/students/{id}/memberships.
type addMembershipRequest struct {
	PassID            string `json:"passId"`
	StartDate         string `json:"startDate"`
	PaymentDate       string `json:"paymentDate"`
	PaymentMethod     string `json:"paymentMethod"`
	CashReceiptIssued bool   `json:"cashReceiptIssued"`
}

// handleAddMembership handles POST /api/students/{id}/memberships
func handleAddMembership(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	studentID := r.PathValue("id")

	var req addMembershipRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start date", http.StatusBadRequest)
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		http.Error(w, "Invalid payment date", http.StatusBadRequest)
		return
	}

	input := orchestrators.AddMembershipInput{
		StudentID:         studentID,
		PassID:            req.PassID,
		StartDate:         startDate,
		PaymentDate:       paymentDate,
		PaymentMethod:     req.PaymentMethod,
		CashReceiptIssued: req.CashReceiptIssued,
	}
	deps := orchestrators.AddMembershipDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
		Catalog:         catalog,
	}

	result, err := orchestrators.ExecuteAddMembership(r.Context(), input, deps)
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrStudentNotFound):
			http.NotFound(w, r)
		case errors.Is(err, pass.ErrUnknownPass):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// bulkExtendRequest is the JSON body for POST /api/students/bulk-extend.
type bulkExtendRequest struct {
	Days   int    `json:"days"`
	Reason string `json:"reason"`
}

// handleBulkExtend handles POST /api/students/bulk-extend (admin only)
func handleBulkExtend(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req bulkExtendRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.BulkExtendDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
		Now:             timeNow,
	}
	result, err := orchestrators.ExecuteBulkExtend(r.Context(), orchestrators.BulkExtendInput{
		Days:   req.Days,
		Reason: req.Reason,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidExtension) || errors.Is(err, orchestrators.ErrEmptyReason) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handlePasses handles GET /api/passes
func handlePasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, catalog.List())
}
