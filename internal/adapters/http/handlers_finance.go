package web

import (
	"errors"
	"net/http"
	"time"

	expenseStore "yogao/internal/adapters/storage/expense"
	"yogao/internal/application/orchestrators"
	"yogao/internal/application/projections"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/expense"
)

// handleDashboardPage handles GET /dashboard
func handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := projections.GetDashboardDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
	}
	result, err := projections.QueryGetDashboard(r.Context(), dates.Day(timeNow()), deps)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Title":     "대시보드",
		"Dashboard": result,
	})
}

// handleDashboardAPI handles GET /api/dashboard
func handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := projections.GetDashboardDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
	}
	result, err := projections.QueryGetDashboard(r.Context(), dates.Day(timeNow()), deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// reportPeriod resolves the from/to query parameters, defaulting to the
// current calendar month.
func reportPeriod(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.IsZero() && to.IsZero() {
		today := dates.Day(timeNow())
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return from, to, nil
}

// handleFinancialsPage handles GET /financials
func handleFinancialsPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, err := reportPeriod(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	report, err := queryFinancialReport(r, from, to)
	if err != nil {
		if errors.Is(err, projections.ErrInvalidPeriod) {
			http.Error(w, "Invalid period", http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}

	expenses, err := stores.ExpenseStore.List(r.Context(), expenseStore.ListFilter{From: from, To: to})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "financials.html", map[string]any{
		"Title":    "재무 보고서",
		"From":     dates.Format(from),
		"To":       dates.Format(to),
		"Report":   report,
		"Expenses": expenses,
	})
}

// handleFinancialReport handles GET /api/financial-report?from=...&to=...
func handleFinancialReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, err := reportPeriod(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	report, err := queryFinancialReport(r, from, to)
	if err != nil {
		if errors.Is(err, projections.ErrInvalidPeriod) {
			http.Error(w, "Invalid period", http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func queryFinancialReport(r *http.Request, from, to time.Time) (projections.GetFinancialReportResult, error) {
	query := projections.GetFinancialReportQuery{From: from, To: to}
	deps := projections.GetFinancialReportDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
		ExpenseStore:    stores.ExpenseStore,
	}
	return projections.QueryGetFinancialReport(r.Context(), query, deps)
}

// recordExpenseRequest is the JSON body for POST /api/expenses.
type recordExpenseRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      int    `json:"amount"`
}

// handleExpenses handles GET (list) and POST (record) for /api/expenses
func handleExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		from, err := parseDate(r.URL.Query().Get("from"))
		if err != nil {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}
		to, err := parseDate(r.URL.Query().Get("to"))
		if err != nil {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}
		filter := expenseStore.ListFilter{
			From:     from,
			To:       to,
			Category: r.URL.Query().Get("category"),
		}
		expenses, err := stores.ExpenseStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, expenses)
		return
	}

	if r.Method == "POST" {
		var req recordExpenseRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}

		input := orchestrators.RecordExpenseInput{
			Date:        date,
			Category:    req.Category,
			Description: req.Description,
			Amount:      req.Amount,
		}
		deps := orchestrators.RecordExpenseDeps{ExpenseStore: stores.ExpenseStore}

		id, err := orchestrators.ExecuteRecordExpense(ctx, input, deps)
		if err != nil {
			if isExpenseValidationError(err) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func isExpenseValidationError(err error) bool {
	return errors.Is(err, expense.ErrEmptyDate) ||
		errors.Is(err, expense.ErrInvalidCategory) ||
		errors.Is(err, expense.ErrEmptyDescription) ||
		errors.Is(err, expense.ErrInvalidAmount)
}

// handleExpenseDetail handles DELETE for /api/expenses/{id}
func handleExpenseDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := orchestrators.RecordExpenseDeps{ExpenseStore: stores.ExpenseStore}
	if err := orchestrators.ExecuteDeleteExpense(r.Context(), r.PathValue("id"), deps); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
