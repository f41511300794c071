package orchestrators

import (
	"context"
	"log/slog"
	"time"

	expenseStore "yogao/internal/adapters/storage/expense"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/expense"

	"github.com/google/uuid"
)

// RecordExpenseInput carries input for the orchestrator.
type RecordExpenseInput struct {
	Date        time.Time
	Category    string
	Description string
	Amount      int
}

// RecordExpenseDeps holds dependencies for RecordExpense.
type RecordExpenseDeps struct {
	ExpenseStore expenseStore.Store
}

// ExecuteRecordExpense adds one entry to the expense ledger.
// PRE: Input has a valid date, category, description, and positive amount
// POST: Expense is persisted with a generated ID
func ExecuteRecordExpense(ctx context.Context, input RecordExpenseInput, deps RecordExpenseDeps) (string, error) {
	e := expense.Expense{
		ID:          uuid.New().String(),
		Date:        dates.Day(input.Date),
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	if err := deps.ExpenseStore.Save(ctx, e); err != nil {
		return "", err
	}

	slog.Info("expense_recorded",
		"expense_id", e.ID,
		"category", e.Category,
		"amount", e.Amount,
	)
	return e.ID, nil
}

// ExecuteDeleteExpense removes one ledger entry.
// PRE: expenseID names an existing expense
// POST: Expense is removed
func ExecuteDeleteExpense(ctx context.Context, expenseID string, deps RecordExpenseDeps) error {
	if _, err := deps.ExpenseStore.GetByID(ctx, expenseID); err != nil {
		return err
	}
	if err := deps.ExpenseStore.Delete(ctx, expenseID); err != nil {
		return err
	}
	slog.Info("expense_deleted", "expense_id", expenseID)
	return nil
}
