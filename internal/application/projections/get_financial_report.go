package projections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	"yogao/internal/domain/dates"
)

// Transaction kind constants.
const (
	TransactionRevenue = "revenue"
	TransactionExpense = "expense"
)

var ErrInvalidPeriod = errors.New("period start must not be after period end")

// Transaction is one line of the combined ledger feed. Expense amounts are
// negative so the feed sums to the net figure.
type Transaction struct {
	Date        time.Time
	Kind        string
	Description string
	Amount      int
}

// AmountByKey is one slice of a breakdown (revenue per pass, expense per
// category).
type AmountByKey struct {
	Key    string
	Amount int
}

// GetFinancialReportQuery carries the reporting period, inclusive on both
// ends.
type GetFinancialReportQuery struct {
	From time.Time
	To   time.Time
}

// GetFinancialReportDeps holds dependencies for GetFinancialReport.
type GetFinancialReportDeps struct {
	StudentStore    StudentStore
	MembershipStore MembershipStore
	ExpenseStore    ExpenseStore
}

// GetFinancialReportResult carries the query result.
type GetFinancialReportResult struct {
	TotalRevenue int
	TotalExpense int
	NetProfit    int

	RevenueByPass     []AmountByKey
	ExpenseByCategory []AmountByKey

	Transactions []Transaction // newest first

	NewStudents          int // first registered inside the period and paid in it
	ReregisteredStudents int // registered before the period and paid in it
}

// QueryGetFinancialReport computes revenue, expense, and member analysis
// for a period. A membership belongs to the period by its payment date,
// falling back to its start date when no payment date was recorded.
// PRE: From and To are calendar days, From <= To
// POST: NetProfit == TotalRevenue - TotalExpense
func QueryGetFinancialReport(ctx context.Context, query GetFinancialReportQuery, deps GetFinancialReportDeps) (GetFinancialReportResult, error) {
	from := dates.Day(query.From)
	to := dates.Day(query.To)
	if from.After(to) {
		return GetFinancialReportResult{}, ErrInvalidPeriod
	}

	memberships, err := deps.MembershipStore.List(ctx, membershipStore.ListFilter{})
	if err != nil {
		return GetFinancialReportResult{}, err
	}
	expenses, err := deps.ExpenseStore.List(ctx, expenseStore.ListFilter{From: from, To: to})
	if err != nil {
		return GetFinancialReportResult{}, err
	}

	var result GetFinancialReportResult
	revByPass := make(map[string]int)
	paidStudents := make(map[string]bool)
	var transactions []Transaction

	for _, m := range memberships {
		paid := m.PaymentDate
		if paid.IsZero() {
			paid = m.StartDate
		}
		paid = dates.Day(paid)
		if paid.Before(from) || paid.After(to) {
			continue
		}

		result.TotalRevenue += m.Price
		revByPass[m.PassID] += m.Price
		paidStudents[m.StudentID] = true

		name := ""
		if s, err := deps.StudentStore.GetByID(ctx, m.StudentID); err == nil {
			name = s.Name
		}
		transactions = append(transactions, Transaction{
			Date:        paid,
			Kind:        TransactionRevenue,
			Description: fmt.Sprintf("%s - %s", name, m.PassID),
			Amount:      m.Price,
		})
	}

	expByCategory := make(map[string]int)
	for _, e := range expenses {
		result.TotalExpense += e.Amount
		expByCategory[e.Category] += e.Amount
		transactions = append(transactions, Transaction{
			Date:        dates.Day(e.Date),
			Kind:        TransactionExpense,
			Description: fmt.Sprintf("%s - %s", e.Category, e.Description),
			Amount:      -e.Amount,
		})
	}

	result.NetProfit = result.TotalRevenue - result.TotalExpense
	result.RevenueByPass = sortedAmounts(revByPass)
	result.ExpenseByCategory = sortedAmounts(expByCategory)

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	result.Transactions = transactions

	for studentID := range paidStudents {
		s, err := deps.StudentStore.GetByID(ctx, studentID)
		if err != nil {
			continue
		}
		reg := dates.Day(s.RegistrationDate)
		switch {
		case !reg.Before(from) && !reg.After(to):
			result.NewStudents++
		case reg.Before(from):
			result.ReregisteredStudents++
		}
	}

	return result, nil
}

func sortedAmounts(buckets map[string]int) []AmountByKey {
	out := make([]AmountByKey, 0, len(buckets))
	for key, amount := range buckets {
		out = append(out, AmountByKey{Key: key, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
