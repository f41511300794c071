package expense

import (
	"errors"
	"strings"
	"time"
)

// Expense category constants
const (
	CategoryRent        = "rent"
	CategorySupplies    = "supplies"
	CategoryMarketing   = "marketing"
	CategoryUtilities   = "utilities"
	CategoryMaintenance = "maintenance"
	CategoryOther       = "other"
)

// ValidCategories contains all valid category values.
var ValidCategories = []string{
	CategoryRent, CategorySupplies, CategoryMarketing,
	CategoryUtilities, CategoryMaintenance, CategoryOther,
}

// Domain errors
var (
	ErrEmptyDate        = errors.New("expense date cannot be zero")
	ErrInvalidCategory  = errors.New("category is not a known expense category")
	ErrEmptyDescription = errors.New("expense description cannot be empty")
	ErrInvalidAmount    = errors.New("expense amount must be positive")
)

// Expense is one ledger entry in the studio's bookkeeping.
type Expense struct {
	ID          string
	Date        time.Time // calendar day
	Category    string
	Description string
	Amount      int // whole currency units
}

// Validate checks if the Expense has valid data.
// PRE: Expense struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrEmptyDate
	}
	if !isValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func isValidCategory(category string) bool {
	for _, v := range ValidCategories {
		if v == category {
			return true
		}
	}
	return false
}
