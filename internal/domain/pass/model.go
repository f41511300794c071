// Package pass holds the studio's pass catalog and the duration resolver
// that turns a purchased pass and a start date into a membership end date.
package pass

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"yogao/internal/domain/dates"
)

// Duration unit constants
const (
	UnitDays   = "days"
	UnitMonths = "months"
)

// Domain errors
var (
	ErrUnknownPass     = errors.New("unknown pass")
	ErrEmptyID         = errors.New("pass id cannot be empty")
	ErrInvalidPrice    = errors.New("pass price cannot be negative")
	ErrInvalidDuration = errors.New("duration must be a positive number of days or months")
	ErrDuplicateID     = errors.New("duplicate pass id")
)

// Duration describes how long a pass is valid: a fixed day count or a
// number of calendar months.
type Duration struct {
	Unit string // days or months
	N    int
}

// Validate checks if the Duration has valid data.
// POST: Returns nil if valid, error otherwise
func (d Duration) Validate() error {
	if d.Unit != UnitDays && d.Unit != UnitMonths {
		return ErrInvalidDuration
	}
	if d.N < 1 {
		return ErrInvalidDuration
	}
	return nil
}

// Days returns a day-count duration.
func Days(n int) Duration { return Duration{Unit: UnitDays, N: n} }

// Months returns a calendar-month duration.
func Months(n int) Duration { return Duration{Unit: UnitMonths, N: n} }

// Definition describes one purchasable pass. Definitions are loaded once at
// startup and never mutated afterwards; membership prices are snapshots, so
// a later catalog change never touches stored rows.
type Definition struct {
	ID       string
	Label    string
	Price    int // whole currency units, no minor unit
	Duration Duration
}

// Validate checks if the Definition has valid data.
// POST: Returns nil if valid, error otherwise
func (p Definition) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return p.Duration.Validate()
}

// Catalog is a read-only pass lookup table.
type Catalog struct {
	byID  map[string]Definition
	order []string
}

// NewCatalog builds a catalog from a list of definitions.
// PRE: every definition is valid, ids are unique
// POST: Returns a catalog preserving definition order
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("pass %q: %w", d.ID, err)
		}
		if _, ok := c.byID[d.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		c.byID[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// Get retrieves a definition by id.
// POST: Returns the definition or ErrUnknownPass
func (c *Catalog) Get(id string) (Definition, error) {
	d, ok := c.byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownPass, id)
	}
	return d, nil
}

// PriceOf returns the catalog price of a pass.
// POST: Returns the price or ErrUnknownPass
func (c *Catalog) PriceOf(id string) (int, error) {
	d, err := c.Get(id)
	if err != nil {
		return 0, err
	}
	return d.Price, nil
}

// DurationOf returns the duration model of a pass.
// POST: Returns the duration or ErrUnknownPass
func (c *Catalog) DurationOf(id string) (Duration, error) {
	d, err := c.Get(id)
	if err != nil {
		return Duration{}, err
	}
	return d.Duration, nil
}

// Has reports whether a pass id is registered.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// List returns the definitions in load order.
// INVARIANT: the returned slice is a copy; the catalog is never mutated
func (c *Catalog) List() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ComputeEndDate resolves the end date of a coverage window starting at
// start. Day-count passes give an inclusive window of N days. Month passes
// add N calendar months preserving the day of month, clamping to the last
// day of the target month when it is shorter (Jan 31 + 1 month lands on the
// last day of February, never in March), then pull the result back by
// max(1, N/3) days to match the catalog's billing granularity.
// INVARIANT: pure — same inputs always yield the same output
func ComputeEndDate(start time.Time, d Duration) time.Time {
	start = dates.Day(start)

	if d.Unit == UnitMonths {
		year, month, day := start.Date()
		total := int(month) - 1 + d.N
		targetYear := year + total/12
		targetMonth := time.Month(total%12 + 1)
		if last := daysInMonth(targetYear, targetMonth); day > last {
			day = last
		}
		end := time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, time.UTC)
		sub := d.N / 3
		if sub < 1 {
			sub = 1
		}
		return end.AddDate(0, 0, -sub)
	}

	n := d.N
	if n < 1 {
		n = 1
	}
	return start.AddDate(0, 0, n-1)
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// day zero of the following month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
