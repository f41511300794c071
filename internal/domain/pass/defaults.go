package pass

// Default pass ids.
const (
	OneDay      = "one-day"
	OneWeek     = "one-week"
	Monthly2x   = "monthly-2x"
	Quarterly2x = "quarterly-2x"
	Monthly3x   = "monthly-3x"
	Quarterly3x = "quarterly-3x"
	Monthly5x   = "monthly-5x"
	Quarterly5x = "quarterly-5x"
)

// Defaults returns the studio's standard pass lineup, used when no catalog
// file is configured.
func Defaults() []Definition {
	return []Definition{
		{ID: OneDay, Label: "One day", Price: 30000, Duration: Days(1)},
		{ID: OneWeek, Label: "One week", Price: 50000, Duration: Days(7)},
		{ID: Monthly2x, Label: "2x per week / 1 month", Price: 150000, Duration: Months(1)},
		{ID: Quarterly2x, Label: "2x per week / 3 months", Price: 360000, Duration: Months(3)},
		{ID: Monthly3x, Label: "3x per week / 1 month", Price: 170000, Duration: Months(1)},
		{ID: Quarterly3x, Label: "3x per week / 3 months", Price: 390000, Duration: Months(3)},
		{ID: Monthly5x, Label: "5x per week / 1 month", Price: 200000, Duration: Months(1)},
		{ID: Quarterly5x, Label: "5x per week / 3 months", Price: 480000, Duration: Months(3)},
	}
}

// DefaultCatalog builds a catalog from Defaults.
// POST: never fails — the default lineup is valid by construction
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Defaults())
	if err != nil {
		panic(err) // unreachable: defaults are static and valid
	}
	return c
}
