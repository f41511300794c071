package membership

import (
	"time"

	"yogao/internal/domain/dates"
)

// Status kind constants, in classification priority order.
const (
	StatusNoPass       = "no_pass"
	StatusPendingStart = "pending_start"
	StatusHolding      = "holding"
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring_soon"
	StatusActive       = "active"
)

// ExpiringSoonWindowDays is the lead window for the expiring-soon status.
const ExpiringSoonWindowDays = 7

// Status is the classification of a student's representative membership.
type Status struct {
	Kind           string
	DaysUntilStart int // set for pending_start
	DaysRemaining  int // set for expiring_soon: inclusive days left including today
}

// Summary is the per-student projection every other view reads: the chosen
// representative membership, its status, and the furthest future coverage
// end across all of the student's still-valid memberships.
type Summary struct {
	Status              Status
	Representative      Membership // zero value when Kind is no_pass
	CombinedCoverageEnd time.Time  // zero when no membership ends today or later
}

// Representative picks the single membership that summarizes a student's
// state: the one covering today if any, else the one starting soonest in
// the future, else the one that ended most recently, else the one with the
// latest end date.
// PRE: today is day-normalized or will be normalized internally
// POST: ok is false only when memberships is empty
func Representative(today time.Time, memberships []Membership) (Membership, bool) {
	if len(memberships) == 0 {
		return Membership{}, false
	}
	today = dates.Day(today)

	var current, upcoming, past *Membership
	for i := range memberships {
		m := &memberships[i]
		switch {
		case m.Contains(today):
			if current == nil || dates.Day(m.EndDate).After(dates.Day(current.EndDate)) {
				current = m
			}
		case dates.Day(m.StartDate).After(today):
			if upcoming == nil || dates.Day(m.StartDate).Before(dates.Day(upcoming.StartDate)) {
				upcoming = m
			}
		case dates.Day(m.EndDate).Before(today):
			if past == nil || dates.Day(m.EndDate).After(dates.Day(past.EndDate)) {
				past = m
			}
		}
	}

	switch {
	case current != nil:
		return *current, true
	case upcoming != nil:
		return *upcoming, true
	case past != nil:
		return *past, true
	}

	// Fallback: latest end date wins.
	best := memberships[0]
	for _, m := range memberships[1:] {
		if dates.Day(m.EndDate).After(dates.Day(best.EndDate)) {
			best = m
		}
	}
	return best, true
}

// Classify computes the status summary for one student's memberships.
// Recomputed on every read — no cached status is ever persisted.
// INVARIANT: pure — inputs are not mutated
func Classify(today time.Time, memberships []Membership) Summary {
	today = dates.Day(today)

	rep, ok := Representative(today, memberships)
	if !ok {
		return Summary{Status: Status{Kind: StatusNoPass}}
	}

	sum := Summary{
		Representative:      rep,
		CombinedCoverageEnd: combinedCoverageEnd(today, memberships),
	}

	start := dates.Day(rep.StartDate)
	end := dates.Day(rep.EndDate)
	switch {
	case start.After(today):
		sum.Status = Status{
			Kind:           StatusPendingStart,
			DaysUntilStart: dates.DaysBetween(today, start),
		}
	case rep.HoldingOn(today):
		sum.Status = Status{Kind: StatusHolding}
	case end.Before(today):
		sum.Status = Status{Kind: StatusExpired}
	case dates.DaysBetween(today, end) <= ExpiringSoonWindowDays:
		sum.Status = Status{
			Kind:          StatusExpiringSoon,
			DaysRemaining: dates.DaysBetween(today, end) + 1,
		}
	default:
		sum.Status = Status{Kind: StatusActive}
	}
	return sum
}

// combinedCoverageEnd returns the maximum end date among memberships still
// valid today, for stacked-pass display. Zero when none qualify.
func combinedCoverageEnd(today time.Time, memberships []Membership) time.Time {
	var max time.Time
	for _, m := range memberships {
		end := dates.Day(m.EndDate)
		if end.Before(today) {
			continue
		}
		if max.IsZero() || end.After(max) {
			max = end
		}
	}
	return max
}
