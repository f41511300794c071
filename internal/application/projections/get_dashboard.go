package projections

import (
	"context"
	"fmt"
	"sort"
	"time"

	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
)

// ExpiringMembership is one row of the re-registration list: a membership
// ending next calendar month, with the owning student's name resolved.
type ExpiringMembership struct {
	MembershipID string
	StudentID    string
	StudentName  string
	PassID       string
	EndDate      time.Time
}

// RevenuePoint is one bucket of the revenue series. Period is the bucket
// key: "2026" for years, "2026-03" for months, "2026-W12" for ISO weeks.
type RevenuePoint struct {
	Period string
	Amount int
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	StudentStore    StudentStore
	MembershipStore MembershipStore
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	TotalStudents      int
	ActiveMemberships  int // end date today or later and not on hold today
	HoldingMemberships int // hold interval containing today
	TotalRevenue       int // lifetime sum of membership price snapshots

	ExpiringNextMonth []ExpiringMembership // sorted by end date ascending

	RevenueByWeek  []RevenuePoint
	RevenueByMonth []RevenuePoint
	RevenueByYear  []RevenuePoint
}

// QueryGetDashboard aggregates the studio overview: headline counts, the
// next-month re-registration list, and revenue series keyed on membership
// start date.
// PRE: today is a calendar day
// POST: Revenue points are sorted by period key ascending
func QueryGetDashboard(ctx context.Context, today time.Time, deps GetDashboardDeps) (DashboardResult, error) {
	today = dates.Day(today)

	totalStudents, err := deps.StudentStore.Count(ctx, studentStore.ListFilter{})
	if err != nil {
		return DashboardResult{}, err
	}

	memberships, err := deps.MembershipStore.List(ctx, membershipStore.ListFilter{})
	if err != nil {
		return DashboardResult{}, err
	}

	result := DashboardResult{TotalStudents: totalStudents}

	byWeek := make(map[string]int)
	byMonth := make(map[string]int)
	byYear := make(map[string]int)

	firstOfNextMonth := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfNextMonth := time.Date(today.Year(), today.Month()+2, 0, 0, 0, 0, 0, time.UTC)

	var expiring []ExpiringMembership
	nameCache := make(map[string]string)

	for _, m := range memberships {
		result.TotalRevenue += m.Price

		holding := m.HoldingOn(today)
		if holding {
			result.HoldingMemberships++
		}
		if !m.EndDate.Before(today) && !holding {
			result.ActiveMemberships++
		}

		if !m.EndDate.Before(firstOfNextMonth) && !m.EndDate.After(lastOfNextMonth) {
			name, ok := nameCache[m.StudentID]
			if !ok {
				if s, err := deps.StudentStore.GetByID(ctx, m.StudentID); err == nil {
					name = s.Name
				}
				nameCache[m.StudentID] = name
			}
			expiring = append(expiring, ExpiringMembership{
				MembershipID: m.ID,
				StudentID:    m.StudentID,
				StudentName:  name,
				PassID:       m.PassID,
				EndDate:      m.EndDate,
			})
		}

		isoYear, isoWeek := m.StartDate.ISOWeek()
		byWeek[fmt.Sprintf("%d-W%02d", isoYear, isoWeek)] += m.Price
		byMonth[m.StartDate.Format("2006-01")] += m.Price
		byYear[m.StartDate.Format("2006")] += m.Price
	}

	sort.Slice(expiring, func(i, j int) bool {
		return expiring[i].EndDate.Before(expiring[j].EndDate)
	})
	result.ExpiringNextMonth = expiring

	result.RevenueByWeek = sortedRevenue(byWeek)
	result.RevenueByMonth = sortedRevenue(byMonth)
	result.RevenueByYear = sortedRevenue(byYear)

	return result, nil
}

func sortedRevenue(buckets map[string]int) []RevenuePoint {
	points := make([]RevenuePoint, 0, len(buckets))
	for period, amount := range buckets {
		points = append(points, RevenuePoint{Period: period, Amount: amount})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Period < points[j].Period
	})
	return points
}
