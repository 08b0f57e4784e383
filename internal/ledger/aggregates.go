// Package ledger holds the emission list of the signed-in user and the
// aggregates derived from it.
package ledger

import (
	"math"
	"time"

	"github.com/carbontrack/internal/models"
)

// DefaultMonthlyTargetKg is the monthly emission goal used for goal progress
const DefaultMonthlyTargetKg = 300

// Aggregates are always derivable from the entry list; they are never stored on their own
type Aggregates struct {
	Total        float64 `json:"total_emissions"`
	Monthly      float64 `json:"monthly_emissions"`
	GoalProgress int     `json:"goal_progress"`
	Month        string  `json:"month"`
}

// Total sums the value of every entry
func Total(entries []models.EmissionEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Value()
	}
	return sum
}

// Monthly sums the entries whose date falls in month (YYYY-MM)
func Monthly(entries []models.EmissionEntry, month string) float64 {
	var sum float64
	for _, e := range entries {
		if e.Month() == month {
			sum += e.Value()
		}
	}
	return sum
}

// GoalProgress is monthly as a percentage of target, rounded and clamped to [0,100]
func GoalProgress(monthly, target float64) int {
	if target <= 0 {
		target = DefaultMonthlyTargetKg
	}
	p := math.Round(monthly / target * 100)
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}

// Compute recomputes every aggregate from scratch
func Compute(entries []models.EmissionEntry, month string, target float64) Aggregates {
	monthly := Monthly(entries, month)
	return Aggregates{
		Total:        Total(entries),
		Monthly:      monthly,
		GoalProgress: GoalProgress(monthly, target),
		Month:        month,
	}
}

// MonthOf returns the YYYY-MM key of t
func MonthOf(t time.Time) string {
	return t.Format("2006-01")
}

// add adjusts the aggregates for one entry entering (sign=1) or leaving (sign=-1) the list
func (a Aggregates) add(e models.EmissionEntry, sign float64, target float64) Aggregates {
	a.Total += sign * e.Value()
	if e.Month() == a.Month {
		a.Monthly += sign * e.Value()
	}
	a.GoalProgress = GoalProgress(a.Monthly, target)
	return a
}
