package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

var propertyMonths = []string{"2025-09", "2025-10", "2024-09"}

// entriesFrom builds a list whose dates and co2 presence vary with the index
func entriesFrom(values []float64) []models.EmissionEntry {
	out := make([]models.EmissionEntry, len(values))
	for i, v := range values {
		e := models.EmissionEntry{
			ID:       "e" + string(rune('a'+i%26)) + string(rune('0'+i/26%10)),
			Category: types.Categories[i%len(types.Categories)],
			Amount:   v,
			Unit:     "kg",
			Date:     propertyMonths[i%len(propertyMonths)] + "-15",
		}
		if i%2 == 0 {
			e.CO2Equivalent = models.Float(v * 1.5)
		}
		out[i] = e
	}
	return out
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-6*math.Max(1, math.Abs(a)+math.Abs(b))
}

func TestAggregateProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	values := gen.SliceOf(gen.Float64Range(-50, 500))

	properties.Property("total is the sum of co2 falling back to amount", prop.ForAll(
		func(vs []float64) bool {
			entries := entriesFrom(vs)
			var want float64
			for _, e := range entries {
				if e.CO2Equivalent != nil {
					want += *e.CO2Equivalent
				} else {
					want += e.Amount
				}
			}
			return closeTo(Total(entries), want)
		},
		values,
	))

	properties.Property("monthly only counts the reference month", prop.ForAll(
		func(vs []float64, m int) bool {
			entries := entriesFrom(vs)
			month := propertyMonths[m]
			var want float64
			for _, e := range entries {
				if e.Date[:7] == month {
					want += e.Value()
				}
			}
			return closeTo(Monthly(entries, month), want)
		},
		values,
		gen.IntRange(0, len(propertyMonths)-1),
	))

	properties.Property("goal progress is clamped and rounded", prop.ForAll(
		func(monthly float64) bool {
			got := GoalProgress(monthly, DefaultMonthlyTargetKg)
			want := math.Max(0, math.Min(100, math.Round(monthly/DefaultMonthlyTargetKg*100)))
			return got >= 0 && got <= 100 && float64(got) == want
		},
		gen.Float64Range(-1000, 1000),
	))

	properties.Property("incremental add and delete match full recomputation", prop.ForAll(
		func(vs []float64, extra float64) bool {
			l := newTestLedger(&fakeEmissions{}, nil)
			l.Replace(entriesFrom(vs))
			before := l.Aggregates()

			l.prepend(models.EmissionEntry{ID: "extra", Category: types.CategoryFood, Amount: extra, Date: l.Aggregates().Month + "-01"})
			afterAdd := l.Aggregates()
			full := Compute(l.Entries(), afterAdd.Month, l.Target())
			if !closeTo(afterAdd.Total, full.Total) || !closeTo(afterAdd.Monthly, full.Monthly) || afterAdd.GoalProgress != full.GoalProgress {
				return false
			}

			if _, err := l.Delete(context.Background(), "extra"); err != nil {
				return false
			}
			after := l.Aggregates()
			return closeTo(after.Total, before.Total) && closeTo(after.Monthly, before.Monthly)
		},
		values,
		gen.Float64Range(0, 400),
	))

	properties.TestingRun(t)
}
