// Package chart turns the emission list into a time series and renders it.
package chart

import (
	"sort"
	"time"

	"github.com/carbontrack/internal/models"
)

// DefaultDays is how many days the daily series keeps
const DefaultDays = 8

// Mode selects the grouping of a series
type Mode string

const (
	ModeDaily   Mode = "daily"
	ModeMonthly Mode = "monthly"
)

// Point is one label/value pair
type Point struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered list of points, oldest first
type Series struct {
	Mode   Mode    `json:"mode"`
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Labels returns the point labels
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the point values
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// BuildDaily sums entry values per date and keeps the most recent limit days
func BuildDaily(entries []models.EmissionEntry, limit int) Series {
	if limit <= 0 {
		limit = DefaultDays
	}
	points := group(entries, func(e models.EmissionEntry) string {
		if len(e.Date) < len(models.DateLayout) {
			return e.Date
		}
		return e.Date[:len(models.DateLayout)]
	}, models.DateLayout, "Jan 2")
	if len(points) > limit {
		points = points[len(points)-limit:]
	}
	return Series{Mode: ModeDaily, Title: "Daily CO₂ Emissions (kg)", Points: points}
}

// BuildMonthly sums entry values per calendar month
func BuildMonthly(entries []models.EmissionEntry) Series {
	points := group(entries, models.EmissionEntry.Month, "2006-01", "Jan 2006")
	return Series{Mode: ModeMonthly, Title: "Monthly CO₂ Emissions (kg)", Points: points}
}

// Build dispatches on mode
func Build(mode Mode, entries []models.EmissionEntry, days int) Series {
	if mode == ModeMonthly {
		return BuildMonthly(entries)
	}
	return BuildDaily(entries, days)
}

func group(entries []models.EmissionEntry, key func(models.EmissionEntry) string, keyLayout, labelLayout string) []Point {
	sums := make(map[string]float64)
	for _, e := range entries {
		k := key(e)
		if k == "" {
			continue
		}
		sums[k] += e.Value()
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]Point, len(keys))
	for i, k := range keys {
		label := k
		if t, err := time.Parse(keyLayout, k); err == nil {
			label = t.Format(labelLayout)
		}
		points[i] = Point{Key: k, Label: label, Value: sums[k]}
	}
	return points
}
