package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
)

func entry(date string, amount float64, co2 *float64) models.EmissionEntry {
	return models.EmissionEntry{Date: date, Amount: amount, CO2Equivalent: co2}
}

func TestBuildDaily(t *testing.T) {
	entries := []models.EmissionEntry{
		entry("2025-09-25", 150.5, nil),
		entry("2025-09-25", 10, models.Float(4.5)),
		entry("2025-09-24T08:00:00", 25.4, nil),
		entry("2025-09-10", 1, nil),
		entry("2025-09-11", 2, nil),
	}

	s := BuildDaily(entries, 3)
	assert.Equal(t, ModeDaily, s.Mode)
	assert.Equal(t, []string{"Sep 11", "Sep 24", "Sep 25"}, s.Labels())
	assert.Equal(t, []float64{2, 25.4, 155}, s.Values())

	all := BuildDaily(entries, 0)
	assert.Len(t, all.Points, 4)
	assert.Equal(t, "2025-09-10", all.Points[0].Key)
}

func TestBuildMonthly(t *testing.T) {
	entries := []models.EmissionEntry{
		entry("2025-09-25", 10, nil),
		entry("2025-09-01", 5, nil),
		entry("2024-12-31", 1, models.Float(7)),
		entry("", 99, nil),
	}

	s := Build(ModeMonthly, entries, 0)
	assert.Equal(t, []string{"Dec 2024", "Sep 2025"}, s.Labels())
	assert.Equal(t, []float64{7, 15}, s.Values())
}

func TestTextRenderer(t *testing.T) {
	s := BuildDaily([]models.EmissionEntry{
		entry("2025-09-18", -2.1, nil),
		entry("2025-09-19", 15.2, nil),
	}, 8)

	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer().Render(&buf, s))
	out := buf.String()
	assert.Contains(t, out, "Daily CO₂ Emissions (kg)")
	assert.Contains(t, out, "Sep 18")
	assert.Contains(t, out, "-2.1")
	assert.Contains(t, out, "15.2")
	assert.Equal(t, 3, strings.Count(out, "\n"))

	buf.Reset()
	require.NoError(t, NewTextRenderer().Render(&buf, Series{Title: "empty"}))
	assert.Contains(t, buf.String(), "no emissions yet")
}

func TestNilRendererDegradesToNoop(t *testing.T) {
	r := OrNoop(nil, logging.NewNop())
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Series{Points: []Point{{Label: "x", Value: 1}}}))
	assert.Zero(t, buf.Len())
}
