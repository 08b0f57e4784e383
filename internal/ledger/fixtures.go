package ledger

import (
	"fmt"

	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

// DemoEntries is the dataset shown to demo identities. Amounts are already in kg CO2e.
func DemoEntries() []models.EmissionEntry {
	return []models.EmissionEntry{
		demoEntry("1", types.CategoryTransportation, "Flight to London", 150.5, "2025-09-25", "Business trip to London"),
		demoEntry("2", types.CategoryTransportation, "Car commute", 25.4, "2025-09-24", "Daily commute to office"),
		demoEntry("3", types.CategoryEnergy, "Home electricity", 45.2, "2025-09-23", "Monthly electricity bill"),
		demoEntry("4", types.CategoryFood, "Restaurant dining", 12.1, "2025-09-22", "Dinner at steakhouse"),
		demoEntry("5", types.CategoryTransportation, "Uber rides", 8.7, "2025-09-21", "City transportation"),
		demoEntry("6", types.CategoryEnergy, "Office electricity", 23.8, "2025-09-20", "Workspace energy consumption"),
		demoEntry("7", types.CategoryFood, "Grocery shopping", 15.2, "2025-09-19", "Weekly groceries"),
		demoEntry("8", types.CategoryWaste, "Recycling credit", -2.1, "2025-09-18", "Paper and plastic recycling"),
	}
}

func demoEntry(id string, c types.Category, activity string, kg float64, date, desc string) models.EmissionEntry {
	return models.EmissionEntry{
		ID:          id,
		Category:    c,
		Activity:    activity,
		Amount:      kg,
		Unit:        "kg",
		Date:        date,
		Description: desc,
	}
}

type sample struct {
	category types.Category
	activity string
	amount   float64
	unit     string
	co2      float64
	date     string
	desc     string
}

var sampleData = []sample{
	{types.CategoryTransportation, "car_gasoline_medium", 25, "km", 4.8, "2025-09-20", "Drive to downtown for meeting"},
	{types.CategoryTransportation, "flight_domestic_short", 320, "km", 81.6, "2025-09-18", "Business trip to nearby city"},
	{types.CategoryTransportation, "train_local", 45, "km", 1.85, "2025-09-17", "Train commute to office"},
	{types.CategoryTransportation, "bus_city", 12, "km", 1.07, "2025-09-16", "Bus to shopping center"},
	{types.CategoryEnergy, "electricity", 450, "kWh", 180.45, "2025-09-15", "Monthly home electricity bill"},
	{types.CategoryEnergy, "natural_gas", 8, "therms", 42.4, "2025-09-14", "Home heating and hot water"},
	{types.CategoryFood, "beef", 0.3, "kg", 18.0, "2025-09-13", "Beef burger for lunch"},
	{types.CategoryFood, "chicken", 0.5, "kg", 4.95, "2025-09-12", "Chicken dinner"},
	{types.CategoryFood, "vegetables_root", 2, "kg", 0.86, "2025-09-11", "Weekly vegetable shopping"},
	{types.CategoryFood, "milk", 2, "liters", 6.4, "2025-09-10", "Weekly milk purchase"},
	{types.CategoryWaste, "recycling_aluminum", 0.5, "kg", -4.47, "2025-09-09", "Aluminum cans recycling"},
	{types.CategoryWaste, "recycling_paper", 3, "kg", -2.67, "2025-09-08", "Weekly paper recycling"},
	{types.CategoryWaste, "landfill_mixed", 5, "kg", 2.85, "2025-09-07", "General household waste"},
	{types.CategoryWaste, "composting_food", 2, "kg", -0.52, "2025-09-06", "Food waste composting"},
}

// SampleEntries builds the sample dataset; idPrefix keeps ids unique across calls
func SampleEntries(idPrefix string) []models.EmissionEntry {
	out := make([]models.EmissionEntry, len(sampleData))
	for i, s := range sampleData {
		out[i] = models.EmissionEntry{
			ID:            fmt.Sprintf("%s%d", idPrefix, i),
			Category:      s.category,
			Activity:      s.activity,
			Amount:        s.amount,
			Unit:          s.unit,
			Date:          s.date,
			Description:   s.desc,
			CO2Equivalent: models.Float(s.co2),
			LocalOnly:     true,
		}
	}
	return out
}
