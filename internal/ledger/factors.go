package ledger

import (
	"github.com/carbontrack/internal/types"
)

// DefaultFactor is the kg CO2e per unit assumed for activities missing from the table
const DefaultFactor = 2.0

// localFactors approximates kg CO2e per unit for entries saved without the server
var localFactors = map[types.Category]map[string]float64{
	types.CategoryTransportation: {
		"car_gasoline_small":    0.151,
		"car_gasoline_medium":   0.192,
		"car_gasoline_large":    0.251,
		"car_electric":          0.1203,
		"bus_city":              0.089,
		"flight_domestic_short": 0.255,
	},
	types.CategoryEnergy: {
		"electricity": 0.401,
		"natural_gas": 0.184,
		"heating_oil": 2.54,
	},
	types.CategoryFood: {
		"beef":       60.0,
		"chicken":    9.9,
		"vegetables": 2.0,
	},
}

// Factor returns the local emission factor of an activity
func Factor(category types.Category, activity string) float64 {
	if f, ok := localFactors[category][activity]; ok {
		return f
	}
	return DefaultFactor
}

// EstimateCO2 approximates the kg CO2e of amount units of an activity
func EstimateCO2(category types.Category, activity string, amount float64) float64 {
	return amount * Factor(category, activity)
}

// Activity is a selectable activity of the emission form
type Activity struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Unit    string `json:"unit"`
	Example string `json:"example"`
}

// ActivityOptions lists the activities offered per category
var ActivityOptions = map[types.Category][]Activity{
	types.CategoryTransportation: {
		{Key: "car_gasoline_medium", Name: "Medium Gasoline Car", Unit: "km", Example: "25 km commute ≈ 4.8 kg CO₂"},
		{Key: "car_gasoline_small", Name: "Small Gasoline Car", Unit: "km", Example: "25 km commute ≈ 3.8 kg CO₂"},
		{Key: "car_gasoline_large", Name: "Large Car/SUV", Unit: "km", Example: "25 km commute ≈ 6.3 kg CO₂"},
		{Key: "car_hybrid", Name: "Hybrid Vehicle", Unit: "km", Example: "25 km commute ≈ 2.7 kg CO₂"},
		{Key: "car_electric", Name: "Electric Vehicle", Unit: "km", Example: "25 km commute ≈ 3.0 kg CO₂"},
		{Key: "motorcycle", Name: "Motorcycle", Unit: "km", Example: "25 km ride ≈ 2.6 kg CO₂"},
		{Key: "bus_city", Name: "City Bus", Unit: "km", Example: "25 km trip ≈ 2.2 kg CO₂"},
		{Key: "train_local", Name: "Local Train", Unit: "km", Example: "25 km trip ≈ 1.0 kg CO₂"},
		{Key: "flight_domestic_short", Name: "Domestic Flight (<500km)", Unit: "km", Example: "500 km flight ≈ 128 kg CO₂"},
		{Key: "flight_international", Name: "International Flight", Unit: "km", Example: "1000 km flight ≈ 150 kg CO₂"},
	},
	types.CategoryEnergy: {
		{Key: "electricity", Name: "Electricity Usage", Unit: "kWh", Example: "100 kWh ≈ 40 kg CO₂"},
		{Key: "natural_gas", Name: "Natural Gas", Unit: "therms", Example: "10 therms ≈ 53 kg CO₂"},
		{Key: "heating_oil", Name: "Heating Oil", Unit: "gallons", Example: "10 gallons ≈ 95 kg CO₂"},
		{Key: "propane", Name: "Propane", Unit: "gallons", Example: "10 gallons ≈ 57 kg CO₂"},
	},
	types.CategoryFood: {
		{Key: "beef", Name: "Beef", Unit: "kg", Example: "1 kg ≈ 60 kg CO₂"},
		{Key: "lamb", Name: "Lamb", Unit: "kg", Example: "1 kg ≈ 39 kg CO₂"},
		{Key: "pork", Name: "Pork", Unit: "kg", Example: "1 kg ≈ 12 kg CO₂"},
		{Key: "chicken", Name: "Chicken", Unit: "kg", Example: "1 kg ≈ 10 kg CO₂"},
		{Key: "fish_farmed", Name: "Farmed Fish", Unit: "kg", Example: "1 kg ≈ 14 kg CO₂"},
		{Key: "fish_wild", Name: "Wild Fish", Unit: "kg", Example: "1 kg ≈ 3 kg CO₂"},
		{Key: "cheese", Name: "Cheese", Unit: "kg", Example: "1 kg ≈ 14 kg CO₂"},
		{Key: "milk", Name: "Milk", Unit: "liters", Example: "1 liter ≈ 3.2 kg CO₂"},
		{Key: "eggs", Name: "Eggs", Unit: "kg", Example: "1 kg ≈ 4.2 kg CO₂"},
		{Key: "rice", Name: "Rice", Unit: "kg", Example: "1 kg ≈ 4 kg CO₂"},
		{Key: "vegetables_root", Name: "Root Vegetables", Unit: "kg", Example: "1 kg ≈ 0.4 kg CO₂"},
		{Key: "fruits_local", Name: "Local Fruits", Unit: "kg", Example: "1 kg ≈ 1.1 kg CO₂"},
	},
	types.CategoryWaste: {
		{Key: "landfill_mixed", Name: "Mixed Waste to Landfill", Unit: "kg", Example: "10 kg ≈ 5.7 kg CO₂"},
		{Key: "recycling_paper", Name: "Paper Recycling", Unit: "kg", Example: "5 kg saves 4.5 kg CO₂"},
		{Key: "recycling_plastic", Name: "Plastic Recycling", Unit: "kg", Example: "2 kg saves 3.7 kg CO₂"},
		{Key: "recycling_aluminum", Name: "Aluminum Recycling", Unit: "kg", Example: "1 kg saves 8.9 kg CO₂"},
		{Key: "composting_food", Name: "Food Composting", Unit: "kg", Example: "5 kg saves 1.3 kg CO₂"},
	},
}

// DefaultUnit returns the unit of a known activity, or kg
func DefaultUnit(category types.Category, activity string) string {
	for _, a := range ActivityOptions[category] {
		if a.Key == activity {
			return a.Unit
		}
	}
	return "kg"
}
