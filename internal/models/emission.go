package models

import (
	"time"

	"github.com/carbontrack/internal/types"
)

// DateLayout is the calendar date format used by the API
const DateLayout = "2006-01-02"

// EmissionEntry is one logged activity
type EmissionEntry struct {
	ID            string         `json:"id" db:"id"`
	UserID        string         `json:"user_id,omitempty" db:"user_id"`
	Category      types.Category `json:"category" db:"category"`
	Activity      string         `json:"activity" db:"activity"`
	Amount        float64        `json:"amount" db:"amount"`
	Unit          string         `json:"unit" db:"unit"`
	Date          string         `json:"date" db:"date"`
	Description   string         `json:"description,omitempty" db:"description"`
	CO2Equivalent *float64       `json:"co2_equivalent,omitempty" db:"co2_equivalent"`
	CreatedAt     *time.Time     `json:"created_at,omitempty" db:"created_at"`
	// LocalOnly marks an entry the server has not confirmed yet
	LocalOnly bool `json:"local_only,omitempty" db:"-"`
}

// Value is the entry's contribution to every aggregate: co2_equivalent when known, amount otherwise
func (e EmissionEntry) Value() float64 {
	if e.CO2Equivalent != nil {
		return *e.CO2Equivalent
	}
	return e.Amount
}

// Month returns the YYYY-MM prefix of the entry date
func (e EmissionEntry) Month() string {
	if len(e.Date) < 7 {
		return ""
	}
	return e.Date[:7]
}

// EmissionCreate is the payload of POST /carbon-emissions
type EmissionCreate struct {
	Date        string         `json:"date"`
	Category    types.Category `json:"category"`
	Activity    string         `json:"activity"`
	Amount      float64        `json:"amount"`
	Unit        string         `json:"unit"`
	Description *string        `json:"description"`
}

// Float returns a pointer to f
func Float(f float64) *float64 {
	return &f
}
