package domain

import "time"

// DemandLevel is the coarse demand signal feeding the pricing multiplier.
type DemandLevel string

const (
	DemandLow    DemandLevel = "low"
	DemandMedium DemandLevel = "medium"
	DemandHigh   DemandLevel = "high"
)

var DemandLevels = []DemandLevel{DemandLow, DemandMedium, DemandHigh}

type Flight struct {
	ID            int64
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
	BasePrice     float64
	Capacity      int
	Occupancy     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AvailableSeats never reports negative even if occupancy data is corrupt.
func (f *Flight) AvailableSeats() int {
	if n := f.Capacity - f.Occupancy; n > 0 {
		return n
	}
	return 0
}

// FareQuote is a computed, non-binding price shown on the search path.
type FareQuote struct {
	FlightID       int64       `json:"flight_id"`
	FlightNumber   string      `json:"flight_number"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	Departure      time.Time   `json:"departure"`
	BasePrice      float64     `json:"base_price"`
	AvailableSeats int         `json:"available_seats"`
	Demand         DemandLevel `json:"demand"`
	Fare           float64     `json:"fare"`
}
