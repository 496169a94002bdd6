// Package pricing implements the demand-responsive fare formula.
//
// The fare is a pure function of base price, seat scarcity, whole days to
// departure and a coarse demand signal. Rounding is half-up at 2 decimals;
// callers that need a different mode do not exist on purpose.
package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skopintsev/farebook/internal/domain"
)

// Fare computes the dynamic fare for one seat as of now.
func Fare(basePrice float64, totalSeats, bookedSeats int, departure time.Time, demand domain.DemandLevel) float64 {
	return fareAt(time.Now().UTC(), basePrice, totalSeats, bookedSeats, departure, demand)
}

func fareAt(now time.Time, basePrice float64, totalSeats, bookedSeats int, departure time.Time, demand domain.DemandLevel) float64 {
	if totalSeats <= 0 {
		return Round2(basePrice)
	}

	remaining := math.Max(0, float64(totalSeats-bookedSeats)/float64(totalSeats))
	days := daysUntil(now, departure)

	var seatMult float64
	switch {
	case remaining > 0.5:
		seatMult = 1.0
	case remaining > 0.2:
		seatMult = 1.12
	default:
		seatMult = 1.35
	}

	var timeMult float64
	switch {
	case days > 30:
		timeMult = 1.0
	case days > 15:
		timeMult = 1.08
	case days > 7:
		timeMult = 1.18
	default:
		timeMult = 1.40
	}

	demandMult := 1.0
	switch demand {
	case domain.DemandLow:
		demandMult = 1.0
	case domain.DemandMedium:
		demandMult = 1.06
	case domain.DemandHigh:
		demandMult = 1.18
	}

	fare := decimal.NewFromFloat(basePrice).
		Mul(decimal.NewFromFloat(seatMult)).
		Mul(decimal.NewFromFloat(timeMult)).
		Mul(decimal.NewFromFloat(demandMult))
	return fare.Round(2).InexactFloat64()
}

// daysUntil floors toward negative infinity, so a flight that departed
// 1 hour ago counts as -1 days, not 0.
func daysUntil(now, departure time.Time) int {
	return int(math.Floor(departure.Sub(now).Hours() / 24))
}

// Round2 rounds a price to cents, half-up.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
