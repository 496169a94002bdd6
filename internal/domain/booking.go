package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	// BookingStatusCancelled exists for the future cancellation flow; the
	// current booking path never produces it.
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Passenger struct {
	Name     string `json:"name"`
	Age      *int   `json:"age,omitempty"`
	Passport string `json:"passport,omitempty"`
	Seat     string `json:"seat,omitempty"`
}

// Booking is immutable once committed.
type Booking struct {
	ID         int64
	Reference  string
	FlightID   int64
	Passengers []Passenger
	Seats      int
	TotalPrice float64
	Status     BookingStatus
	CreatedAt  time.Time
}

// Receipt is a denormalized snapshot of a committed booking, retrievable
// independently of the booking row. Created once, never updated.
type Receipt struct {
	ID         string
	BookingID  int64
	Reference  string
	FlightID   int64
	Seats      int
	Passengers []Passenger
	TotalPrice float64
	BookedAt   time.Time
	CreatedAt  time.Time
}
