// Package ledger defines the seat-occupancy ledger: the single write path
// for flight occupancy. Every writer, real bookings and the demand
// simulator alike, goes through Reserve.
package ledger

import (
	"context"
	"sync"

	"github.com/skopintsev/farebook/internal/domain"
)

// SeatLedger tracks per-flight capacity and occupancy. Reserve performs the
// check-and-update atomically under a per-flight critical section and
// returns the occupancy observed before the update. Release is the
// symmetric decrement kept for future cancellation support.
type SeatLedger interface {
	Reserve(ctx context.Context, flightID int64, seats int) (occupancyBefore int, err error)
	Release(ctx context.Context, flightID int64, seats int) error
}

type seatState struct {
	mu        sync.Mutex
	capacity  int
	occupancy int
}

// MemoryLedger is the in-process implementation, used by unit tests; the
// production wiring satisfies SeatLedger with the Postgres flight
// repository and its guarded occupancy update. Each flight has its own
// mutex, so reservations against different flights never serialize.
type MemoryLedger struct {
	mu      sync.RWMutex
	flights map[int64]*seatState
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{flights: make(map[int64]*seatState)}
}

// Track registers a flight with the ledger. Re-tracking an existing flight
// overwrites its counters.
func (l *MemoryLedger) Track(flightID int64, capacity, occupancy int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flights[flightID] = &seatState{capacity: capacity, occupancy: occupancy}
}

func (l *MemoryLedger) state(flightID int64) (*seatState, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.flights[flightID]
	return s, ok
}

func (l *MemoryLedger) Reserve(ctx context.Context, flightID int64, seats int) (int, error) {
	if seats <= 0 {
		return 0, domain.Validationf("seats must be positive, got %d", seats)
	}
	s, ok := l.state(flightID)
	if !ok {
		return 0, domain.ErrFlightNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if seats > s.capacity-s.occupancy {
		return 0, &domain.InsufficientSeatsError{Available: s.capacity - s.occupancy}
	}
	before := s.occupancy
	s.occupancy += seats
	return before, nil
}

func (l *MemoryLedger) Release(ctx context.Context, flightID int64, seats int) error {
	if seats <= 0 {
		return domain.Validationf("seats must be positive, got %d", seats)
	}
	s, ok := l.state(flightID)
	if !ok {
		return domain.ErrFlightNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.occupancy -= seats
	if s.occupancy < 0 {
		s.occupancy = 0
	}
	return nil
}

// Occupancy reports the current committed seat count for a flight.
func (l *MemoryLedger) Occupancy(flightID int64) (int, bool) {
	s, ok := l.state(flightID)
	if !ok {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupancy, true
}

var _ SeatLedger = (*MemoryLedger)(nil)
