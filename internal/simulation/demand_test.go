package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skopintsev/farebook/internal/domain"
	"github.com/skopintsev/farebook/internal/ledger"
)

type staticLister struct {
	flights []domain.Flight
	err     error
}

func (l *staticLister) List(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return l.flights, l.err
}

func flightsFixture() []domain.Flight {
	departure := time.Now().Add(14 * 24 * time.Hour)
	return []domain.Flight{
		{ID: 1, Capacity: 150, Occupancy: 10, DepartureTime: departure},
		{ID: 2, Capacity: 150, Occupancy: 149, DepartureTime: departure},
		{ID: 3, Capacity: 150, Occupancy: 150, DepartureTime: departure},
	}
}

func TestSimulator_Tick(t *testing.T) {
	seatLedger := ledger.NewMemoryLedger()
	for _, f := range flightsFixture() {
		seatLedger.Track(f.ID, f.Capacity, f.Occupancy)
	}

	sim := NewSimulator(&staticLister{flights: flightsFixture()}, seatLedger, nil, "", 3, nil)
	sim.draw = func(n int) int { return 2 }

	err := sim.Tick(context.Background())
	assert.NoError(t, err)

	// Open flight took the increment.
	occ, _ := seatLedger.Occupancy(1)
	assert.Equal(t, 12, occ)

	// One seat left: a 2-seat increment is rejected, never partially applied.
	occ, _ = seatLedger.Occupancy(2)
	assert.Equal(t, 149, occ)

	// Full flight stays at capacity.
	occ, _ = seatLedger.Occupancy(3)
	assert.Equal(t, 150, occ)
}

func TestSimulator_TickZeroDraw(t *testing.T) {
	seatLedger := ledger.NewMemoryLedger()
	seatLedger.Track(1, 150, 10)

	sim := NewSimulator(&staticLister{flights: flightsFixture()[:1]}, seatLedger, nil, "", 3, nil)
	sim.draw = func(n int) int { return 0 }

	assert.NoError(t, sim.Tick(context.Background()))
	occ, _ := seatLedger.Occupancy(1)
	assert.Equal(t, 10, occ)
}

func TestSimulator_TickListError(t *testing.T) {
	expectedErr := errors.New("database error")
	sim := NewSimulator(&staticLister{err: expectedErr}, ledger.NewMemoryLedger(), nil, "", 3, nil)

	assert.Equal(t, expectedErr, sim.Tick(context.Background()))
}

// Never exceeds capacity no matter how many ticks run.
func TestSimulator_RepeatedTicksCapAtCapacity(t *testing.T) {
	seatLedger := ledger.NewMemoryLedger()
	seatLedger.Track(1, 20, 0)
	lister := &staticLister{flights: []domain.Flight{{ID: 1, Capacity: 20}}}

	sim := NewSimulator(lister, seatLedger, nil, "", 3, nil)
	sim.draw = func(n int) int { return 3 }

	for i := 0; i < 50; i++ {
		assert.NoError(t, sim.Tick(context.Background()))
	}

	occ, _ := seatLedger.Occupancy(1)
	assert.LessOrEqual(t, occ, 20)
	// 3-seat increments into 20 capacity stall at 18.
	assert.Equal(t, 18, occ)
}
