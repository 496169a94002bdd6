// Package simulation drives the periodic background demand job: a small
// random seat increment per flight, applied through the same seat ledger
// path as real bookings so it can never race a concurrent reservation.
package simulation

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skopintsev/farebook/internal/domain"
	"github.com/skopintsev/farebook/internal/kafka"
	"github.com/skopintsev/farebook/internal/ledger"
)

type FlightLister interface {
	List(ctx context.Context, origin, destination string) ([]domain.Flight, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Simulator struct {
	flights  FlightLister
	ledger   ledger.SeatLedger
	producer Producer
	topic    string
	maxSeats int
	log      *zap.Logger

	draw func(n int) int
}

func NewSimulator(flights FlightLister, seatLedger ledger.SeatLedger, producer Producer, topic string, maxSeats int, log *zap.Logger) *Simulator {
	if maxSeats <= 0 {
		maxSeats = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		flights:  flights,
		ledger:   seatLedger,
		producer: producer,
		topic:    topic,
		maxSeats: maxSeats,
		log:      log,
		draw:     rand.Intn,
	}
}

// Run ticks until the context is canceled.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.log.Error("demand simulation tick", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Tick applies one round of simulated demand to every flight.
func (s *Simulator) Tick(ctx context.Context) error {
	flights, err := s.flights.List(ctx, "", "")
	if err != nil {
		return err
	}

	for _, f := range flights {
		seats := s.draw(s.maxSeats + 1)
		if seats == 0 {
			continue
		}

		before, err := s.ledger.Reserve(ctx, f.ID, seats)
		if err != nil {
			var insufficient *domain.InsufficientSeatsError
			if errors.As(err, &insufficient) {
				// Expected near capacity; the flight is simply full.
				s.log.Debug("flight full, demand tick skipped",
					zap.Int64("flight_id", f.ID),
					zap.Int("available", insufficient.Available))
				continue
			}
			s.log.Error("demand reservation failed",
				zap.Int64("flight_id", f.ID),
				zap.Int("seats", seats),
				zap.Error(err))
			continue
		}

		s.log.Info("simulated demand applied",
			zap.Int64("flight_id", f.ID),
			zap.Int("seats", seats),
			zap.Int("occupancy", before+seats))

		if s.producer != nil && s.topic != "" {
			event := kafka.BookingEvent{
				EventID:  uuid.NewString(),
				Type:     kafka.EventDemandTick,
				FlightID: f.ID,
				Seats:    seats,
				BookedAt: time.Now().UTC(),
			}
			if err := s.producer.Publish(ctx, s.topic, uuid.NewString(), event); err != nil {
				s.log.Warn("publish demand tick", zap.Error(err))
			}
		}
	}
	return nil
}
