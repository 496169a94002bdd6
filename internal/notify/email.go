package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/skopintsev/farebook/internal/kafka"
)

// Sender simulates the confirmation email sent after a booking commits.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.log.Info("send booking confirmation",
		zap.String("reference", event.Reference),
		zap.Int64("flight_id", event.FlightID),
		zap.Int("seats", event.Seats),
		zap.Float64("total_price", event.TotalPrice))
	return nil
}
