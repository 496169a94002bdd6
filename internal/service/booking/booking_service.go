package booking

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skopintsev/farebook/internal/domain"
	"github.com/skopintsev/farebook/internal/kafka"
	"github.com/skopintsev/farebook/internal/pricing"
	"github.com/skopintsev/farebook/internal/receipt"
	"github.com/skopintsev/farebook/internal/repository"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, *domain.Receipt, error)
	ReceiptDocument(ctx context.Context, reference string) ([]byte, error)
}

type Cache interface {
	AcquireFlightLock(ctx context.Context, flightID int64, ttl, maxWait time.Duration) (bool, error)
	ReleaseFlightLock(ctx context.Context, flightID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingInput struct {
	FlightID           int64
	Passengers         []domain.Passenger
	SimulatePayment    bool
	PaymentSuccessRate float64
	// Demand is optional; when empty the engine draws one.
	Demand domain.DemandLevel
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	lockWait           time.Duration
	refAttempts        int
	log                *zap.Logger

	// Injection seams for the two random draws; tests pin them.
	paymentDraw func() float64
	pickDemand  func() domain.DemandLevel
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithReferenceAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.refAttempts = n
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	lockTTL, lockWait time.Duration,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		lockTTL:      lockTTL,
		lockWait:     lockWait,
		refAttempts:  3,
		log:          log,
		paymentDraw:  rand.Float64,
		pickDemand:   randomDemand,
	}
	if service.log == nil {
		service.log = zap.NewNop()
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func randomDemand() domain.DemandLevel {
	return domain.DemandLevels[rand.Intn(len(domain.DemandLevels))]
}

// Book runs the whole booking transaction: lock, re-validate, price,
// simulated payment, atomic commit. Any failure before Commit leaves no
// state behind; a failure inside Commit rolls the transaction back.
func (s *BookingService) Book(ctx context.Context, input BookingInput) (*domain.Booking, error) {
	seats := len(input.Passengers)
	if seats == 0 {
		return nil, domain.Validationf("at least one passenger is required")
	}
	for i, p := range input.Passengers {
		if p.Name == "" {
			return nil, domain.Validationf("passenger %d: name is required", i+1)
		}
	}
	if input.PaymentSuccessRate < 0 || input.PaymentSuccessRate > 1 {
		return nil, domain.Validationf("payment_success_rate must be in [0,1], got %v", input.PaymentSuccessRate)
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireFlightLock(ctx, input.FlightID, s.lockTTL, s.lockWait)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrLockTimeout
		}
		defer func() {
			_ = s.cache.ReleaseFlightLock(ctx, input.FlightID)
		}()
	}

	// Authoritative state, read after the lock was taken.
	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if seats > flight.AvailableSeats() {
		return nil, &domain.InsufficientSeatsError{Available: flight.AvailableSeats()}
	}

	demand := input.Demand
	if demand == "" {
		demand = s.pickDemand()
	}
	farePerSeat := pricing.Fare(flight.BasePrice, flight.Capacity, flight.Occupancy, flight.DepartureTime, demand)
	totalPrice := pricing.Round2(farePerSeat * float64(seats))

	// Payment is decided before any mutation, so a decline needs no rollback.
	if input.SimulatePayment {
		if s.paymentDraw() >= input.PaymentSuccessRate {
			return nil, domain.ErrPaymentDeclined
		}
	}

	booking := &domain.Booking{
		FlightID:   input.FlightID,
		Passengers: input.Passengers,
		Seats:      seats,
		TotalPrice: totalPrice,
	}
	for attempt := 0; attempt < s.refAttempts; attempt++ {
		booking.Reference = NewReference()
		err = s.bookings.Commit(ctx, booking)
		if !errors.Is(err, domain.ErrReferenceCollision) {
			break
		}
	}
	if err != nil {
		s.log.Error("booking commit failed, transaction rolled back",
			zap.Int64("flight_id", input.FlightID),
			zap.Int("seats", seats),
			zap.Error(err))
		return nil, err
	}

	if err := s.publish(ctx, kafka.EventBookingCommitted, booking); err != nil {
		s.log.Warn("publish booking event",
			zap.String("reference", booking.Reference),
			zap.Error(err))
	}
	return booking, nil
}

// GetBooking returns the committed booking and its latest receipt snapshot.
// A missing receipt is not an error; the receipt comes back nil.
func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, *domain.Receipt, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.bookings.LatestReceipt(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return booking, nil, nil
		}
		return nil, nil, err
	}
	return booking, rec, nil
}

// ReceiptDocument renders the latest receipt as a downloadable artifact.
func (s *BookingService) ReceiptDocument(ctx context.Context, reference string) ([]byte, error) {
	rec, err := s.bookings.LatestReceipt(ctx, reference)
	if err != nil {
		return nil, err
	}
	return receipt.Render(rec)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Reference:  booking.Reference,
		FlightID:   booking.FlightID,
		Seats:      booking.Seats,
		TotalPrice: booking.TotalPrice,
		BookedAt:   booking.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
