package flights

import (
	"context"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/skopintsev/farebook/internal/domain"
	"github.com/skopintsev/farebook/internal/pricing"
	"github.com/skopintsev/farebook/internal/repository"
)

type FlightUseCase interface {
	Search(ctx context.Context, origin, destination string) ([]domain.FareQuote, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	SetFlights(ctx context.Context, origin, destination string, flights []domain.Flight) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *zap.Logger

	pickDemand func() domain.DemandLevel
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, log *zap.Logger) *FlightService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlightService{
		repo:  repo,
		cache: cache,
		log:   log,
		pickDemand: func() domain.DemandLevel {
			return domain.DemandLevels[rand.Intn(len(domain.DemandLevels))]
		},
	}
}

// Search returns non-binding fare quotes for the route. The read is a
// lock-free snapshot: occupancy may be stale, booking re-validates.
func (s *FlightService) Search(ctx context.Context, origin, destination string) ([]domain.FareQuote, error) {
	origin = normalizeAirport(origin)
	destination = normalizeAirport(destination)

	flights, err := s.listFlights(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.FareQuote, 0, len(flights))
	for _, f := range flights {
		demand := s.pickDemand()
		quotes = append(quotes, domain.FareQuote{
			FlightID:       f.ID,
			FlightNumber:   f.FlightNumber,
			Origin:         f.Origin,
			Destination:    f.Destination,
			Departure:      f.DepartureTime,
			BasePrice:      f.BasePrice,
			AvailableSeats: f.AvailableSeats(),
			Demand:         demand,
			Fare:           pricing.Fare(f.BasePrice, f.Capacity, f.Occupancy, f.DepartureTime, demand),
		})
	}
	return quotes, nil
}

func (s *FlightService) listFlights(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, origin, destination); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, origin, destination, flights); err != nil {
			s.log.Warn("cache flights", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func normalizeAirport(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ FlightUseCase = (*FlightService)(nil)
