package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skopintsev/farebook/internal/domain"
	"github.com/skopintsev/farebook/internal/ledger"
)

type FlightRepository interface {
	ledger.SeatLedger
	List(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, origin, destination, departure_time, base_price, capacity, current_occupancy, created_at, updated_at`

func (r *PGFlightRepository) List(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	q := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := []any{}
	if origin != "" {
		args = append(args, origin)
		q += ` AND origin = $1`
	}
	if destination != "" {
		args = append(args, destination)
		if len(args) == 1 {
			q += ` AND destination = $1`
		} else {
			q += ` AND destination = $2`
		}
	}
	q += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.BasePrice, &f.Capacity, &f.Occupancy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.BasePrice, &f.Capacity, &f.Occupancy, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Reserve commits a multi-seat occupancy increase in one guarded statement.
// The row-level lock taken by UPDATE is the per-flight critical section, so
// two concurrent reservations for the last seats serialize here and the
// loser observes the updated occupancy.
func (r *PGFlightRepository) Reserve(ctx context.Context, flightID int64, seats int) (int, error) {
	if seats <= 0 {
		return 0, domain.Validationf("seats must be positive, got %d", seats)
	}

	var after int
	err := r.db.QueryRow(ctx, `UPDATE flights
		SET current_occupancy = current_occupancy + $2, updated_at = now()
		WHERE id = $1 AND current_occupancy + $2 <= capacity
		RETURNING current_occupancy`, flightID, seats).Scan(&after)
	if err == nil {
		return after - seats, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Zero rows: flight missing, or not enough seats.
	var capacity, occupancy int
	if err := r.db.QueryRow(ctx, `SELECT capacity, current_occupancy FROM flights WHERE id=$1`, flightID).Scan(&capacity, &occupancy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrFlightNotFound
		}
		return 0, err
	}
	return 0, &domain.InsufficientSeatsError{Available: capacity - occupancy}
}

func (r *PGFlightRepository) Release(ctx context.Context, flightID int64, seats int) error {
	if seats <= 0 {
		return domain.Validationf("seats must be positive, got %d", seats)
	}
	cmd, err := r.db.Exec(ctx, `UPDATE flights
		SET current_occupancy = GREATEST(current_occupancy - $2, 0), updated_at = now()
		WHERE id = $1`, flightID, seats)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
