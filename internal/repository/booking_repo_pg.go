package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skopintsev/farebook/internal/domain"
)

type BookingRepository interface {
	// Commit persists the booking, its passengers and the receipt snapshot
	// together with the occupancy increase, as one transaction. The booking
	// ID and timestamps are filled in on success.
	Commit(ctx context.Context, booking *domain.Booking) error
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	LatestReceipt(ctx context.Context, reference string) (*domain.Receipt, error)
}

// Capabilities are the startup schema flags: which optional tables the
// deployment carries. Decided once from config, never probed per request.
type Capabilities struct {
	Passengers bool
	Receipts   bool
}

// txRunner is the slice of pgx.Tx that Commit drives. Tests substitute a
// recording implementation to exercise the rollback path without a
// database.
type txRunner interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type PGBookingRepository struct {
	db    *pgxpool.Pool
	caps  Capabilities
	begin func(ctx context.Context) (txRunner, error)
}

func NewBookingRepository(db *pgxpool.Pool, caps Capabilities) BookingRepository {
	return &PGBookingRepository{
		db:   db,
		caps: caps,
		begin: func(ctx context.Context) (txRunner, error) {
			return db.BeginTx(ctx, pgx.TxOptions{})
		},
	}
}

const uniqueViolation = "23505"

func (r *PGBookingRepository) Commit(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Re-validate under the row lock; the engine already checked, but this
	// is the authoritative no-oversell gate.
	var capacity, occupancy int
	if err := tx.QueryRow(ctx, `SELECT capacity, current_occupancy FROM flights WHERE id=$1 FOR UPDATE`, booking.FlightID).Scan(&capacity, &occupancy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrFlightNotFound
		}
		return err
	}
	if booking.Seats > capacity-occupancy {
		return &domain.InsufficientSeatsError{Available: capacity - occupancy}
	}

	if _, err := tx.Exec(ctx, `UPDATE flights SET current_occupancy = current_occupancy + $2, updated_at = now() WHERE id=$1`, booking.FlightID, booking.Seats); err != nil {
		return err
	}

	booking.Status = domain.BookingStatusConfirmed
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (reference, flight_id, seats, total_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`, booking.Reference, booking.FlightID, booking.Seats, booking.TotalPrice, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrReferenceCollision
		}
		return err
	}

	if r.caps.Passengers {
		for _, p := range booking.Passengers {
			if _, err := tx.Exec(ctx, `INSERT INTO passengers (booking_id, name, age, passport, seat) VALUES ($1, $2, $3, $4, $5)`,
				booking.ID, p.Name, p.Age, p.Passport, p.Seat); err != nil {
				return err
			}
		}
	}

	if r.caps.Receipts {
		payload, err := json.Marshal(booking.Passengers)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO receipts (id, booking_id, reference, flight_id, seats, passengers, total_price, booked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), booking.ID, booking.Reference, booking.FlightID, booking.Seats, payload, booking.TotalPrice, booking.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, reference, flight_id, seats, total_price, status, created_at FROM bookings WHERE reference=$1`, reference)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Reference, &b.FlightID, &b.Seats, &b.TotalPrice, &b.Status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	if r.caps.Passengers {
		rows, err := r.db.Query(ctx, `SELECT name, age, passport, seat FROM passengers WHERE booking_id=$1 ORDER BY id`, b.ID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var p domain.Passenger
			if err := rows.Scan(&p.Name, &p.Age, &p.Passport, &p.Seat); err != nil {
				return nil, err
			}
			b.Passengers = append(b.Passengers, p)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (r *PGBookingRepository) LatestReceipt(ctx context.Context, reference string) (*domain.Receipt, error) {
	if !r.caps.Receipts {
		return nil, domain.ErrReceiptNotFound
	}

	row := r.db.QueryRow(ctx, `SELECT id, booking_id, reference, flight_id, seats, passengers, total_price, booked_at, created_at
		FROM receipts WHERE reference=$1 ORDER BY created_at DESC LIMIT 1`, reference)
	var (
		rec     domain.Receipt
		payload []byte
	)
	if err := row.Scan(&rec.ID, &rec.BookingID, &rec.Reference, &rec.FlightID, &rec.Seats, &payload, &rec.TotalPrice, &rec.BookedAt, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(payload, &rec.Passengers); err != nil {
		return nil, err
	}
	return &rec, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
