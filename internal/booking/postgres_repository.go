package booking

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL booking repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const bookingColumns = `id, trip_id, user_id, kind, status, units, start_date, item_id, notes,
	subtotal, service_fee, total, currency, created_at, updated_at`

// Get retrieves a booking by user and ID.
func (r *PostgresRepository) Get(ctx context.Context, userID, bookingID string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	b, err := scanBooking(r.pool.QueryRow(ctx, query, bookingID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

// GetByID retrieves a booking regardless of owner.
func (r *PostgresRepository) GetByID(ctx context.Context, bookingID string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	b, err := scanBooking(r.pool.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

// ListByTrip retrieves all bookings for a trip, newest first.
func (r *PostgresRepository) ListByTrip(ctx context.Context, userID, tripID string) ([]*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, tripID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// Create stores a new booking.
func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.TripID,
		b.UserID,
		b.Kind,
		b.Status,
		b.Units,
		b.StartDate,
		b.ItemID,
		b.Notes,
		b.Subtotal,
		b.ServiceFee,
		b.Total,
		b.Currency,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

// Update updates an existing booking.
func (r *PostgresRepository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET status = $3, notes = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, b.ID, b.UserID, b.Status, b.Notes, b.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.TripID,
		&b.UserID,
		&b.Kind,
		&b.Status,
		&b.Units,
		&b.StartDate,
		&b.ItemID,
		&b.Notes,
		&b.Subtotal,
		&b.ServiceFee,
		&b.Total,
		&b.Currency,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
