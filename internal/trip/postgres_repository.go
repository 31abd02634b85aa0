package trip

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const tripColumns = `id, user_id, title, destination, start_date, end_date, status, created_at, updated_at`

// GetByUserAndID retrieves a trip by user ID and trip ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, tripID string) (*Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = $1 AND user_id = $2
	`

	var t Trip
	err := r.pool.QueryRow(ctx, query, tripID, userID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Destination,
		&t.StartDate,
		&t.EndDate,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return &t, nil
}

// List retrieves all trips for a user, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips, err := scanTrips(rows)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: trips}
	if len(trips) > limit {
		result.Items = trips[:limit]
		result.NextCursor = trips[limit-1].ID
	}

	return result, nil
}

// ListStartingBetween retrieves trips whose start date falls in [from, to).
func (r *PostgresRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE start_date >= $1 AND start_date < $2
		ORDER BY start_date ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

func scanTrips(rows pgx.Rows) ([]*Trip, error) {
	var trips []*Trip
	for rows.Next() {
		var t Trip
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Destination,
			&t.StartDate,
			&t.EndDate,
			&t.Status,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		trips = append(trips, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trips, nil
}

// Create creates a new trip.
func (r *PostgresRepository) Create(ctx context.Context, t *Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Destination,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// Update updates an existing trip.
func (r *PostgresRepository) Update(ctx context.Context, t *Trip) error {
	query := `
		UPDATE trips SET
			title = $2,
			destination = $3,
			start_date = $4,
			end_date = $5,
			status = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Destination,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrTripNotFound
	}

	return nil
}

// Delete deletes a trip and its items.
func (r *PostgresRepository) Delete(ctx context.Context, tripID string) error {
	// trip_items has ON DELETE CASCADE on trip_id
	query := `DELETE FROM trips WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, tripID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

// PostgresItemRepository is a PostgreSQL implementation of ItemRepository.
type PostgresItemRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresItemRepository creates a new PostgreSQL trip-item repository.
func NewPostgresItemRepository(pool *pgxpool.Pool) *PostgresItemRepository {
	return &PostgresItemRepository{pool: pool}
}

const itemColumns = `id, trip_id, item_type, title, start_at, end_at, latitude, longitude, location_name, address, position, created_at, updated_at`

// Get retrieves an item by trip ID and item ID.
func (r *PostgresItemRepository) Get(ctx context.Context, tripID, itemID string) (*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM trip_items
		WHERE id = $1 AND trip_id = $2
	`

	var item Item
	err := r.pool.QueryRow(ctx, query, itemID, tripID).Scan(
		&item.ID,
		&item.TripID,
		&item.ItemType,
		&item.Title,
		&item.StartAt,
		&item.EndAt,
		&item.Latitude,
		&item.Longitude,
		&item.LocationName,
		&item.Address,
		&item.Position,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return &item, nil
}

// ListByTrip retrieves all items for a trip ordered by start time,
// unscheduled items last, position breaking ties.
func (r *PostgresItemRepository) ListByTrip(ctx context.Context, tripID string) ([]*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM trip_items
		WHERE trip_id = $1
		ORDER BY start_at ASC NULLS LAST, position ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.TripID,
			&item.ItemType,
			&item.Title,
			&item.StartAt,
			&item.EndAt,
			&item.Latitude,
			&item.Longitude,
			&item.LocationName,
			&item.Address,
			&item.Position,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Create creates a new item.
func (r *PostgresItemRepository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO trip_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.TripID,
		item.ItemType,
		item.Title,
		item.StartAt,
		item.EndAt,
		item.Latitude,
		item.Longitude,
		item.LocationName,
		item.Address,
		item.Position,
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

// Update updates an existing item.
func (r *PostgresItemRepository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE trip_items SET
			item_type = $3,
			title = $4,
			start_at = $5,
			end_at = $6,
			latitude = $7,
			longitude = $8,
			location_name = $9,
			address = $10,
			position = $11,
			updated_at = $12
		WHERE id = $1 AND trip_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		item.ID,
		item.TripID,
		item.ItemType,
		item.Title,
		item.StartAt,
		item.EndAt,
		item.Latitude,
		item.Longitude,
		item.LocationName,
		item.Address,
		item.Position,
		item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Delete deletes an item.
func (r *PostgresItemRepository) Delete(ctx context.Context, tripID, itemID string) error {
	query := `DELETE FROM trip_items WHERE id = $1 AND trip_id = $2`
	_, err := r.pool.Exec(ctx, query, itemID, tripID)
	return err
}

// Ensure PostgresItemRepository implements ItemRepository interface.
var _ ItemRepository = (*PostgresItemRepository)(nil)
