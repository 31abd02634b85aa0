package trip

import (
	"context"
	"time"
)

// ListOptions contains options for listing trips.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing trips.
type ListResult struct {
	Items      []*Trip
	NextCursor string
}

// Repository defines the interface for trip persistence.
type Repository interface {
	// GetByUserAndID retrieves a trip by user ID and trip ID.
	// Returns ErrTripNotFound if the trip doesn't exist or belongs to another user.
	GetByUserAndID(ctx context.Context, userID, tripID string) (*Trip, error)

	// List retrieves all trips for a user, newest first.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// ListStartingBetween retrieves trips whose start date falls in [from, to).
	// Used by the prefetch worker; not scoped to a user.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Trip, error)

	// Create creates a new trip.
	Create(ctx context.Context, t *Trip) error

	// Update updates an existing trip.
	Update(ctx context.Context, t *Trip) error

	// Delete deletes a trip and its items.
	Delete(ctx context.Context, tripID string) error
}

// ItemRepository defines the interface for trip-item persistence.
type ItemRepository interface {
	// Get retrieves an item by trip ID and item ID.
	// Returns ErrItemNotFound if the item doesn't exist in that trip.
	Get(ctx context.Context, tripID, itemID string) (*Item, error)

	// ListByTrip retrieves all items for a trip ordered by start time,
	// unscheduled items last, position breaking ties.
	ListByTrip(ctx context.Context, tripID string) ([]*Item, error)

	// Create creates a new item.
	Create(ctx context.Context, item *Item) error

	// Update updates an existing item.
	Update(ctx context.Context, item *Item) error

	// Delete deletes an item.
	Delete(ctx context.Context, tripID, itemID string) error
}
