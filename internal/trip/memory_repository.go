package trip

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

// NewInMemoryRepository creates a new in-memory trip repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		trips: make(map[string]*Trip),
	}
}

// GetByUserAndID retrieves a trip by user ID and trip ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, tripID string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[tripID]
	if !ok || t.UserID != userID {
		return nil, ErrTripNotFound
	}

	cpy := *t
	return &cpy, nil
}

// List retrieves all trips for a user, newest first.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trips []*Trip
	for _, t := range r.trips {
		if t.UserID == userID {
			cpy := *t
			trips = append(trips, &cpy)
		}
	}

	sort.Slice(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: trips}
	if len(trips) > limit {
		result.Items = trips[:limit]
		result.NextCursor = trips[limit-1].ID
	}

	return result, nil
}

// ListStartingBetween retrieves trips whose start date falls in [from, to).
func (r *InMemoryRepository) ListStartingBetween(_ context.Context, from, to time.Time) ([]*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trips []*Trip
	for _, t := range r.trips {
		if !t.StartDate.Before(from) && t.StartDate.Before(to) {
			cpy := *t
			trips = append(trips, &cpy)
		}
	}

	sort.Slice(trips, func(i, j int) bool {
		return trips[i].StartDate.Before(trips[j].StartDate)
	})

	return trips, nil
}

// Create creates a new trip.
func (r *InMemoryRepository) Create(_ context.Context, t *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Update updates an existing trip.
func (r *InMemoryRepository) Update(_ context.Context, t *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[t.ID]; !ok {
		return ErrTripNotFound
	}

	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Delete deletes a trip.
func (r *InMemoryRepository) Delete(_ context.Context, tripID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.trips, tripID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

// InMemoryItemRepository is an in-memory implementation of ItemRepository.
type InMemoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewInMemoryItemRepository creates a new in-memory trip-item repository.
func NewInMemoryItemRepository() *InMemoryItemRepository {
	return &InMemoryItemRepository{
		items: make(map[string]*Item),
	}
}

// Get retrieves an item by trip ID and item ID.
func (r *InMemoryItemRepository) Get(_ context.Context, tripID, itemID string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok || item.TripID != tripID {
		return nil, ErrItemNotFound
	}

	cpy := *item
	return &cpy, nil
}

// ListByTrip retrieves all items for a trip ordered by start time,
// unscheduled items last, position breaking ties.
func (r *InMemoryItemRepository) ListByTrip(_ context.Context, tripID string) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*Item
	for _, item := range r.items {
		if item.TripID == tripID {
			cpy := *item
			items = append(items, &cpy)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.StartAt == nil && b.StartAt == nil:
			if a.Position != b.Position {
				return a.Position < b.Position
			}
			return a.CreatedAt.Before(b.CreatedAt)
		case a.StartAt == nil:
			return false
		case b.StartAt == nil:
			return true
		case !a.StartAt.Equal(*b.StartAt):
			return a.StartAt.Before(*b.StartAt)
		case a.Position != b.Position:
			return a.Position < b.Position
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	return items, nil
}

// Create creates a new item.
func (r *InMemoryItemRepository) Create(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *item
	r.items[item.ID] = &cpy
	return nil
}

// Update updates an existing item.
func (r *InMemoryItemRepository) Update(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return ErrItemNotFound
	}

	cpy := *item
	r.items[item.ID] = &cpy
	return nil
}

// Delete deletes an item.
func (r *InMemoryItemRepository) Delete(_ context.Context, tripID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item, ok := r.items[itemID]; ok && item.TripID == tripID {
		delete(r.items, itemID)
	}
	return nil
}

// Ensure InMemoryItemRepository implements ItemRepository interface.
var _ ItemRepository = (*InMemoryItemRepository)(nil)
