package booking

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the storage interface for bookings.
type Repository interface {
	// Get retrieves a booking by user and ID.
	// Returns ErrBookingNotFound if absent or owned by another user.
	Get(ctx context.Context, userID, bookingID string) (*Booking, error)

	// GetByID retrieves a booking regardless of owner. For back-office
	// decision flows; user-facing code goes through Get.
	GetByID(ctx context.Context, bookingID string) (*Booking, error)

	// ListByTrip retrieves all bookings for a trip, newest first.
	ListByTrip(ctx context.Context, userID, tripID string) ([]*Booking, error)

	// Create stores a new booking.
	Create(ctx context.Context, b *Booking) error

	// Update updates an existing booking.
	Update(ctx context.Context, b *Booking) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates a new in-memory booking repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bookings: make(map[string]*Booking),
	}
}

// Get retrieves a booking by user and ID.
func (r *InMemoryRepository) Get(_ context.Context, userID, bookingID string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, ErrBookingNotFound
	}

	cpy := *b
	return &cpy, nil
}

// GetByID retrieves a booking regardless of owner.
func (r *InMemoryRepository) GetByID(_ context.Context, bookingID string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}

	cpy := *b
	return &cpy, nil
}

// ListByTrip retrieves all bookings for a trip, newest first.
func (r *InMemoryRepository) ListByTrip(_ context.Context, userID, tripID string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*Booking
	for _, b := range r.bookings {
		if b.UserID == userID && b.TripID == tripID {
			cpy := *b
			bookings = append(bookings, &cpy)
		}
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

// Create stores a new booking.
func (r *InMemoryRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *b
	r.bookings[b.ID] = &cpy
	return nil
}

// Update updates an existing booking.
func (r *InMemoryRepository) Update(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrBookingNotFound
	}

	cpy := *b
	r.bookings[b.ID] = &cpy
	return nil
}
