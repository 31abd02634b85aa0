package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/api/models"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// FlagSource gates booking availability at runtime. A nil source means
// bookings are always available.
type FlagSource interface {
	BookingsDisabled(ctx context.Context) bool
}

// ServiceConfig contains configuration for the booking service.
type ServiceConfig struct {
	Repo   Repository
	Trips  trip.Repository
	Flags  FlagSource
	Logger zerolog.Logger
}

// Service provides booking operations scoped to a trip.
type Service struct {
	repo   Repository
	trips  trip.Repository
	flags  FlagSource
	logger zerolog.Logger
}

// NewService creates a new booking service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repo,
		trips:  cfg.Trips,
		flags:  cfg.Flags,
		logger: cfg.Logger.With().Str("component", "booking").Logger(),
	}
}

// Wizards returns the step flows for every booking kind.
func (s *Service) Wizards() []models.BookingWizard {
	descriptors := Descriptors()
	out := make([]models.BookingWizard, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, models.BookingWizard{
			Kind:      string(d.Kind),
			Steps:     append([]string(nil), d.Steps...),
			UnitLabel: d.UnitLabel,
		})
	}
	return out
}

// Quote prices a prospective booking without creating anything.
func (s *Service) Quote(ctx context.Context, req *models.BookingQuoteRequest) (*models.BookingQuote, error) {
	if s.disabled(ctx) {
		return nil, ErrBookingsDisabled
	}

	q, err := QuoteFor(Kind(req.Kind), req.Units)
	if err != nil {
		return nil, err
	}

	apiQuote := toAPIQuote(q)
	return &apiQuote, nil
}

// Create submits a booking against a trip the user owns. The price is
// computed server side from the kind descriptor, never taken from the client.
func (s *Service) Create(ctx context.Context, userID, tripID string, req *models.BookingCreateRequest) (*models.Booking, error) {
	if s.disabled(ctx) {
		return nil, ErrBookingsDisabled
	}

	if _, err := s.trips.GetByUserAndID(ctx, userID, tripID); err != nil {
		return nil, err
	}

	q, err := QuoteFor(Kind(req.Kind), req.Units)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &Booking{
		ID:         generateBookingID(),
		TripID:     tripID,
		UserID:     userID,
		Kind:       q.Kind,
		Status:     StatusPending,
		Units:      q.Units,
		ItemID:     req.ItemID,
		Notes:      req.Notes,
		Subtotal:   q.Subtotal,
		ServiceFee: q.ServiceFee,
		Total:      q.Total,
		Currency:   q.Currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.StartDate != nil {
		d := req.StartDate.Time()
		b.StartDate = &d
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("trip_id", tripID).
		Str("kind", string(b.Kind)).
		Int("units", b.Units).
		Msg("booking created")

	return toAPIBooking(b), nil
}

// Get retrieves a single booking.
func (s *Service) Get(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.repo.Get(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return toAPIBooking(b), nil
}

// ListByTrip retrieves all bookings for a trip the user owns, newest first.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID string) ([]*models.Booking, error) {
	if _, err := s.trips.GetByUserAndID(ctx, userID, tripID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toAPIBooking(b))
	}
	return out, nil
}

// Cancel marks a booking cancelled. Cancelling an already cancelled booking
// is a no-op.
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	b, err := s.repo.Get(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusCancelled {
		b.Status = StatusCancelled
		b.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, b); err != nil {
			return nil, err
		}

		s.logger.Info().
			Str("booking_id", b.ID).
			Str("trip_id", b.TripID).
			Msg("booking cancelled")
	}

	return toAPIBooking(b), nil
}

// Confirm marks a pending booking confirmed. This is a back-office decision
// and is not scoped to the owning user.
func (s *Service) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.decide(ctx, bookingID, StatusConfirmed)
}

// Reject marks a pending booking rejected.
func (s *Service) Reject(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.decide(ctx, bookingID, StatusRejected)
}

func (s *Service) decide(ctx context.Context, bookingID string, to Status) (*models.Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Only pending bookings can be decided; a cancelled or already decided
	// booking keeps its state.
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	b.Status = to
	b.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("trip_id", b.TripID).
		Str("status", string(to)).
		Msg("booking decided")

	return toAPIBooking(b), nil
}

func (s *Service) disabled(ctx context.Context) bool {
	return s.flags != nil && s.flags.BookingsDisabled(ctx)
}

func generateBookingID() string {
	return "bkg_" + uuid.New().String()[:22]
}

func toAPIQuote(q Quote) models.BookingQuote {
	return models.BookingQuote{
		Kind:       string(q.Kind),
		Units:      q.Units,
		UnitLabel:  q.UnitLabel,
		Subtotal:   q.Subtotal,
		ServiceFee: q.ServiceFee,
		Total:      q.Total,
		Currency:   q.Currency,
	}
}

func toAPIBooking(b *Booking) *models.Booking {
	out := &models.Booking{
		ID:     b.ID,
		TripID: b.TripID,
		Kind:   string(b.Kind),
		Status: string(b.Status),
		Units:  b.Units,
		Notes:  b.Notes,
		Quote: models.BookingQuote{
			Kind:       string(b.Kind),
			Units:      b.Units,
			UnitLabel:  unitLabelFor(b.Kind),
			Subtotal:   b.Subtotal,
			ServiceFee: b.ServiceFee,
			Total:      b.Total,
			Currency:   b.Currency,
		},
		CreatedAt: models.Timestamp(b.CreatedAt),
		UpdatedAt: models.Timestamp(b.UpdatedAt),
	}
	if b.StartDate != nil {
		d := models.Date(*b.StartDate)
		out.StartDate = &d
	}
	return out
}

func unitLabelFor(kind Kind) string {
	if d, ok := descriptors[kind]; ok {
		return d.UnitLabel
	}
	return ""
}
