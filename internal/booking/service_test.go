package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/api/models"
	"github.com/tripdeck/tripdeck/internal/trip"
)

type stubFlags struct {
	disabled bool
}

func (f *stubFlags) BookingsDisabled(context.Context) bool { return f.disabled }

func newBookingService(t *testing.T, flags FlagSource) *Service {
	t.Helper()

	trips := trip.NewInMemoryRepository()
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	if err := trips.Create(context.Background(), &trip.Trip{
		ID:          "trp_test",
		UserID:      "usr_test",
		Title:       "Lisbon",
		Destination: "Lisbon, Portugal",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 4),
		Status:      trip.StatusActive,
	}); err != nil {
		t.Fatalf("seed trip: %v", err)
	}

	return NewService(ServiceConfig{
		Repo:   NewInMemoryRepository(),
		Trips:  trips,
		Flags:  flags,
		Logger: zerolog.Nop(),
	})
}

func TestQuoteFor(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		units    int
		subtotal float64
		fee      float64
		total    float64
	}{
		{"car three days", KindCar, 3, 135.00, 13.50, 148.50},
		{"event two tickets", KindEvent, 2, 60.00, 7.20, 67.20},
		{"restaurant is free", KindRestaurant, 4, 0, 0, 0},
		{"zero units clamps to one", KindCar, 0, 45.00, 4.50, 49.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := QuoteFor(tt.kind, tt.units)
			if err != nil {
				t.Fatalf("QuoteFor: %v", err)
			}
			if q.Subtotal != tt.subtotal || q.ServiceFee != tt.fee || q.Total != tt.total {
				t.Errorf("quote = %.2f + %.2f = %.2f, want %.2f + %.2f = %.2f",
					q.Subtotal, q.ServiceFee, q.Total, tt.subtotal, tt.fee, tt.total)
			}
			if q.Currency != "EUR" {
				t.Errorf("currency = %q, want EUR", q.Currency)
			}
		})
	}

	if _, err := QuoteFor(Kind("yacht"), 1); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: err = %v, want ErrUnknownKind", err)
	}
}

func TestService_CreateAndList(t *testing.T) {
	svc := newBookingService(t, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{
		Kind:  "car",
		Units: 3,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != string(StatusPending) {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.Quote.Total != 148.50 {
		t.Errorf("total = %.2f, want 148.50", b.Quote.Total)
	}
	if len(b.ID) < 5 || b.ID[:4] != "bkg_" {
		t.Errorf("unexpected ID %q", b.ID)
	}

	list, err := svc.ListByTrip(ctx, "usr_test", "trp_test")
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("list = %+v, want the created booking", list)
	}
}

func TestService_Create_TripOwnership(t *testing.T) {
	svc := newBookingService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "usr_other", "trp_test", &models.BookingCreateRequest{
		Kind:  "event",
		Units: 2,
	})
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("foreign trip: err = %v, want ErrTripNotFound", err)
	}
}

func TestService_DisabledFlag(t *testing.T) {
	flags := &stubFlags{disabled: true}
	svc := newBookingService(t, flags)
	ctx := context.Background()

	if _, err := svc.Quote(ctx, &models.BookingQuoteRequest{Kind: "car", Units: 1}); !errors.Is(err, ErrBookingsDisabled) {
		t.Errorf("Quote: err = %v, want ErrBookingsDisabled", err)
	}
	if _, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{Kind: "car", Units: 1}); !errors.Is(err, ErrBookingsDisabled) {
		t.Errorf("Create: err = %v, want ErrBookingsDisabled", err)
	}

	// Existing bookings stay readable when the flag flips.
	flags.disabled = false
	b, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{Kind: "car", Units: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	flags.disabled = true
	if _, err := svc.Get(ctx, "usr_test", b.ID); err != nil {
		t.Errorf("Get with flag on: %v", err)
	}
}

func TestService_Cancel(t *testing.T) {
	svc := newBookingService(t, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{Kind: "restaurant", Units: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, "usr_test", b.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != string(StatusCancelled) {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}

	// Idempotent.
	again, err := svc.Cancel(ctx, "usr_test", b.ID)
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if again.Status != string(StatusCancelled) {
		t.Errorf("status = %q after repeat cancel", again.Status)
	}

	if _, err := svc.Cancel(ctx, "usr_other", b.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("foreign cancel: err = %v, want ErrBookingNotFound", err)
	}
}

func TestService_ConfirmAndReject(t *testing.T) {
	svc := newBookingService(t, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{Kind: "event", Units: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	confirmed, err := svc.Confirm(ctx, b.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != string(StatusConfirmed) {
		t.Errorf("status = %q, want confirmed", confirmed.Status)
	}

	// A decided booking cannot be decided again.
	if _, err := svc.Reject(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reject after confirm: err = %v, want ErrInvalidTransition", err)
	}

	other, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{Kind: "restaurant", Units: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rejected, err := svc.Reject(ctx, other.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != string(StatusRejected) {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}

	if _, err := svc.Confirm(ctx, "bkg_ghost"); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("unknown booking: err = %v, want ErrBookingNotFound", err)
	}
}

func TestService_CancelAfterDecision(t *testing.T) {
	svc := newBookingService(t, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, "usr_test", "trp_test", &models.BookingCreateRequest{Kind: "car", Units: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Confirm(ctx, b.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// Users may still cancel a confirmed booking.
	cancelled, err := svc.Cancel(ctx, "usr_test", b.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != string(StatusCancelled) {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if _, err := svc.Confirm(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("confirm after cancel: err = %v, want ErrInvalidTransition", err)
	}
}

func TestWizard_Navigation(t *testing.T) {
	w, err := NewWizard(KindCar)
	if err != nil {
		t.Fatalf("NewWizard: %v", err)
	}

	if got := w.Current(); got != "dates" {
		t.Errorf("first step = %q, want dates", got)
	}
	if w.Done() {
		t.Error("wizard done on first step")
	}

	w.Next()
	if got := w.Current(); got != "vehicle" {
		t.Errorf("second step = %q, want vehicle", got)
	}

	w.Next()
	if !w.Done() {
		t.Error("wizard should be done on review step")
	}
	// Next past the end stays put.
	if got := w.Next(); got != "review" {
		t.Errorf("step past end = %q, want review", got)
	}

	w.Back()
	w.Back()
	// Back past the start stays put.
	if got := w.Back(); got != "dates" {
		t.Errorf("step before start = %q, want dates", got)
	}

	if _, err := NewWizard(Kind("yacht")); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: err = %v, want ErrUnknownKind", err)
	}
}
