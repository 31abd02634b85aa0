// Package booking implements reservations made from a trip board: rental
// cars, event tickets and restaurant tables. All three kinds run through the
// same wizard flow, parameterized by a kind descriptor, so adding a kind is
// a data change rather than a new code path.
package booking

import (
	"errors"
	"math"
	"time"
)

// Predefined errors.
var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingsDisabled  = errors.New("bookings are currently disabled")
	ErrUnknownKind       = errors.New("unknown booking kind")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// Kind is the closed set of bookable domains.
type Kind string

const (
	KindCar        Kind = "car"
	KindEvent      Kind = "event"
	KindRestaurant Kind = "restaurant"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Booking represents a reservation attached to a trip.
type Booking struct {
	ID        string
	TripID    string
	UserID    string
	Kind      Kind
	Status    Status
	Units     int
	StartDate *time.Time
	ItemID    *string
	Notes     *string

	Subtotal   float64
	ServiceFee float64
	Total      float64
	Currency   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Descriptor parameterizes the wizard and pricing for one booking kind.
type Descriptor struct {
	Kind Kind

	// Steps are the wizard screens, in order.
	Steps []string

	// UnitLabel names what Units counts ("day", "ticket", "seat").
	UnitLabel string

	// BasePricePerUnit is the pre-fee price of one unit.
	BasePricePerUnit float64

	// FeeRate is the service fee as a fraction of the subtotal.
	FeeRate float64
}

// descriptors holds the built-in booking kinds.
var descriptors = map[Kind]Descriptor{
	KindCar: {
		Kind:             KindCar,
		Steps:            []string{"dates", "vehicle", "review"},
		UnitLabel:        "day",
		BasePricePerUnit: 45.00,
		FeeRate:          0.10,
	},
	KindEvent: {
		Kind:             KindEvent,
		Steps:            []string{"tickets", "attendees", "review"},
		UnitLabel:        "ticket",
		BasePricePerUnit: 30.00,
		FeeRate:          0.12,
	},
	KindRestaurant: {
		Kind:             KindRestaurant,
		Steps:            []string{"party", "time", "review"},
		UnitLabel:        "seat",
		BasePricePerUnit: 0,
		FeeRate:          0,
	},
}

// DescriptorFor returns the descriptor for a kind.
func DescriptorFor(kind Kind) (Descriptor, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Descriptor{}, ErrUnknownKind
	}
	return d, nil
}

// Descriptors returns all built-in descriptors, one per kind.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, kind := range []Kind{KindCar, KindEvent, KindRestaurant} {
		out = append(out, descriptors[kind])
	}
	return out
}

// Quote is a price breakdown for a prospective booking.
type Quote struct {
	Kind       Kind
	Units      int
	UnitLabel  string
	Subtotal   float64
	ServiceFee float64
	Total      float64
	Currency   string
}

// QuoteFor prices units of a kind. Amounts are rounded to cents, fee after
// subtotal, so Total == Subtotal + ServiceFee exactly.
func QuoteFor(kind Kind, units int) (Quote, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Quote{}, ErrUnknownKind
	}
	if units < 1 {
		units = 1
	}

	subtotal := roundCents(d.BasePricePerUnit * float64(units))
	fee := roundCents(subtotal * d.FeeRate)

	return Quote{
		Kind:       kind,
		Units:      units,
		UnitLabel:  d.UnitLabel,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      roundCents(subtotal + fee),
		Currency:   "EUR",
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
