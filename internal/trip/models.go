// Package trip provides trip and trip-item management services.
package trip

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrTripNotFound = errors.New("trip not found")
	ErrItemNotFound = errors.New("trip item not found")
)

// Status represents the lifecycle state of a trip.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ItemType is the closed set of trip item kinds.
type ItemType string

const (
	ItemApartment  ItemType = "apartment"
	ItemCar        ItemType = "car"
	ItemRestaurant ItemType = "restaurant"
	ItemEvent      ItemType = "event"
	ItemActivity   ItemType = "activity"
	ItemTransport  ItemType = "transport"
	ItemNote       ItemType = "note"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemApartment, ItemCar, ItemRestaurant, ItemEvent, ItemActivity, ItemTransport, ItemNote:
		return true
	}
	return false
}

// Trip represents a planned trip with an inclusive date range.
type Trip struct {
	ID          string
	UserID      string
	Title       string
	Destination string
	StartDate   time.Time // date-only semantics, local calendar day
	EndDate     time.Time // date-only semantics, local calendar day
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Days returns the number of calendar days in the trip's inclusive range.
// A trip whose end precedes its start has zero days.
func (t *Trip) Days() int {
	span := DaysBetween(t.StartDate, t.EndDate)
	if span < 0 {
		return 0
	}
	return span + 1
}

// Item is a scheduled or unscheduled activity belonging to a trip.
// An item without StartAt is unscheduled. Latitude and longitude must both
// be present for the item to participate in travel-segment computation.
type Item struct {
	ID           string
	TripID       string
	ItemType     ItemType
	Title        string
	StartAt      *time.Time
	EndAt        *time.Time
	Latitude     *float64
	Longitude    *float64
	LocationName *string
	Address      *string
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCoordinates reports whether both latitude and longitude are set.
func (i *Item) HasCoordinates() bool {
	return i.Latitude != nil && i.Longitude != nil
}

// Scheduled reports whether the item carries a start timestamp.
func (i *Item) Scheduled() bool {
	return i.StartAt != nil
}

// dateOnly truncates a timestamp to its local calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateOnly truncates a timestamp to its local calendar day.
func DateOnly(t time.Time) time.Time {
	return dateOnly(t)
}

// DaysBetween returns the number of calendar days from a's day to b's day,
// negative when b precedes a. Both dates are re-anchored in UTC before
// subtracting, so a DST transition between them cannot skew the count the
// way elapsed-hours division would.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}
