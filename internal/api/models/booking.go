package models

// Booking represents a confirmed or pending reservation made through the
// booking wizard.
type Booking struct {
	ID        string       `json:"id"`
	TripID    string       `json:"tripId"`
	Kind      string       `json:"kind"`
	Status    string       `json:"status"`
	Units     int          `json:"units"`
	StartDate *Date        `json:"startDate,omitempty"`
	Notes     *string      `json:"notes,omitempty"`
	Quote     BookingQuote `json:"quote"`
	CreatedAt Timestamp    `json:"createdAt"`
	UpdatedAt Timestamp    `json:"updatedAt"`
}

// BookingQuote is a price breakdown for a prospective booking.
type BookingQuote struct {
	Kind       string  `json:"kind"`
	Units      int     `json:"units"`
	UnitLabel  string  `json:"unitLabel"`
	Subtotal   float64 `json:"subtotal"`
	ServiceFee float64 `json:"serviceFee"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency"`
}

// BookingQuoteRequest is the request body for pricing a prospective booking.
type BookingQuoteRequest struct {
	Kind  string `json:"kind" validate:"required"`
	Units int    `json:"units" validate:"required,gte=1"`
}

// BookingCreateRequest is the request body for submitting a booking.
type BookingCreateRequest struct {
	Kind      string  `json:"kind" validate:"required"`
	Units     int     `json:"units" validate:"required,gte=1"`
	StartDate *Date   `json:"startDate,omitempty"`
	ItemID    *string `json:"itemId,omitempty"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// BookingWizard describes the step flow for one booking kind, so clients can
// render the wizard without hardcoding per-kind screens.
type BookingWizard struct {
	Kind      string   `json:"kind"`
	Steps     []string `json:"steps"`
	UnitLabel string   `json:"unitLabel"`
}
