package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripdeck/tripdeck/internal/api/models"
	"github.com/tripdeck/tripdeck/internal/api/response"
	"github.com/tripdeck/tripdeck/internal/booking"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// BookingHandler handles booking wizard endpoints.
type BookingHandler struct {
	bookingService *booking.Service
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *booking.Service) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// ListWizards handles GET /v1/bookings/wizards - the step flows for every
// booking kind, so clients render screens from data.
func (h *BookingHandler) ListWizards(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"wizards": h.bookingService.Wizards(),
	})
}

// Quote handles POST /v1/bookings/quote - price a prospective booking.
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.BookingQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	quote, err := h.bookingService.Quote(r.Context(), &req)
	if err != nil {
		h.writeBookingError(w, r, err, "failed to compute quote")
		return
	}

	response.JSON(w, r, http.StatusOK, quote)
}

// ListBookings handles GET /v1/me/trips/{tripId}/bookings.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	bookings, err := h.bookingService.ListByTrip(r.Context(), userID, tripID)
	if err != nil {
		h.writeBookingError(w, r, err, "failed to list bookings")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
	})
}

// CreateBooking handles POST /v1/me/trips/{tripId}/bookings.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	var req models.BookingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.Kind == "" {
		response.BadRequest(w, r, "kind is required", nil)
		return
	}

	created, err := h.bookingService.Create(r.Context(), userID, tripID, &req)
	if err != nil {
		h.writeBookingError(w, r, err, "failed to create booking")
		return
	}

	response.Created(w, r, "/v1/me/bookings/"+created.ID, created)
}

// GetBooking handles GET /v1/me/bookings/{bookingId}.
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.bookingService.Get(r.Context(), userID, bookingID)
	if err != nil {
		h.writeBookingError(w, r, err, "failed to load booking")
		return
	}

	response.JSON(w, r, http.StatusOK, b)
}

// CancelBooking handles POST /v1/me/bookings/{bookingId}/cancel.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	bookingID := chi.URLParam(r, "bookingId")

	cancelled, err := h.bookingService.Cancel(r.Context(), userID, bookingID)
	if err != nil {
		h.writeBookingError(w, r, err, "failed to cancel booking")
		return
	}

	response.JSON(w, r, http.StatusOK, cancelled)
}

// ConfirmBooking handles POST /v1/admin/bookings/{bookingId}/confirm.
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	confirmed, err := h.bookingService.Confirm(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.writeBookingError(w, r, err, "failed to confirm booking")
		return
	}

	response.JSON(w, r, http.StatusOK, confirmed)
}

// RejectBooking handles POST /v1/admin/bookings/{bookingId}/reject.
func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	rejected, err := h.bookingService.Reject(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.writeBookingError(w, r, err, "failed to reject booking")
		return
	}

	response.JSON(w, r, http.StatusOK, rejected)
}

func (h *BookingHandler) writeBookingError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, booking.ErrBookingsDisabled):
		response.ServiceUnavailable(w, r, "bookings are temporarily unavailable")
	case errors.Is(err, booking.ErrUnknownKind):
		response.BadRequest(w, r, "unknown booking kind", nil)
	case errors.Is(err, booking.ErrInvalidTransition):
		response.Conflict(w, r, "booking is not pending")
	case errors.Is(err, booking.ErrBookingNotFound):
		response.NotFound(w, r, "booking not found")
	case errors.Is(err, trip.ErrTripNotFound):
		response.NotFound(w, r, "trip not found")
	default:
		response.InternalError(w, r, fallback)
	}
}
