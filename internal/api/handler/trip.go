package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripdeck/tripdeck/internal/api/models"
	"github.com/tripdeck/tripdeck/internal/api/response"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// TripHandler handles trip and trip-item endpoints.
type TripHandler struct {
	tripService *trip.Service
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *trip.Service) *TripHandler {
	return &TripHandler{
		tripService: tripService,
	}
}

// ListTrips handles GET /v1/me/trips - list the user's trips.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	trips, err := h.tripService.List(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list trips")
		return
	}

	response.JSON(w, r, http.StatusOK, trips)
}

// CreateTrip handles POST /v1/me/trips - create a trip.
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input models.TripCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.tripService.Create(r.Context(), userID, &input)
	if err != nil {
		h.writeTripError(w, r, err, "failed to create trip")
		return
	}

	response.Created(w, r, "/v1/me/trips/"+created.ID, created)
}

// GetTrip handles GET /v1/me/trips/{tripId}.
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	t, err := h.tripService.Get(r.Context(), userID, tripID)
	if err != nil {
		h.writeTripError(w, r, err, "failed to load trip")
		return
	}

	response.JSON(w, r, http.StatusOK, t)
}

// UpdateTrip handles PUT /v1/me/trips/{tripId}.
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	var input models.TripUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.tripService.Update(r.Context(), userID, tripID, &input)
	if err != nil {
		h.writeTripError(w, r, err, "failed to update trip")
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /v1/me/trips/{tripId}.
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	if err := h.tripService.Delete(r.Context(), userID, tripID); err != nil {
		h.writeTripError(w, r, err, "failed to delete trip")
		return
	}

	response.NoContent(w, r)
}

// ListItems handles GET /v1/me/trips/{tripId}/items.
func (h *TripHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	items, err := h.tripService.ListItems(r.Context(), userID, tripID)
	if err != nil {
		h.writeTripError(w, r, err, "failed to list items")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// CreateItem handles POST /v1/me/trips/{tripId}/items.
func (h *TripHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	var input models.TripItemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.tripService.CreateItem(r.Context(), userID, tripID, &input)
	if err != nil {
		h.writeTripError(w, r, err, "failed to create item")
		return
	}

	response.Created(w, r, "/v1/me/trips/"+tripID+"/items/"+created.ID, created)
}

// UpdateItem handles PUT /v1/me/trips/{tripId}/items/{itemId}.
func (h *TripHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")
	itemID := chi.URLParam(r, "itemId")

	var input models.TripItemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.tripService.UpdateItem(r.Context(), userID, tripID, itemID, &input)
	if err != nil {
		h.writeTripError(w, r, err, "failed to update item")
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// DeleteItem handles DELETE /v1/me/trips/{tripId}/items/{itemId}.
func (h *TripHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")
	itemID := chi.URLParam(r, "itemId")

	if err := h.tripService.DeleteItem(r.Context(), userID, tripID, itemID); err != nil {
		h.writeTripError(w, r, err, "failed to delete item")
		return
	}

	response.NoContent(w, r)
}

// writeTripError maps trip domain errors onto problem responses.
func (h *TripHandler) writeTripError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var vErr *trip.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, r, "validation error", vErr.Errors)
	case errors.Is(err, trip.ErrTripNotFound):
		response.NotFound(w, r, "trip not found")
	case errors.Is(err, trip.ErrItemNotFound):
		response.NotFound(w, r, "trip item not found")
	default:
		response.InternalError(w, r, fallback)
	}
}
