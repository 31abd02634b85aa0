package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripdeck/tripdeck/internal/api/models"
	"github.com/tripdeck/tripdeck/internal/api/response"
	"github.com/tripdeck/tripdeck/internal/itinerary"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// ItineraryHandler handles the trip board, travel segments and reorder
// endpoints.
type ItineraryHandler struct {
	itineraryService *itinerary.Service
}

// NewItineraryHandler creates a new ItineraryHandler.
func NewItineraryHandler(itineraryService *itinerary.Service) *ItineraryHandler {
	return &ItineraryHandler{
		itineraryService: itineraryService,
	}
}

// GetBoard handles GET /v1/me/trips/{tripId}/board - the day-partitioned
// itinerary view.
func (h *ItineraryHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	board, err := h.itineraryService.Board(r.Context(), userID, tripID)
	if err != nil {
		h.writeItineraryError(w, r, err, "failed to load board")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIBoard(board))
}

// GetDaySegments handles GET /v1/me/trips/{tripId}/board/days/{dayIndex}/segments.
func (h *ItineraryHandler) GetDaySegments(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	dayIndex, err := strconv.Atoi(chi.URLParam(r, "dayIndex"))
	if err != nil {
		response.BadRequest(w, r, "dayIndex must be an integer", nil)
		return
	}

	route, err := h.itineraryService.DayRoute(r.Context(), userID, tripID, dayIndex)
	if err != nil {
		h.writeItineraryError(w, r, err, "failed to compute segments")
		return
	}

	out := models.DaySegments{
		DayIndex: dayIndex,
		Segments: toAPISegments(route.Segments),
		Provider: route.Provider,
	}
	for _, p := range route.Geometry {
		out.Geometry = append(out.Geometry, models.GeoPoint{Lat: p.Lat, Lon: p.Lon})
	}

	response.JSON(w, r, http.StatusOK, out)
}

// Reorder handles POST /v1/me/trips/{tripId}/board/reorder - move an item to
// a day bucket position and return the updated board.
func (h *ItineraryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	var req models.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.ItemID == "" {
		response.BadRequest(w, r, "itemId is required", nil)
		return
	}

	board, err := h.itineraryService.ApplyReorder(r.Context(), userID, tripID, itinerary.ReorderIntent{
		ItemID:   req.ItemID,
		DayIndex: req.DayIndex,
		Position: req.Position,
	})
	if err != nil {
		h.writeItineraryError(w, r, err, "failed to reorder item")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIBoard(board))
}

func (h *ItineraryHandler) writeItineraryError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, trip.ErrTripNotFound):
		response.NotFound(w, r, "trip not found")
	case errors.Is(err, trip.ErrItemNotFound):
		response.NotFound(w, r, "trip item not found")
	case errors.Is(err, itinerary.ErrInvalidDayIndex):
		response.BadRequest(w, r, "dayIndex is outside the trip's date range", nil)
	default:
		response.InternalError(w, r, fallback)
	}
}

func toAPIBoard(board *itinerary.Board) models.TripBoard {
	out := models.TripBoard{
		Trip:        trip.ToAPITrip(board.Trip),
		Days:        make([]models.BoardDay, 0, len(board.Days)),
		Unscheduled: toAPIItems(board.Unscheduled),
	}
	for _, day := range board.Days {
		out.Days = append(out.Days, models.BoardDay{
			DayIndex: day.DayIndex,
			Date:     models.Date(day.Date),
			Items:    toAPIItems(day.Items),
		})
	}
	return out
}

func toAPIItems(items []*trip.Item) []models.TripItem {
	out := make([]models.TripItem, 0, len(items))
	for _, item := range items {
		out = append(out, trip.ToAPITripItem(item))
	}
	return out
}

func toAPISegments(segments []itinerary.TravelSegment) []models.TravelSegment {
	out := make([]models.TravelSegment, 0, len(segments))
	for _, seg := range segments {
		source := models.SegmentSourceHeuristic
		if seg.FromProvider {
			source = models.SegmentSourceProvider
		}
		out = append(out, models.TravelSegment{
			FromItemID:      seg.From.ID,
			ToItemID:        seg.To.ID,
			DistanceKm:      seg.DistanceKm,
			DurationMinutes: seg.DurationMinutes,
			Source:          source,
		})
	}
	return out
}
