package itinerary

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/trip"
	"github.com/tripdeck/tripdeck/pkg/polyline"
)

// ErrInvalidDayIndex is returned when a reorder or segment request targets a
// day outside the trip's date range.
var ErrInvalidDayIndex = errors.New("day index outside trip range")

// unscheduledHour is the time-of-day assigned when an unscheduled item is
// dropped onto a day.
const unscheduledHour = 12

// RouteSource fetches provider directions for an ordered list of waypoints.
// *directions.Service satisfies it.
type RouteSource interface {
	GetDirections(ctx context.Context, req directions.Request) (*directions.Result, error)
}

// FlagSource exposes the feature flags the itinerary service consults.
// *featureflags.Service satisfies it.
type FlagSource interface {
	RemoteDirectionsDisabled(ctx context.Context) bool
	TravelSpeedKmh(ctx context.Context, fallback float64) float64
}

// ServiceConfig holds configuration for the itinerary service.
type ServiceConfig struct {
	Trips trip.Repository
	Items trip.ItemRepository

	// Directions is optional; when nil all segments use the heuristic.
	Directions RouteSource

	// Flags is optional; when nil defaults apply.
	Flags FlagSource

	Logger zerolog.Logger
}

// Service assembles trip boards, estimates travel segments and applies
// reorder intents. It owns no storage of its own; trips and items live in
// the trip repositories.
type Service struct {
	trips      trip.Repository
	items      trip.ItemRepository
	directions RouteSource
	flags      FlagSource
	logger     zerolog.Logger
}

// NewService creates a new itinerary service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		trips:      cfg.Trips,
		items:      cfg.Items,
		directions: cfg.Directions,
		flags:      cfg.Flags,
		logger:     cfg.Logger.With().Str("component", "itinerary").Logger(),
	}
}

// BoardDay is one calendar day of the board with its scheduled items in
// display order.
type BoardDay struct {
	DayIndex int
	Date     time.Time
	Items    []*trip.Item
}

// Board is the full itinerary view of a trip: one entry per calendar day in
// the trip range plus the unscheduled backlog.
type Board struct {
	Trip        *trip.Trip
	Days        []BoardDay
	Unscheduled []*trip.Item
}

// Board loads a trip and partitions its items into the day view. Every day
// in the trip range appears, empty days included. Items without a start time
// are listed under Unscheduled rather than dropped.
func (s *Service) Board(ctx context.Context, userID, tripID string) (*Board, error) {
	t, err := s.trips.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return buildBoard(t, items), nil
}

func buildBoard(t *trip.Trip, items []*trip.Item) *Board {
	buckets := Partition(t.StartDate, t.EndDate, items)

	days := make([]BoardDay, t.Days())
	for i := range days {
		days[i] = BoardDay{
			DayIndex: i,
			Date:     DayDate(t.StartDate, i),
			Items:    buckets[i],
		}
	}

	return &Board{
		Trip:        t,
		Days:        days,
		Unscheduled: Unscheduled(items),
	}
}

// DayRoute is the routed view of one board day: travel segments plus, when a
// provider route was used, the decoded route geometry for map rendering.
type DayRoute struct {
	Segments []TravelSegment
	Geometry []polyline.Point
	Provider string
}

// DaySegments computes the travel segments for one day of a trip.
func (s *Service) DaySegments(ctx context.Context, userID, tripID string, dayIndex int) ([]TravelSegment, error) {
	route, err := s.DayRoute(ctx, userID, tripID, dayIndex)
	if err != nil {
		return nil, err
	}
	return route.Segments, nil
}

// DayRoute computes the travel segments and route geometry for one day.
//
// When a directions provider is configured and not disabled by flag, the
// day's coordinate-bearing stops are routed through it and provider legs are
// used. Any provider failure falls back to the haversine heuristic without
// surfacing an error; a board with estimates beats a board with none.
func (s *Service) DayRoute(ctx context.Context, userID, tripID string, dayIndex int) (*DayRoute, error) {
	t, err := s.trips.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if dayIndex < 0 || dayIndex >= t.Days() {
		return nil, ErrInvalidDayIndex
	}

	items, err := s.items.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	dayItems := Partition(t.StartDate, t.EndDate, items)[dayIndex]
	remote := s.fetchRemote(ctx, dayItems)

	route := &DayRoute{
		Segments: EstimateSegmentsAtSpeed(dayItems, remote, s.travelSpeed(ctx)),
	}
	if remote != nil && remote.Covers(len(coordinateStops(dayItems))) {
		route.Geometry = polyline.Decode(remote.GeometryPolyline)
		route.Provider = remote.Provider
	}
	return route, nil
}

// fetchRemote asks the routing provider for the day's route. Returns nil on
// any failure or when remote routing is unavailable or disabled; the caller
// falls back to the heuristic.
func (s *Service) fetchRemote(ctx context.Context, dayItems []*trip.Item) *directions.Result {
	if s.directions == nil {
		return nil
	}
	if s.flags != nil && s.flags.RemoteDirectionsDisabled(ctx) {
		return nil
	}

	stops := coordinateStops(dayItems)
	if len(stops) < 2 {
		return nil
	}

	waypoints := make([]directions.Coordinate, len(stops))
	for i, stop := range stops {
		waypoints[i] = directions.Coordinate{Lat: *stop.Latitude, Lon: *stop.Longitude}
	}

	result, err := s.directions.GetDirections(ctx, directions.Request{
		Waypoints: waypoints,
		Profile:   directions.ProfileDrive,
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Int("stops", len(stops)).
			Msg("directions provider failed, using heuristic estimates")
		return nil
	}
	return result
}

func (s *Service) travelSpeed(ctx context.Context) float64 {
	if s.flags == nil {
		return DefaultAverageSpeedKmh
	}
	return s.flags.TravelSpeedKmh(ctx, DefaultAverageSpeedKmh)
}

// ApplyReorder relocates an item per the given intent and returns the
// refreshed board.
//
// The target day must lie within the trip range and the item must belong to
// the trip. The move rewrites the item's start date to the target day while
// keeping its time-of-day; unscheduled items get a midday start. Display
// order within a day follows StartAt, so when the requested slot conflicts
// with the item's time-of-day the item is re-timed between its new neighbors
// rather than silently keeping its old place. An end time shifts by the same
// delta so the item keeps its duration. The position is clamped to the target
// bucket and the bucket's items are renumbered.
func (s *Service) ApplyReorder(ctx context.Context, userID, tripID string, intent ReorderIntent) (*Board, error) {
	t, err := s.trips.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if intent.DayIndex < 0 || intent.DayIndex >= t.Days() {
		return nil, ErrInvalidDayIndex
	}

	items, err := s.items.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	var moved *trip.Item
	for _, item := range items {
		if item.ID == intent.ItemID {
			moved = item
			break
		}
	}
	if moved == nil {
		return nil, trip.ErrItemNotFound
	}

	// The target bucket without the moved item, in display order.
	bucket := Partition(t.StartDate, t.EndDate, items)[intent.DayIndex]
	ordered := make([]*trip.Item, 0, len(bucket)+1)
	for _, item := range bucket {
		if item.ID != moved.ID {
			ordered = append(ordered, item)
		}
	}
	pos := intent.Position
	if pos < 0 {
		pos = 0
	}
	if pos > len(ordered) {
		pos = len(ordered)
	}

	targetDate := DayDate(t.StartDate, intent.DayIndex)
	newStart := slotStart(targetDate, rescheduleTo(targetDate, moved.StartAt), ordered, pos)
	if moved.StartAt != nil && moved.EndAt != nil {
		shifted := moved.EndAt.Add(newStart.Sub(*moved.StartAt))
		moved.EndAt = &shifted
	}
	moved.StartAt = &newStart

	ordered = append(ordered[:pos], append([]*trip.Item{moved}, ordered[pos:]...)...)

	for i, item := range ordered {
		if item.Position == i && item.ID != moved.ID {
			continue
		}
		item.Position = i
		if err := s.items.Update(ctx, item); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("trip_id", tripID).
		Str("item_id", moved.ID).
		Int("day_index", intent.DayIndex).
		Int("position", pos).
		Msg("itinerary item reordered")

	// Re-list so the returned board reflects stored order, including the
	// position tie-break on equal start times.
	items, err = s.items.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return buildBoard(t, items), nil
}

// slotStart picks the start time that makes the moved item sort into the
// requested slot. neighbors holds the target day's other items in display
// order; pos is the clamped insertion index. The tentative time is kept when
// it already sorts there. Otherwise the item is re-timed at the midpoint of
// its two neighbors, or an hour beyond the edge one, clamped to the target
// day. Ties on the resulting timestamp are resolved by the position
// renumbering, since listing orders equal start times by position.
func slotStart(targetDate, tentative time.Time, neighbors []*trip.Item, pos int) time.Time {
	var prev, next *time.Time
	if pos > 0 {
		prev = neighbors[pos-1].StartAt
	}
	if pos < len(neighbors) {
		next = neighbors[pos].StartAt
	}

	if (prev == nil || !tentative.Before(*prev)) && (next == nil || !tentative.After(*next)) {
		return tentative
	}

	dayEnd := targetDate.AddDate(0, 0, 1)
	switch {
	case prev != nil && next != nil:
		return prev.Add(next.Sub(*prev) / 2)
	case prev != nil:
		if candidate := prev.Add(time.Hour); candidate.Before(dayEnd) {
			return candidate
		}
		return prev.Add(dayEnd.Sub(*prev) / 2)
	default:
		if candidate := next.Add(-time.Hour); !candidate.Before(targetDate) {
			return candidate
		}
		return targetDate.Add(next.Sub(targetDate) / 2)
	}
}

// rescheduleTo combines the target calendar day with the original
// time-of-day, or midday when the item was unscheduled.
func rescheduleTo(targetDate time.Time, startAt *time.Time) time.Time {
	if startAt == nil {
		return time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(),
			unscheduledHour, 0, 0, 0, targetDate.Location())
	}
	return time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(),
		startAt.Hour(), startAt.Minute(), startAt.Second(), startAt.Nanosecond(),
		startAt.Location())
}
