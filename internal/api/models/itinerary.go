package models

// TripBoard is the day-by-day itinerary view of a trip.
type TripBoard struct {
	Trip        Trip       `json:"trip"`
	Days        []BoardDay `json:"days"`
	Unscheduled []TripItem `json:"unscheduled"`
}

// BoardDay is one calendar day of the board.
type BoardDay struct {
	DayIndex int        `json:"dayIndex"`
	Date     Date       `json:"date"`
	Items    []TripItem `json:"items"`
}

// DaySegments is the travel-segment view of one board day.
type DaySegments struct {
	DayIndex int             `json:"dayIndex"`
	Segments []TravelSegment `json:"segments"`
	// Geometry is the routed path as ordered vertices, present only when a
	// provider route was used.
	Geometry []GeoPoint `json:"geometry,omitempty"`
	Provider string     `json:"provider,omitempty"`
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TravelSegment is a distance/time estimate between two consecutive stops.
type TravelSegment struct {
	FromItemID      string  `json:"fromItemId"`
	ToItemID        string  `json:"toItemId"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
	// Source is "provider" for routed estimates and "heuristic" for
	// great-circle fallbacks.
	Source string `json:"source"`
}

// Segment sources.
const (
	SegmentSourceProvider  = "provider"
	SegmentSourceHeuristic = "heuristic"
)

// ReorderRequest is the request body for relocating an item on the board.
type ReorderRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	DayIndex int    `json:"dayIndex" validate:"gte=0"`
	Position int    `json:"position" validate:"gte=0"`
}
