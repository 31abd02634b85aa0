package itinerary

import (
	"math"

	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// DefaultAverageSpeedKmh is the assumed travel speed for the heuristic
// estimator. Heuristic durations are a floor, not a routing result.
const DefaultAverageSpeedKmh = 25.0

const earthRadiusKm = 6371.0

// TravelSegment is a derived distance/time estimate between two consecutive
// coordinate-bearing items within one day's bucket.
type TravelSegment struct {
	From            *trip.Item
	To              *trip.Item
	DistanceKm      float64
	DurationMinutes int
	// FromProvider is true when the values came from a directions provider
	// rather than the great-circle heuristic.
	FromProvider bool
}

// EstimateSegments computes travel segments for the coordinate-bearing items
// of a single day bucket, in bucket order.
//
// When remote is non-nil and its legs cover the same ordered stops (one leg
// per consecutive pair), distances and durations are taken from the provider
// legs. Otherwise every consecutive pair is estimated with the haversine
// great-circle distance and DefaultAverageSpeedKmh.
//
// Zero or one coordinate-bearing stops yield no segments. The function is
// pure: identical inputs produce identical output.
func EstimateSegments(dayItems []*trip.Item, remote *directions.Result) []TravelSegment {
	return EstimateSegmentsAtSpeed(dayItems, remote, DefaultAverageSpeedKmh)
}

// EstimateSegmentsAtSpeed is EstimateSegments with an explicit average speed
// for the heuristic fallback. Non-positive speeds fall back to the default.
func EstimateSegmentsAtSpeed(dayItems []*trip.Item, remote *directions.Result, speedKmh float64) []TravelSegment {
	if speedKmh <= 0 {
		speedKmh = DefaultAverageSpeedKmh
	}

	stops := coordinateStops(dayItems)
	if len(stops) < 2 {
		return nil
	}

	segments := make([]TravelSegment, 0, len(stops)-1)

	if remote.Covers(len(stops)) {
		for i := 0; i < len(stops)-1; i++ {
			leg := remote.Legs[i]
			segments = append(segments, TravelSegment{
				From:            stops[i],
				To:              stops[i+1],
				DistanceKm:      float64(leg.DistanceMeters) / 1000,
				DurationMinutes: int(math.Round(float64(leg.DurationSeconds) / 60)),
				FromProvider:    true,
			})
		}
		return segments
	}

	for i := 0; i < len(stops)-1; i++ {
		km := HaversineKm(*stops[i].Latitude, *stops[i].Longitude, *stops[i+1].Latitude, *stops[i+1].Longitude)
		segments = append(segments, TravelSegment{
			From:            stops[i],
			To:              stops[i+1],
			DistanceKm:      km,
			DurationMinutes: int(math.Round(km / speedKmh * 60)),
		})
	}

	return segments
}

// coordinateStops filters to items with both coordinates, preserving order.
func coordinateStops(items []*trip.Item) []*trip.Item {
	var stops []*trip.Item
	for _, item := range items {
		if item.HasCoordinates() {
			stops = append(stops, item)
		}
	}
	return stops
}

// HaversineKm returns the great-circle distance between two points in
// kilometers, using a spherical Earth of radius 6371 km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(rLat1)*math.Cos(rLat2)*sinLon*sinLon
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
