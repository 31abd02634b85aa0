// Package featureflags provides runtime feature flag management with
// database-backed storage, in-memory caching, and typed accessors.
package featureflags

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrFlagNotFound is returned when a flag does not exist.
var ErrFlagNotFound = errors.New("feature flag not found")

// Well-known flag keys.
const (
	// FlagDisableRemoteDirections forces travel segment estimation onto the
	// haversine heuristic, skipping the routing provider entirely.
	FlagDisableRemoteDirections = "disable_remote_directions"

	// FlagDisableBookings turns off all booking endpoints.
	FlagDisableBookings = "disable_bookings"

	// FlagItineraryPrefetchEnabled controls the background worker that warms
	// the directions cache for upcoming trips.
	FlagItineraryPrefetchEnabled = "itinerary_prefetch_enabled"

	// FlagDefaultTravelSpeedKmh overrides the average speed used by the
	// heuristic travel time estimate.
	FlagDefaultTravelSpeedKmh = "default_travel_speed_kmh"
)

// Flag represents a single feature flag with an arbitrary JSON value.
type Flag struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BoolValue returns the flag value as a bool, or the fallback if the value
// is not a boolean.
func (f *Flag) BoolValue(fallback bool) bool {
	var v bool
	if err := json.Unmarshal(f.Value, &v); err != nil {
		return fallback
	}
	return v
}

// StringValue returns the flag value as a string, or the fallback.
func (f *Flag) StringValue(fallback string) string {
	var v string
	if err := json.Unmarshal(f.Value, &v); err != nil {
		return fallback
	}
	return v
}

// IntValue returns the flag value as an int, or the fallback.
func (f *Flag) IntValue(fallback int) int {
	var v int
	if err := json.Unmarshal(f.Value, &v); err != nil {
		return fallback
	}
	return v
}

// Float64Value returns the flag value as a float64, or the fallback.
func (f *Flag) Float64Value(fallback float64) float64 {
	var v float64
	if err := json.Unmarshal(f.Value, &v); err != nil {
		return fallback
	}
	return v
}

// NewFlag creates a flag from any JSON-marshalable value.
func NewFlag(key string, value any) (Flag, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Flag{}, err
	}
	return Flag{
		Key:       key,
		Value:     raw,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// DefaultFlags returns the built-in flag defaults used when a flag has
// never been set.
func DefaultFlags() map[string]Flag {
	defaults := map[string]any{
		FlagDisableRemoteDirections:  false,
		FlagDisableBookings:          false,
		FlagItineraryPrefetchEnabled: true,
		FlagDefaultTravelSpeedKmh:    25.0,
	}

	flags := make(map[string]Flag, len(defaults))
	for key, value := range defaults {
		raw, _ := json.Marshal(value)
		flags[key] = Flag{Key: key, Value: raw}
	}
	return flags
}
