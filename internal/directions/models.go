// Package directions provides multi-stop route lookups for trip days.
package directions

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for directions operations.
var (
	// ErrProviderUnavailable indicates the provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no valid route exists through the given stops.
	ErrNoRouteFound = errors.New("no route found through the given stops")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates a stop coordinate is invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrTooFewStops indicates fewer than two stops were supplied.
	ErrTooFewStops = errors.New("at least two stops are required")
)

// Provider defines the interface for directions providers.
type Provider interface {
	// GetDirections retrieves a route through the ordered waypoints.
	GetDirections(ctx context.Context, req Request) (*Result, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
	// SupportedProfiles returns the route profiles this provider supports.
	SupportedProfiles() []Profile
}

// Profile represents a routing profile (mode of transport).
type Profile string

const (
	// ProfileDrive is the default profile for trip-day routing.
	ProfileDrive Profile = "driving-car"
	// ProfileWalk is the pedestrian profile.
	ProfileWalk Profile = "foot-walking"
)

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Request asks for a route through ordered waypoints.
type Request struct {
	Waypoints []Coordinate
	Profile   Profile
}

// Result is a computed route through ordered stops. Legs holds one entry per
// consecutive stop pair, in stop order.
type Result struct {
	Legs             []Leg
	GeometryPolyline string // encoded polyline, precision 5
	Provider         string
	FetchedAt        time.Time
}

// Leg is the provider's distance and duration for one consecutive stop pair.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
}

// Covers reports whether the result's legs cover an ordered stop sequence of
// the given length: exactly one leg per consecutive pair. A nil result covers
// nothing.
func (r *Result) Covers(stopCount int) bool {
	if r == nil || stopCount < 2 {
		return false
	}
	return len(r.Legs) == stopCount-1
}

// Error provides detailed error information from a directions provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
