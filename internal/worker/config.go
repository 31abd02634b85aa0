// Package worker provides background job processing for TripDeck.
package worker

import (
	"time"
)

// PrefetchConfig holds configuration for the itinerary prefetch job.
type PrefetchConfig struct {
	// LookaheadDays bounds which trips are prefetched: trips starting within
	// [now, now + LookaheadDays) are warmed.
	// Default: 7
	LookaheadDays int

	// Concurrency is the number of trips processed concurrently.
	// Default: 3
	Concurrency int

	// Timeout is the per-trip deadline.
	// Default: 30 seconds
	Timeout time.Duration

	// Profile is the routing profile used for warmed routes.
	Profile string
}

// DefaultPrefetchConfig returns the default prefetch configuration.
func DefaultPrefetchConfig() PrefetchConfig {
	return PrefetchConfig{
		LookaheadDays: 7,
		Concurrency:   3,
		Timeout:       30 * time.Second,
	}
}

func (c PrefetchConfig) withDefaults() PrefetchConfig {
	if c.LookaheadDays <= 0 {
		c.LookaheadDays = 7
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
