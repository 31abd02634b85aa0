package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/itinerary"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// RouteWarmer is the slice of the directions service the prefetch job needs.
// Fetching a route populates the service's cache as a side effect.
type RouteWarmer interface {
	GetDirections(ctx context.Context, req directions.Request) (*directions.Result, error)
}

// PrefetchFlags gates the job at runtime. A nil source means always enabled.
type PrefetchFlags interface {
	PrefetchEnabled(ctx context.Context) bool
}

// PrefetchJob warms the directions cache for trips starting soon, so the
// first board view of an imminent trip gets provider routes without waiting
// on the provider.
type PrefetchJob struct {
	config PrefetchConfig
	logger zerolog.Logger

	trips  trip.Repository
	items  trip.ItemRepository
	routes RouteWarmer
	flags  PrefetchFlags

	metrics *PrefetchMetrics
}

// PrefetchMetrics tracks prefetch job statistics.
type PrefetchMetrics struct {
	mu sync.RWMutex

	TotalRuns      int64
	TripsProcessed int64
	DaysWarmed     int64
	DaysSkipped    int64
	RouteFailures  int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// PrefetchJobConfig holds configuration for creating a PrefetchJob.
type PrefetchJobConfig struct {
	Config PrefetchConfig
	Logger zerolog.Logger
	Trips  trip.Repository
	Items  trip.ItemRepository
	Routes RouteWarmer
	Flags  PrefetchFlags
}

// NewPrefetchJob creates a new prefetch job processor.
func NewPrefetchJob(cfg PrefetchJobConfig) *PrefetchJob {
	return &PrefetchJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger.With().Str("component", "prefetch").Logger(),
		trips:   cfg.Trips,
		items:   cfg.Items,
		routes:  cfg.Routes,
		flags:   cfg.Flags,
		metrics: &PrefetchMetrics{},
	}
}

// PrefetchResult contains the result of one prefetch run.
type PrefetchResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalTrips int
	DaysWarmed int
	// DaysSkipped counts days with fewer than two located items; there is
	// nothing to route for those.
	DaysSkipped int
	Failed      int
	Errors      []PrefetchError
}

// PrefetchError represents a failed route warm-up.
type PrefetchError struct {
	TripID   string
	DayIndex int
	Error    string
}

// Run executes one prefetch pass over the lookahead window.
func (j *PrefetchJob) Run(ctx context.Context) *PrefetchResult {
	startTime := time.Now()
	result := &PrefetchResult{StartTime: startTime}

	if j.flags != nil && !j.flags.PrefetchEnabled(ctx) {
		j.logger.Info().Msg("itinerary prefetch disabled by flag, skipping run")
		result.EndTime = time.Now()
		return result
	}

	from := time.Now()
	to := from.AddDate(0, 0, j.config.LookaheadDays)

	trips, err := j.trips.ListStartingBetween(ctx, from, to)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list upcoming trips")
		result.Failed++
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}

	result.TotalTrips = len(trips)

	j.logger.Info().
		Int("trips", len(trips)).
		Int("lookahead_days", j.config.LookaheadDays).
		Int("concurrency", j.config.Concurrency).
		Msg("starting itinerary prefetch run")

	tripsChan := make(chan *trip.Trip, len(trips))
	resultsChan := make(chan tripResult, len(trips))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.prefetchWorker(ctx, tripsChan, resultsChan)
		}()
	}

	for _, t := range trips {
		tripsChan <- t
	}
	close(tripsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		result.DaysWarmed += tr.daysWarmed
		result.DaysSkipped += tr.daysSkipped
		result.Failed += len(tr.errors)
		result.Errors = append(result.Errors, tr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("trips", result.TotalTrips).
		Int("days_warmed", result.DaysWarmed).
		Int("days_skipped", result.DaysSkipped).
		Int("failed", result.Failed).
		Msg("itinerary prefetch run completed")

	return result
}

type tripResult struct {
	tripID      string
	daysWarmed  int
	daysSkipped int
	errors      []PrefetchError
}

func (j *PrefetchJob) prefetchWorker(ctx context.Context, trips <-chan *trip.Trip, results chan<- tripResult) {
	for t := range trips {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.prefetchTrip(ctx, t)
		}
	}
}

func (j *PrefetchJob) prefetchTrip(ctx context.Context, t *trip.Trip) tripResult {
	result := tripResult{tripID: t.ID}

	tripCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	items, err := j.items.ListByTrip(tripCtx, t.ID)
	if err != nil {
		result.errors = append(result.errors, PrefetchError{
			TripID: t.ID,
			Error:  err.Error(),
		})
		return result
	}

	buckets := itinerary.Partition(t.StartDate, t.EndDate, items)
	for day := 0; day < t.Days(); day++ {
		waypoints := locatedWaypoints(buckets[day])
		if len(waypoints) < 2 {
			result.daysSkipped++
			continue
		}

		req := directions.Request{Waypoints: waypoints}
		if j.config.Profile != "" {
			req.Profile = directions.Profile(j.config.Profile)
		}

		if _, err := j.routes.GetDirections(tripCtx, req); err != nil {
			atomic.AddInt64(&j.metrics.RouteFailures, 1)
			result.errors = append(result.errors, PrefetchError{
				TripID:   t.ID,
				DayIndex: day,
				Error:    err.Error(),
			})
			continue
		}

		result.daysWarmed++
	}

	atomic.AddInt64(&j.metrics.TripsProcessed, 1)
	return result
}

func locatedWaypoints(items []*trip.Item) []directions.Coordinate {
	var waypoints []directions.Coordinate
	for _, item := range items {
		if item.HasCoordinates() {
			waypoints = append(waypoints, directions.Coordinate{
				Lat: *item.Latitude,
				Lon: *item.Longitude,
			})
		}
	}
	return waypoints
}

func (j *PrefetchJob) updateMetrics(result *PrefetchResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.DaysWarmed += int64(result.DaysWarmed)
	j.metrics.DaysSkipped += int64(result.DaysSkipped)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *PrefetchJob) GetMetrics() PrefetchMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return PrefetchMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		TripsProcessed:  atomic.LoadInt64(&j.metrics.TripsProcessed),
		DaysWarmed:      j.metrics.DaysWarmed,
		DaysSkipped:     j.metrics.DaysSkipped,
		RouteFailures:   atomic.LoadInt64(&j.metrics.RouteFailures),
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *PrefetchJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"trips_processed":   m.TripsProcessed,
		"days_warmed":       m.DaysWarmed,
		"days_skipped":      m.DaysSkipped,
		"route_failures":    m.RouteFailures,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
