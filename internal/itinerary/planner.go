package itinerary

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Planner is a per-trip editing session over the itinerary service. It
// tracks the currently selected day and keeps that day's travel segments up
// to date as the selection or the underlying items change.
//
// Segment computations may involve a remote provider and can complete out of
// order. Each computation is stamped with a generation number taken when it
// starts; a result is published only if its generation still matches the
// current one, so the newest request always wins and stale responses are
// discarded silently.
type Planner struct {
	svc    *Service
	userID string
	tripID string
	logger zerolog.Logger

	// onSegments, when set, is invoked with fresh segments for the selected
	// day. Called without the planner lock held.
	onSegments func(dayIndex int, segments []TravelSegment)

	mu          sync.Mutex
	generation  uint64
	selectedDay int
	segments    []TravelSegment
	segmentsDay int
	hasSegments bool
}

// PlannerConfig holds configuration for a planner session.
type PlannerConfig struct {
	Service *Service
	UserID  string
	TripID  string
	Logger  zerolog.Logger

	// OnSegments receives segment updates for the selected day (optional).
	OnSegments func(dayIndex int, segments []TravelSegment)
}

// NewPlanner creates a planner session for one trip. Day 0 starts selected.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{
		svc:        cfg.Service,
		userID:     cfg.UserID,
		tripID:     cfg.TripID,
		logger:     cfg.Logger.With().Str("component", "planner").Str("trip_id", cfg.TripID).Logger(),
		onSegments: cfg.OnSegments,
	}
}

// SelectedDay returns the currently selected day index.
func (p *Planner) SelectedDay() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedDay
}

// Segments returns the last published segments and the day they belong to.
// ok is false before the first computation completes.
func (p *Planner) Segments() (dayIndex int, segments []TravelSegment, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasSegments {
		return 0, nil, false
	}
	return p.segmentsDay, p.segments, true
}

// SelectDay switches the selection and recomputes segments for the new day
// in the background. Switching again before the computation finishes makes
// the earlier result stale; it will be dropped when it arrives.
func (p *Planner) SelectDay(ctx context.Context, dayIndex int) {
	p.mu.Lock()
	p.selectedDay = dayIndex
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	go p.compute(ctx, gen, dayIndex)
}

// Refresh recomputes segments for the currently selected day, e.g. after an
// item edit or reorder.
func (p *Planner) Refresh(ctx context.Context) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	dayIndex := p.selectedDay
	p.mu.Unlock()

	go p.compute(ctx, gen, dayIndex)
}

func (p *Planner) compute(ctx context.Context, gen uint64, dayIndex int) {
	segments, err := p.svc.DaySegments(ctx, p.userID, p.tripID, dayIndex)
	if err != nil {
		p.logger.Warn().Err(err).Int("day_index", dayIndex).Msg("segment computation failed")
		return
	}
	p.publish(gen, dayIndex, segments)
}

// publish installs a computation result unless a newer request has been
// issued since it started.
func (p *Planner) publish(gen uint64, dayIndex int, segments []TravelSegment) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug().
			Int("day_index", dayIndex).
			Uint64("generation", gen).
			Msg("discarding stale segment result")
		return
	}
	p.segments = segments
	p.segmentsDay = dayIndex
	p.hasSegments = true
	cb := p.onSegments
	p.mu.Unlock()

	if cb != nil {
		cb(dayIndex, segments)
	}
}
