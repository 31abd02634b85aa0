package itinerary

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/trip"
)

// gatedRoutes blocks requests for day zero (lat < 5) until released, letting
// tests force out-of-order completion.
type gatedRoutes struct {
	release chan struct{}
}

func (g *gatedRoutes) GetDirections(ctx context.Context, req directions.Request) (*directions.Result, error) {
	if req.Waypoints[0].Lat < 5 {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &directions.Result{
		Legs:     []directions.Leg{{DistanceMeters: 1000, DurationSeconds: 120}},
		Provider: "stub",
	}, nil
}

func plannerFixture(t *testing.T, routes RouteSource) (*Planner, chan int) {
	t.Helper()

	svc, _ := newBoardService(t, routes, nil, []*trip.Item{
		placedItem("a", ts(1, 9), 0, 0),
		placedItem("b", ts(1, 12), 1, 0),
		placedItem("c", ts(2, 9), 10, 0),
		placedItem("d", ts(2, 12), 11, 0),
	})

	updates := make(chan int, 8)
	p := NewPlanner(PlannerConfig{
		Service: svc,
		UserID:  "usr_test",
		TripID:  "trp_test",
		Logger:  zerolog.Nop(),
		OnSegments: func(dayIndex int, _ []TravelSegment) {
			updates <- dayIndex
		},
	})
	return p, updates
}

func TestPlanner_PublishesSelectedDay(t *testing.T) {
	p, updates := plannerFixture(t, nil)

	p.SelectDay(context.Background(), 1)

	select {
	case day := <-updates:
		if day != 1 {
			t.Fatalf("published day = %d, want 1", day)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for segment update")
	}

	day, segments, ok := p.Segments()
	if !ok || day != 1 {
		t.Fatalf("Segments() = day %d ok=%v, want day 1", day, ok)
	}
	if len(segments) != 1 {
		t.Errorf("got %d segments, want 1", len(segments))
	}
	if p.SelectedDay() != 1 {
		t.Errorf("SelectedDay = %d, want 1", p.SelectedDay())
	}
}

func TestPlanner_StalePublishIsDiscarded(t *testing.T) {
	p, _ := plannerFixture(t, nil)

	p.mu.Lock()
	p.generation = 2
	p.mu.Unlock()

	p.publish(1, 0, []TravelSegment{{}})
	if _, _, ok := p.Segments(); ok {
		t.Fatal("a result from an old generation must not be installed")
	}

	p.publish(2, 1, []TravelSegment{{}})
	day, _, ok := p.Segments()
	if !ok || day != 1 {
		t.Fatalf("current-generation publish should install, got day %d ok=%v", day, ok)
	}
}

func TestPlanner_LatestSelectionWins(t *testing.T) {
	routes := &gatedRoutes{release: make(chan struct{})}
	p, updates := plannerFixture(t, routes)
	ctx := context.Background()

	// Day 0's provider call hangs; day 1's returns immediately.
	p.SelectDay(ctx, 0)
	p.SelectDay(ctx, 1)

	select {
	case day := <-updates:
		if day != 1 {
			t.Fatalf("first published day = %d, want 1", day)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for day 1 update")
	}

	// Let the day 0 request finish; its result is stale and must be dropped.
	close(routes.release)

	select {
	case day := <-updates:
		t.Fatalf("stale day %d result was published", day)
	case <-time.After(100 * time.Millisecond):
	}

	day, _, ok := p.Segments()
	if !ok || day != 1 {
		t.Errorf("Segments() = day %d ok=%v, want day 1 retained", day, ok)
	}
}
