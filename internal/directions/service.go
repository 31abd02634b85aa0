package directions

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the directions service.
type ServiceConfig struct {
	// Provider is the directions data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache route results (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.001 ~ 110m).
	// Stops within the same grid cell share cached routes.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 10 minutes).
	CleanupInterval time.Duration
}

// Service provides directions with caching and stale-if-error fallback.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedResult
	lastCleanup time.Time
}

type cachedResult struct {
	result    *Result
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new directions service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.001 // ~110m at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 10 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedResult),
	}
}

// GetDirections returns a route through the ordered waypoints, using cached
// data when available and not expired.
func (s *Service) GetDirections(ctx context.Context, req Request) (*Result, error) {
	if len(req.Waypoints) < 2 {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "TOO_FEW_STOPS",
			Message:  "a route needs at least two stops",
			Err:      ErrTooFewStops,
		}
	}
	for i, wp := range req.Waypoints {
		if err := validateCoordinate(wp); err != nil {
			return nil, &Error{
				Provider: s.provider.Name(),
				Code:     "INVALID_STOP",
				Message:  fmt.Sprintf("invalid coordinates for stop %d", i),
				Err:      ErrInvalidCoordinates,
			}
		}
	}
	if req.Profile == "" {
		req.Profile = ProfileDrive
	}

	cacheKey := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for directions")
		return cached.result, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, req, cacheKey)
}

// fetch fetches a route from the provider and updates the cache.
func (s *Service) fetch(ctx context.Context, req Request, cacheKey string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.result, nil
	}

	s.logger.Debug().
		Int("stops", len(req.Waypoints)).
		Str("profile", string(req.Profile)).
		Str("provider", s.provider.Name()).
		Msg("fetching directions from provider")

	result, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Int("stops", len(req.Waypoints)).
			Str("profile", string(req.Profile)).
			Msg("failed to fetch directions")

		// Stale-if-error: keep serving the previous route for a while.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale directions due to provider error")
				return cached.result, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedResult{
		result:    result,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded()

	return result, nil
}

// cacheKey quantizes every waypoint onto the cache grid and joins them.
// Format: {profile}:{lat},{lon}|{lat},{lon}|...
func (s *Service) cacheKey(req Request) string {
	var b strings.Builder
	b.WriteString(string(req.Profile))
	b.WriteByte(':')
	for i, wp := range req.Waypoints {
		if i > 0 {
			b.WriteByte('|')
		}
		gridLat := math.Floor(wp.Lat/s.cacheGridSize) * s.cacheGridSize
		gridLon := math.Floor(wp.Lon/s.cacheGridSize) * s.cacheGridSize
		fmt.Fprintf(&b, "%.3f,%.3f", gridLat, gridLon)
	}
	return b.String()
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
// Caller must hold the write lock.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired directions cache entries")
	}
}

// InvalidateCache clears all cached routes.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedResult)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

func validateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}
