package featureflags

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCacheTTL is how long flag values are cached in memory before
// re-reading from the repository.
const DefaultCacheTTL = 30 * time.Second

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL overrides DefaultCacheTTL when positive.
	CacheTTL time.Duration
}

// Service provides cached access to feature flags with built-in defaults.
// Reads fall back to DefaultFlags when a flag has never been set, so callers
// always get a usable value.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration
	defaults map[string]Flag

	mu          sync.RWMutex
	cache       map[string]Flag
	cacheExpiry time.Time
}

// NewService creates a new feature flag service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger.With().Str("component", "featureflags").Logger(),
		cacheTTL: ttl,
		defaults: DefaultFlags(),
		cache:    make(map[string]Flag),
	}
}

// GetFlag returns the flag for key, falling back to the built-in default
// when the flag has never been set. Returns ErrFlagNotFound only for keys
// with no default.
func (s *Service) GetFlag(ctx context.Context, key string) (*Flag, error) {
	if flag, ok := s.getCached(key); ok {
		return &flag, nil
	}

	flag, err := s.repo.GetFlag(ctx, key)
	if err == nil {
		s.setCached(*flag)
		out := *flag
		return &out, nil
	}

	if def, ok := s.defaults[key]; ok {
		return &def, nil
	}
	return nil, err
}

// GetAllFlags returns all flags, merging stored values over the defaults.
func (s *Service) GetAllFlags(ctx context.Context) ([]Flag, error) {
	stored, err := s.repo.GetAllFlags(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load feature flags, serving defaults")
		stored = nil
	}

	merged := make(map[string]Flag, len(s.defaults)+len(stored))
	for key, flag := range s.defaults {
		merged[key] = flag
	}
	for _, flag := range stored {
		merged[flag.Key] = flag
		s.setCached(flag)
	}

	flags := make([]Flag, 0, len(merged))
	for _, flag := range merged {
		flags = append(flags, flag)
	}
	return flags, nil
}

// SetFlag stores a flag and refreshes the cache entry.
func (s *Service) SetFlag(ctx context.Context, flag Flag) error {
	if err := s.repo.SetFlag(ctx, flag); err != nil {
		return err
	}

	flag.UpdatedAt = time.Now().UTC()
	s.setCached(flag)

	s.logger.Info().
		Str("flag", flag.Key).
		RawJSON("value", flag.Value).
		Msg("feature flag updated")
	return nil
}

// SetFlags stores multiple flags and refreshes the cache.
func (s *Service) SetFlags(ctx context.Context, flags []Flag) error {
	if err := s.repo.SetFlags(ctx, flags); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, flag := range flags {
		flag.UpdatedAt = now
		s.setCached(flag)
	}
	return nil
}

// DeleteFlag removes a flag; subsequent reads see the built-in default.
func (s *Service) DeleteFlag(ctx context.Context, key string) error {
	if err := s.repo.DeleteFlag(ctx, key); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
	return nil
}

// InvalidateCache clears the in-memory flag cache.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	s.cache = make(map[string]Flag)
	s.cacheExpiry = time.Time{}
	s.mu.Unlock()
}

// IsEnabled reports whether a boolean flag is true. Unknown or non-boolean
// flags report false.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	flag, err := s.GetFlag(ctx, key)
	if err != nil {
		return false
	}
	return flag.BoolValue(false)
}

// RemoteDirectionsDisabled reports whether segment estimation should skip
// the routing provider.
func (s *Service) RemoteDirectionsDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableRemoteDirections)
}

// BookingsDisabled reports whether booking operations are turned off.
func (s *Service) BookingsDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableBookings)
}

// PrefetchEnabled reports whether the itinerary prefetch worker should run.
func (s *Service) PrefetchEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagItineraryPrefetchEnabled)
}

// TravelSpeedKmh returns the configured average travel speed for heuristic
// estimates, falling back to the given default.
func (s *Service) TravelSpeedKmh(ctx context.Context, fallback float64) float64 {
	flag, err := s.GetFlag(ctx, FlagDefaultTravelSpeedKmh)
	if err != nil {
		return fallback
	}
	speed := flag.Float64Value(fallback)
	if speed <= 0 {
		return fallback
	}
	return speed
}

func (s *Service) getCached(key string) (Flag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if time.Now().After(s.cacheExpiry) {
		return Flag{}, false
	}
	flag, ok := s.cache[key]
	return flag, ok
}

func (s *Service) setCached(flag Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Now().After(s.cacheExpiry) {
		s.cache = make(map[string]Flag)
		s.cacheExpiry = time.Now().Add(s.cacheTTL)
	}
	s.cache[flag.Key] = flag
}
