// Package api provides the HTTP API for TripDeck.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/api/handler"
	"github.com/tripdeck/tripdeck/internal/api/middleware"
	"github.com/tripdeck/tripdeck/internal/auth"
	"github.com/tripdeck/tripdeck/internal/booking"
	"github.com/tripdeck/tripdeck/internal/featureflags"
	"github.com/tripdeck/tripdeck/internal/itinerary"
	"github.com/tripdeck/tripdeck/internal/provider/resilience"
	"github.com/tripdeck/tripdeck/internal/trip"
	"github.com/tripdeck/tripdeck/internal/user"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	Pool               *pgxpool.Pool
	Registry           *resilience.Registry
	AuthService        *auth.Service
	UserService        *user.Service
	TripService        *trip.Service
	ItineraryService   *itinerary.Service
	BookingService     *booking.Service
	FeatureFlagService *featureflags.Service
	AllowedOrigins     []string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripdeck-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	r.Use(middleware.ContentTypeJSON) // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.Registry)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	meHandler := handler.NewMeHandler(cfg.UserService)
	tripHandler := handler.NewTripHandler(cfg.TripService)
	itineraryHandler := handler.NewItineraryHandler(cfg.ItineraryService)
	bookingHandler := handler.NewBookingHandler(cfg.BookingService)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Booking wizard metadata and quotes (public) - standard rate limiting
		r.Route("/bookings", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/wizards", bookingHandler.ListWizards)
			r.Post("/quote", bookingHandler.Quote)
		})

		// Me endpoints (authenticated) - user-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", meHandler.GetMe)
			r.Put("/", meHandler.UpdateMe)
			r.Delete("/", meHandler.DeleteMe)

			// Trips and trip items
			r.Route("/trips", func(r chi.Router) {
				r.Get("/", tripHandler.ListTrips)
				r.Post("/", tripHandler.CreateTrip)
				r.Route("/{tripId}", func(r chi.Router) {
					r.Get("/", tripHandler.GetTrip)
					r.Put("/", tripHandler.UpdateTrip)
					r.Delete("/", tripHandler.DeleteTrip)

					r.Route("/items", func(r chi.Router) {
						r.Get("/", tripHandler.ListItems)
						r.Post("/", tripHandler.CreateItem)
						r.Put("/{itemId}", tripHandler.UpdateItem)
						r.Delete("/{itemId}", tripHandler.DeleteItem)
					})

					// Itinerary board - segment computation may call the
					// routing provider, so it gets the expensive limit
					r.Route("/board", func(r chi.Router) {
						r.Get("/", itineraryHandler.GetBoard)
						r.With(expensiveRateLimit).Get("/days/{dayIndex}/segments", itineraryHandler.GetDaySegments)
						r.Post("/reorder", itineraryHandler.Reorder)
					})

					// Bookings attached to the trip
					r.Route("/bookings", func(r chi.Router) {
						r.Get("/", bookingHandler.ListBookings)
						r.Post("/", bookingHandler.CreateBooking)
					})
				})
			})

			// Bookings by ID
			r.Route("/bookings/{bookingId}", func(r chi.Router) {
				r.Get("/", bookingHandler.GetBooking)
				r.Post("/cancel", bookingHandler.CancelBooking)
			})
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})

			// Booking decisions (back-office)
			r.Route("/bookings/{bookingId}", func(r chi.Router) {
				r.Post("/confirm", bookingHandler.ConfirmBooking)
				r.Post("/reject", bookingHandler.RejectBooking)
			})
		})
	})

	return r
}
