// Package main provides the entrypoint for the TripDeck API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/api"
	"github.com/tripdeck/tripdeck/internal/api/middleware"
	"github.com/tripdeck/tripdeck/internal/auth"
	"github.com/tripdeck/tripdeck/internal/booking"
	"github.com/tripdeck/tripdeck/internal/database"
	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/directions/openrouteservice"
	"github.com/tripdeck/tripdeck/internal/featureflags"
	"github.com/tripdeck/tripdeck/internal/itinerary"
	"github.com/tripdeck/tripdeck/internal/provider/resilience"
	"github.com/tripdeck/tripdeck/internal/telemetry"
	"github.com/tripdeck/tripdeck/internal/trip"
	"github.com/tripdeck/tripdeck/internal/user"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripdeck-api"

	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripDeck API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Provider health registry, shared by the ops status endpoint and the
	// resilient HTTP clients.
	registry := resilience.NewRegistry()

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:    jwtService,
		UserRepo:      authUserRepo,
		RefreshRepo:   authRefreshRepo,
		DefaultLocale: "en-US",
	})
	log.Info().Msg("auth service initialized")

	// Initialize user repository and service
	userRepo := user.NewPostgresRepository(pool)
	userService := user.NewService(userRepo)
	log.Info().Msg("user service initialized")

	// Initialize feature flags repository and service
	ffRepo := featureflags.NewPostgresRepository(pool)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize trip repositories and service
	tripRepo := trip.NewPostgresRepository(pool)
	itemRepo := trip.NewPostgresItemRepository(pool)
	tripService := trip.NewService(tripRepo, itemRepo)
	log.Info().Msg("trip service initialized")

	// Initialize the directions provider. Without an API key the itinerary
	// service still works, every segment just falls back to the heuristic.
	var routeSource itinerary.RouteSource
	if orsAPIKey := os.Getenv("ORS_API_KEY"); orsAPIKey != "" {
		orsClient := openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   orsAPIKey,
			BaseURL:  os.Getenv("ORS_BASE_URL"),
			Registry: registry,
			Logger:   log,
		})
		routeSource = directions.NewService(directions.ServiceConfig{
			Provider: orsClient,
			Logger:   log,
		})
		log.Info().Str("provider", orsClient.Name()).Msg("directions service initialized")
	} else {
		log.Warn().Msg("ORS_API_KEY not set - travel segments will use heuristic estimates only")
	}

	// Initialize itinerary service
	itineraryService := itinerary.NewService(itinerary.ServiceConfig{
		Trips:      tripRepo,
		Items:      itemRepo,
		Directions: routeSource,
		Flags:      ffService,
		Logger:     log,
	})
	log.Info().Msg("itinerary service initialized")

	// Initialize booking repository and service
	bookingRepo := booking.NewPostgresRepository(pool)
	bookingService := booking.NewService(booking.ServiceConfig{
		Repo:   bookingRepo,
		Trips:  tripRepo,
		Flags:  ffService,
		Logger: log,
	})
	log.Info().Msg("booking service initialized")

	var allowedOrigins []string
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Pool:               pool,
		Registry:           registry,
		AuthService:        authService,
		UserService:        userService,
		TripService:        tripService,
		ItineraryService:   itineraryService,
		BookingService:     bookingService,
		FeatureFlagService: ffService,
		AllowedOrigins:     allowedOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
