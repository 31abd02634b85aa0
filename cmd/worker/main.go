// Package main provides the entrypoint for the TripDeck background worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tripdeck/tripdeck/internal/database"
	"github.com/tripdeck/tripdeck/internal/directions"
	"github.com/tripdeck/tripdeck/internal/directions/openrouteservice"
	"github.com/tripdeck/tripdeck/internal/featureflags"
	"github.com/tripdeck/tripdeck/internal/provider/resilience"
	"github.com/tripdeck/tripdeck/internal/trip"
	"github.com/tripdeck/tripdeck/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripdeck-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripDeck worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	tripRepo := trip.NewPostgresRepository(pool)
	itemRepo := trip.NewPostgresItemRepository(pool)

	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewPostgresRepository(pool),
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})

	orsAPIKey := os.Getenv("ORS_API_KEY")
	if orsAPIKey == "" {
		log.Fatal().Msg("ORS_API_KEY is required - the prefetch worker warms provider routes")
	}

	registry := resilience.NewRegistry()
	routeService := directions.NewService(directions.ServiceConfig{
		Provider: openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   orsAPIKey,
			BaseURL:  os.Getenv("ORS_BASE_URL"),
			Registry: registry,
			Logger:   log,
		}),
		Logger: log,
	})

	prefetchConfig := worker.DefaultPrefetchConfig()
	if v := os.Getenv("PREFETCH_LOOKAHEAD_DAYS"); v != "" {
		if days, parseErr := strconv.Atoi(v); parseErr == nil && days > 0 {
			prefetchConfig.LookaheadDays = days
		}
	}
	if v := os.Getenv("PREFETCH_CONCURRENCY"); v != "" {
		if n, parseErr := strconv.Atoi(v); parseErr == nil && n > 0 {
			prefetchConfig.Concurrency = n
		}
	}

	prefetchJob := worker.NewPrefetchJob(worker.PrefetchJobConfig{
		Config: prefetchConfig,
		Logger: log,
		Trips:  tripRepo,
		Items:  itemRepo,
		Routes: routeService,
		Flags:  ffService,
	})

	// Health and metrics endpoints for Cloud Run.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"version": Version,
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(prefetchJob.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub triggered mode when a subscription is configured, otherwise a
	// local interval loop.
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			PrefetchJob:      prefetchJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		interval := 1 * time.Hour
		if v := os.Getenv("PREFETCH_INTERVAL"); v != "" {
			if d, parseErr := time.ParseDuration(v); parseErr == nil && d > 0 {
				interval = d
			}
		}

		log.Info().
			Dur("interval", interval).
			Msg("no pubsub subscription configured, running on interval")

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			prefetchJob.Run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					prefetchJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
