package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clipline/barbershop-backend/internal/adapters/cache"
	"github.com/clipline/barbershop-backend/internal/adapters/database"
	"github.com/clipline/barbershop-backend/internal/adapters/events"
	"github.com/clipline/barbershop-backend/internal/adapters/providers/simplybook"
	"github.com/clipline/barbershop-backend/internal/api/handlers"
	"github.com/clipline/barbershop-backend/internal/api/routes"
	"github.com/clipline/barbershop-backend/internal/application/services"
	"github.com/clipline/barbershop-backend/internal/domain/providers"
	"github.com/clipline/barbershop-backend/internal/infrastructure/clients/postgres"
	"github.com/clipline/barbershop-backend/internal/infrastructure/clients/redis"
	"github.com/clipline/barbershop-backend/internal/infrastructure/observability"
	"github.com/clipline/barbershop-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Initialize Redis client. The engine degrades gracefully without it:
	// no catalog cache, no sync events.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; continuing without cache and events")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Initialize store adapters
	customerAdapter := database.NewCustomerAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	providerAdapter := database.NewProviderAdapter(pgClient)
	serviceAdapter := database.NewServiceAdapter(pgClient)

	// Initialize the external calendar provider
	calendarProvider := simplybook.NewCalendarProvider(&cfg.SimplyBook)

	// Initialize services
	syncService := services.NewSyncService(
		customerAdapter,
		appointmentAdapter,
		providerAdapter,
		serviceAdapter,
		calendarProvider,
		eventBus,
		cfg.SimplyBook.SyncEnabled(),
		cfg.SimplyBook.AutoSyncClients,
	)
	syncService.SetMetrics(metrics)
	statsService := services.NewStatsService(customerAdapter, appointmentAdapter)
	bookingService := services.NewBookingService(
		appointmentAdapter,
		customerAdapter,
		providerAdapter,
		serviceAdapter,
		syncService,
		statsService,
	)
	bookingService.SetMetrics(metrics)
	availabilityService := services.NewAvailabilityService(providerAdapter, serviceAdapter)
	customerService := services.NewCustomerService(customerAdapter, syncService)
	catalogService := services.NewCatalogService(calendarProvider, cacheProvider)

	// Initialize handlers
	customerHandler := handlers.NewCustomerHandler(customerService, syncService)
	appointmentHandler := handlers.NewAppointmentHandler(bookingService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	syncHandler := handlers.NewSyncHandler(syncService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	// Set up router
	router := routes.NewRouter(
		customerHandler,
		appointmentHandler,
		availabilityHandler,
		syncHandler,
		catalogHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
