package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clipline/barbershop-backend/internal/adapters/database"
	"github.com/clipline/barbershop-backend/internal/adapters/events"
	"github.com/clipline/barbershop-backend/internal/adapters/providers/simplybook"
	"github.com/clipline/barbershop-backend/internal/application/services"
	"github.com/clipline/barbershop-backend/internal/domain/providers"
	"github.com/clipline/barbershop-backend/internal/infrastructure/clients/postgres"
	"github.com/clipline/barbershop-backend/internal/infrastructure/clients/redis"
	"github.com/clipline/barbershop-backend/internal/infrastructure/observability"
	"github.com/clipline/barbershop-backend/pkg/config"
)

// The sync worker periodically pushes every record stuck in a pending state
// to the external calendar system. Records in the error state are left for an
// operator; the worker never retries them on its own.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger("barbershop-syncworker", os.Getenv("ENV"))

	if !cfg.SimplyBook.SyncEnabled() {
		log.Fatal().Msg("SimplyBook credentials are not configured; nothing to sync")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; sweep runs without events")
	} else {
		defer redisClient.Close()
		eventBus = events.NewRedisEventBus(redisClient)
	}

	customerAdapter := database.NewCustomerAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	providerAdapter := database.NewProviderAdapter(pgClient)
	serviceAdapter := database.NewServiceAdapter(pgClient)
	calendarProvider := simplybook.NewCalendarProvider(&cfg.SimplyBook)

	syncService := services.NewSyncService(
		customerAdapter,
		appointmentAdapter,
		providerAdapter,
		serviceAdapter,
		calendarProvider,
		eventBus,
		true,
		cfg.SimplyBook.AutoSyncClients,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.SimplyBook.SweepInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", cfg.SimplyBook.SweepInterval).Msg("sync worker started")

	// Run one sweep immediately so a restart does not wait a full interval.
	sweep(ctx, syncService)

	for {
		select {
		case <-ticker.C:
			sweep(ctx, syncService)
		case <-quit:
			log.Info().Msg("sync worker stopping")
			return
		}
	}
}

func sweep(ctx context.Context, syncService *services.SyncService) {
	start := time.Now()
	report, err := syncService.SyncAllPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		return
	}

	logEvent := log.Info()
	if report.Failed > 0 {
		logEvent = log.Warn().Strs("errors", report.Errors)
	}
	logEvent.
		Int("synced", report.Synced).
		Int("failed", report.Failed).
		Dur("duration", time.Since(start)).
		Msg("sweep finished")
}
