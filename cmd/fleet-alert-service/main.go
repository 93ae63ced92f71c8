package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fleet-alert-service/internal/auth"
	"fleet-alert-service/internal/client"
	"fleet-alert-service/internal/config"
	"fleet-alert-service/internal/db"
	httphandler "fleet-alert-service/internal/http"
	"fleet-alert-service/internal/http/middleware"
	"fleet-alert-service/internal/logger"
	"fleet-alert-service/internal/repository"
	"fleet-alert-service/internal/service"
	"fleet-alert-service/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	registry := service.NewGeofenceRegistry(appLogger)
	detector := service.NewDetector(registry, appLogger)
	alerts := service.NewAlertManager()

	var eventRepo *repository.EventRepository
	if cfg.ArchiveEnabled() {
		database, err := db.New(cfg, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect database")
		}
		eventRepo = repository.NewEventRepository(database)
	} else {
		appLogger.Info().Msg("event archive disabled, DB_DSN not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Backend.BaseURL != "" {
		backend := client.NewBackendClient(cfg)
		refreshOnce(ctx, backend, registry, detector, appLogger)
		go refreshLoop(ctx, backend, registry, detector, cfg.Backend.RefreshInterval, appLogger)
	} else {
		appLogger.Warn().Msg("backend base URL not set, geofences must be pushed via the API")
	}

	if cfg.Backend.WebSocketURL != "" {
		subscriber := stream.NewSubscriber(cfg.Backend.WebSocketURL, detector, alerts, archiveOrNil(eventRepo), appLogger)
		go subscriber.Run(ctx)
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(registry, detector, alerts, eventRepo, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting fleet alert service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}

func refreshLoop(
	ctx context.Context,
	backend *client.BackendClient,
	registry *service.GeofenceRegistry,
	detector *service.Detector,
	interval time.Duration,
	log zerolog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshOnce(ctx, backend, registry, detector, log)
		}
	}
}

func refreshOnce(
	ctx context.Context,
	backend *client.BackendClient,
	registry *service.GeofenceRegistry,
	detector *service.Detector,
	log zerolog.Logger,
) {
	geofences, warnings, err := backend.FetchGeofences(ctx)
	if err != nil {
		log.Error().Err(err).Msg("geofence refresh failed")
	} else {
		for _, w := range warnings {
			log.Warn().Err(w).Msg("skipped untranslatable geofence")
		}
		dropped := registry.SetGeofences(geofences)
		log.Info().
			Int("fetched", len(geofences)).
			Int("dropped", len(dropped)).
			Msg("geofence registry refreshed")
	}

	vehicles, err := backend.FetchVehicles(ctx)
	if err != nil {
		log.Error().Err(err).Msg("vehicle roster refresh failed")
		return
	}
	detector.SetVehicles(vehicles)
}

// archiveOrNil keeps the subscriber's archive interface nil when the repo is
// nil; a typed nil pointer would not compare equal to nil inside stream.
func archiveOrNil(repo *repository.EventRepository) stream.EventArchive {
	if repo == nil {
		return nil
	}
	return repo
}
