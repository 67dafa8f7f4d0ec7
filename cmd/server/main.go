package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	"debate-gallery/internal/config"
	"debate-gallery/internal/observability"
	"debate-gallery/internal/platform/backend"
	"debate-gallery/internal/platform/cache"
	"debate-gallery/internal/platform/server"
	"debate-gallery/internal/services"
	"debate-gallery/internal/web/handlers"
	"debate-gallery/internal/web/views"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	obsConfig := observability.LoadConfig()
	if cfg.Logging != nil {
		obsConfig.LogLevel = cfg.Logging.Level
		obsConfig.LogFormat = cfg.Logging.Format
	}
	if err := obsConfig.Validate(); err != nil {
		log.Fatalf("Invalid observability configuration: %v", err)
	}

	ctx := context.Background()
	logger := observability.NewLogger(obsConfig)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(logger.OTELErrorHandler()))

	provider, err := observability.NewProvider(ctx, obsConfig)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize observability")
	}

	httpMetrics, err := observability.NewHTTPMetrics(observability.GetMeter())
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to create HTTP metrics")
	}
	galleryMetrics, err := observability.NewGalleryMetrics(observability.GetMeter())
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to create gallery metrics")
	}

	var redisClient *cache.RedisClient
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Cache)
		if err != nil {
			// The gallery works without the cache, just slower
			logger.Warn(ctx).Err(err).Msg("Cache unavailable, continuing without it")
			redisClient = nil
		}
	}

	container := services.NewContainer(cfg, backend.NewClient(cfg.Backend), redisClient, logger, galleryMetrics)
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to close services container")
		}
	}()

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to parse templates")
	}

	handler := handlers.NewWithContainer(container, renderer, httpMetrics)
	srv := server.New(cfg.Addr(), handler.Routes(), cfg.Server)

	go func() {
		logger.Info(ctx).
			Str("addr", cfg.Addr()).
			Str("backend", cfg.Backend.BaseURL).
			Str("environment", cfg.Environment).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx).Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx).Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("Server forced to shutdown")
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info(ctx).Msg("Server exited")
}
