package services

import (
	"context"

	"debate-gallery/internal/config"
	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/observability"
	"debate-gallery/internal/platform/cache"
	"debate-gallery/internal/platform/media"
	"debate-gallery/internal/services/implementations"
)

// Container holds all the application dependencies
type Container struct {
	config  *config.Config
	logger  *observability.Logger
	metrics *observability.GalleryMetrics

	// Infrastructure
	backend     debate.Backend
	redisClient *cache.RedisClient // nil when caching is disabled
	processor   *media.Processor

	// Services
	cacheService  debate.CacheService
	debateService debate.Service
	imageResolver *implementations.ImageResolver
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	backend debate.Backend,
	redisClient *cache.RedisClient,
	logger *observability.Logger,
	metrics *observability.GalleryMetrics,
) *Container {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if metrics == nil {
		metrics = observability.NopGalleryMetrics()
	}

	c := &Container{
		config:      cfg,
		logger:      logger,
		metrics:     metrics,
		backend:     backend,
		redisClient: redisClient,
	}
	c.initializeServices()
	return c
}

// initializeServices initializes all services in dependency order
func (c *Container) initializeServices() {
	c.processor = media.NewProcessor(c.config.Upload)
	c.cacheService = implementations.NewCacheService(c.redisClient, c.logger)

	c.debateService = implementations.NewDebateService(c.backend, c.cacheService, c.logger,
		implementations.SearchOptions{
			MinimumScore: c.config.Backend.MinimumScore,
			IncludeAll:   c.config.Backend.IncludeAll,
		})

	c.imageResolver = implementations.NewImageResolver(c.backend, c.cacheService, c.logger, c.metrics,
		c.config.Backend.PlaceholderURL)

	c.logger.Debug(context.Background()).Bool("cache_enabled", c.redisClient != nil).Msg("Dependency injection container initialized")
}

// Getters for accessing services

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *observability.Logger {
	return c.logger
}

func (c *Container) Metrics() *observability.GalleryMetrics {
	return c.metrics
}

func (c *Container) Backend() debate.Backend {
	return c.backend
}

func (c *Container) CacheService() debate.CacheService {
	return c.cacheService
}

func (c *Container) DebateService() debate.Service {
	return c.debateService
}

func (c *Container) ImageResolver() *implementations.ImageResolver {
	return c.imageResolver
}

func (c *Container) MediaProcessor() *media.Processor {
	return c.processor
}

// Close releases the cache connection
func (c *Container) Close() error {
	if c.redisClient != nil {
		return c.redisClient.Close()
	}
	return nil
}
