package implementations

import (
	"context"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/observability"
	"debate-gallery/internal/platform/cache"
)

// CacheService implements debate.CacheService using Redis/Valkey.
// A nil client turns every read into ErrCacheUnavailable and every write into a no-op.
type CacheService struct {
	client *cache.RedisClient
	logger *observability.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(client *cache.RedisClient, logger *observability.Logger) *CacheService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &CacheService{
		client: client,
		logger: logger.Component("cache"),
	}
}

// GetDebate retrieves a cached debate
func (c *CacheService) GetDebate(ctx context.Context, id string) (*debate.Debate, error) {
	if c.client == nil {
		return nil, debate.ErrCacheUnavailable
	}
	return c.client.GetDebate(ctx, id)
}

// SetDebate caches a debate
func (c *CacheService) SetDebate(ctx context.Context, d *debate.Debate) error {
	if c.client == nil {
		c.logger.Debug(ctx).Int("debate_id", d.ID).Msg("Cache unavailable, skipping debate cache")
		return nil
	}
	return c.client.SetDebate(ctx, d)
}

// DeleteDebate removes a debate from cache
func (c *CacheService) DeleteDebate(ctx context.Context, id string) error {
	if c.client == nil {
		return nil
	}
	return c.client.DeleteDebate(ctx, id)
}

// GetList retrieves a cached debate list
func (c *CacheService) GetList(ctx context.Context, key string) ([]debate.Debate, error) {
	if c.client == nil {
		return nil, debate.ErrCacheUnavailable
	}
	return c.client.GetList(ctx, key)
}

// SetList caches a debate list
func (c *CacheService) SetList(ctx context.Context, key string, debates []debate.Debate) error {
	if c.client == nil {
		c.logger.Debug(ctx).Str("key", key).Msg("Cache unavailable, skipping list cache")
		return nil
	}
	return c.client.SetList(ctx, key, debates)
}

// InvalidateLists clears cached lists and search results
func (c *CacheService) InvalidateLists(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.InvalidateLists(ctx)
}

// GetResolvedImage returns the cached candidate URL for an image path
func (c *CacheService) GetResolvedImage(ctx context.Context, path string) (string, error) {
	if c.client == nil {
		return "", debate.ErrCacheUnavailable
	}
	return c.client.GetResolvedImage(ctx, path)
}

// SetResolvedImage caches the candidate URL that loaded for an image path
func (c *CacheService) SetResolvedImage(ctx context.Context, path, url string) error {
	if c.client == nil {
		return nil
	}
	return c.client.SetResolvedImage(ctx, path, url)
}

// ClaimToken claims a one-time form token. Without a cache every token is
// accepted and duplicate protection relies on the disabled submit button.
func (c *CacheService) ClaimToken(ctx context.Context, token string) (bool, error) {
	if c.client == nil {
		c.logger.Debug(ctx).Msg("Cache unavailable, form token not deduplicated")
		return true, nil
	}
	return c.client.ClaimToken(ctx, token)
}

// Health checks if the cache service is healthy
func (c *CacheService) Health(ctx context.Context) error {
	if c.client == nil {
		return debate.ErrCacheUnavailable
	}
	return c.client.Health(ctx)
}
