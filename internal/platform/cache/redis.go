package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"debate-gallery/internal/config"
	"debate-gallery/internal/domain/debate"
)

// Key prefixes
const (
	debateKeyPrefix   = "debate:"
	listKeyPrefix     = "debate_list:"
	resolvedKeyPrefix = "image_resolved:"
	tokenKeyPrefix    = "form_token:"
)

// ErrCacheMiss is returned when a key is not present
var ErrCacheMiss = errors.New("key not found in cache")

// RedisClient wraps the Redis client with gallery-specific functionality
// Note: This works with both Redis and Valkey (Redis-compatible)
type RedisClient struct {
	client      *redis.Client
	defaultTTL  time.Duration
	resolvedTTL time.Duration
	tokenTTL    time.Duration
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg config.CacheConfig) (*RedisClient, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("cache is disabled")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close() //nolint:errcheck // ping error takes precedence
		return nil, fmt.Errorf("failed to connect to Redis/Valkey: %w", err)
	}

	return &RedisClient{
		client:      rdb,
		defaultTTL:  orDefault(cfg.DefaultTTL, time.Minute),
		resolvedTTL: orDefault(cfg.ResolvedTTL, time.Hour),
		tokenTTL:    orDefault(cfg.TokenTTL, 24*time.Hour),
	}, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// GetDebate retrieves a cached debate
func (r *RedisClient) GetDebate(ctx context.Context, id string) (*debate.Debate, error) {
	var d debate.Debate
	if err := r.Get(ctx, debateKeyPrefix+id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetDebate caches a debate under its id
func (r *RedisClient) SetDebate(ctx context.Context, d *debate.Debate) error {
	return r.Set(ctx, fmt.Sprintf("%s%d", debateKeyPrefix, d.ID), d, 0)
}

// DeleteDebate removes a debate from cache
func (r *RedisClient) DeleteDebate(ctx context.Context, id string) error {
	return r.Delete(ctx, debateKeyPrefix+id)
}

// GetList retrieves a cached debate list
func (r *RedisClient) GetList(ctx context.Context, key string) ([]debate.Debate, error) {
	var debates []debate.Debate
	if err := r.Get(ctx, listKeyPrefix+key, &debates); err != nil {
		return nil, err
	}
	return debates, nil
}

// SetList caches a debate list
func (r *RedisClient) SetList(ctx context.Context, key string, debates []debate.Debate) error {
	return r.Set(ctx, listKeyPrefix+key, debates, 0)
}

// InvalidateLists clears every cached list and search result
func (r *RedisClient) InvalidateLists(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, listKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	return nil
}

// GetResolvedImage returns the candidate URL that last loaded for an image path
func (r *RedisClient) GetResolvedImage(ctx context.Context, path string) (string, error) {
	val, err := r.client.Get(ctx, resolvedKeyPrefix+path).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get resolved image: %w", err)
	}
	return val, nil
}

// SetResolvedImage remembers the candidate URL that loaded for an image path
func (r *RedisClient) SetResolvedImage(ctx context.Context, path, url string) error {
	if err := r.client.Set(ctx, resolvedKeyPrefix+path, url, r.resolvedTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache resolved image: %w", err)
	}
	return nil
}

// ClaimToken marks a form token as used. It returns false when the token was
// already claimed.
func (r *RedisClient) ClaimToken(ctx context.Context, token string) (bool, error) {
	ok, err := r.client.SetNX(ctx, tokenKeyPrefix+token, time.Now().Unix(), r.tokenTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim form token: %w", err)
	}
	return ok, nil
}

// Health checks if the Redis/Valkey connection is healthy
func (r *RedisClient) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis/Valkey health check failed: %w", err)
	}
	return nil
}

// Close closes the Redis/Valkey connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// FlushCache clears all cached data (use with caution)
func (r *RedisClient) FlushCache(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key and unmarshals it into result
func (r *RedisClient) Get(ctx context.Context, key string, result any) error {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal(val, result); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return nil
}

// Set caches a value with the specified key and TTL; a zero TTL uses the default
func (r *RedisClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if ttl == 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache value: %w", err)
	}

	return nil
}

// Delete removes a value from cache by key
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// ListKey builds the cache key of a list or search result
func ListKey(query string) string {
	if query == "" {
		return "all"
	}
	return "search:" + query
}
