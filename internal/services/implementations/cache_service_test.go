package implementations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/testutils"
)

func TestCacheService_WithNilClient(t *testing.T) {
	service := NewCacheService(nil, nil)
	ctx := context.Background()

	d := &debate.Debate{ID: 1, TLDR: "Board"}

	t.Run("GetDebate returns cache unavailable", func(t *testing.T) {
		_, err := service.GetDebate(ctx, "1")
		assert.Equal(t, debate.ErrCacheUnavailable, err)
	})

	t.Run("writes succeed silently", func(t *testing.T) {
		assert.NoError(t, service.SetDebate(ctx, d))
		assert.NoError(t, service.DeleteDebate(ctx, "1"))
		assert.NoError(t, service.SetList(ctx, "all", []debate.Debate{*d}))
		assert.NoError(t, service.InvalidateLists(ctx))
		assert.NoError(t, service.SetResolvedImage(ctx, "a.jpg", "/a.jpg"))
	})

	t.Run("reads return cache unavailable", func(t *testing.T) {
		_, err := service.GetList(ctx, "all")
		assert.Equal(t, debate.ErrCacheUnavailable, err)
		_, err = service.GetResolvedImage(ctx, "a.jpg")
		assert.Equal(t, debate.ErrCacheUnavailable, err)
	})

	t.Run("tokens are always accepted", func(t *testing.T) {
		ok, err := service.ClaimToken(ctx, "tok")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = service.ClaimToken(ctx, "tok")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Health returns cache unavailable", func(t *testing.T) {
		assert.Equal(t, debate.ErrCacheUnavailable, service.Health(ctx))
	})
}

func TestCacheService_WithRedisClient(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	containers, err := testutils.SetupTestContainers(ctx)
	if err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() { _ = containers.Cleanup(ctx) })

	service := NewCacheService(containers.RedisClient, nil)

	t.Run("debate operations", func(t *testing.T) {
		require.NoError(t, service.SetDebate(ctx, &debate.Debate{ID: 4, TLDR: "Board"}))

		cached, err := service.GetDebate(ctx, "4")
		require.NoError(t, err)
		assert.Equal(t, "Board", cached.TLDR)

		require.NoError(t, service.DeleteDebate(ctx, "4"))
		_, err = service.GetDebate(ctx, "4")
		assert.Error(t, err)
	})

	t.Run("token claimed once", func(t *testing.T) {
		ok, err := service.ClaimToken(ctx, "once")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = service.ClaimToken(ctx, "once")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Health check", func(t *testing.T) {
		assert.NoError(t, service.Health(ctx))
	})
}
