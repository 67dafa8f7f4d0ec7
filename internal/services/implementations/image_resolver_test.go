package implementations

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-gallery/internal/config"
	"debate-gallery/internal/domain/imagepath"
	"debate-gallery/internal/platform/backend"
	"debate-gallery/internal/testutils"
)

func newResolverFixture(t *testing.T) (*ImageResolver, *testutils.FakeBackend, *testutils.MemoryCache) {
	t.Helper()
	fake := testutils.NewFakeBackend()
	t.Cleanup(fake.Close)

	memCache := testutils.NewMemoryCache()
	client := backend.NewClient(config.BackendConfig{BaseURL: fake.URL(), Timeout: 5 * time.Second})
	return NewImageResolver(client, memCache, nil, nil, ""), fake, memCache
}

func TestImageResolver_FallsThroughToLaterCandidate(t *testing.T) {
	resolver, fake, memCache := newResolverFixture(t)
	data := testutils.PNGBytes(3, 3)
	fake.AddAsset("/uploads/board.png", data)
	ctx := context.Background()

	res := resolver.Resolve(ctx, "old/place/board.png")
	defer res.Close()

	require.False(t, res.Placeholder)
	assert.Equal(t, "/uploads/board.png", res.URL)
	body, err := io.ReadAll(res.Asset.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)

	require.Len(t, res.Attempts, 3)
	assert.Equal(t, "/old/place/board.png", res.Attempts[0].URL)
	assert.Equal(t, imagepath.OutcomeFailed, res.Attempts[0].Outcome)
	assert.Equal(t, "/static/uploads/board.png", res.Attempts[1].URL)
	assert.Equal(t, imagepath.OutcomeLoaded, res.Attempts[2].Outcome)

	cached, err := memCache.GetResolvedImage(ctx, "old/place/board.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/board.png", cached)

	// a second resolution goes straight to the remembered candidate
	before := len(fake.Calls())
	again := resolver.Resolve(ctx, "old/place/board.png")
	defer again.Close()
	assert.Equal(t, "/uploads/board.png", again.URL)
	assert.Len(t, fake.Calls(), before+1)
}

func TestImageResolver_AllCandidatesFail(t *testing.T) {
	resolver, fake, _ := newResolverFixture(t)
	ctx := context.Background()

	res := resolver.Resolve(ctx, "static/uploads/missing.jpg")
	assert.True(t, res.Placeholder)
	assert.Equal(t, imagepath.DefaultPlaceholder, res.URL)
	assert.Nil(t, res.Asset)
	assert.NoError(t, res.Close())

	// /static/uploads/missing.jpg, /uploads/missing.jpg, /src/static/uploads/missing.jpg
	assert.Len(t, fake.Calls(), 3)

	// the known failure binds the placeholder directly and is not retried
	b := resolver.Bind(ctx, "static/uploads/missing.jpg", "Board")
	assert.Equal(t, imagepath.DefaultPlaceholder, b.Src)
	assert.Equal(t, imagepath.AltNotAvailable, b.Alt)

	again := resolver.Resolve(ctx, "static/uploads/missing.jpg")
	assert.True(t, again.Placeholder)
	assert.Len(t, fake.Calls(), 3)
}

func TestImageResolver_InterruptedLookupIsNotRemembered(t *testing.T) {
	const path = "static/uploads/board.png"

	t.Run("cancelled request", func(t *testing.T) {
		resolver, fake, memCache := newResolverFixture(t)
		fake.AddAsset("/static/uploads/board.png", testutils.PNGBytes(2, 2))

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		res := resolver.Resolve(cancelled, path)
		assert.True(t, res.Placeholder)

		ctx := context.Background()
		_, err := memCache.GetResolvedImage(ctx, path)
		assert.Error(t, err)

		b := resolver.Bind(ctx, path, "Board")
		assert.Equal(t, MediaURL(path), b.Src)
		assert.Equal(t, "Board", b.Alt)

		again := resolver.Resolve(ctx, path)
		defer again.Close()
		assert.False(t, again.Placeholder)
		assert.Equal(t, "/static/uploads/board.png", again.URL)
	})

	t.Run("backend error", func(t *testing.T) {
		resolver, fake, memCache := newResolverFixture(t)
		fake.Fail(http.MethodGet, "/static/uploads/", http.StatusServiceUnavailable, "")

		ctx := context.Background()
		res := resolver.Resolve(ctx, path)
		assert.True(t, res.Placeholder)

		_, err := memCache.GetResolvedImage(ctx, path)
		assert.Error(t, err)
		assert.Equal(t, MediaURL(path), resolver.Bind(ctx, path, "Board").Src)
	})
}

func TestImageResolver_NonImageResponseFails(t *testing.T) {
	resolver, fake, _ := newResolverFixture(t)
	fake.AddAsset("/a/x.png", []byte("<html>login page</html>"))
	fake.AddAsset("/static/uploads/x.png", testutils.PNGBytes(1, 1))

	res := resolver.Resolve(context.Background(), "a/x.png")
	defer res.Close()
	assert.Equal(t, "/static/uploads/x.png", res.URL)
}

func TestImageResolver_Bind(t *testing.T) {
	resolver, _, _ := newResolverFixture(t)
	ctx := context.Background()

	none := resolver.Bind(ctx, "", "Board")
	assert.Equal(t, imagepath.DefaultPlaceholder, none.Src)
	assert.Equal(t, imagepath.AltNoImage, none.Alt)

	declared := resolver.Bind(ctx, "static/uploads/a b.jpg", "Board")
	assert.Equal(t, "/media?path=static%2Fuploads%2Fa+b.jpg", declared.Src)
	assert.Equal(t, "Board", declared.Alt)
	assert.Equal(t, imagepath.DefaultPlaceholder, declared.Candidates[len(declared.Candidates)-1])
}

func TestImageResolver_EmptyPath(t *testing.T) {
	resolver, fake, _ := newResolverFixture(t)
	res := resolver.Resolve(context.Background(), " ")
	assert.True(t, res.Placeholder)
	assert.Empty(t, fake.Calls())
}
