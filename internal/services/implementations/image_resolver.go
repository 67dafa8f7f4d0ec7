package implementations

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/domain/imagepath"
	"debate-gallery/internal/observability"
)

// MediaRoute serves resolved images
const MediaRoute = "/media"

// Resolution is the outcome of walking an image's candidates
type Resolution struct {
	// URL is the candidate that loaded, or the placeholder
	URL string
	// Asset is the open backend response; nil when the placeholder is served
	Asset       *debate.Asset
	Placeholder bool
	Attempts    []imagepath.Attempt
}

// Close releases the backend body, if any
func (r *Resolution) Close() error {
	if r.Asset == nil || r.Asset.Body == nil {
		return nil
	}
	return r.Asset.Body.Close()
}

// ImageResolver walks image candidates against the backend and remembers
// which one answered
type ImageResolver struct {
	backend     debate.Backend
	cache       debate.CacheService
	logger      *observability.Logger
	metrics     *observability.GalleryMetrics
	placeholder string
}

// NewImageResolver creates a resolver service
func NewImageResolver(
	backend debate.Backend,
	cacheService debate.CacheService,
	logger *observability.Logger,
	metrics *observability.GalleryMetrics,
	placeholder string,
) *ImageResolver {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if metrics == nil {
		metrics = observability.NopGalleryMetrics()
	}
	if cacheService == nil {
		cacheService = NewCacheService(nil, logger)
	}
	if placeholder == "" {
		placeholder = imagepath.DefaultPlaceholder
	}
	return &ImageResolver{
		backend:     backend,
		cache:       cacheService,
		logger:      logger.Component("image_resolver"),
		metrics:     metrics,
		placeholder: placeholder,
	}
}

// Placeholder returns the placeholder URL
func (s *ImageResolver) Placeholder() string {
	return s.placeholder
}

// Bind returns the src/alt pair to render for an image path. Declared images
// point at the media route; images already known to fall through to the
// placeholder bind it directly.
func (s *ImageResolver) Bind(ctx context.Context, path, alt string) imagepath.Binding {
	b := imagepath.Bind(path, alt, s.placeholder)
	if strings.TrimSpace(path) == "" {
		return b
	}

	if resolved, err := s.cache.GetResolvedImage(ctx, path); err == nil && resolved == s.placeholder {
		b.Src = s.placeholder
		b.Alt = imagepath.AltNotAvailable
		return b
	}

	b.Src = MediaURL(path)
	return b
}

// MediaURL is the media route URL of an image path
func MediaURL(path string) string {
	return MediaRoute + "?path=" + url.QueryEscape(path)
}

// Resolve walks the candidates of path in order until one answers with an
// image. The placeholder always loads, so a Resolution is always returned.
func (s *ImageResolver) Resolve(ctx context.Context, path string) *Resolution {
	log := s.logger.WithContext(ctx)

	if strings.TrimSpace(path) == "" {
		s.metrics.ImageAttempt(ctx, 0, string(imagepath.OutcomePlaceholder))
		return &Resolution{URL: s.placeholder, Placeholder: true}
	}

	if cached, err := s.cache.GetResolvedImage(ctx, path); err == nil {
		if cached == s.placeholder {
			log.Debug().Str("path", path).Msg("Image known to be unavailable, serving placeholder")
			return &Resolution{URL: s.placeholder, Placeholder: true}
		}
		if asset, ok, _ := s.fetch(ctx, cached); ok {
			return &Resolution{URL: cached, Asset: asset}
		}
		log.Debug().Str("path", path).Str("url", cached).Msg("Cached image candidate no longer loads")
	}

	r := imagepath.NewResolver(path, s.placeholder)
	transient := false
	for !r.Done() {
		current := r.Current()

		if r.Terminal() {
			r.Succeed()
			s.metrics.ImageAttempt(ctx, r.Index(), string(imagepath.OutcomePlaceholder))
			log.Warn().
				Str("path", path).
				Strs("candidates", r.Candidates()).
				Msg("No image candidate loaded, serving placeholder")
			// Only a walk where every candidate was definitively missing is remembered
			if !transient && ctx.Err() == nil {
				s.remember(ctx, path, s.placeholder)
			}
			return &Resolution{URL: s.placeholder, Placeholder: true, Attempts: r.Attempts()}
		}

		asset, ok, retryable := s.fetch(ctx, current)
		if !ok {
			transient = transient || retryable
			s.metrics.ImageAttempt(ctx, r.Index(), string(imagepath.OutcomeFailed))
			next, _ := r.Fail()
			log.Debug().Str("path", path).Str("failed", current).Str("next", next).Msg("Image candidate failed")
			continue
		}

		r.Succeed()
		s.metrics.ImageAttempt(ctx, r.Index(), string(imagepath.OutcomeLoaded))
		log.Debug().Str("path", path).Str("url", current).Int("candidate", r.Index()).Msg("Image candidate loaded")
		s.remember(ctx, path, current)
		return &Resolution{URL: current, Asset: asset, Attempts: r.Attempts()}
	}

	return &Resolution{URL: s.placeholder, Placeholder: true, Attempts: r.Attempts()}
}

// fetch GETs a candidate; only 2xx image responses count as loaded.
// retryable reports a failure that says nothing about the candidate itself:
// transport errors, cancellation and backend 5xx.
func (s *ImageResolver) fetch(ctx context.Context, candidate string) (asset *debate.Asset, ok, retryable bool) {
	asset, err := s.backend.FetchAsset(ctx, candidate)
	if err != nil {
		return nil, false, isRetryable(ctx, err)
	}
	if !strings.HasPrefix(asset.ContentType, "image/") {
		_ = asset.Body.Close()
		return nil, false, false
	}
	return asset, true, false
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *debate.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func (s *ImageResolver) remember(ctx context.Context, path, resolved string) {
	if err := s.cache.SetResolvedImage(ctx, path, resolved); err != nil {
		s.logger.Warn(ctx).Err(err).Str("path", path).Msg("Failed to cache resolved image")
	}
}
