package handlers

import (
	"io"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"debate-gallery/internal/domain/imagepath"
	"debate-gallery/internal/web/static"
)

// mediaHandler streams the first image candidate that loads, or the placeholder
func (h *Handler) mediaHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.URL.Query().Get("path")

	res := h.container.ImageResolver().Resolve(ctx, path)
	defer func() {
		if err := res.Close(); err != nil {
			h.logger.Debug(ctx).Err(err).Msg("Failed to close image body")
		}
	}()

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("image.path", path),
		attribute.String("image.resolved", res.URL),
		attribute.Bool("image.placeholder", res.Placeholder),
	)

	if res.Placeholder {
		if res.URL != imagepath.DefaultPlaceholder {
			http.Redirect(w, r, res.URL, http.StatusFound)
			return
		}
		h.placeholderHandler(w, r)
		return
	}

	w.Header().Set("Content-Type", res.Asset.ContentType)
	if res.Asset.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(res.Asset.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := io.Copy(w, res.Asset.Body); err != nil {
		h.logger.Warn(ctx).Err(err).Str("url", res.URL).Msg("Failed to stream image")
	}
}

// placeholderHandler serves the embedded placeholder image
func (h *Handler) placeholderHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", static.PlaceholderContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(static.Placeholder) //nolint:errcheck // Best effort response
}
