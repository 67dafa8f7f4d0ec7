package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/domain/imagepath"
	"debate-gallery/internal/observability"
	"debate-gallery/internal/services"
	"debate-gallery/internal/services/implementations"
	"debate-gallery/internal/web/views"
)

type Handler struct {
	container   *services.Container
	renderer    *views.Renderer
	logger      *observability.Logger
	tracer      trace.Tracer
	httpMetrics *observability.HTTPMetrics
}

// NewWithContainer creates a handler backed by the service container.
// httpMetrics may be nil.
func NewWithContainer(container *services.Container, renderer *views.Renderer, httpMetrics *observability.HTTPMetrics) *Handler {
	return &Handler{
		container:   container,
		renderer:    renderer,
		logger:      container.Logger().Component("http"),
		tracer:      observability.GetTracer(),
		httpMetrics: httpMetrics,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(observability.TracingMiddleware(h.tracer))
	if h.httpMetrics != nil {
		r.Use(observability.MetricsMiddleware(h.httpMetrics))
	}

	// Health probes
	r.Get("/healthz", h.healthzHandler)
	r.Get("/readyz", h.readyzHandler)

	// Static assets
	r.Get(imagepath.DefaultPlaceholder, h.placeholderHandler)
	if p := h.container.ImageResolver().Placeholder(); strings.HasPrefix(p, "/") && p != imagepath.DefaultPlaceholder {
		r.Get(p, h.placeholderHandler)
	}
	r.Get(implementations.MediaRoute, h.mediaHandler)

	// Pages
	r.Get("/", h.galleryHandler)
	r.Get("/list", h.listHandler)
	r.Get(views.DetailPath, h.detailHandler)
	r.Post(views.DetailPath+"/save", h.saveDebateHandler)
	r.Post(views.DetailPath+"/delete", h.deleteDebateHandler)
	r.Get(views.RecordPath, h.recordFormHandler)
	r.Post(views.RecordPath, h.recordSubmitHandler)

	return r
}

// requestLogger logs every request through the structured logger
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if r.URL.Path == healthzPath || r.URL.Path == readyzPath {
			return
		}
		h.logger.Info(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Bool("htmx", isHTMX(r)).
			Msg("HTTP request")
	})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

// wantsJSON reports whether the caller asked for the view model instead of HTML
func wantsJSON(r *http.Request) bool {
	return !isHTMX(r) && strings.Contains(r.Header.Get("Accept"), "application/json")
}

// render writes data as JSON, as an htmx fragment or as a full page.
// htmx only swaps 2xx responses, so fragments always go out as 200.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, fragment string, data any) {
	ctx := r.Context()

	if wantsJSON(r) {
		h.renderJSON(ctx, w, status, data)
		return
	}

	var buf bytes.Buffer
	var err error
	if isHTMX(r) && fragment != "" {
		status = http.StatusOK
		err = h.renderer.Fragment(&buf, page, fragment, data)
	} else {
		err = h.renderer.Page(&buf, page, data)
	}
	if err != nil {
		h.logger.Error(ctx).Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn(ctx).Err(err).Msg("Failed to write response")
	}
}

func (h *Handler) renderJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(ctx).Err(err).Msg("Failed to encode response")
	}
}

// redirect navigates the browser, through HX-Redirect for htmx requests
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// triggerAlert asks htmx to raise a blocking alert on the page
func triggerAlert(w http.ResponseWriter, message string) {
	payload, err := json.Marshal(map[string]string{"showAlert": message})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

// binder binds image paths for the duration of one request
func (h *Handler) binder(ctx context.Context) views.BindFunc {
	resolver := h.container.ImageResolver()
	return func(path, alt string) imagepath.Binding {
		return resolver.Bind(ctx, path, alt)
	}
}

// statusFor maps a domain error to the response status
func statusFor(err error) int {
	switch {
	case errors.Is(err, debate.ErrMissingID), errors.Is(err, debate.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, debate.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, debate.ErrTransport),
		errors.Is(err, debate.ErrBackendStatus),
		errors.Is(err, debate.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
