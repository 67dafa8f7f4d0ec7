package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/web/views"
)

// galleryHandler renders the home page, searching when q is set
func (h *Handler) galleryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	service := h.container.DebateService()

	var (
		debates []debate.Debate
		err     error
	)
	if query == "" {
		debates, err = service.List(ctx)
	} else {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("search.query", query))
		debates, err = service.Search(ctx, query)
	}

	status := http.StatusOK
	var view *views.GalleryView
	if err != nil {
		h.logger.Error(ctx).Err(err).Str("query", query).Msg("Failed to load debates")
		status = statusFor(err)
		view = views.GalleryError(query, err)
	} else {
		h.logger.Debug(ctx).Str("query", query).Int("count", len(debates)).Msg("Debates loaded")
		view = views.NewGallery(query, debates, h.binder(ctx))
	}

	if id := strings.TrimSpace(r.URL.Query().Get("deleted")); id != "" {
		view.Flash = views.DeletedFlash(id)
	}

	h.render(w, r, status, views.PageGallery, views.FragmentResults, view)
}

// listHandler renders the compact list of every debate
func (h *Handler) listHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	debates, err := h.container.DebateService().List(ctx)
	if err != nil {
		h.logger.Error(ctx).Err(err).Msg("Failed to load debate list")
		h.render(w, r, statusFor(err), views.PageList, "", views.ListError(err))
		return
	}
	h.render(w, r, http.StatusOK, views.PageList, "", views.NewList(debates, h.binder(ctx)))
}

// loadDetail fetches a debate and builds its viewing state. On failure the
// returned view is the error state and status is non-2xx.
func (h *Handler) loadDetail(r *http.Request, id, query string) (*views.DetailView, int) {
	ctx := r.Context()
	id = strings.TrimSpace(id)
	if id == "" {
		return views.DetailFailure(query, debate.ErrMissingID), http.StatusBadRequest
	}

	d, err := h.container.DebateService().Get(ctx, id)
	if err != nil {
		h.logger.Error(ctx).Err(err).Str("debate_id", id).Msg("Failed to fetch debate details")
		return views.DetailFailure(query, err), statusFor(err)
	}
	return views.NewDetail(d, query, h.binder(ctx)), http.StatusOK
}

// detailHandler renders one debate; edit=1 renders the edit form
func (h *Handler) detailHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, status := h.loadDetail(r, q.Get("id"), strings.TrimSpace(q.Get("q")))
	if status == http.StatusOK && q.Get("edit") == "1" {
		view.Edit()
	}
	h.render(w, r, status, views.PageDetail, views.FragmentDetail, view)
}

// saveDebateHandler shows the edited values and then sends them to the
// backend. A failed save keeps the edited text and adds a notice.
func (h *Handler) saveDebateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.PostFormValue("id"))
	query := strings.TrimSpace(r.PostFormValue("q"))

	view, status := h.loadDetail(r, id, query)
	if status != http.StatusOK {
		h.render(w, r, status, views.PageDetail, views.FragmentDetail, view)
		return
	}

	req := debate.UpdateRequest{TLDR: r.PostFormValue("tldr"), Summary: r.PostFormValue("summary")}
	view.ApplyEdit(req.TLDR, req.Summary)

	if err := h.container.DebateService().Update(ctx, id, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		h.logger.Error(ctx).Err(err).Str("debate_id", id).Msg("Failed to update debate")
		view.SaveFailed(err)
		h.render(w, r, http.StatusOK, views.PageDetail, views.FragmentDetail, view)
		return
	}

	h.logger.Info(ctx).Str("debate_id", id).Msg("Debate updated")
	h.render(w, r, http.StatusOK, views.PageDetail, views.FragmentDetail, view)
}

// deleteDebateHandler asks for confirmation first; only a confirmed request
// reaches the backend
func (h *Handler) deleteDebateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.PostFormValue("id"))
	query := strings.TrimSpace(r.PostFormValue("q"))

	if r.PostFormValue("confirm") != "yes" {
		view, status := h.loadDetail(r, id, query)
		if status == http.StatusOK {
			view.AskDelete()
		}
		h.render(w, r, status, views.PageDetail, views.FragmentDetail, view)
		return
	}

	if err := h.container.DebateService().Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		h.logger.Error(ctx).Err(err).Str("debate_id", id).Msg("Failed to delete debate")

		view, status := h.loadDetail(r, id, query)
		if status == http.StatusOK {
			view.DeleteFailed(err)
			triggerAlert(w, view.Alert)
			status = statusFor(err)
		}
		h.render(w, r, status, views.PageDetail, views.FragmentDetail, view)
		return
	}

	h.logger.Info(ctx).Str("debate_id", id).Msg("Debate deleted")
	if wantsJSON(r) {
		h.renderJSON(ctx, w, http.StatusOK, map[string]string{"message": views.DeletedFlash(id)})
		return
	}
	redirect(w, r, "/?"+url.Values{"deleted": {id}}.Encode())
}
