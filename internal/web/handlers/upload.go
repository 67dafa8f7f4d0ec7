package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"debate-gallery/internal/web/forms"
	"debate-gallery/internal/web/views"
)

const (
	maxFormOverhead    = 1 << 20 // room for the text fields around the image
	maxMemoryPerUpload = 1 << 20 // 1MB in-memory buffer per upload, the rest spills to disk
)

// RecordResponse is the JSON answer to a successful submission
type RecordResponse struct {
	DebateID  int    `json:"debate_id"`
	ImagePath string `json:"image_path"`
	Verified  bool   `json:"verified"`
}

// recordFormHandler renders an empty creation form with a fresh token
func (h *Handler) recordFormHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageRecord, views.FragmentRecord, h.newRecordForm())
}

func (h *Handler) newRecordForm() *views.RecordView {
	upload := h.container.Config().Upload
	return views.NewRecordForm(uuid.NewString(), strings.Join(upload.AllowedTypes, ","), h.container.MediaProcessor().MaxSize())
}

// recordSubmitHandler runs one creation session: create the debate, then
// upload its image
func (h *Handler) recordSubmitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	h.logger.Info(ctx).
		Str("user_agent", r.UserAgent()).
		Str("content_type", r.Header.Get("Content-Type")).
		Msg("Starting whiteboard submission")

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, h.container.MediaProcessor().MaxSize()+maxFormOverhead)

	if err := r.ParseMultipartForm(maxMemoryPerUpload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse multipart form")
		h.logger.Warn(ctx).Err(err).Msg("Failed to parse multipart form")

		alert := "Failed to read the form."
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			alert = "The image is too large."
		}
		h.recordFailed(w, r, "", "", alert)
		return
	}

	// Clean up multipart form resources
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll() //nolint:errcheck // Cleanup operation
		}
	}()

	sub := forms.Submission{
		Token:   r.FormValue("token"),
		TLDR:    r.FormValue("tldr"),
		Summary: r.FormValue("summary"),
		Source:  forms.ParseSource(r.FormValue("source")),
	}

	field := "file"
	if sub.Source == forms.SourceCapture {
		field = "capture"
	}
	if err := readFormFile(r, field, &sub); err != nil {
		span.RecordError(err)
		h.logger.Warn(ctx).Err(err).Str("field", field).Msg("Failed to read uploaded image")
		h.recordFailed(w, r, sub.TLDR, sub.Summary, "Failed to read the image.")
		return
	}

	span.SetAttributes(
		attribute.String("form.source", string(sub.Source)),
		attribute.Int("upload.size", len(sub.Data)),
	)

	session := forms.NewSession(
		h.container.DebateService(),
		h.container.CacheService(),
		h.container.MediaProcessor(),
		h.container.Logger(),
		h.container.Metrics(),
	)
	res, err := session.Submit(ctx, sub)
	if err != nil {
		span.SetStatus(codes.Error, "submission failed")
		h.recordFailed(w, r, sub.TLDR, sub.Summary, forms.AlertMessage(err))
		return
	}

	span.SetStatus(codes.Ok, "submission completed")
	if wantsJSON(r) {
		h.renderJSON(ctx, w, http.StatusCreated, RecordResponse{
			DebateID:  res.DebateID,
			ImagePath: res.ImagePath,
			Verified:  res.Verified,
		})
		return
	}
	redirect(w, r, "/")
}

// recordFailed re-renders the form with a blocking alert and a new token
func (h *Handler) recordFailed(w http.ResponseWriter, r *http.Request, tldr, summary, alert string) {
	view := h.newRecordForm()
	view.Failed(view.Token, tldr, summary, alert)
	triggerAlert(w, alert)
	h.render(w, r, http.StatusUnprocessableEntity, views.PageRecord, views.FragmentRecord, view)
}

// readFormFile reads the image in field. A missing file leaves Data empty so
// the session reports it.
func readFormFile(r *http.Request, field string, sub *forms.Submission) error {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", field, err)
	}

	sub.Filename = header.Filename
	sub.ContentType = header.Header.Get("Content-Type")
	sub.Data = data
	return nil
}
