// Package forms runs the multi-step whiteboard creation flow.
package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"debate-gallery/internal/config"
	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/observability"
	"debate-gallery/internal/platform/media"
)

// State is a step of the creation flow
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateCreating   State = "creating-record"
	StateUploading  State = "uploading-image"
	StateVerifying  State = "verifying"
	StateDone       State = "done"
	StateError      State = "error"
)

// Source is where the image came from
type Source string

const (
	SourceFile    Source = "file"
	SourceCapture Source = "capture"
)

// ParseSource maps a form value to a Source, defaulting to a file upload
func ParseSource(v string) Source {
	if Source(strings.TrimSpace(v)) == SourceCapture {
		return SourceCapture
	}
	return SourceFile
}

// Session errors
var (
	ErrDuplicateSubmission = errors.New("this form was already submitted")
	ErrSessionUsed         = errors.New("session already ran")
)

// Submission is the user's input
type Submission struct {
	Token       string
	TLDR        string
	Summary     string
	Source      Source
	Filename    string
	ContentType string
	Data        []byte
}

// Result describes the created debate
type Result struct {
	DebateID  int
	ImagePath string
	Filename  string
	// Verified is false when the post-upload check could not confirm the image
	Verified bool
}

// OrphanError reports a debate that was created but never got its image
type OrphanError struct {
	DebateID int
	Err      error
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("debate %d was created but its image upload failed: %v", e.DebateID, e.Err)
}

func (e *OrphanError) Unwrap() error {
	return e.Err
}

// Transition is one recorded state change
type Transition struct {
	State State
	At    time.Time
}

// Session runs one submission. It is not reusable.
type Session struct {
	service   debate.Service
	cache     debate.CacheService
	processor *media.Processor
	logger    *observability.Logger
	metrics   *observability.GalleryMetrics
	tracer    trace.Tracer
	now       func() time.Time

	state   State
	history []Transition
}

// NewSession creates a session in the idle state
func NewSession(
	service debate.Service,
	cacheService debate.CacheService,
	processor *media.Processor,
	logger *observability.Logger,
	metrics *observability.GalleryMetrics,
) *Session {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if metrics == nil {
		metrics = observability.NopGalleryMetrics()
	}
	if processor == nil {
		processor = media.NewProcessor(config.UploadConfig{})
	}
	s := &Session{
		service:   service,
		cache:     cacheService,
		processor: processor,
		logger:    logger.Component("record_form"),
		metrics:   metrics,
		tracer:    observability.GetTracer(),
		now:       time.Now,
	}
	s.enter(StateIdle)
	return s
}

// WithClock replaces the clock used for capture filenames and history
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	s.history[0].At = now()
	return s
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// History returns every state entered so far, in order
func (s *Session) History() []State {
	out := make([]State, len(s.history))
	for i, t := range s.history {
		out[i] = t.State
	}
	return out
}

// Transitions returns the history with timestamps
func (s *Session) Transitions() []Transition {
	return append([]Transition(nil), s.history...)
}

func (s *Session) enter(st State) {
	s.state = st
	s.history = append(s.history, Transition{State: st, At: s.now()})
}

// Submit validates the input, creates the debate and then uploads its image.
// The upload is never issued before a valid create response.
func (s *Session) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if s.state != StateIdle {
		return nil, ErrSessionUsed
	}

	ctx, span := s.tracer.Start(ctx, "RecordForm.Submit",
		trace.WithAttributes(attribute.String("form.source", string(sub.Source))))
	defer span.End()

	res, err := s.run(ctx, sub)
	if err != nil {
		s.enter(StateError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		s.logger.Error(ctx).Err(err).Strs("history", s.historyStrings()).Msg("Whiteboard submission failed")
	} else {
		s.enter(StateDone)
		span.SetAttributes(attribute.Int("debate.id", res.DebateID))
		span.SetStatus(codes.Ok, "submission completed")
		s.logger.Info(ctx).
			Int("debate_id", res.DebateID).
			Str("image_path", res.ImagePath).
			Bool("verified", res.Verified).
			Msg("Whiteboard submission completed")
	}
	s.metrics.FormOutcome(ctx, string(s.state), string(sub.Source))
	return res, err
}

func (s *Session) run(ctx context.Context, sub Submission) (*Result, error) {
	s.enter(StateValidating)
	upload, err := s.validate(sub)
	if err != nil {
		return nil, err
	}

	if sub.Token != "" && s.cache != nil {
		fresh, err := s.cache.ClaimToken(ctx, sub.Token)
		if err != nil {
			s.logger.Warn(ctx).Err(err).Msg("Failed to claim submission token, continuing")
		} else if !fresh {
			return nil, ErrDuplicateSubmission
		}
	}

	s.enter(StateCreating)
	created, err := s.service.Create(ctx, debate.CreateRequest{TLDR: sub.TLDR, Summary: sub.Summary})
	if err != nil {
		return nil, err
	}
	if created == nil || created.DebateID <= 0 {
		return nil, fmt.Errorf("%w: missing debate_id", debate.ErrMalformedResponse)
	}
	s.logger.Debug(ctx).Int("debate_id", created.DebateID).Msg("Debate record created")

	s.enter(StateUploading)
	upload.DebateID = created.DebateID
	uploaded, err := s.service.AddImage(ctx, upload)
	if err != nil {
		return nil, &OrphanError{DebateID: created.DebateID, Err: err}
	}

	res := &Result{DebateID: created.DebateID, ImagePath: uploaded.ImagePath, Filename: upload.Filename}

	s.enter(StateVerifying)
	res.Verified = s.verify(ctx, res)
	return res, nil
}

// validate checks the input before anything is sent and prepares the upload
func (s *Session) validate(sub Submission) (debate.UploadRequest, error) {
	req := debate.CreateRequest{TLDR: sub.TLDR, Summary: sub.Summary}
	if err := req.Validate(); err != nil {
		return debate.UploadRequest{}, err
	}
	if len(sub.Data) == 0 {
		return debate.UploadRequest{}, fmt.Errorf("%w: image is required", debate.ErrValidation)
	}

	if sub.Source == SourceCapture {
		data, info, err := s.processor.NormalizeCapture(sub.Data)
		if err != nil {
			return debate.UploadRequest{}, fmt.Errorf("%w: %w", debate.ErrValidation, err)
		}
		return debate.UploadRequest{
			Filename:    media.CaptureFilename(s.now(), info.Extension()),
			ContentType: info.ContentType,
			TextContent: sub.Summary,
			Data:        data,
		}, nil
	}

	info, err := s.processor.Inspect(sub.Data)
	if err != nil {
		return debate.UploadRequest{}, fmt.Errorf("%w: %w", debate.ErrValidation, err)
	}
	filename := strings.TrimSpace(sub.Filename)
	if filename == "" {
		filename = "whiteboard." + info.Extension()
	}
	return debate.UploadRequest{
		Filename:    filename,
		ContentType: info.ContentType,
		TextContent: sub.Summary,
		Data:        sub.Data,
	}, nil
}

// verify re-reads the list and checks the new debate carries its image.
// Problems are logged only.
func (s *Session) verify(ctx context.Context, res *Result) bool {
	debates, err := s.service.List(ctx)
	if err != nil {
		s.logger.Warn(ctx).Err(err).Int("debate_id", res.DebateID).Msg("Could not verify new debate")
		return false
	}
	for i := range debates {
		if debates[i].ID != res.DebateID {
			continue
		}
		if debates[i].Image() == res.ImagePath {
			return true
		}
		s.logger.Warn(ctx).
			Int("debate_id", res.DebateID).
			Str("expected", res.ImagePath).
			Str("actual", debates[i].Image()).
			Msg("New debate image path mismatch")
		return false
	}
	s.logger.Warn(ctx).Int("debate_id", res.DebateID).Msg("New debate missing from list")
	return false
}

func (s *Session) historyStrings() []string {
	out := make([]string, len(s.history))
	for i, t := range s.history {
		out[i] = string(t.State)
	}
	return out
}

// AlertMessage is the blocking alert text for a failed submission
func AlertMessage(err error) string {
	var orphan *OrphanError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &orphan):
		return fmt.Sprintf("The whiteboard was saved as debate %d, but the image upload failed: %s",
			orphan.DebateID, debate.DetailOf(orphan.Err, orphan.Err.Error()))
	case errors.Is(err, ErrDuplicateSubmission):
		return "This form was already submitted."
	case errors.Is(err, debate.ErrValidation):
		return validationMessage(err)
	default:
		return "Error: " + debate.DetailOf(err, err.Error())
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrEmpty):
		return "Please select an image."
	case errors.Is(err, media.ErrTooLarge):
		return "The image is too large."
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrUndecodable):
		return "Please select a JPEG, PNG, GIF or WebP image."
	}
	msg := strings.TrimPrefix(err.Error(), debate.ErrValidation.Error()+": ")
	switch msg {
	case "title is required":
		return "Please enter a title."
	case "image is required":
		return "Please select an image."
	}
	if msg == "" {
		return "Please check the form."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
