package debate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Debate is one gallery entry as returned by the backend.
// Score is only meaningful in search results; OCRText only on the detail endpoint.
type Debate struct {
	ID        int     `json:"id"`
	TLDR      string  `json:"tldr"`
	Summary   string  `json:"summary"`
	OCRText   string  `json:"ocr_text,omitempty"`
	Score     float64 `json:"score"`
	ImagePath *string `json:"image_path"`
	CreatedAt string  `json:"created_at"`
}

// HasImage reports whether the backend declared an image for this debate
func (d *Debate) HasImage() bool {
	return d.ImagePath != nil && strings.TrimSpace(*d.ImagePath) != ""
}

// Image returns the declared image path or an empty string
func (d *Debate) Image() string {
	if !d.HasImage() {
		return ""
	}
	return *d.ImagePath
}

// ListResponse is the body of GET /api/debates and GET /api/search-debates
type ListResponse struct {
	Debates []Debate `json:"debates"`
}

// SearchRequest holds the search endpoint parameters
type SearchRequest struct {
	Query        string  `json:"query"`
	MinimumScore float64 `json:"minimum_score"`
	IncludeAll   bool    `json:"include_all"`
}

// UpdateRequest is the body of PUT /api/debate/{id}
type UpdateRequest struct {
	TLDR    string `json:"tldr"`
	Summary string `json:"summary"`
}

// CreateRequest is the body of POST /api/debate
type CreateRequest struct {
	TLDR    string `json:"tldr"`
	Summary string `json:"summary"`
}

// CreateResponse is returned by POST /api/debate
type CreateResponse struct {
	DebateID int    `json:"debate_id"`
	Message  string `json:"message,omitempty"`
}

// UploadRequest describes the multipart POST /api/add call
type UploadRequest struct {
	DebateID    int
	Filename    string
	ContentType string
	TextContent string
	Data        []byte
}

// UploadResponse is returned by POST /api/add
type UploadResponse struct {
	Message   string `json:"message,omitempty"`
	ImageID   int    `json:"image_id"`
	ImagePath string `json:"image_path"`
	DebateID  int    `json:"debate_id,omitempty"`
}

// Domain errors
var (
	ErrMissingID         = errors.New("no debate ID provided")
	ErrNotFound          = errors.New("debate not found")
	ErrTransport         = errors.New("backend unreachable")
	ErrBackendStatus     = errors.New("backend returned an error status")
	ErrMalformedResponse = errors.New("invalid response from server")
	ErrValidation        = errors.New("validation failed")
	ErrCacheUnavailable  = errors.New("cache unavailable")
)

// APIError carries a non-success backend response
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend status %d", e.StatusCode)
}

// Unwrap lets errors.Is match ErrBackendStatus and ErrNotFound
func (e *APIError) Unwrap() []error {
	if e.StatusCode == 404 {
		return []error{ErrBackendStatus, ErrNotFound}
	}
	return []error{ErrBackendStatus}
}

// DetailOf returns the backend detail message of err, or fallback
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// Constants for validation
const (
	MaxTitleLen   = 500
	MaxSummaryLen = 20000
)

// Validate checks a create request before anything is sent
func (r *CreateRequest) Validate() error {
	return validateText(r.TLDR, r.Summary)
}

// Validate checks an update request before anything is sent
func (r *UpdateRequest) Validate() error {
	return validateText(r.TLDR, r.Summary)
}

func validateText(title, summary string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: title too long (max %d characters)", ErrValidation, MaxTitleLen)
	}
	if utf8.RuneCountInString(summary) > MaxSummaryLen {
		return fmt.Errorf("%w: summary too long (max %d characters)", ErrValidation, MaxSummaryLen)
	}
	return nil
}
