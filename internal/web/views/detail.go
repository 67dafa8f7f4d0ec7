package views

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/domain/imagepath"
)

// DetailState is the render state of the detail page
type DetailState string

const (
	DetailViewing DetailState = "viewing"
	DetailEditing DetailState = "editing"
	DetailError   DetailState = "error"
)

const (
	detailTitleSuffix = " - Debate Details"
	noSummary         = "No summary available."
)

// DetailView is the detail page of one debate
type DetailView struct {
	State    DetailState `json:"state"`
	Title    string      `json:"title"`
	BackHref string      `json:"back_href"`
	Query    string      `json:"query,omitempty"`

	ID           string            `json:"id,omitempty"`
	TLDR         string            `json:"tldr,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	SummaryInput string            `json:"summary_input,omitempty"`
	OCRText      string            `json:"ocr_text,omitempty"`
	Date         string            `json:"date,omitempty"`
	Image        imagepath.Binding `json:"image"`
	Badge        *Badge            `json:"badge,omitempty"`

	// ConfirmDelete renders the delete confirmation prompt
	ConfirmDelete bool   `json:"confirm_delete,omitempty"`
	ConfirmPrompt string `json:"confirm_prompt,omitempty"`

	// Notice is non-blocking feedback, Alert is a blocking one
	Notice string `json:"notice,omitempty"`
	Alert  string `json:"alert,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewDetail builds the viewing state of a loaded debate
func NewDetail(d *debate.Debate, query string, bind BindFunc) *DetailView {
	v := &DetailView{
		State:        DetailViewing,
		Title:        d.TLDR + detailTitleSuffix,
		BackHref:     HomeHref(query),
		Query:        query,
		ID:           strconv.Itoa(d.ID),
		TLDR:         d.TLDR,
		Summary:      d.Summary,
		SummaryInput: d.Summary,
		OCRText:      strings.TrimSpace(d.OCRText),
		Date:         DetailDate(d.CreatedAt),
		Image:        bind(d.Image(), d.TLDR),
	}
	if v.Summary == "" {
		v.Summary = noSummary
	}
	if d.Score > 0 {
		v.Badge = ScoreBadge(d.Score, false)
	}
	return v
}

// DetailFailure builds the error state. It is terminal for the render.
func DetailFailure(query string, err error) *DetailView {
	return &DetailView{
		State:    DetailError,
		Title:    "Debate Details",
		BackHref: HomeHref(query),
		Query:    query,
		Error:    detailErrorText(err),
	}
}

func detailErrorText(err error) string {
	var apiErr *debate.APIError
	switch {
	case errors.Is(err, debate.ErrMissingID):
		return "No debate ID provided."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Failed to fetch debate details: %d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	case errors.Is(err, debate.ErrMalformedResponse):
		return debate.ErrMalformedResponse.Error()
	default:
		return ErrorText(err)
	}
}

// Edit switches to the editing state
func (v *DetailView) Edit() {
	if v.State == DetailViewing {
		v.State = DetailEditing
	}
}

// ApplyEdit shows the edited values before the backend has accepted them
func (v *DetailView) ApplyEdit(tldr, summary string) {
	v.State = DetailViewing
	v.TLDR = tldr
	v.Title = tldr + detailTitleSuffix
	v.SummaryInput = summary
	v.Summary = summary
	if v.Summary == "" {
		v.Summary = noSummary
	}
	v.Image.Alt = altAfterEdit(v.Image.Alt, tldr)
}

// altAfterEdit keeps placeholder alt texts and follows the new title otherwise
func altAfterEdit(alt, tldr string) string {
	if alt == imagepath.AltNoImage || alt == imagepath.AltNotAvailable {
		return alt
	}
	return tldr
}

// SaveFailed keeps the edited text and reports that it was not saved
func (v *DetailView) SaveFailed(err error) {
	if errors.Is(err, debate.ErrValidation) {
		v.Notice = "Changes were not saved: " + err.Error()
		return
	}
	v.Notice = "Changes were not saved: " + debate.DetailOf(err, "Failed to update debate ID: "+v.ID)
}

// AskDelete renders the delete confirmation
func (v *DetailView) AskDelete() {
	v.ConfirmDelete = true
	v.ConfirmPrompt = `Are you sure you want to delete "` + v.TLDR + `"?`
}

// DeleteFailed reports a rejected deletion; the record stays on screen
func (v *DetailView) DeleteFailed(err error) {
	v.ConfirmDelete = false
	v.Alert = "Error deleting debate: " + debate.DetailOf(err, "Failed to delete debate")
}

// DeletedFlash is shown on the gallery after a successful delete
func DeletedFlash(id string) string {
	return "Debate " + id + " deleted successfully."
}
