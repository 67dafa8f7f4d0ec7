package views

import (
	"strconv"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/domain/imagepath"
)

const listTitle = "All Whiteboards"

// ListEntry is one line of the compact list page
type ListEntry struct {
	ID    int               `json:"id"`
	Href  string            `json:"href"`
	Title string            `json:"title"`
	Image imagepath.Binding `json:"image"`
}

// ListView is the compact list of every debate
type ListView struct {
	Title   string      `json:"title"`
	Entries []ListEntry `json:"entries"`
	Error   *Message    `json:"error,omitempty"`
}

// NewList builds the compact list page
func NewList(debates []debate.Debate, bind BindFunc) *ListView {
	v := &ListView{Title: listTitle, Entries: make([]ListEntry, 0, len(debates))}
	for i := range debates {
		d := &debates[i]
		v.Entries = append(v.Entries, ListEntry{
			ID:    d.ID,
			Href:  DetailHref(strconv.Itoa(d.ID), ""),
			Title: d.TLDR,
			Image: bind(d.Image(), d.TLDR),
		})
	}
	return v
}

// ListError builds the list page when loading failed
func ListError(err error) *ListView {
	return &ListView{
		Title:   listTitle,
		Entries: []ListEntry{},
		Error: &Message{Lines: []string{
			"Failed to load debates. Please try again later.",
			"Error: " + ErrorText(err),
		}},
	}
}
