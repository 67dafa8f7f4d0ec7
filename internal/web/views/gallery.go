package views

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/domain/imagepath"
)

const (
	galleryTitle = "Whiteboard Debates"

	// RecordPath is the creation form
	RecordPath = "/record"
	// DetailPath is the detail page
	DetailPath = "/debate"
)

// BindFunc turns a declared image path into the src/alt pair to render
type BindFunc func(path, alt string) imagepath.Binding

// Link is an anchor inside a message block
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// SearchHeader sits above search results
type SearchHeader struct {
	Heading string `json:"heading"`
	// Counts is empty when there are no results
	Counts string `json:"counts,omitempty"`
	Hint   string `json:"hint,omitempty"`
	Link   Link   `json:"link"`
}

// Badge is the relevance percentage shown on a card
type Badge struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// Message is a non-card block: empty states and errors
type Message struct {
	Lines []string `json:"lines"`
	// Prefix, Link and Suffix render on one line after Lines
	Prefix string `json:"prefix,omitempty"`
	Link   *Link  `json:"link,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Card is one debate in the gallery grid
type Card struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Href           string    `json:"href"`
	Summary        string    `json:"summary"`
	Date           string    `json:"date,omitempty"`
	RelevanceClass string    `json:"relevance_class,omitempty"`
	Badge          *Badge    `json:"badge,omitempty"`
	Carousel       *Carousel `json:"carousel"`
}

// GalleryView is the home page in list or search mode
type GalleryView struct {
	Title      string        `json:"title"`
	Query      string        `json:"query,omitempty"`
	SearchMode bool          `json:"search_mode"`
	HasScores  bool          `json:"has_scores"`
	Header     *SearchHeader `json:"header,omitempty"`
	Cards      []Card        `json:"cards"`
	Empty      *Message      `json:"empty,omitempty"`
	Error      *Message      `json:"error,omitempty"`
	Flash      string        `json:"flash,omitempty"`
}

// NewGallery builds the gallery for debates. A blank query means list mode.
func NewGallery(query string, debates []debate.Debate, bind BindFunc) *GalleryView {
	v := baseGallery(query)
	v.Cards = make([]Card, 0, len(debates))

	if v.SearchMode {
		v.HasScores = debate.AnyScored(debates)
		v.Header = searchHeader(v.Query, debates, v.HasScores)
	}

	if len(debates) == 0 {
		v.Empty = emptyMessage(v.SearchMode)
		return v
	}

	for i := range debates {
		v.Cards = append(v.Cards, newCard(&debates[i], v.Query, v.SearchMode, v.HasScores, bind))
	}
	return v
}

// GalleryError builds the gallery when loading failed
func GalleryError(query string, err error) *GalleryView {
	v := baseGallery(query)
	v.Cards = []Card{}

	detail := "Error: " + ErrorText(err)
	if v.SearchMode {
		v.Error = &Message{
			Lines: []string{"Failed to search debates. Please try again.", detail},
			Link:  &Link{Href: "/", Text: "View all debates"},
		}
		return v
	}
	v.Error = &Message{Lines: []string{"Failed to load debates. Please try again later.", detail}}
	return v
}

func baseGallery(query string) *GalleryView {
	query = strings.TrimSpace(query)
	v := &GalleryView{Title: galleryTitle, Query: query, SearchMode: query != ""}
	if v.SearchMode {
		v.Title = "Search: " + query
	}
	return v
}

func searchHeader(query string, debates []debate.Debate, hasScores bool) *SearchHeader {
	if len(debates) == 0 {
		return &SearchHeader{
			Heading: `No Results for "` + query + `"`,
			Hint:    "Try a different search term or ",
			Link:    Link{Href: "/", Text: "view all debates"},
		}
	}

	counts := fmt.Sprintf("%d debates found", len(debates))
	if hasScores {
		counts += fmt.Sprintf(", %d with matches", debate.CountScored(debates))
	}
	return &SearchHeader{
		Heading: `Search Results: "` + query + `"`,
		Counts:  counts,
		Link:    Link{Href: "/", Text: "Clear Search"},
	}
}

func emptyMessage(search bool) *Message {
	if search {
		return &Message{
			Lines:  []string{"No matches found."},
			Link:   &Link{Href: "/", Text: "Back to all debates"},
			Suffix: ".",
		}
	}
	return &Message{
		Lines:  []string{"No whiteboard images found."},
		Prefix: "Click ",
		Link:   &Link{Href: RecordPath, Text: "here"},
		Suffix: " to add a new one.",
	}
}

func newCard(d *debate.Debate, query string, search, hasScores bool, bind BindFunc) Card {
	c := Card{
		ID:      d.ID,
		Title:   d.TLDR,
		Href:    DetailHref(strconv.Itoa(d.ID), query),
		Summary: Truncate(d.Summary, summaryLimit),
		Date:    CardDate(d.CreatedAt),
		Badge:   ScoreBadge(d.Score, search),
	}
	if search && hasScores {
		c.RelevanceClass = debate.RelevanceClass(d.Score)
	}

	img := bind(d.Image(), d.TLDR)
	c.Carousel = Mount([]imagepath.Binding{img}, d.TLDR)
	return c
}

// ScoreBadge returns the percentage badge for a score. Zero scores get a
// "No match" badge in search mode and nothing otherwise.
func ScoreBadge(score float64, search bool) *Badge {
	if score > 0 {
		pct := debate.Percent(score)
		return &Badge{Text: strconv.Itoa(pct) + "%", Class: debate.BadgeClass(pct)}
	}
	if search {
		return &Badge{Text: "No match", Class: debate.BadgeNoMatch}
	}
	return nil
}

// DetailHref links to a debate, carrying the search query along
func DetailHref(id, query string) string {
	q := url.Values{}
	q.Set("id", id)
	if query != "" {
		q.Set("q", query)
	}
	return DetailPath + "?" + q.Encode()
}

// HomeHref is the gallery, in search mode when query is set
func HomeHref(query string) string {
	if query == "" {
		return "/"
	}
	return "/?q=" + url.QueryEscape(query)
}

// ErrorText is the user-facing text of a load failure
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return debate.DetailOf(err, err.Error())
}
