// Package views holds the page view models and their HTML rendering.
// View models are plain data built from backend records; the templates
// only read them.
package views

import (
	"strings"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

const (
	cardDateLayout   = "Jan 2, 2006"
	detailDateLayout = "January 2, 2006 15:04"

	summaryLimit = 100

	unknownDate = "Unknown date"
)

// CardDate formats a backend timestamp for a gallery card.
// Unparseable input is returned as is; empty input gives "".
func CardDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format(cardDateLayout)
}

// DetailDate formats a backend timestamp for the detail page
func DetailDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDate
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format(detailDateLayout)
}

// Truncate cuts s to limit runes and appends "..." when something was cut
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
