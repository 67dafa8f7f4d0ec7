// Package imagepath derives the URLs an image may be served from and walks
// them in order until one loads.
package imagepath

import "strings"

// DefaultPlaceholder is served when no candidate loads
const DefaultPlaceholder = "/static/images/placeholder.svg"

// Alt texts used when the real image is not shown
const (
	AltNoImage      = "No image available"
	AltNotAvailable = "Image not available"
)

// Upload mounts the backend has stored images under over time
const (
	uploadsDir       = "/static/uploads/"
	uploadsMount     = "/uploads/"
	legacyUploadsDir = "/src/static/uploads/"
)

// Basename returns the text after the last '/'.
// A path without a separator is returned unchanged.
func Basename(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Candidates builds the ordered, deduplicated list of URLs to try for path.
// The placeholder is always the last element.
func Candidates(path, placeholder string) []string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return []string{placeholder}
	}

	base := Basename(path)
	raw := []string{
		"/" + strings.TrimLeft(path, "/"),
		uploadsDir + base,
		uploadsMount + base,
		legacyUploadsDir + base,
	}

	out := make([]string, 0, len(raw)+1)
	seen := make(map[string]bool, len(raw)+1)
	for _, c := range raw {
		if c == placeholder || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return append(out, placeholder)
}
