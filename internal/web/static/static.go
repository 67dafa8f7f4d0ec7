// Package static embeds the assets served by the frontend itself.
package static

import _ "embed"

// PlaceholderContentType is the media type of Placeholder
const PlaceholderContentType = "image/svg+xml"

// Placeholder is shown wherever an image cannot be loaded
//
//go:embed placeholder.svg
var Placeholder []byte
