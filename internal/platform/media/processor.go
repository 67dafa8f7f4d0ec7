// Package media validates uploaded whiteboard images and normalizes camera
// captures before they are sent to the backend.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register gif decoding
	"image/jpeg"
	_ "image/png" // Register png decoding
	"net/http"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Import for webp decoding support

	"debate-gallery/internal/config"
)

// Validation errors
var (
	ErrEmpty           = errors.New("image is empty")
	ErrTooLarge        = errors.New("image exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrUndecodable     = errors.New("image could not be decoded")
)

// defaultMaxPixels keeps a full RGBA decode around 200MB
const defaultMaxPixels = 50_000_000

// formatTypes maps decoder format names to content types
var formatTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Info describes a validated image
type Info struct {
	ContentType string
	Format      string
	Width       int
	Height      int
	Size        int64
}

// Extension returns the file extension matching the decoded format
func (i *Info) Extension() string {
	if i.Format == "jpeg" {
		return "jpg"
	}
	return i.Format
}

// Processor validates and normalizes images
type Processor struct {
	maxSize      int64
	maxPixels    int64
	maxDimension int
	quality      int
	allowed      map[string]bool
}

// NewProcessor creates a processor from the upload settings
func NewProcessor(cfg config.UploadConfig) *Processor {
	p := &Processor{
		maxSize:      cfg.MaxUploadSize,
		maxPixels:    cfg.MaxPixels,
		maxDimension: cfg.MaxDimension,
		quality:      cfg.JPEGQuality,
		allowed:      make(map[string]bool),
	}
	if p.maxSize <= 0 {
		p.maxSize = 10 << 20
	}
	if p.maxPixels <= 0 {
		p.maxPixels = defaultMaxPixels
	}
	if p.maxDimension <= 0 {
		p.maxDimension = 2000
	}
	if p.quality <= 0 || p.quality > 100 {
		p.quality = 85
	}

	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	for _, t := range allowed {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "image/jpg" {
			t = "image/jpeg"
		}
		p.allowed[t] = true
	}
	return p
}

// MaxSize returns the upload size limit in bytes
func (p *Processor) MaxSize() int64 {
	return p.maxSize
}

// Inspect checks size, sniffed type and decodability of data. Only the
// header is decoded; images declaring more than the pixel limit are rejected.
func (p *Processor) Inspect(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, len(data), p.maxSize)
	}

	sniffed := http.DetectContentType(data[:min(len(data), 512)])
	if !p.allowed[sniffed] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, sniffed)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUndecodable, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, p.maxPixels)
	}
	if formatTypes[format] != sniffed {
		return nil, fmt.Errorf("%w: format %s doesn't match content %s", ErrUnsupportedType, format, sniffed)
	}

	return &Info{
		ContentType: sniffed,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Size:        int64(len(data)),
	}, nil
}

// NormalizeCapture decodes a camera snapshot, fits it within the maximum
// dimension and re-encodes it as JPEG on a white background.
func (p *Processor) NormalizeCapture(data []byte) ([]byte, *Info, error) {
	if _, err := p.Inspect(data); err != nil {
		return nil, nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), p.maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, nil, fmt.Errorf("failed to encode capture: %w", err)
	}

	return buf.Bytes(), &Info{
		ContentType: "image/jpeg",
		Format:      "jpeg",
		Width:       w,
		Height:      h,
		Size:        int64(buf.Len()),
	}, nil
}

// FitWithin scales w x h down so neither side exceeds limit, keeping the
// aspect ratio. Images are never upscaled.
func FitWithin(w, h, limit int) (int, int) {
	if w <= 0 || h <= 0 || limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}

	scale := float64(limit) / float64(w)
	if s := float64(limit) / float64(h); s < scale {
		scale = s
	}

	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

// CaptureFilename names a camera snapshot after the moment it was taken
func CaptureFilename(now time.Time, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("whiteboard_capture_%s.%s", now.Format("20060102_150405"), ext)
}
