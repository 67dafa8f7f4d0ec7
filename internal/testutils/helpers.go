package testutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"sync"

	"debate-gallery/internal/domain/debate"
)

// MemoryCache is an in-process debate.CacheService
type MemoryCache struct {
	mu       sync.Mutex
	debates  map[string]debate.Debate
	lists    map[string][]debate.Debate
	resolved map[string]string
	tokens   map[string]bool
	Down     bool
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		debates:  make(map[string]debate.Debate),
		lists:    make(map[string][]debate.Debate),
		resolved: make(map[string]string),
		tokens:   make(map[string]bool),
	}
}

var errMiss = fmt.Errorf("key not found in cache")

func (m *MemoryCache) GetDebate(_ context.Context, id string) (*debate.Debate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debates[id]
	if !ok {
		return nil, errMiss
	}
	return &d, nil
}

func (m *MemoryCache) SetDebate(_ context.Context, d *debate.Debate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debates[fmt.Sprint(d.ID)] = *d
	return nil
}

func (m *MemoryCache) DeleteDebate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.debates, id)
	return nil
}

func (m *MemoryCache) GetList(_ context.Context, key string) ([]debate.Debate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[key]
	if !ok {
		return nil, errMiss
	}
	return append([]debate.Debate(nil), l...), nil
}

func (m *MemoryCache) SetList(_ context.Context, key string, debates []debate.Debate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([]debate.Debate(nil), debates...)
	return nil
}

func (m *MemoryCache) InvalidateLists(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = make(map[string][]debate.Debate)
	return nil
}

func (m *MemoryCache) GetResolvedImage(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.resolved[path]
	if !ok {
		return "", errMiss
	}
	return u, nil
}

func (m *MemoryCache) SetResolvedImage(_ context.Context, path, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved[path] = url
	return nil
}

func (m *MemoryCache) ClaimToken(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens[token] {
		return false, nil
	}
	m.tokens[token] = true
	return true, nil
}

func (m *MemoryCache) Health(_ context.Context) error {
	if m.Down {
		return debate.ErrCacheUnavailable
	}
	return nil
}

// HasList reports whether key is cached
func (m *MemoryCache) HasList(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lists[key]
	return ok
}

// PNGBytes encodes a w x h PNG
func PNGBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 20, G: 20, B: 200, A: 255})
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// FormFile is a file part of a multipart form
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// CreateMultipartFormData builds a multipart body from fields and an optional file
func CreateMultipartFormData(fields map[string]string, file *FormFile) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		header.Set("Content-Type", file.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
