package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Pages rendered inside the base layout
const (
	PageGallery = "gallery"
	PageDetail  = "detail"
	PageRecord  = "record"
	PageList    = "list"
)

// Fragments rendered on their own for htmx swaps
const (
	FragmentResults = "results"
	FragmentDetail  = "detail-body"
	FragmentRecord  = "record-form"
)

var sharedTemplates = []string{"base.tmpl", "partials.tmpl"}

// Renderer executes the embedded page templates
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page once. Each page gets its own set so that
// their "content" blocks do not collide.
func NewRenderer() (*Renderer, error) {
	root, err := template.New("_root").Funcs(funcMap()).ParseFS(templateFS, prefixed(sharedTemplates)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageGallery, PageDetail, PageRecord, PageList} {
		t, err := root.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", page, err)
		}
		if _, err := t.ParseFS(templateFS, path.Join("templates", page+".tmpl")); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Page renders a full HTML document
func (r *Renderer) Page(w io.Writer, page string, data any) error {
	return r.execute(w, page, "base", data)
}

// Fragment renders a named block of a page without the layout
func (r *Renderer) Fragment(w io.Writer, page, name string, data any) error {
	return r.execute(w, page, name, data)
}

func (r *Renderer) execute(w io.Writer, page, name string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("template %s/%s: %w", page, name, err)
	}
	return nil
}

func prefixed(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = path.Join("templates", n)
	}
	return out
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"homeHref":   HomeHref,
		"detailHref": DetailHref,
		"megabytes":  func(n int64) int64 { return n >> 20 },
	}
}
