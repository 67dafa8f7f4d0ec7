package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-gallery/internal/domain/debate"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestRenderer_GalleryPage(t *testing.T) {
	r := newTestRenderer(t)
	v := NewGallery("climate", []debate.Debate{{ID: 1, TLDR: "Carbon <tax>", Score: 0.9}}, stubBind)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, PageGallery, v))
	html := buf.String()

	assert.Contains(t, html, "<title>Search: climate</title>")
	assert.Contains(t, html, "Search Results: &#34;climate&#34;")
	assert.Contains(t, html, "Carbon &lt;tax&gt;")
	assert.Contains(t, html, `class="score-badge high">90%`)
	assert.Contains(t, html, "high-match")
	assert.Contains(t, html, `title="Add new whiteboard"`)
	assert.Contains(t, html, "data-carousel")
	assert.Contains(t, html, "closestIndex")
}

func TestRenderer_ResultsFragment(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Fragment(&buf, PageGallery, FragmentResults, NewGallery("", nil, stubBind)))
	html := buf.String()

	assert.NotContains(t, html, "<html")
	assert.Contains(t, html, "No whiteboard images found.")
	assert.Contains(t, html, `href="/record"`)
}

func TestRenderer_DetailStates(t *testing.T) {
	r := newTestRenderer(t)
	d := &debate.Debate{ID: 5, TLDR: "Board", Summary: "sum"}

	t.Run("viewing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Page(&buf, PageDetail, NewDetail(d, "x", stubBind)))
		html := buf.String()
		assert.Contains(t, html, "<title>Board - Debate Details</title>")
		assert.Contains(t, html, `id="edit-debate"`)
		assert.Contains(t, html, `href="/?q=x"`)
		assert.NotContains(t, html, `id="debate-title-input"`)
	})

	t.Run("editing", func(t *testing.T) {
		v := NewDetail(d, "", stubBind)
		v.Edit()
		var buf bytes.Buffer
		require.NoError(t, r.Fragment(&buf, PageDetail, FragmentDetail, v))
		html := buf.String()
		assert.Contains(t, html, `id="debate-title-input"`)
		assert.Contains(t, html, ">sum</textarea>")
		assert.NotContains(t, html, `id="delete-debate"`)
	})

	t.Run("confirm delete", func(t *testing.T) {
		v := NewDetail(d, "", stubBind)
		v.AskDelete()
		var buf bytes.Buffer
		require.NoError(t, r.Fragment(&buf, PageDetail, FragmentDetail, v))
		assert.Contains(t, buf.String(), `name="confirm" value="yes"`)
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Page(&buf, PageDetail, DetailFailure("", debate.ErrMissingID)))
		assert.Contains(t, buf.String(), "No debate ID provided.")
	})
}

func TestRenderer_RecordAndList(t *testing.T) {
	r := newTestRenderer(t)

	form := NewRecordForm("tok-1", "", 10<<20)
	form.Failed("tok-2", "Board", "", "Title is required")
	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, PageRecord, form))
	html := buf.String()
	assert.Contains(t, html, `value="tok-2"`)
	assert.Contains(t, html, "Title is required")
	assert.Contains(t, html, "max 10 MB")

	buf.Reset()
	require.NoError(t, r.Page(&buf, PageList, NewList([]debate.Debate{{ID: 2, TLDR: "Two"}}, stubBind)))
	assert.Contains(t, buf.String(), `href="/debate?id=2"`)
}

func TestRenderer_RecordSourceToggle(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, PageRecord, NewRecordForm("tok-1", "image/png", 10<<20)))
	html := buf.String()

	assert.Contains(t, html, `<input type="radio" name="source" value="file" checked>`)
	assert.Contains(t, html, `<input type="radio" name="source" value="capture">`)
	assert.NotContains(t, html, `type="hidden" name="source"`)
	assert.Equal(t, 1, strings.Count(html, `name="source" value="file"`))

	// the camera stream is released on toggle, swap and page hide
	assert.Contains(t, html, "getTracks().forEach")
	assert.Contains(t, html, `"pagehide"`)
	assert.Contains(t, html, `"htmx:beforeCleanupElement"`)
	assert.Contains(t, html, `session.select("file")`)

	buf.Reset()
	require.NoError(t, r.Fragment(&buf, PageRecord, FragmentRecord, NewRecordForm("tok-2", "", 1<<20)))
	assert.Contains(t, buf.String(), `value="capture"`)
	assert.NotContains(t, buf.String(), "getUserMedia")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	assert.Error(t, r.Page(&bytes.Buffer{}, "nope", nil))
}
