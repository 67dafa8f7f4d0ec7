package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-gallery/internal/config"
	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/domain/imagepath"
	"debate-gallery/internal/platform/backend"
	"debate-gallery/internal/services"
	"debate-gallery/internal/testutils"
	"debate-gallery/internal/web/static"
	"debate-gallery/internal/web/views"
)

type handlerFixture struct {
	fake   *testutils.FakeBackend
	routes http.Handler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	fake := testutils.NewFakeBackend()
	t.Cleanup(fake.Close)

	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: fake.URL(), Timeout: 5 * time.Second},
	}
	client := backend.NewClient(cfg.Backend)
	container := services.NewContainer(cfg, client, nil, nil, nil)

	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	return &handlerFixture{
		fake:   fake,
		routes: NewWithContainer(container, renderer, nil).Routes(),
	}
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.routes.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) get(target string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (f *handlerFixture) postForm(target string, values url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return f.do(req)
}

func TestGallery_ListsDebates(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(
		debate.Debate{ID: 1, TLDR: "Remote work", Summary: "pros and cons", CreatedAt: "2024-05-01T09:00:00Z",
			ImagePath: testutils.StringPtr("static/uploads/remote.jpg")},
		debate.Debate{ID: 2, TLDR: "Four day week"},
	)

	rec := f.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Remote work")
	assert.Contains(t, body, "May 1, 2024")
	assert.Contains(t, body, `href="/debate?id=1"`)
	assert.Contains(t, body, "/media?path=static%2Fuploads%2Fremote.jpg")
	assert.Contains(t, body, imagepath.DefaultPlaceholder)
	assert.NotContains(t, body, "score-badge")
}

func TestGallery_JSON(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 1, TLDR: "Remote work"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view views.GalleryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "Remote work", view.Cards[0].Title)
}

func TestGallery_SearchWithoutResults(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 1, TLDR: "Remote work"})

	rec := f.get("/?q=" + url.QueryEscape("space elevators"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<title>Search: space elevators</title>")
	assert.Contains(t, body, "No Results for &#34;space elevators&#34;")
	assert.Contains(t, body, "No matches found.")
	assert.NotContains(t, body, "error-message")
	assert.NotContains(t, body, "Remote work")
}

func TestGallery_SearchAllZeroScores(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Respond(http.MethodGet, "/api/search-debates", http.StatusOK,
		`{"debates":[{"id":1,"tldr":"a","score":0},{"id":2,"tldr":"b","score":0}]}`)

	rec := f.get("/?q=zzz")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Equal(t, 2, strings.Count(body, ">No match</span>"))
	assert.NotContains(t, body, "%</span>")
	assert.Contains(t, body, "2 debates found")
	assert.NotContains(t, body, "with matches")
}

func TestGallery_SearchScored(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 1, TLDR: "climate tax"}, debate.Debate{ID: 2, TLDR: "climate"})
	f.fake.SetScores(map[int]float64{1: 0.93, 2: 0.45})

	rec := f.get("/?q=climate")
	body := rec.Body.String()

	assert.Contains(t, body, `class="score-badge high">93%`)
	assert.Contains(t, body, `class="score-badge medium">45%`)
	assert.Contains(t, body, "2 debates found, 2 with matches")
	assert.Contains(t, body, "high-match")
	assert.Contains(t, body, `href="/debate?id=1&amp;q=climate"`)
}

func TestGallery_BackendFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Fail(http.MethodGet, "/api/debates", http.StatusInternalServerError, "db offline")

	rec := f.get("/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to load debates. Please try again later.")
	assert.Contains(t, body, "Error: db offline")
}

func TestGallery_HTMXFragment(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Fail(http.MethodGet, "/api/search-debates", http.StatusInternalServerError, "")

	req := httptest.NewRequest(http.MethodGet, "/?q=x", nil)
	req.Header.Set("HX-Request", "true")
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `id="results"`)
	assert.Contains(t, body, "Failed to search debates. Please try again.")
	assert.Contains(t, body, "View all debates")
}

func TestDetail(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 4, TLDR: "Tabs vs spaces", OCRText: "tabs!"})

	t.Run("viewing keeps the query", func(t *testing.T) {
		rec := f.get("/debate?id=4&q=tabs")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<title>Tabs vs spaces - Debate Details</title>")
		assert.Contains(t, body, `href="/?q=tabs"`)
		assert.Contains(t, body, "No summary available.")
		assert.Contains(t, body, "tabs!")
	})

	t.Run("editing", func(t *testing.T) {
		rec := f.get("/debate?id=4&edit=1")
		assert.Contains(t, rec.Body.String(), `id="debate-title-input"`)
	})

	t.Run("missing id", func(t *testing.T) {
		rec := f.get("/debate")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No debate ID provided.")
	})

	t.Run("not found", func(t *testing.T) {
		rec := f.get("/debate?id=99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to fetch debate details: 404 Not Found")
	})
}

func TestSaveDebate(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 4, TLDR: "Old title", Summary: "old"})

	rec := f.postForm("/debate/save", url.Values{"id": {"4"}, "tldr": {"New title"}, "summary": {"new"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New title")
	assert.Equal(t, 1, f.fake.CallCount(http.MethodPut, "/api/debate/4"))

	d, ok := f.fake.Debate(4)
	require.True(t, ok)
	assert.Equal(t, "New title", d.TLDR)
}

func TestSaveDebate_FailureKeepsEditedText(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 4, TLDR: "Old title"})
	f.fake.Fail(http.MethodPut, "/api/debate/", http.StatusInternalServerError, "read only")

	rec := f.postForm("/debate/save", url.Values{"id": {"4"}, "tldr": {"New title"}, "summary": {""}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "New title")
	assert.Contains(t, body, "Changes were not saved: read only")
}

func TestDeleteDebate_RequiresConfirmation(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 5, TLDR: "Board"})

	rec := f.postForm("/debate/delete", url.Values{"id": {"5"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure you want to delete &#34;Board&#34;?")
	assert.Zero(t, f.fake.CallCount(http.MethodDelete, "/api/debate/"))

	_, ok := f.fake.Debate(5)
	assert.True(t, ok)
}

func TestDeleteDebate_Confirmed(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 5, TLDR: "Board"})

	rec := f.postForm("/debate/delete", url.Values{"id": {"5"}, "confirm": {"yes"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?deleted=5", rec.Header().Get("Location"))
	assert.Equal(t, 1, f.fake.CallCount(http.MethodDelete, "/api/debate/5"))

	htmx := f.postForm("/debate/delete", url.Values{"id": {"5"}, "confirm": {"yes"}}, true)
	assert.Equal(t, "/?deleted=5", htmx.Header().Get("HX-Redirect"))

	home := f.get("/?deleted=5")
	assert.Contains(t, home.Body.String(), "Debate 5 deleted successfully.")
}

func TestDeleteDebate_RedirectEscapesID(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Respond(http.MethodDelete, "/api/debate/", http.StatusOK, `{"message":"Debate deleted successfully"}`)

	rec := f.postForm("/debate/delete", url.Values{"id": {"1&q=x"}, "confirm": {"yes"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", location.Path)
	assert.Equal(t, url.Values{"deleted": {"1&q=x"}}, location.Query())
}

func TestDeleteDebate_Failure(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 5, TLDR: "Board"})
	f.fake.Fail(http.MethodDelete, "/api/debate/", http.StatusConflict, "has references")

	rec := f.postForm("/debate/delete", url.Values{"id": {"5"}, "confirm": {"yes"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error deleting debate: has references")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "showAlert")

	_, ok := f.fake.Debate(5)
	assert.True(t, ok)
}

func multipartRequest(t *testing.T, fields map[string]string, file *testutils.FormFile) *http.Request {
	t.Helper()
	body, contentType, err := testutils.CreateMultipartFormData(fields, file)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/record", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestRecord_Form(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.get("/record")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="token"`)
	assert.Contains(t, body, `hx-disabled-elt=`)
}

func TestRecord_SubmitCreatesThenUploads(t *testing.T) {
	f := newHandlerFixture(t)

	req := multipartRequest(t,
		map[string]string{"tldr": "Board A", "token": "t-1", "source": "file"},
		&testutils.FormFile{Field: "file", Filename: "a.png", ContentType: "image/png", Data: testutils.PNGBytes(3, 3)})
	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var posts []string
	for _, c := range f.fake.Calls() {
		if c.Method == http.MethodPost {
			posts = append(posts, c.Path)
		}
	}
	assert.Equal(t, []string{"/api/debate", "/api/add"}, posts)

	uploads := f.fake.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "1", uploads[0].DebateID)
}

func TestRecord_ValidationFailure(t *testing.T) {
	f := newHandlerFixture(t)

	req := multipartRequest(t, map[string]string{"tldr": "", "summary": "kept"}, nil)
	req.Header.Set("HX-Request", "true")
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a title.")
	assert.Contains(t, rec.Body.String(), ">kept</textarea>")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "Please enter a title.")
	assert.Empty(t, f.fake.Calls())
}

func TestMedia(t *testing.T) {
	f := newHandlerFixture(t)
	data := testutils.PNGBytes(2, 2)
	f.fake.AddAsset("/static/uploads/board.png", data)

	t.Run("fallback candidate", func(t *testing.T) {
		rec := f.get("/media?path=" + url.QueryEscape("src/static/uploads/board.png"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		got, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("placeholder", func(t *testing.T) {
		rec := f.get("/media?path=missing.jpg")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, static.PlaceholderContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, static.Placeholder, rec.Body.Bytes())
	})

	t.Run("placeholder route", func(t *testing.T) {
		rec := f.get(imagepath.DefaultPlaceholder)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, static.Placeholder, rec.Body.Bytes())
	})
}

func TestHealth(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.get("/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, healthStatusHealthy, resp.Checks["backend"])
	assert.NotContains(t, resp.Checks, "cache")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{debate.ErrMissingID, http.StatusBadRequest},
		{debate.ErrValidation, http.StatusBadRequest},
		{&debate.APIError{StatusCode: 404}, http.StatusNotFound},
		{&debate.APIError{StatusCode: 500}, http.StatusBadGateway},
		{debate.ErrTransport, http.StatusBadGateway},
		{debate.ErrMalformedResponse, http.StatusBadGateway},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func TestList(t *testing.T) {
	f := newHandlerFixture(t)
	f.fake.Seed(debate.Debate{ID: 3, TLDR: "Monorepo"})

	rec := f.get("/list")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "All Whiteboards")
	assert.Contains(t, body, "Monorepo")
	assert.Contains(t, body, `href="/debate?id=3"`)
}
