package testutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"debate-gallery/internal/domain/debate"
)

// Call is one request received by the fake backend
type Call struct {
	Method string
	Path   string
	Query  string
}

// Upload is one multipart POST /api/add received by the fake backend
type Upload struct {
	DebateID    string
	Filename    string
	ContentType string
	TextContent string
	Size        int
}

type failure struct {
	status int
	body   string
}

// FakeBackend is an in-memory debate REST API served over httptest
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	debates  []debate.Debate
	nextID   int
	calls    []Call
	uploads  []Upload
	failures map[string]failure
	assets   map[string][]byte
	scores   map[int]float64
}

// NewFakeBackend starts a fake backend; callers Close it
func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		nextID:   1,
		failures: make(map[string]failure),
		assets:   make(map[string][]byte),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Get("/api/debates", f.listDebates)
	r.Get("/api/search-debates", f.searchDebates)
	r.Get("/api/debate/{id}", f.getDebate)
	r.Put("/api/debate/{id}", f.updateDebate)
	r.Delete("/api/debate/{id}", f.deleteDebate)
	r.Post("/api/debate", f.createDebate)
	r.Post("/api/add", f.addImage)
	r.NotFound(f.serveAsset)

	f.Server = httptest.NewServer(r)
	return f
}

// URL returns the base URL of the fake
func (f *FakeBackend) URL() string {
	return f.Server.URL
}

// Close stops the server
func (f *FakeBackend) Close() {
	f.Server.Close()
}

// Seed stores debates in the given order, assigning ids when zero
func (f *FakeBackend) Seed(debates ...debate.Debate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range debates {
		if d.ID == 0 {
			d.ID = f.nextID
		}
		if d.ID >= f.nextID {
			f.nextID = d.ID + 1
		}
		f.debates = append(f.debates, d)
	}
}

// SetScores fixes the search score of each debate id; unlisted ids score 0
func (f *FakeBackend) SetScores(scores map[int]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = scores
}

// Fail makes every request matching method and path prefix answer status
// with a {"detail": ...} body
func (f *FakeBackend) Fail(method, pathPrefix string, status int, detail string) {
	body, _ := json.Marshal(map[string]string{"detail": detail})
	f.Respond(method, pathPrefix, status, string(body))
}

// Respond makes every request matching method and path prefix answer status
// with a raw body
func (f *FakeBackend) Respond(method, pathPrefix string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+pathPrefix] = failure{status: status, body: body}
}

// AddAsset serves data under path
func (f *FakeBackend) AddAsset(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets[path] = data
}

// Calls returns every request received so far
func (f *FakeBackend) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts requests with method whose path starts with prefix
func (f *FakeBackend) CallCount(method, pathPrefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// Uploads returns the received image uploads
func (f *FakeBackend) Uploads() []Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Upload(nil), f.uploads...)
}

// Debate returns the stored debate with id
func (f *FakeBackend) Debate(id int) (debate.Debate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.debates {
		if d.ID == id {
			return d, true
		}
	}
	return debate.Debate{}, false
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		var hit *failure
		for key, fl := range f.failures {
			method, prefix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) {
				hit = &fl
				break
			}
		}
		f.mu.Unlock()

		if hit != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(hit.status)
			_, _ = w.Write([]byte(hit.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Debate not found"})
}

func (f *FakeBackend) listDebates(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	out := make([]debate.Debate, len(f.debates))
	copy(out, f.debates)
	f.mu.Unlock()

	for i := range out {
		out[i].OCRText = ""
		out[i].Score = 0
	}
	writeJSON(w, http.StatusOK, debate.ListResponse{Debates: out})
}

func (f *FakeBackend) searchDebates(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	minimum, _ := strconv.ParseFloat(r.URL.Query().Get("minimum_score"), 64)
	includeAll, _ := strconv.ParseBool(r.URL.Query().Get("include_all"))

	f.mu.Lock()
	var out []debate.Debate
	for _, d := range f.debates {
		score := 0.0
		if f.scores != nil {
			score = f.scores[d.ID]
		} else if query != "" && strings.Contains(strings.ToLower(d.TLDR+" "+d.Summary), query) {
			score = 1
		}
		if !includeAll && score < minimum {
			continue
		}
		d.Score = score
		d.OCRText = ""
		out = append(out, d)
	}
	f.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if out == nil {
		out = []debate.Debate{}
	}
	writeJSON(w, http.StatusOK, debate.ListResponse{Debates: out})
}

func (f *FakeBackend) find(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return -1, false
	}
	for i, d := range f.debates {
		if d.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (f *FakeBackend) getDebate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	i, ok := f.find(r)
	var d debate.Debate
	if ok {
		d = f.debates[i]
	}
	f.mu.Unlock()

	if !ok {
		notFound(w)
		return
	}
	d.Score = 0
	writeJSON(w, http.StatusOK, d)
}

func (f *FakeBackend) updateDebate(w http.ResponseWriter, r *http.Request) {
	var req debate.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	f.mu.Lock()
	i, ok := f.find(r)
	if ok {
		f.debates[i].TLDR = req.TLDR
		f.debates[i].Summary = req.Summary
	}
	f.mu.Unlock()

	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Debate updated successfully"})
}

func (f *FakeBackend) deleteDebate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	i, ok := f.find(r)
	if ok {
		f.debates = append(f.debates[:i], f.debates[i+1:]...)
	}
	f.mu.Unlock()

	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Debate deleted successfully"})
}

func (f *FakeBackend) createDebate(w http.ResponseWriter, r *http.Request) {
	var req debate.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.TLDR) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "tldr is required"})
		return
	}

	f.mu.Lock()
	d := debate.Debate{ID: f.nextID, TLDR: req.TLDR, Summary: req.Summary, CreatedAt: "2024-03-09T14:05:07"}
	f.nextID++
	f.debates = append([]debate.Debate{d}, f.debates...)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, debate.CreateResponse{DebateID: d.ID, Message: "Debate created successfully"})
}

func (f *FakeBackend) addImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid form"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "unreadable file"})
		return
	}

	up := Upload{
		DebateID:    r.FormValue("debate_id"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		TextContent: r.FormValue("text_content"),
		Size:        int(header.Size),
	}

	id, err := strconv.Atoi(up.DebateID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "debate_id must be an integer"})
		return
	}

	imagePath := "static/uploads/" + up.Filename

	f.mu.Lock()
	f.uploads = append(f.uploads, up)
	found := false
	for i := range f.debates {
		if f.debates[i].ID == id {
			f.debates[i].ImagePath = &imagePath
			f.debates[i].OCRText = up.TextContent
			found = true
		}
	}
	if found {
		f.assets["/"+imagePath] = data
	}
	f.mu.Unlock()

	if !found {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, debate.UploadResponse{
		Message:   "Image uploaded successfully",
		ImageID:   len(f.Uploads()),
		ImagePath: imagePath,
		DebateID:  id,
	})
}

func (f *FakeBackend) serveAsset(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	data, ok := f.assets[r.URL.Path]
	f.mu.Unlock()

	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}
