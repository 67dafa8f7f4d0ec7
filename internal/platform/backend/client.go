// Package backend is the HTTP client of the debate REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"debate-gallery/internal/config"
	"debate-gallery/internal/domain/debate"
)

// maxErrorBody bounds how much of an error response is read for its detail
const maxErrorBody = 64 << 10

// Client talks to the debate backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with an otel-instrumented transport
func NewClient(cfg config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewClientWithHTTP creates a client using the given http.Client
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListDebates implements debate.Backend
func (c *Client) ListDebates(ctx context.Context) ([]debate.Debate, error) {
	var body debate.ListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/debates", nil, &body); err != nil {
		return nil, fmt.Errorf("list debates: %w", err)
	}
	if body.Debates == nil {
		return nil, fmt.Errorf("list debates: %w: missing debates field", debate.ErrMalformedResponse)
	}
	return body.Debates, nil
}

// SearchDebates implements debate.Backend
func (c *Client) SearchDebates(ctx context.Context, req debate.SearchRequest) ([]debate.Debate, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	q.Set("minimum_score", strconv.FormatFloat(req.MinimumScore, 'f', -1, 64))
	q.Set("include_all", strconv.FormatBool(req.IncludeAll))

	var body debate.ListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/search-debates?"+q.Encode(), nil, &body); err != nil {
		return nil, fmt.Errorf("search debates: %w", err)
	}
	if body.Debates == nil {
		return nil, fmt.Errorf("search debates: %w: missing debates field", debate.ErrMalformedResponse)
	}
	return body.Debates, nil
}

// GetDebate implements debate.Backend
func (c *Client) GetDebate(ctx context.Context, id string) (*debate.Debate, error) {
	if strings.TrimSpace(id) == "" {
		return nil, debate.ErrMissingID
	}

	var d debate.Debate
	if err := c.doJSON(ctx, http.MethodGet, "/api/debate/"+url.PathEscape(id), nil, &d); err != nil {
		return nil, fmt.Errorf("get debate %s: %w", id, err)
	}
	return &d, nil
}

// UpdateDebate implements debate.Backend
func (c *Client) UpdateDebate(ctx context.Context, id string, req debate.UpdateRequest) error {
	if strings.TrimSpace(id) == "" {
		return debate.ErrMissingID
	}
	if err := c.doJSON(ctx, http.MethodPut, "/api/debate/"+url.PathEscape(id), req, nil); err != nil {
		return fmt.Errorf("update debate %s: %w", id, err)
	}
	return nil
}

// DeleteDebate implements debate.Backend
func (c *Client) DeleteDebate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return debate.ErrMissingID
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/debate/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete debate %s: %w", id, err)
	}
	return nil
}

// CreateDebate implements debate.Backend
func (c *Client) CreateDebate(ctx context.Context, req debate.CreateRequest) (*debate.CreateResponse, error) {
	var body debate.CreateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/debate", req, &body); err != nil {
		return nil, fmt.Errorf("create debate: %w", err)
	}
	if body.DebateID <= 0 {
		return nil, fmt.Errorf("create debate: %w: no debate_id in response", debate.ErrMalformedResponse)
	}
	return &body, nil
}

// AddImage implements debate.Backend. debate_id travels as a string form field.
func (c *Client) AddImage(ctx context.Context, req debate.UploadRequest) (*debate.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.Filename))
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("add image: build form: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("add image: build form: %w", err)
	}
	if err := mw.WriteField("text_content", req.TextContent); err != nil {
		return nil, fmt.Errorf("add image: build form: %w", err)
	}
	if err := mw.WriteField("debate_id", strconv.Itoa(req.DebateID)); err != nil {
		return nil, fmt.Errorf("add image: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("add image: build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/add", &buf)
	if err != nil {
		return nil, fmt.Errorf("add image: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	var body debate.UploadResponse
	if err := c.do(httpReq, &body); err != nil {
		return nil, fmt.Errorf("add image: %w", err)
	}
	if body.ImagePath == "" {
		return nil, fmt.Errorf("add image: %w: no image_path in response", debate.ErrMalformedResponse)
	}
	return &body, nil
}

// FetchAsset implements debate.Backend. The caller closes the body.
func (c *Client) FetchAsset(ctx context.Context, path string) (*debate.Asset, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w: %w", path, debate.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close() //nolint:errcheck // status error takes precedence
		return nil, fmt.Errorf("fetch asset %s: %w", path, &debate.APIError{StatusCode: resp.StatusCode})
	}

	return &debate.Asset{
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}, nil
}

// Health implements debate.Backend
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/debates", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", debate.ErrTransport, err)
	}
	_ = resp.Body.Close() //nolint:errcheck // only the status matters
	if resp.StatusCode >= 500 {
		return &debate.APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", debate.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &debate.APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", debate.ErrMalformedResponse, err)
	}
	return nil
}

// readDetail extracts FastAPI style {"detail": "..."} bodies; anything else is
// returned as trimmed text
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		return string(body.Detail)
	}

	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// IsTransport reports whether err came from a failed round trip
func IsTransport(err error) bool {
	return errors.Is(err, debate.ErrTransport)
}
