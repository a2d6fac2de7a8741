// Package api is the HTTP client for the document backend: multipart
// upload with byte-accounted progress, chat turns, session deletion,
// and the login-gated companion surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the local development backend address.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout covers uploading and indexing a large PDF in one
	// request; the backend sends nothing until indexing completes.
	DefaultTimeout = 120 * time.Second

	// EnvBaseURL overrides the backend address when set.
	EnvBaseURL = "DOCCHAT_API_URL"
)

// Client talks to the backend. Each call is a single request/response;
// no retry is performed here — failures propagate once to the calling
// controller, which owns recovery policy.
type Client struct {
	baseURL string
	httpc   *http.Client
	auth    *AuthContext
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests mostly).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithAuth injects the auth context whose token is attached as a
// bearer header on every call that carries one.
func WithAuth(auth *AuthContext) Option {
	return func(c *Client) { c.auth = auth }
}

// NewClient creates a client for the given base address. An empty
// baseURL falls back to the DOCCHAT_API_URL env var, then to the
// local default.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = os.Getenv(EnvBaseURL)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadDocument sends the file as multipart field "file" to
// POST /api/upload and blocks until the backend has indexed it.
// onProgress, if non-nil, receives the transfer percentage 0-100,
// strictly non-decreasing, reaching 100 when the last byte is handed
// to the transport. Indexing itself reports no partial progress.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader, onProgress func(percent int)) (*Session, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	total := int64(buf.Len())
	body := &progressReader{r: &buf, total: total, onProgress: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.ContentLength = total
	c.attachAuth(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Chat sends one question with the replayed history and returns the
// complete answer for this turn.
func (c *Client) Chat(ctx context.Context, sessionID, question string, history []HistoryEntry) (*ChatResponse, error) {
	if history == nil {
		history = []HistoryEntry{}
	}
	req := ChatRequest{
		SessionID:   sessionID,
		Question:    question,
		ChatHistory: history,
	}

	var out ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches the metadata of an existing session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.attachAuth(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// DeleteSession asks the backend to drop an indexed document. Callers
// treat this as best-effort cleanup and swallow the error.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/session/"+sessionID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.attachAuth(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return nil
}

// postJSON marshals in, posts it and decodes the 2xx body into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachAuth(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) attachAuth(req *http.Request) {
	if c.auth == nil {
		return
	}
	if token := c.auth.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decodeJSON decodes a 2xx response body into out.
func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *Error, preferring the
// backend's {"detail": ...} body over the bare HTTP status.
func decodeError(resp *http.Response) error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Detail:     http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}

// progressReader reports how much of the request body has been handed
// to the transport, as a non-decreasing percentage.
type progressReader struct {
	r          io.Reader
	total      int64
	loaded     int64
	lastPct    int
	onProgress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.onProgress == nil || p.total <= 0 {
		return
	}
	pct := int(p.loaded * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastPct {
		p.lastPct = pct
		p.onProgress(pct)
	}
}
