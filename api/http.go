package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient implements Client over the remote's HTTP API.
type HTTPClient struct {
	base   string
	client *http.Client
	header http.Header
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPDoer sets the underlying *http.Client (timeouts, transport,
// cookies). Defaults to a client with a 30s timeout.
func WithHTTPDoer(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.client = c }
}

// WithHeader adds a header to every request (authorization, user agent).
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTPClient) { h.header.Set(key, value) }
}

// NewHTTPClient creates a client rooted at the given base URL
// (e.g. "https://remote.example/api/v10").
func NewHTTPClient(base string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enroll implements Client.
func (h *HTTPClient) Enroll(ctx context.Context, questID string, req EnrollRequest) error {
	return h.post(ctx, fmt.Sprintf("/quests/%s/enroll", questID), req, nil)
}

// VideoProgress implements Client.
func (h *HTTPClient) VideoProgress(ctx context.Context, questID string, timestamp float64) (VideoProgressResponse, error) {
	var resp VideoProgressResponse
	body := struct {
		Timestamp float64 `json:"timestamp"`
	}{Timestamp: timestamp}
	err := h.post(ctx, fmt.Sprintf("/quests/%s/video-progress", questID), body, &resp)
	return resp, err
}

// Heartbeat implements Client.
func (h *HTTPClient) Heartbeat(ctx context.Context, questID, streamKey string, terminal bool) (HeartbeatResponse, error) {
	var resp HeartbeatResponse
	body := struct {
		StreamKey string `json:"stream_key"`
		Terminal  bool   `json:"terminal"`
	}{StreamKey: streamKey, Terminal: terminal}
	err := h.post(ctx, fmt.Sprintf("/quests/%s/heartbeat", questID), body, &resp)
	return resp, err
}

// PublicApplication implements Client. The remote returns a list even
// for a single id; the first entry wins.
func (h *HTTPClient) PublicApplication(ctx context.Context, applicationID string) (Application, error) {
	var apps []Application
	path := "/applications/public?application_ids=" + url.QueryEscape(applicationID)
	if err := h.get(ctx, path, &apps); err != nil {
		return Application{}, err
	}
	if len(apps) == 0 {
		return Application{}, &StatusError{Status: http.StatusNotFound, Message: "application not found"}
	}
	return apps[0], nil
}

func (h *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: marshal request for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("api: build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, out)
}

func (h *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base+path, nil)
	if err != nil {
		return fmt.Errorf("api: build request for %s: %w", path, err)
	}
	return h.do(req, out)
}

func (h *HTTPClient) do(req *http.Request, out any) error {
	for k, vs := range h.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response for %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitedError{RetryAfter: retryAfterFrom(resp, data)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &failure)
		return &StatusError{Status: resp.StatusCode, Message: failure.Message}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("api: decode response for %s: %w", req.URL.Path, err)
		}
	}
	return nil
}

// retryAfterFrom extracts the server-suggested wait from either the
// response body or the Retry-After header. Missing values fall back to
// 5s, matching the remote client's behavior.
func retryAfterFrom(resp *http.Response, data []byte) time.Duration {
	var body struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.RetryAfter > 0 {
		return time.Duration(body.RetryAfter * float64(time.Second))
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 5 * time.Second
}
