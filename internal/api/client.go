package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is used when no origin is configured
const DefaultBaseURL = "http://localhost:8000"

const (
	searchPath       = "/api/v1/search"
	healthPath       = "/api/v1/health"
	previewProxyPath = "/api/v1/proxy/itunes"

	requestIDHeader = "X-Request-ID"
)

var (
	// ErrConnection covers every failed search or health call: transport
	// errors, non-2xx responses and undecodable bodies alike.
	ErrConnection = errors.New("backend connection failed")
	// ErrNotReady is returned by Health when the server answered with a
	// non-2xx status.
	ErrNotReady = errors.New("backend not ready")
)

// Client talks to the song search service
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tracer     trace.Tracer
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed to
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.Tracer("omnisearch/internal/api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the origin every request is sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs a semantic search for query
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	ctx, span := c.tracer.Start(ctx, "api.Search", trace.WithAttributes(
		attribute.Int("search.limit", limit),
	))
	defer span.End()

	body, err := json.Marshal(SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search request failed")
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("%w: search returned %d", ErrConnection, resp.StatusCode)
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrConnection, err)
	}

	span.SetAttributes(attribute.Int("search.results", len(out.Results)))
	return &out, nil
}

// Health checks whether the service is up. A transport failure yields
// ErrConnection; a non-2xx answer yields ErrNotReady.
func (c *Client) Health(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "api.Health")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return fmt.Errorf("%w: health returned %d", ErrNotReady, resp.StatusCode)
	}
	return nil
}

// LookupPreview asks the preview proxy for tracks matching term
func (c *Client) LookupPreview(ctx context.Context, term string) (*PreviewResponse, error) {
	ctx, span := c.tracer.Start(ctx, "api.LookupPreview")
	defer span.End()

	q := url.Values{}
	q.Set("term", term)

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+previewProxyPath+"?"+q.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("preview lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("proxy error: %d", resp.StatusCode)
	}

	var out PreviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse proxy response: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}
