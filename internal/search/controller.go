package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"omnisearch/internal/api"
)

// DefaultLimit is the number of results requested per search
const DefaultLimit = 10

// ConnectionFailed is the only error message a failed search ever shows
const ConnectionFailed = "Backend connection failed. Is the server running?"

// Searcher is implemented by api.Client
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*api.SearchResponse, error)
}

// StatusGate decides whether searching is allowed. A successful search
// proves the server is alive, so the controller reports it back.
type StatusGate interface {
	Online() bool
	MarkOnline()
}

// Stats describes the most recent successful search
type Stats struct {
	LatencyMs    float64
	ModelVersion string
}

// Request is an accepted submission, ready to be sent
type Request struct {
	Query    string
	Limit    int
	searcher Searcher
}

// Outcome is what came back for a Request
type Outcome struct {
	Query    string
	Response *api.SearchResponse
	Err      error
}

// Run performs the HTTP call. It touches no controller state and is safe to
// call off the UI goroutine.
func (r Request) Run(ctx context.Context) Outcome {
	resp, err := r.searcher.Search(ctx, r.Query, r.Limit)
	return Outcome{Query: r.Query, Response: resp, Err: err}
}

// Controller owns the query text and everything the results view shows
type Controller struct {
	mu       sync.Mutex
	searcher Searcher
	gate     StatusGate
	limit    int
	logger   *log.Logger

	query   string
	results []api.SearchResult
	loading bool
	errMsg  string
	stats   *Stats
}

// NewController creates a controller. limit <= 0 means DefaultLimit.
func NewController(searcher Searcher, gate StatusGate, limit int, logger *log.Logger) *Controller {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		searcher: searcher,
		gate:     gate,
		limit:    limit,
		logger:   logger,
	}
}

// SetQuery replaces the query text
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// Query returns the query text as typed
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Begin accepts the current query for submission. It returns false, and
// changes nothing, when the query is blank or the server is not online.
func (c *Controller) Begin() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.TrimSpace(c.query)
	if q == "" {
		return Request{}, false
	}
	if c.gate != nil && !c.gate.Online() {
		return Request{}, false
	}

	c.loading = true
	c.errMsg = ""
	c.stats = nil

	return Request{Query: q, Limit: c.limit, searcher: c.searcher}, true
}

// Finish applies an outcome. Outcomes are applied in arrival order, so
// with overlapping searches the last one to arrive wins.
func (c *Controller) Finish(o Outcome) {
	c.mu.Lock()
	c.loading = false

	if o.Err != nil || o.Response == nil {
		c.errMsg = ConnectionFailed
		c.mu.Unlock()
		c.logger.Printf("Search for %q failed: %v", o.Query, o.Err)
		return
	}

	results := o.Response.Results
	if results == nil {
		results = []api.SearchResult{}
	}
	c.results = results
	c.stats = &Stats{LatencyMs: o.Response.LatencyMs, ModelVersion: o.Response.ModelVersion}
	c.mu.Unlock()

	c.logger.Printf("Search for %q returned %d results in %.1fms", o.Query, len(results), o.Response.LatencyMs)
	if c.gate != nil {
		c.gate.MarkOnline()
	}
}

// Submit sets the query and runs the whole cycle synchronously. ok is
// false when the submission was blocked; err carries the failure of an
// accepted search.
func (c *Controller) Submit(ctx context.Context, query string) (ok bool, err error) {
	c.SetQuery(query)
	req, ok := c.Begin()
	if !ok {
		return false, nil
	}
	outcome := req.Run(ctx)
	c.Finish(outcome)
	if outcome.Err != nil {
		return true, fmt.Errorf("search failed: %w", outcome.Err)
	}
	return true, nil
}

// Results returns a copy of the current results, in response order
func (c *Controller) Results() []api.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.SearchResult, len(c.results))
	copy(out, c.results)
	return out
}

// Loading reports whether a search is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Error returns the message to display, or "" when there is none
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Stats returns the stats of the last successful search
func (c *Controller) Stats() (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return Stats{}, false
	}
	return *c.stats, true
}

// Empty reports the "nothing matched" state: a query was typed, nothing is
// loading, there is no error and there are no results.
func (c *Controller) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results) == 0 && !c.loading && c.errMsg == "" && c.query != ""
}
