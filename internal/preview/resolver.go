package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/time/rate"

	"omnisearch/internal/api"
)

// ErrNoPreview means the proxy answered but had no playable URL
var ErrNoPreview = errors.New("no preview found")

// Lookup is implemented by api.Client
type Lookup interface {
	LookupPreview(ctx context.Context, term string) (*api.PreviewResponse, error)
}

// Fallback is a secondary preview source consulted when the proxy fails
type Fallback interface {
	PreviewURL(ctx context.Context, title, artist string) (string, error)
}

// Resolver turns a (title, artist) pair into a playable URL, going through
// the shared cache first.
type Resolver struct {
	lookup   Lookup
	cache    Cache
	limiter  *rate.Limiter
	fallback Fallback
	logger   *log.Logger
}

// ResolverOption customises a Resolver
type ResolverOption func(*Resolver)

// WithRateLimit caps proxy calls per second. Zero or less means unlimited.
func WithRateLimit(perSecond float64) ResolverOption {
	return func(r *Resolver) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithFallback adds a source tried after the proxy fails
func WithFallback(f Fallback) ResolverOption {
	return func(r *Resolver) {
		r.fallback = f
	}
}

// WithLogger sets the resolver logger
func WithLogger(l *log.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver. A nil cache gets a fresh MemoryCache.
func NewResolver(lookup Lookup, cache Cache, opts ...ResolverOption) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	r := &Resolver{
		lookup:  lookup,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the shared cache
func (r *Resolver) Cache() Cache {
	return r.cache
}

// Term is the proxy search term for a song
func Term(title, artist string) string {
	return title + " " + artist
}

// Resolve returns the preview URL for a song
func (r *Resolver) Resolve(ctx context.Context, title, artist string) (string, error) {
	key := Key(title, artist)
	if url, ok := r.cache.Get(key); ok {
		return url, nil
	}

	url, err := r.fromProxy(ctx, title, artist)
	if err != nil && r.fallback != nil && ctx.Err() == nil {
		r.logger.Printf("Preview proxy failed for %q, trying fallback: %v", title, err)
		url, err = r.fallback.PreviewURL(ctx, title, artist)
		if err == nil && url == "" {
			err = ErrNoPreview
		}
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.logger.Printf("Preview found for %q: %s", title, url)
	r.cache.Set(key, url)
	return url, nil
}

func (r *Resolver) fromProxy(ctx context.Context, title, artist string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := r.lookup.LookupPreview(ctx, Term(title, artist))
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].PreviewURL == "" {
		return "", fmt.Errorf("%w for %q", ErrNoPreview, title)
	}
	return resp.Results[0].PreviewURL, nil
}
