package preview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/internal/api"
)

type fakeFallback struct {
	url   string
	err   error
	calls int
}

func (f *fakeFallback) PreviewURL(ctx context.Context, title, artist string) (string, error) {
	f.calls++
	return f.url, f.err
}

func empty(context.Context, int, string) (*api.PreviewResponse, error) {
	return &api.PreviewResponse{}, nil
}

func TestKeyAndTerm(t *testing.T) {
	assert.Equal(t, "Rainy Days-Sun Kil Moon", Key("Rainy Days", "Sun Kil Moon"))
	assert.Equal(t, "Rainy Days Sun Kil Moon", Term("Rainy Days", "Sun Kil Moon"))
	assert.Equal(t, "-", Key("", ""))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "u1")
	c.Set("k", "u2")
	c.Set("other", "u3")

	url, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "u2", url)
	assert.Equal(t, 2, c.Len())
}

func TestResolveCachesHits(t *testing.T) {
	lookup := &fakeLookup{respond: found("u")}
	r := NewResolver(lookup, nil)

	for i := 0; i < 3; i++ {
		url, err := r.Resolve(context.Background(), "t", "a")
		require.NoError(t, err)
		assert.Equal(t, "u", url)
	}
	assert.Equal(t, 1, lookup.calls())
}

func TestResolveDoesNotCacheMisses(t *testing.T) {
	lookup := &fakeLookup{respond: empty}
	r := NewResolver(lookup, nil)

	_, err := r.Resolve(context.Background(), "t", "a")
	assert.ErrorIs(t, err, ErrNoPreview)
	_, err = r.Resolve(context.Background(), "t", "a")
	assert.ErrorIs(t, err, ErrNoPreview)

	assert.Equal(t, 2, lookup.calls())
	assert.Zero(t, r.Cache().Len())
}

func TestResolveProxyError(t *testing.T) {
	lookup := &fakeLookup{respond: func(context.Context, int, string) (*api.PreviewResponse, error) {
		return nil, errors.New("proxy error: 502")
	}}
	_, err := NewResolver(lookup, nil).Resolve(context.Background(), "t", "a")
	assert.EqualError(t, err, "proxy error: 502")
}

func TestResolveFallback(t *testing.T) {
	fallback := &fakeFallback{url: "https://p.scdn.co/preview"}
	r := NewResolver(&fakeLookup{respond: empty}, nil, WithFallback(fallback))

	url, err := r.Resolve(context.Background(), "t", "a")
	require.NoError(t, err)
	assert.Equal(t, "https://p.scdn.co/preview", url)
	assert.Equal(t, 1, fallback.calls)

	cached, ok := r.Cache().Get(Key("t", "a"))
	assert.True(t, ok)
	assert.Equal(t, url, cached)
}

func TestResolveFallbackEmpty(t *testing.T) {
	r := NewResolver(&fakeLookup{respond: empty}, nil, WithFallback(&fakeFallback{}))

	_, err := r.Resolve(context.Background(), "t", "a")
	assert.ErrorIs(t, err, ErrNoPreview)
}

func TestResolveFallbackNotUsedWhenCanceled(t *testing.T) {
	fallback := &fakeFallback{url: "x"}
	lookup := &fakeLookup{respond: func(ctx context.Context, _ int, _ string) (*api.PreviewResponse, error) {
		return nil, ctx.Err()
	}}
	r := NewResolver(lookup, nil, WithFallback(fallback))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, "t", "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.calls)
}

func TestResolveCanceledAfterLookupIsNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lookup := &fakeLookup{respond: func(context.Context, int, string) (*api.PreviewResponse, error) {
		cancel()
		return &api.PreviewResponse{Results: []api.PreviewItem{{PreviewURL: "late"}}}, nil
	}}
	r := NewResolver(lookup, nil)

	_, err := r.Resolve(ctx, "t", "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.Cache().Len())
}

func TestResolveRateLimit(t *testing.T) {
	lookup := &fakeLookup{respond: found("u")}
	r := NewResolver(lookup, nil, WithRateLimit(0.001))

	_, err := r.Resolve(context.Background(), "first", "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Resolve(ctx, "second", "a")
	assert.Error(t, err)
	assert.Equal(t, 1, lookup.calls())

	// cache hits bypass the limiter
	url, err := r.Resolve(ctx, "first", "a")
	require.NoError(t, err)
	assert.Equal(t, "u", url)
}
