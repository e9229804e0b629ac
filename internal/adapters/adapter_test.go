package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/internal/config"
	"omnisearch/internal/playlist"
)

func TestNewApiAdapter(t *testing.T) {
	cfg := config.Default()
	cfg.SpotifyID = "id"
	cfg.SpotifySecret = "secret"
	cfg.YouTubeAPIKey = "key"

	a, err := NewApiAdapter("spotify", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Spotify", a.PlatformName())
	assert.False(t, a.IsAuthenticated())

	a, err = NewApiAdapter("youtube", cfg)
	require.NoError(t, err)
	assert.Equal(t, "YouTube", a.PlatformName())

	_, err = NewApiAdapter("apple", cfg)
	assert.EqualError(t, err, "unsupported platform: apple")
}

func TestNewApiAdapterMissingCredentials(t *testing.T) {
	_, err := NewApiAdapter("spotify", config.Default())
	assert.ErrorContains(t, err, "SPOTIFY_ID")

	_, err = NewApiAdapter("youtube", config.Default())
	assert.ErrorContains(t, err, "YOUTUBE_API_KEY")
}

func TestBaseAdapterCheckAuth(t *testing.T) {
	b := NewBaseAdapter("Test")
	assert.EqualError(t, b.CheckAuth(), "not authenticated, call Authenticate() first for Test")
	b.SetAuthenticated(true)
	assert.NoError(t, b.CheckAuth())
}

func spotifyServer(t *testing.T, tokenCalls *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "app-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		assert.Equal(t, `track:"Rainy Days" artist:"Sun Kil Moon"`, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSpotify(t *testing.T, srv *httptest.Server) *SpotifyAdapter {
	t.Helper()
	a, err := NewSpotifyAdapter("id", "secret")
	require.NoError(t, err)
	a.tokenURL = srv.URL + "/token"
	a.apiURL = srv.URL + "/v1/"
	return a
}

func TestSpotifyLookupTrack(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := spotifyServer(t, &tokenCalls, `{"tracks":{"items":[{
		"id":"4uLU6hMCjMI75M1A2tKUQC",
		"name":"Rainy Days",
		"preview_url":"https://p.scdn.co/mp3-preview/abc",
		"artists":[{"name":"Sun Kil Moon"},{"name":"Mark Kozelek"}],
		"album":{"name":"Ghosts of the Great Highway"}
	}]}}`)
	a := newTestSpotify(t, srv)

	track, err := a.LookupTrack(context.Background(), "Rainy Days", "Sun Kil Moon")
	require.NoError(t, err)
	assert.Equal(t, "Rainy Days", track.Title)
	assert.Equal(t, "Sun Kil Moon, Mark Kozelek", track.Artist)
	assert.Equal(t, "Ghosts of the Great Highway", track.Album)
	assert.Equal(t, "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", track.URL)
	assert.True(t, a.IsAuthenticated())

	url, err := a.PreviewURL(context.Background(), "Rainy Days", "Sun Kil Moon")
	require.NoError(t, err)
	assert.Equal(t, "https://p.scdn.co/mp3-preview/abc", url)
	assert.Equal(t, int32(1), tokenCalls.Load(), "the app token is reused")
}

func TestSpotifyLookupTrackNotFound(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := spotifyServer(t, &tokenCalls, `{"tracks":{"items":[]}}`)
	a := newTestSpotify(t, srv)

	_, err := a.LookupTrack(context.Background(), "Rainy Days", "Sun Kil Moon")
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestSpotifyAuthenticateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	a := newTestSpotify(t, srv)

	err := a.Authenticate(context.Background())
	assert.ErrorContains(t, err, "authentication failed")
	assert.False(t, a.IsAuthenticated())
}

func TestSpotifyQuery(t *testing.T) {
	assert.Equal(t, `track:"Rainy Days"`, spotifyQuery("Rainy Days", playlist.UnknownArtist))
	assert.Equal(t, `track:"A" artist:"B"`, spotifyQuery("A", "B"))
}

func TestYouTubeLookupTrack(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		assert.True(t, strings.HasSuffix(r.URL.Path, "/search"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#channel"},"snippet":{"title":"skip me"}},
			{"id":{"kind":"youtube#video","videoId":"dQw4w9WgXcQ"},
			 "snippet":{"title":"Rainy Days &amp; Nights","channelTitle":"Sun Kil Moon - Topic"}}
		]}`))
	}))
	defer srv.Close()

	a, err := NewYouTubeAdapter("key-123")
	require.NoError(t, err)
	a.endpoint = srv.URL + "/"

	track, err := a.LookupTrack(context.Background(), "Rainy Days", "Sun Kil Moon")
	require.NoError(t, err)
	assert.Equal(t, "Rainy Days & Nights", track.Title)
	assert.Equal(t, "Sun Kil Moon", track.Artist)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", track.URL)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"key-123"}, q["key"])
	assert.Equal(t, []string{"Rainy Days Sun Kil Moon"}, q["q"])
	assert.Equal(t, []string{"1"}, q["maxResults"])
}

func TestYouTubeSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quota"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	a, err := NewYouTubeAdapter("key")
	require.NoError(t, err)
	a.endpoint = srv.URL + "/"

	_, err = a.SearchTracks(context.Background(), "x", 5)
	assert.ErrorContains(t, err, "error searching for videos")
}
