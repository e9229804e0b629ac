package adapters

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"omnisearch/internal/playlist"
)

// SpotifyAdapter adapts the Spotify Web API to our common adapter interface.
// It uses the client credentials flow, so only catalog endpoints are available.
type SpotifyAdapter struct {
	BaseAdapter  // Embed the BaseAdapter
	mu           sync.Mutex
	client       *spotify.Client
	clientID     string
	clientSecret string

	// overridable in tests
	tokenURL string
	apiURL   string
}

// NewSpotifyAdapter creates a new SpotifyAdapter
func NewSpotifyAdapter(clientID, clientSecret string) (*SpotifyAdapter, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret must be provided via SPOTIFY_ID and SPOTIFY_SECRET")
	}

	return &SpotifyAdapter{
		BaseAdapter:  NewBaseAdapter("Spotify"),
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyauth.TokenURL,
	}, nil
}

// Authenticate fetches an app token. Calling it again is a no-op.
func (a *SpotifyAdapter) Authenticate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.IsAuthenticated() {
		return nil
	}

	creds := &clientcredentials.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		TokenURL:     a.tokenURL,
	}

	// the token source refreshes long after ctx is gone, so it gets its own
	base := context.WithValue(context.Background(), oauth2.HTTPClient, newHTTPClient())
	ts := creds.TokenSource(base)
	token, err := ts.Token()
	if err != nil {
		return fmt.Errorf("authentication failed: %v", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var opts []spotify.ClientOption
	if a.apiURL != "" {
		opts = append(opts, spotify.WithBaseURL(a.apiURL))
	}
	a.client = spotify.New(oauth2.NewClient(base, oauth2.ReuseTokenSource(token, ts)), opts...)
	a.SetAuthenticated(true)
	return nil
}

// SearchTracks searches for tracks on Spotify
func (a *SpotifyAdapter) SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error) {
	if err := a.Authenticate(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 50 {
		limit = 50 // Spotify API maximum is 50 per request
	}

	results, err := a.client.Search(
		ctx,
		query,
		spotify.SearchTypeTrack,
		spotify.Limit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching tracks: %v", err)
	}
	if results.Tracks == nil {
		return nil, nil
	}

	var tracks []playlist.Track
	for i, item := range results.Tracks.Tracks {
		var artistNames []string
		for _, artist := range item.Artists {
			artistNames = append(artistNames, artist.Name)
		}

		tracks = append(tracks, playlist.Track{
			Position:   i + 1,
			Key:        string(item.ID),
			Title:      item.Name,
			Artist:     strings.Join(artistNames, ", "),
			Album:      item.Album.Name,
			PreviewURL: item.PreviewURL,
			URL:        fmt.Sprintf("https://open.spotify.com/track/%s", item.ID),
		})
	}

	return tracks, nil
}

// LookupTrack returns the best Spotify match for a song
func (a *SpotifyAdapter) LookupTrack(ctx context.Context, title, artist string) (playlist.Track, error) {
	tracks, err := a.SearchTracks(ctx, spotifyQuery(title, artist), 1)
	if err != nil {
		return playlist.Track{}, err
	}
	return firstMatch(tracks, title)
}

// PreviewURL returns Spotify's 30 second preview for a song, used as a
// fallback preview source. Many tracks have none, which yields "".
func (a *SpotifyAdapter) PreviewURL(ctx context.Context, title, artist string) (string, error) {
	track, err := a.LookupTrack(ctx, title, artist)
	if err != nil {
		return "", err
	}
	return track.PreviewURL, nil
}

func spotifyQuery(title, artist string) string {
	q := fmt.Sprintf("track:%q", title)
	if artist != "" && artist != playlist.UnknownArtist {
		q += fmt.Sprintf(" artist:%q", artist)
	}
	return q
}
