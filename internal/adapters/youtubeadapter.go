package adapters

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"omnisearch/internal/playlist"
)

// YouTubeAdapter adapts the YouTube Data API to our common adapter interface.
// Searches are public, so an API key is all it needs.
type YouTubeAdapter struct {
	BaseAdapter
	mu      sync.Mutex
	service *youtube.Service
	apiKey  string

	// overridable in tests
	endpoint string
}

// NewYouTubeAdapter creates a new YouTubeAdapter
func NewYouTubeAdapter(apiKey string) (*YouTubeAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube API key must be provided via YOUTUBE_API_KEY")
	}

	return &YouTubeAdapter{
		BaseAdapter: NewBaseAdapter("YouTube"),
		apiKey:      apiKey,
	}, nil
}

// Authenticate builds the API service. Calling it again is a no-op.
func (a *YouTubeAdapter) Authenticate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.IsAuthenticated() {
		return nil
	}

	// a custom client bypasses option.WithAPIKey, so the key goes on the transport
	client := newHTTPClient()
	client.Transport = &transport.APIKey{Key: a.apiKey, Transport: client.Transport}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("error creating YouTube client: %v", err)
	}
	a.service = service
	a.SetAuthenticated(true)
	return nil
}

// SearchTracks searches for music videos on YouTube
func (a *YouTubeAdapter) SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error) {
	if err := a.Authenticate(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 50 {
		limit = 50 // YouTube API maximum is 50 per request
	}

	response, err := a.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoCategoryId("10").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("error searching for videos: %v", err)
	}

	var tracks []playlist.Track
	for i, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videoID := item.Id.VideoId

		tracks = append(tracks, playlist.Track{
			Position: i + 1,
			Key:      videoID,
			// snippets come back HTML escaped
			Title:  html.UnescapeString(item.Snippet.Title),
			Artist: strings.TrimSuffix(item.Snippet.ChannelTitle, " - Topic"),
			URL:    fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
		})
	}

	return tracks, nil
}

// LookupTrack returns the best YouTube match for a song
func (a *YouTubeAdapter) LookupTrack(ctx context.Context, title, artist string) (playlist.Track, error) {
	query := title
	if artist != "" && artist != playlist.UnknownArtist {
		query += " " + artist
	}
	tracks, err := a.SearchTracks(ctx, query, 1)
	if err != nil {
		return playlist.Track{}, err
	}
	return firstMatch(tracks, title)
}
