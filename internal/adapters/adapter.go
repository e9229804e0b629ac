package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"omnisearch/internal/config"
	"omnisearch/internal/playlist"
)

// ErrTrackNotFound is returned when a platform has no match for a song
var ErrTrackNotFound = errors.New("track not found")

// ApiAdapter defines the interface for adapting different music platform APIs
// to a common interface that can be used by the application
type ApiAdapter interface {
	// Authentication methods
	Authenticate(ctx context.Context) error
	IsAuthenticated() bool
	PlatformName() string

	// Search functionality
	SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error)
	LookupTrack(ctx context.Context, title, artist string) (playlist.Track, error)
}

// PlatformType represents the supported music platforms
type PlatformType string

const (
	SpotifyPlatform PlatformType = "spotify"
	YoutubePlatform PlatformType = "youtube"
)

// NewApiAdapter is a factory function that creates a new adapter for the specified platform
func NewApiAdapter(platform string, cfg *config.Config) (ApiAdapter, error) {
	p := PlatformType(platform)
	switch p {
	case SpotifyPlatform:
		return NewSpotifyAdapter(cfg.SpotifyID, cfg.SpotifySecret)
	case YoutubePlatform:
		return NewYouTubeAdapter(cfg.YouTubeAPIKey)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func firstMatch(tracks []playlist.Track, title string) (playlist.Track, error) {
	if len(tracks) == 0 {
		return playlist.Track{}, fmt.Errorf("%w: %s", ErrTrackNotFound, title)
	}
	return tracks[0], nil
}
