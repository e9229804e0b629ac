package porter

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"omnisearch/internal/adapters"
	"omnisearch/internal/config"
	"omnisearch/internal/playlist"
	"omnisearch/internal/utils"
)

// ErrNoPlatform is returned by link operations when no adapter is configured
var ErrNoPlatform = errors.New("no streaming platform configured")

// Porter hands search results off to the outside world: CSV files and
// streaming platforms reached through an adapter.
type Porter struct {
	adapter adapters.ApiAdapter
	open    func(url string) error
}

// NewPorter creates a porter. adapter may be nil, in which case only CSV
// export is available.
func NewPorter(adapter adapters.ApiAdapter) *Porter {
	return &Porter{
		adapter: adapter,
		open:    utils.OpenBrowser,
	}
}

// NewPorterWithCredentials creates a Porter for the platform named by cfg.OpenOn
func NewPorterWithCredentials(cfg *config.Config) (*Porter, error) {
	adapter, err := adapters.NewApiAdapter(cfg.OpenOn, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter for platform %s: %w", cfg.OpenOn, err)
	}
	return NewPorter(adapter), nil
}

// Platform returns the adapter's platform name, or "" without one
func (s *Porter) Platform() string {
	if s.adapter == nil {
		return ""
	}
	return s.adapter.PlatformName()
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// ExportName builds a file name for the results of query
func ExportName(query string, now time.Time) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(query), "-"), "-")
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	if slug == "" {
		slug = "results"
	}
	return fmt.Sprintf("omnisearch-%s-%s.csv", slug, now.Format("20060102-150405"))
}

// ExportPlaylistToCSV writes every track of p to filepath and returns the
// path actually written.
func (s *Porter) ExportPlaylistToCSV(p playlist.Playlist, filepath string) (string, error) {
	if len(p.Tracks) == 0 {
		return "", fmt.Errorf("nothing to export for %q", p.Query)
	}
	if filepath == "" {
		filepath = ExportName(p.Query, time.Now())
	}
	// Ensure filepath has .csv extension
	if !strings.HasSuffix(filepath, ".csv") {
		filepath += ".csv"
	}

	headers := utils.StructToCsvHeader(reflect.TypeOf(playlist.Track{}))
	if err := utils.WriteToCsvFile(filepath, headers, p.Tracks); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}
	return filepath, nil
}

// TrackLink returns the platform URL for a track, looking it up when the
// track does not carry one yet.
func (s *Porter) TrackLink(ctx context.Context, t playlist.Track) (string, error) {
	if t.URL != "" {
		return t.URL, nil
	}
	if s.adapter == nil {
		return "", ErrNoPlatform
	}
	if t.RawTitle == "" {
		return "", fmt.Errorf("%w: result has no title", adapters.ErrTrackNotFound)
	}
	match, err := s.adapter.LookupTrack(ctx, t.RawTitle, t.RawArtist)
	if err != nil {
		return "", fmt.Errorf("failed to find %q on %s: %w", t.Title, s.adapter.PlatformName(), err)
	}
	return match.URL, nil
}

// OpenTrack opens the track on the configured platform in the browser
func (s *Porter) OpenTrack(ctx context.Context, t playlist.Track) (string, error) {
	link, err := s.TrackLink(ctx, t)
	if err != nil {
		return "", err
	}
	if err := s.open(link); err != nil {
		return link, err
	}
	return link, nil
}
