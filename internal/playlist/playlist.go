package playlist

import (
	"fmt"
	"math"
	"strconv"

	"omnisearch/internal/api"
)

const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// MatchTier buckets a similarity score for colouring
type MatchTier int

const (
	TierLow MatchTier = iota
	TierMid
	TierHigh
)

// Track is a single search result as it is rendered and exported
type Track struct {
	Position    int     `csv:"position"`
	Key         string  `csv:"-"`
	Title       string  `csv:"title"`
	Artist      string  `csv:"artist"`
	Album       string  `csv:"album"`
	ReleaseYear string  `csv:"release_year"`
	Score       float64 `csv:"score"`
	Match       string  `csv:"match"`
	PreviewURL  string  `csv:"preview_url"`
	URL         string  `csv:"url"`

	// raw metadata, empty when the service omitted it
	RawTitle  string `csv:"-"`
	RawArtist string `csv:"-"`
}

// Playlist is the ordered outcome of one search
type Playlist struct {
	Query        string
	Tracks       []Track
	LatencyMs    float64
	ModelVersion string
}

// FromResults converts service results into tracks, keeping response order
func FromResults(results []api.SearchResult) []Track {
	tracks := make([]Track, len(results))
	for i, r := range results {
		tracks[i] = NewTrack(i, r)
	}
	return tracks
}

// NewTrack builds the display row for the result at position index
func NewTrack(index int, r api.SearchResult) Track {
	key := string(r.ID)
	if key == "" {
		key = strconv.Itoa(index)
	}

	title := r.Metadata.Title
	if title == "" {
		title = UnknownTitle
	}
	artist := r.Metadata.Artist
	if artist == "" {
		artist = UnknownArtist
	}

	return Track{
		Position:    index + 1,
		Key:         key,
		Title:       title,
		Artist:      artist,
		Album:       r.Metadata.Album,
		ReleaseYear: string(r.Metadata.ReleaseYear),
		Score:       r.Score,
		Match:       MatchPercent(r.Score),
		RawTitle:    r.Metadata.Title,
		RawArtist:   r.Metadata.Artist,
	}
}

// MatchPercent renders a score as a whole percentage, e.g. 0.82 -> "82%"
func MatchPercent(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// Tier classifies the score: above 0.6 is high, above 0.4 is mid
func (t Track) Tier() MatchTier {
	switch {
	case t.Score > 0.6:
		return TierHigh
	case t.Score > 0.4:
		return TierMid
	default:
		return TierLow
	}
}

// FormatLatency renders the stats footer latency, e.g. "123.4ms"
func FormatLatency(ms float64) string {
	return fmt.Sprintf("%.1fms", ms)
}
