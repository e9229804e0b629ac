package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SearchRequest is the body of POST /api/v1/search
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// TrackMetadata describes the song behind a search hit. Every field may be
// missing from the response.
type TrackMetadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	ReleaseYear Year   `json:"release_year,omitempty"`
}

// Year is a release year. The service declares it as a string but older
// indexes store it as a number, so both decode.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*y = Year(s)
	return nil
}

// ResultID identifies a hit. It is opaque, so any JSON scalar is kept as
// its text form.
type ResultID string

func (id *ResultID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*id = ResultID(data)
		return nil
	}
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*id = ResultID(s)
	return nil
}

// scalarString decodes a JSON string or number as text. null is "".
func scalarString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// SearchResult is a single ranked hit
type SearchResult struct {
	ID       ResultID      `json:"id,omitempty"`
	Score    float64       `json:"score"`
	Metadata TrackMetadata `json:"metadata"`
}

// SearchResponse is the body returned by a successful search
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	LatencyMs    float64        `json:"latency_ms"`
	ModelVersion string         `json:"model_version"`
}

// PreviewItem is one entry of the preview proxy response
type PreviewItem struct {
	PreviewURL string `json:"previewUrl,omitempty"`
}

// PreviewResponse is the body returned by the preview proxy
type PreviewResponse struct {
	Results []PreviewItem `json:"results"`
}
