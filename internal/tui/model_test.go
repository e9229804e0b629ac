package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/internal/api"
	"omnisearch/internal/boot"
	"omnisearch/internal/porter"
	"omnisearch/internal/preview"
	"omnisearch/internal/search"
)

type fakeSearcher struct {
	resp *api.SearchResponse
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) (*api.SearchResponse, error) {
	return f.resp, f.err
}

type fakeHealth struct{ err error }

func (f fakeHealth) Health(ctx context.Context) error { return f.err }

type fakeLookup struct{}

func (fakeLookup) LookupPreview(ctx context.Context, term string) (*api.PreviewResponse, error) {
	return &api.PreviewResponse{Results: []api.PreviewItem{{PreviewURL: "https://audio/" + term}}}, nil
}

type fakeOutput struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (f *fakeOutput) Play(src string, volume float64, onEnded func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, src)
	return nil
}

func (f *fakeOutput) Pause() error  { return nil }
func (f *fakeOutput) Resume() error { return nil }

func (f *fakeOutput) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

type harness struct {
	searcher  *fakeSearcher
	monitor   *boot.Monitor
	outputs   []*fakeOutput
	clipboard []string
}

func rainyResponse() *api.SearchResponse {
	return &api.SearchResponse{
		Results: []api.SearchResult{
			{ID: "a1", Score: 0.82, Metadata: api.TrackMetadata{Title: "Rainy Days", Artist: "Sun Kil Moon"}},
		},
		LatencyMs:    123.4,
		ModelVersion: "v3",
	}
}

func newHarness(t *testing.T, online bool) (*harness, Model) {
	t.Helper()
	h := &harness{searcher: &fakeSearcher{resp: rainyResponse()}}

	var health fakeHealth
	if !online {
		health.err = errors.New("connection refused")
	}
	h.monitor = boot.NewMonitor(health, boot.Config{}, nil)
	h.monitor.Check(context.Background())

	m := New(context.Background(), Deps{
		Controller: search.NewController(h.searcher, h.monitor, search.DefaultLimit, nil),
		Monitor:    h.monitor,
		Resolver:   preview.NewResolver(fakeLookup{}, nil),
		NewOutput: func() preview.Output {
			out := &fakeOutput{}
			h.outputs = append(h.outputs, out)
			return out
		},
		Porter: porter.NewPorter(nil),
		Clipboard: func(s string) error {
			h.clipboard = append(h.clipboard, s)
			return nil
		},
	})
	return h, m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// runSearch presses enter and feeds the search outcome back in
func runSearch(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)

	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(searchDoneMsg); ok {
			m, _ = update(t, m, done)
			return m
		}
	}
	t.Fatal("no search was issued")
	return m
}

func TestSubmitBlockedWhileOffline(t *testing.T) {
	h, m := newHarness(t, false)
	assert.Equal(t, boot.Booting, h.monitor.Status())

	m = typeText(t, m, "rainy day melancholy")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.deps.Controller.Loading())
	assert.Contains(t, m.View(), "waking up")
}

func TestBlankQueryIsIgnored(t *testing.T) {
	_, m := newHarness(t, true)
	m = typeText(t, m, "   ")
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestSearchRendersResults(t *testing.T) {
	_, m := newHarness(t, true)
	m = typeText(t, m, "rainy day melancholy")
	m = runSearch(t, m)

	require.Len(t, m.tracks, 1)
	assert.Equal(t, focusList, m.focus)

	view := m.View()
	assert.Contains(t, view, "Rainy Days")
	assert.Contains(t, view, "Sun Kil Moon")
	assert.Contains(t, view, "82%")
	assert.Contains(t, view, "123.4ms")
	assert.Contains(t, view, "v3")
	assert.Contains(t, view, "SYSTEM ONLINE")
}

func TestSearchFailureKeepsResults(t *testing.T) {
	h, m := newHarness(t, true)
	m = typeText(t, m, "rainy")
	m = runSearch(t, m)

	h.searcher.err = errors.New("502")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = runSearch(t, m)

	assert.Len(t, m.tracks, 1)
	assert.Contains(t, m.View(), search.ConnectionFailed)
}

func TestEmptyResults(t *testing.T) {
	h, m := newHarness(t, true)
	h.searcher.resp = &api.SearchResponse{Results: []api.SearchResult{}}
	m = typeText(t, m, "nothing like this")
	m = runSearch(t, m)

	assert.Equal(t, focusInput, m.focus)
	assert.Contains(t, m.View(), "No match found, try again!")
}

func TestEmptyStateFollowsInput(t *testing.T) {
	h, m := newHarness(t, true)
	h.searcher.resp = &api.SearchResponse{Results: []api.SearchResult{}}
	m = typeText(t, m, "nothing")
	m = runSearch(t, m)
	require.Contains(t, m.View(), "No match found, try again!")

	for range len("nothing") {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.deps.Controller.Query())
	assert.NotContains(t, m.View(), "No match found")
}

func TestTogglePlaysPreview(t *testing.T) {
	h, m := newHarness(t, true)
	m = typeText(t, m, "rainy")
	m = runSearch(t, m)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	require.NotNil(t, cmd)
	assert.Equal(t, preview.Loading, m.players[0].State())

	msg := cmd()
	require.IsType(t, resolvedMsg{}, msg)
	assert.NoError(t, msg.(resolvedMsg).err)
	assert.Equal(t, preview.Playing, m.players[0].State())
	assert.Equal(t, []string{"https://audio/Rainy Days Sun Kil Moon"}, h.outputs[0].played)

	// pausing needs no lookup
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.Nil(t, cmd)
	assert.Equal(t, preview.Idle, m.players[0].State())
}

func TestCopyPreviewURL(t *testing.T) {
	h, m := newHarness(t, true)
	m = typeText(t, m, "rainy")
	m = runSearch(t, m)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	assert.Equal(t, noticeMsg("Copied Rainy Days - Sun Kil Moon"), cmd())
	assert.Equal(t, []string{"Rainy Days - Sun Kil Moon"}, h.clipboard)
}

func TestOpenWithoutPlatform(t *testing.T) {
	_, m := newHarness(t, true)
	m = typeText(t, m, "rainy")
	m = runSearch(t, m)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	require.NotNil(t, cmd)
	assert.Equal(t, noticeMsg("No streaming platform configured"), cmd())
}

func TestNavigationReturnsToInput(t *testing.T) {
	_, m := newHarness(t, true)
	m = typeText(t, m, "rainy")
	m = runSearch(t, m)
	require.Equal(t, focusList, m.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, focusInput, m.focus)
}

func TestQuitTearsDown(t *testing.T) {
	h, m := newHarness(t, true)
	m = typeText(t, m, "rainy")
	m = runSearch(t, m)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, h.outputs[0].stops)
	assert.False(t, h.monitor.IsRunning())
}

func TestBootUpdates(t *testing.T) {
	_, m := newHarness(t, false)

	m, cmd := update(t, m, bootMsg{Status: boot.Booting, Progress: 42})
	assert.NotNil(t, cmd, "keeps listening until online")
	assert.Contains(t, m.View(), "42%")

	m, cmd = update(t, m, bootMsg{Status: boot.Online, Progress: 100})
	assert.Nil(t, cmd)
	assert.NotContains(t, m.View(), "waking up")
}
