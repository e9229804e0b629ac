package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"omnisearch/internal/boot"
	"omnisearch/internal/playlist"
	"omnisearch/internal/porter"
	"omnisearch/internal/preview"
	"omnisearch/internal/search"
)

// Deps are the services the UI drives. Monitor must already be started.
type Deps struct {
	Controller *search.Controller
	Monitor    *boot.Monitor
	Resolver   *preview.Resolver
	NewOutput  func() preview.Output
	Porter     *porter.Porter
	Volume     float64
	Logger     *log.Logger

	// Clipboard defaults to the system clipboard
	Clipboard func(string) error
}

type focus int

const (
	focusInput focus = iota
	focusList
)

type (
	bootMsg          boot.Snapshot
	searchDoneMsg    search.Outcome
	playerChangedMsg struct{}
	resolvedMsg      struct {
		title string
		err   error
	}
	noticeMsg string
)

// Model is the bubbletea model of the search screen
type Model struct {
	ctx    context.Context
	deps   Deps
	keys   keyMap
	logger *log.Logger

	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	focus    focus

	boot    boot.Snapshot
	tracks  []playlist.Track
	players []*preview.Player
	cursor  int
	notice  string
	width   int

	// player callbacks land here and are turned into messages
	events chan tea.Msg
}

// New creates the model. ctx bounds every request the UI starts.
func New(ctx context.Context, deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Search by lyric, mood, or meaning..."
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorGreen)

	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.Volume <= 0 {
		deps.Volume = preview.DefaultVolume
	}

	return Model{
		ctx:      ctx,
		deps:     deps,
		keys:     newKeyMap(),
		logger:   logger,
		input:    ti,
		spinner:  s,
		progress: progress.New(progress.WithSolidFill(string(colorGreen)), progress.WithWidth(40)),
		help:     help.New(),
		boot:     deps.Monitor.Snapshot(),
		events:   make(chan tea.Msg, 1),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForBoot(m.deps.Monitor.Updates()),
		waitForEvent(m.events),
	)
}

func waitForBoot(updates <-chan boot.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return bootMsg(<-updates)
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// notify coalesces player callbacks; one pending refresh is enough
func (m Model) notify() {
	select {
	case m.events <- playerChangedMsg{}:
	default:
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(10, min(msg.Width-12, 70))
		m.progress.Width = max(10, min(msg.Width-8, 60))
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootMsg:
		m.boot = boot.Snapshot(msg)
		if m.boot.Status == boot.Online {
			return m, nil
		}
		return m, waitForBoot(m.deps.Monitor.Updates())

	case searchDoneMsg:
		return m.finishSearch(search.Outcome(msg)), nil

	case playerChangedMsg:
		return m, waitForEvent(m.events)

	case resolvedMsg:
		if msg.err != nil {
			m.logger.Printf("Preview for %q unavailable: %v", msg.title, msg.err)
		}
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil
	}

	if m.focus == focusInput {
		return m.updateInput(msg)
	}
	return m, nil
}

// updateInput forwards msg to the query box and keeps the controller's
// query in step with what is on screen
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.deps.Controller.SetQuery(m.input.Value())
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	if key.Matches(msg, m.keys.Quit) {
		m.teardown()
		return m, tea.Quit
	}

	if m.focus == focusInput {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case msg.Type == tea.KeyDown || msg.Type == tea.KeyTab:
			return m.focusList(), nil
		}
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		m.focus = focusInput
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor == 0 {
			m.focus = focusInput
			return m, m.input.Focus()
		}
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tracks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle()
	case key.Matches(msg, m.keys.Open):
		return m, m.open()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copy()
	case key.Matches(msg, m.keys.Export):
		return m, m.export()
	}
	return m, nil
}

func (m Model) focusList() Model {
	if len(m.tracks) == 0 {
		return m
	}
	m.focus = focusList
	m.input.Blur()
	return m
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	ctrl := m.deps.Controller
	ctrl.SetQuery(m.input.Value())
	req, ok := ctrl.Begin()
	if !ok {
		return m, nil
	}

	ctx := m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return searchDoneMsg(req.Run(ctx))
	})
}

func (m Model) finishSearch(o search.Outcome) Model {
	m.deps.Controller.Finish(o)
	if o.Err != nil {
		return m
	}

	for _, p := range m.players {
		p.Close()
	}

	m.tracks = playlist.FromResults(m.deps.Controller.Results())
	m.players = make([]*preview.Player, len(m.tracks))
	for i, t := range m.tracks {
		m.players[i] = preview.NewPlayer(t.RawTitle, t.RawArtist, m.deps.Resolver, m.deps.NewOutput(),
			preview.WithVolume(m.deps.Volume),
			preview.WithPlayerLogger(m.logger),
			preview.WithOnChange(m.notify),
		)
	}
	m.cursor = 0
	if len(m.tracks) > 0 {
		return m.focusList()
	}
	return m
}

func (m Model) selected() (playlist.Track, *preview.Player, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tracks) {
		return playlist.Track{}, nil, false
	}
	return m.tracks[m.cursor], m.players[m.cursor], true
}

func (m Model) toggle() tea.Cmd {
	t, p, ok := m.selected()
	if !ok {
		return nil
	}
	res := p.Toggle(m.ctx)
	if res == nil {
		return nil
	}
	return func() tea.Msg {
		return resolvedMsg{title: t.Title, err: res.Run()}
	}
}

func (m Model) open() tea.Cmd {
	t, _, ok := m.selected()
	if !ok {
		return nil
	}
	pt, ctx := m.deps.Porter, m.ctx
	if pt == nil || pt.Platform() == "" {
		return notice("No streaming platform configured")
	}
	return func() tea.Msg {
		link, err := pt.OpenTrack(ctx, t)
		if err != nil {
			m.logger.Printf("Open failed for %q: %v", t.Title, err)
			return noticeMsg(fmt.Sprintf("Could not open %s on %s", t.Title, pt.Platform()))
		}
		return noticeMsg("Opened " + link)
	}
}

func (m Model) copy() tea.Cmd {
	t, p, ok := m.selected()
	if !ok {
		return nil
	}
	text := p.Source()
	if text == "" {
		text = fmt.Sprintf("%s - %s", t.Title, t.Artist)
	}
	if err := m.deps.Clipboard(text); err != nil {
		m.logger.Printf("Clipboard write failed: %v", err)
		return notice("Clipboard unavailable")
	}
	return notice("Copied " + text)
}

func (m Model) export() tea.Cmd {
	if len(m.tracks) == 0 {
		return nil
	}
	pl := playlist.Playlist{
		Query:  strings.TrimSpace(m.deps.Controller.Query()),
		Tracks: make([]playlist.Track, len(m.tracks)),
	}
	copy(pl.Tracks, m.tracks)
	for i, p := range m.players {
		pl.Tracks[i].PreviewURL = p.Source()
	}
	if stats, ok := m.deps.Controller.Stats(); ok {
		pl.LatencyMs = stats.LatencyMs
		pl.ModelVersion = stats.ModelVersion
	}

	pt := m.deps.Porter
	if pt == nil {
		pt = porter.NewPorter(nil)
	}
	return func() tea.Msg {
		path, err := pt.ExportPlaylistToCSV(pl, "")
		if err != nil {
			m.logger.Printf("Export failed: %v", err)
			return noticeMsg("Export failed")
		}
		return noticeMsg(fmt.Sprintf("Exported %d results to %s", len(pl.Tracks), path))
	}
}

func notice(text string) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(text)
	}
}

// teardown releases the tickers and every player
func (m Model) teardown() {
	m.deps.Monitor.Stop()
	for _, p := range m.players {
		p.Close()
	}
}
