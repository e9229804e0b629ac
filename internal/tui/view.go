package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"omnisearch/internal/boot"
	"omnisearch/internal/playlist"
	"omnisearch/internal/preview"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ Omni Search"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Semantic song search"))
	b.WriteString("\n\n")

	box := inputStyle
	if m.focus == focusInput {
		box = inputFocusedStyle
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n")

	if stats, ok := m.deps.Controller.Stats(); ok {
		b.WriteString(statsStyle.Render(fmt.Sprintf("  ⚡ %s  ◆ %s", playlist.FormatLatency(stats.LatencyMs), stats.ModelVersion)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.boot.Status != boot.Online {
		b.WriteString(m.bootView())
		b.WriteString("\n\n")
	}

	switch {
	case m.deps.Controller.Loading():
		b.WriteString(fmt.Sprintf("%s Thinking...\n\n", m.spinner.View()))
	case m.deps.Controller.Error() != "":
		b.WriteString(errorStyle.Render(m.deps.Controller.Error()))
		b.WriteString("\n\n")
	}

	if m.deps.Controller.Empty() {
		b.WriteString(emptyStyle.Render("No match found, try again!"))
		b.WriteString("\n")
	}

	for i, t := range m.tracks {
		b.WriteString(m.rowView(i, t))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.boot.Status == boot.Online {
		b.WriteString(onlineStyle.Render("● SYSTEM ONLINE"))
		b.WriteString("\n")
	}
	if m.focus == focusInput {
		b.WriteString(m.help.View(inputKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(listKeys{m.keys}))
	}
	return b.String()
}

func (m Model) bootView() string {
	label := "Connecting to the search engine..."
	if m.boot.Status == boot.Booting {
		label = "Search engine is waking up, this can take a minute..."
	}
	return fmt.Sprintf("%s %s\n%s", m.spinner.View(), label,
		m.progress.ViewAs(float64(m.boot.Progress)/100))
}

func (m Model) rowView(i int, t playlist.Track) string {
	control := controlView(m.players[i])

	info := trackTitleStyle.Render(t.Title) + "\n" + trackArtistStyle.Render(t.Artist)
	if album := albumLine(t); album != "" {
		info += trackArtistStyle.Render(" · " + album)
	}

	match := lipgloss.JoinVertical(lipgloss.Right,
		matchLabelStyle.Render("MATCH"),
		matchStyles[t.Tier()].Render(t.Match),
	)

	row := lipgloss.JoinHorizontal(lipgloss.Center, control, "  ", info, "  ", match)
	if m.focus == focusList && i == m.cursor {
		return selectedRowStyle.Render(row)
	}
	return rowStyle.Render(row)
}

func albumLine(t playlist.Track) string {
	switch {
	case t.Album != "" && t.ReleaseYear != "":
		return fmt.Sprintf("%s (%s)", t.Album, t.ReleaseYear)
	case t.Album != "":
		return t.Album
	default:
		return t.ReleaseYear
	}
}

func controlView(p *preview.Player) string {
	switch p.State() {
	case preview.Loading:
		return controlStyle.Render("…")
	case preview.Playing:
		return controlStyle.Render("⏸")
	case preview.Error:
		return unavailableStyle.Render("✕")
	default:
		return controlStyle.Render("▶")
	}
}
