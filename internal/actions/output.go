package actions

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"omnisearch/internal/playlist"
	"omnisearch/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1DB954")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	tierColors = map[playlist.MatchTier]lipgloss.Color{
		playlist.TierHigh: lipgloss.Color("#1DB954"),
		playlist.TierMid:  lipgloss.Color("#FACC15"),
		playlist.TierLow:  lipgloss.Color("245"),
	}
)

// printPlaylist writes the results as a styled table on a terminal, or as
// tab separated values for pipes.
func printPlaylist(w io.Writer, pl playlist.Playlist, styled bool) error {
	if !styled {
		headers := utils.StructToCsvHeader(reflect.TypeOf(playlist.Track{}))
		return utils.WriteCsv(w, '\t', headers, pl.Tracks)
	}

	withPreview := false
	for _, t := range pl.Tracks {
		if t.PreviewURL != "" {
			withPreview = true
			break
		}
	}

	headers := []string{"#", "Title", "Artist", "Album", "Match"}
	if withPreview {
		headers = append(headers, "Preview")
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(pl.Tracks) {
				return cellStyle.Foreground(tierColors[pl.Tracks[row].Tier()])
			}
			return cellStyle
		})

	for _, t := range pl.Tracks {
		album := t.Album
		switch {
		case album == "":
			album = t.ReleaseYear
		case t.ReleaseYear != "":
			album = fmt.Sprintf("%s (%s)", album, t.ReleaseYear)
		}
		row := []string{strconv.Itoa(t.Position), t.Title, t.Artist, album, t.Match}
		if withPreview {
			row = append(row, t.PreviewURL)
		}
		tbl.Row(row...)
	}

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return err
	}
	if pl.ModelVersion != "" || pl.LatencyMs > 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%s · %s", playlist.FormatLatency(pl.LatencyMs), pl.ModelVersion)))
		return err
	}
	return nil
}
