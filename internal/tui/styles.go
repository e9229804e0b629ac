package tui

import (
	"github.com/charmbracelet/lipgloss"

	"omnisearch/internal/playlist"
)

var (
	colorGreen  = lipgloss.Color("#1DB954")
	colorYellow = lipgloss.Color("#FACC15")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("241")
	colorRed    = lipgloss.Color("#F87171")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorDim)
	inputStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	inputFocusedStyle = inputStyle.BorderForeground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorRed).
			Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorGray).Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Foreground(colorDim)
	noticeStyle = lipgloss.NewStyle().Foreground(colorYellow)
	onlineStyle = lipgloss.NewStyle().Foreground(colorGreen)

	rowStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedRowStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(colorGreen).
				PaddingLeft(1)
	trackTitleStyle  = lipgloss.NewStyle().Bold(true)
	trackArtistStyle = lipgloss.NewStyle().Foreground(colorGray)
	matchLabelStyle  = lipgloss.NewStyle().Foreground(colorDim)

	controlStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	unavailableStyle = lipgloss.NewStyle().Foreground(colorDim)
)

var matchStyles = map[playlist.MatchTier]lipgloss.Style{
	playlist.TierHigh: lipgloss.NewStyle().Bold(true).Foreground(colorGreen),
	playlist.TierMid:  lipgloss.NewStyle().Bold(true).Foreground(colorYellow),
	playlist.TierLow:  lipgloss.NewStyle().Bold(true).Foreground(colorGray),
}
