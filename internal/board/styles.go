package board

import "github.com/charmbracelet/lipgloss"

var (
	colorBorder      = lipgloss.Color("#3b4261")
	colorBorderFocus = lipgloss.Color("#7aa2f7")
	colorDim         = lipgloss.Color("#565f89")
	colorSelection   = lipgloss.Color("#33467c")
	colorError       = lipgloss.Color("#f7768e")
	colorSuccess     = lipgloss.Color("#9ece6a")
)

type styles struct {
	Title       lipgloss.Style
	Column      lipgloss.Style
	ColumnFocus lipgloss.Style
	Header      lipgloss.Style
	Card        lipgloss.Style
	CardActive  lipgloss.Style
	Meta        lipgloss.Style
	Error       lipgloss.Style
	Status      lipgloss.Style
}

func newStyles() styles {
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return styles{
		Title:       lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Column:      column,
		ColumnFocus: column.BorderForeground(colorBorderFocus),
		Header:      lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Card:        lipgloss.NewStyle(),
		CardActive:  lipgloss.NewStyle().Background(colorSelection).Bold(true),
		Meta:        lipgloss.NewStyle().Foreground(colorDim),
		Error:       lipgloss.NewStyle().Foreground(colorError),
		Status:      lipgloss.NewStyle().Foreground(colorSuccess),
	}
}
