package tui

import (
	"github.com/Sternrassler/character-gallery/pkg/rickmorty"
	"github.com/charmbracelet/lipgloss"
)

// CardWidth is the outer width of one character card, borders included.
const CardWidth = 34

// Status dot colours keyed by Status.Indicator().
var indicatorColors = map[string]lipgloss.AdaptiveColor{
	"green": {Light: "2", Dark: "10"},
	"red":   {Light: "1", Dark: "9"},
	"gray":  {Light: "240", Dark: "245"},
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"}).
			Padding(0, 1).
			Width(CardWidth - 2)

	pageStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.AdaptiveColor{Light: "252", Dark: "238"})

	currentPageStyle = pageStyle.
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	searchStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(0, 1)
)

// StatusDot returns a coloured dot for the character status.
func StatusDot(s rickmorty.Status) string {
	color, ok := indicatorColors[s.Indicator()]
	if !ok {
		color = indicatorColors["gray"]
	}
	return lipgloss.NewStyle().Foreground(color).Render("●")
}

// Columns returns how many cards fit next to each other in totalWidth.
func Columns(totalWidth int) int {
	if totalWidth < CardWidth {
		return 1
	}
	return totalWidth / CardWidth
}
