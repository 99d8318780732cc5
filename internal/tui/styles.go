package tui

import "github.com/charmbracelet/lipgloss"

const (
	orange     = lipgloss.Color("#FF7E1B")
	paleOrange = lipgloss.Color("#FFEDE0")
	darkBlue   = lipgloss.Color("#1D2026")
	grayBlue   = lipgloss.Color("#69707D")
)

type Styles struct {
	Header   lipgloss.Style
	Company  lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Price    lipgloss.Style
	Discount lipgloss.Style
	Badge    lipgloss.Style
	Button   lipgloss.Style
	Banner   lipgloss.Style
	Panel    lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(darkBlue),
		Company:  lipgloss.NewStyle().Bold(true).Foreground(orange),
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(grayBlue),
		Price:    lipgloss.NewStyle().Bold(true),
		Discount: lipgloss.NewStyle().Foreground(orange).Background(paleOrange).Padding(0, 1),
		Badge:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(orange).Padding(0, 1),
		Button:   lipgloss.NewStyle().Foreground(darkBlue).Background(orange).Padding(0, 2),
		Banner:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(orange).Padding(0, 2),
		Panel:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		Help:     lipgloss.NewStyle().Foreground(grayBlue).Faint(true),
	}
}
