package feedback

import "github.com/charmbracelet/lipgloss"

type styles struct {
	say     lipgloss.Style
	notice  lipgloss.Style
	heard   lipgloss.Style
	warning lipgloss.Style
}

func newStyles() styles {
	return styles{
		say:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		notice:  lipgloss.NewStyle().Faint(true),
		heard:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}
