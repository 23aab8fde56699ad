package tui

import (
	"github.com/charmbracelet/lipgloss"

	"courtiq-landing/internal/theme"
)

type styles struct {
	toggle    lipgloss.Style
	logo      lipgloss.Style
	headline  lipgloss.Style
	subline   lipgloss.Style
	input     lipgloss.Style
	inputHint lipgloss.Style
	button    lipgloss.Style
	disabled  lipgloss.Style
	success   lipgloss.Style
	danger    lipgloss.Style
	help      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, p theme.Palette) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	color := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }

	button := r.NewStyle().
		Foreground(color(p.AccentText)).
		Background(color(p.Accent)).
		Padding(0, 2).
		Bold(true)

	return styles{
		toggle: r.NewStyle().
			Foreground(color(p.Icon)).
			Background(color(p.Control)).
			Padding(0, 1),
		logo: r.NewStyle().
			Foreground(color(p.Foreground)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color(p.Accent)).
			Padding(0, 2),
		headline: r.NewStyle().Foreground(color(p.Foreground)).Bold(true),
		subline:  r.NewStyle().Foreground(color(p.Muted)),
		input: r.NewStyle().
			Foreground(color(p.Foreground)).
			Background(color(p.Surface)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color(p.Border)).
			Padding(0, 1).
			Width(inputWidth),
		inputHint: r.NewStyle().Foreground(color(p.Muted)).Background(color(p.Surface)),
		button:    button,
		disabled:  button.Faint(true),
		success:   r.NewStyle().Foreground(color(p.Success)),
		danger:    r.NewStyle().Foreground(color(p.Danger)),
		help:      r.NewStyle().Foreground(color(p.Muted)).Faint(true),
	}
}
