package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header      lipgloss.Style
	fileRow     lipgloss.Style
	selected    lipgloss.Style
	errText     lipgloss.Style
	added       lipgloss.Style
	removed     lipgloss.Style
	hunk        lipgloss.Style
	note        lipgloss.Style
	boundary    lipgloss.Style
	separator   lipgloss.Style
	status      lipgloss.Style
	hintKey     lipgloss.Style
	hintDesc    lipgloss.Style
	bannerInfo  lipgloss.Style
	bannerErr   lipgloss.Style
	placeholder lipgloss.Style
}

func newStyles(p palette) styles {
	return styles{
		header:      lipgloss.NewStyle().Bold(true).Background(p.HeaderBg),
		fileRow:     lipgloss.NewStyle(),
		selected:    lipgloss.NewStyle().Bold(true).Background(p.SelectedBg),
		errText:     lipgloss.NewStyle().Foreground(p.Error),
		added:       lipgloss.NewStyle().Foreground(p.Added),
		removed:     lipgloss.NewStyle().Foreground(p.Removed),
		hunk:        lipgloss.NewStyle().Foreground(p.Hunk),
		note:        lipgloss.NewStyle().Faint(true).Italic(true),
		boundary:    lipgloss.NewStyle().Foreground(p.Muted),
		separator:   lipgloss.NewStyle().Foreground(p.Muted),
		status:      lipgloss.NewStyle().Foreground(p.Muted),
		hintKey:     lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		hintDesc:    lipgloss.NewStyle().Faint(true),
		bannerInfo:  lipgloss.NewStyle().Foreground(p.Accent),
		bannerErr:   lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		placeholder: lipgloss.NewStyle().Faint(true),
	}
}
