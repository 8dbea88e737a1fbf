package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	active lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	on     lipgloss.Style
	off    lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Text),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		header: lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		on:     lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		off:    lipgloss.NewStyle().Foreground(t.Muted).Bold(true),
		warn:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
	}
}

// gauge draws |v|/limit as a bar; it turns to the warning style at the limit.
func (s styles) gauge(v, limit float64, width int) string {
	ratio := 0.0
	if limit > 0 {
		ratio = v / limit
	}
	if ratio < 0 {
		ratio = -ratio
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if ratio >= 1 {
		return s.warn.Render(bar)
	}
	return s.value.Render(bar)
}
