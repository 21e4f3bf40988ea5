// Package tui implements the interactive resume picker: a project list, a
// per-project session list, and an optional transcript preview pane. The
// picker works entirely from the checkpoint store; it never stats or resolves
// a project's recorded path beyond marking stale entries in the listing.
package tui

import (
	"charm.land/lipgloss/v2"
)

// Styles holds the computed lipgloss styles for the picker.
type Styles struct {
	Title      lipgloss.Style
	Frame      lipgloss.Style
	StatusBar  lipgloss.Style
	StaleBadge lipgloss.Style
	Dimmed     lipgloss.Style

	PreviewBorder lipgloss.Style
	PreviewTitle  lipgloss.Style
}

// DefaultStyles returns the picker styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1),
		Frame: lipgloss.NewStyle().Padding(1, 2),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		StaleBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		Dimmed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		PreviewBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		PreviewTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
	}
}
