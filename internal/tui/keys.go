package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/trusteehq/trustee/internal/i18n"
)

// keyMap defines the picker key bindings.
type keyMap struct {
	Select  key.Binding
	Back    key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Preview key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", i18n.T("tui.help.select", "select")),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", i18n.T("tui.help.back", "back")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", i18n.T("tui.help.quit", "quit")),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", i18n.T("tui.help.refresh", "refresh")),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview"),
		),
	}
}
