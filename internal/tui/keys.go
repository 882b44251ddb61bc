package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the gallery key bindings. Printable keys go to the search box,
// so every binding uses a modifier or a named key.
type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Jump    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Jump, k.Refresh, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Jump},
		{k.Refresh, k.Quit},
	}
}

// DefaultKeyMap returns the gallery key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Prev: key.NewBinding(
			key.WithKeys("pgup", "ctrl+p"),
			key.WithHelp("pgup/ctrl+p", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+n"),
			key.WithHelp("pgdn/ctrl+n", "next"),
		),
		Jump: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5"),
			key.WithHelp("alt+1…5", "jump to page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// jumpIndex maps alt+1…alt+5 to a 0-based position in the page window.
func jumpIndex(keyName string) (int, bool) {
	if len(keyName) != len("alt+1") || keyName[:4] != "alt+" {
		return 0, false
	}
	d := keyName[4]
	if d < '1' || d > '9' {
		return 0, false
	}
	return int(d - '1'), true
}
