package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// UniversalKeys defines keybindings available in all views
type UniversalKeys struct {
	Help key.Binding
	Back key.Binding
	Quit key.Binding
}

// DefaultUniversalKeys returns the default universal keybindings
func DefaultUniversalKeys() UniversalKeys {
	return UniversalKeys{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ExtendedKeyMap wraps a view-specific keymap with universal keys
type ExtendedKeyMap struct {
	Universal UniversalKeys
	ViewKeys  []key.Binding   // short help
	ViewFull  [][]key.Binding // full help
}

func (k ExtendedKeyMap) ShortHelp() []key.Binding {
	keys := append([]key.Binding(nil), k.ViewKeys...)
	return append(keys, k.Universal.Help, k.Universal.Quit)
}

func (k ExtendedKeyMap) FullHelp() [][]key.Binding {
	// Universal keys go in the last column
	full := make([][]key.Binding, len(k.ViewFull))
	copy(full, k.ViewFull)
	full = append(full, []key.Binding{k.Universal.Help, k.Universal.Back, k.Universal.Quit})
	return full
}

// BackMsg is sent when the user wants to go back
type BackMsg struct{}

func back() tea.Msg { return BackMsg{} }
