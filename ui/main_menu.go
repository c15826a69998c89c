package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pranshuj73/gifzoo/config"
)

// Menu entries
const (
	MenuBrowse   = "Browse GIFs"
	MenuOddOne   = "Odd One Out"
	MenuSettings = "Settings"
	MenuQuit     = "Quit"
)

// MainMenu represents the main menu model
type MainMenu struct {
	cfg           *config.Config
	styles        Styles
	cursor        int
	options       []string
	selected      string
	err           error
	help          help.Model
	keys          mainMenuKeyMap
	universalKeys UniversalKeys
}

// mainMenuKeyMap defines the keybindings for the main menu
type mainMenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultMainMenuKeyMap returns the default keybindings
func DefaultMainMenuKeyMap() mainMenuKeyMap {
	return mainMenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
	}
}

// NewMainMenu creates a new main menu
func NewMainMenu(cfg *config.Config) *MainMenu {
	mm := &MainMenu{
		cfg:           cfg,
		styles:        DefaultStyles(),
		options:       []string{MenuBrowse, MenuOddOne, MenuSettings, MenuQuit},
		help:          help.New(),
		keys:          DefaultMainMenuKeyMap(),
		universalKeys: DefaultUniversalKeys(),
	}
	mm.help.ShowAll = false
	return mm
}

// Init initializes the main menu
func (m *MainMenu) Init() tea.Cmd {
	return nil
}

// MenuSelectionMsg is sent when a menu item is selected
type MenuSelectionMsg struct {
	Selection string
}

// Update handles messages
func (m *MainMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.universalKeys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.universalKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = len(m.options) - 1
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.options)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}

		case key.Matches(msg, m.keys.Select):
			m.selected = m.options[m.cursor]
			if m.selected == MenuQuit {
				return m, tea.Quit
			}
			selection := m.selected
			return m, func() tea.Msg {
				return MenuSelectionMsg{Selection: selection}
			}
		}
	}

	return m, nil
}

// View renders the main menu
func (m *MainMenu) View() string {
	s := GetBannerGradient() + "\n"
	s += m.styles.Subtitle.Render("gifzoo: animal GIFs in your terminal") + "\n\n"

	for i, option := range m.options {
		if m.cursor == i {
			s += m.styles.SelectedItem.Render("> "+option) + "\n"
		} else {
			s += m.styles.MenuItem.Render("  "+option) + "\n"
		}
	}

	if m.err != nil {
		s += "\n" + m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	helpKeys := ExtendedKeyMap{
		Universal: m.universalKeys,
		ViewKeys:  []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select},
		ViewFull:  [][]key.Binding{{m.keys.Up, m.keys.Down, m.keys.Select}},
	}
	s += "\n" + m.help.View(helpKeys)
	return s
}

// GetSelected returns the selected option
func (m *MainMenu) GetSelected() string {
	return m.selected
}

// SetError shows err under the menu until cleared with nil
func (m *MainMenu) SetError(err error) {
	m.err = err
}
