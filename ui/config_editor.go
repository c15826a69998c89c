package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/logger"
)

// ConfigEditorState represents the config editor state
type ConfigEditorState int

const (
	ConfigMenuSelection ConfigEditorState = iota
	ConfigTextEdit
	ConfigSelectEdit
	ConfigSaving
	ConfigSaved
)

// ConfigEditor represents the config editor model
type ConfigEditor struct {
	cfg           *config.Config
	styles        Styles
	state         ConfigEditorState
	cursor        int
	configItems   []ConfigItem
	err           error
	editErr       error
	textInput     textinput.Model
	selectList    list.Model
	selectOptions []string
	selectCursor  int
	help          help.Model
	universalKeys UniversalKeys
}

// ConfigItem represents a configuration item
type ConfigItem struct {
	Name        string
	DisplayName string
	Value       interface{}
	Type        ConfigItemType
	Category    string
	Options     []string // For select type
}

// ConfigItemType represents the type of config item
type ConfigItemType int

const (
	ConfigTypeText ConfigItemType = iota
	ConfigTypeNumber
	ConfigTypeToggle
	ConfigTypeSelect
)

// NewConfigEditor creates a new config editor
func NewConfigEditor(cfg *config.Config) *ConfigEditor {
	items := []ConfigItem{
		{"endpoint", "Hasura Endpoint", cfg.Upstream.Endpoint, ConfigTypeText, "Upstream", nil},
		{"admin_secret", "Admin Secret", cfg.Upstream.AdminSecret, ConfigTypeText, "Upstream", nil},
		{"port", "Proxy Port", cfg.Server.Port, ConfigTypeNumber, "Server", nil},
		{"default_category", "Default Category", cfg.Browse.DefaultCategory, ConfigTypeSelect, "Browse", config.DefaultCategories},
		{"page_size", "Page Size", cfg.Browse.PageSize, ConfigTypeNumber, "Browse", nil},
		{"debounce_ms", "Search Delay (ms)", cfg.Browse.DebounceMillis, ConfigTypeNumber, "Browse", nil},
		{"player", "Player", cfg.Player.Player, ConfigTypeSelect, "Player", []string{"mpv", "vlc", "iina"}},
		{"player_arguments", "Player Arguments", cfg.Player.PlayerArguments, ConfigTypeText, "Player", nil},
		{"discord_presence", "Discord Presence", cfg.Discord.DiscordPresence, ConfigTypeToggle, "Discord", nil},
	}

	ti := textinput.New()
	ti.Placeholder = "Enter value..."
	ti.CharLimit = 0

	ce := &ConfigEditor{
		cfg:           cfg,
		styles:        DefaultStyles(),
		state:         ConfigMenuSelection,
		configItems:   items,
		textInput:     ti,
		help:          help.New(),
		universalKeys: DefaultUniversalKeys(),
	}
	ce.help.ShowAll = false
	return ce
}

// Init initializes the config editor
func (m *ConfigEditor) Init() tea.Cmd {
	return nil
}

// ConfigSavedMsg is sent when config is saved
type ConfigSavedMsg struct {
	Err error
}

func (m *ConfigEditor) saveConfig() tea.Msg {
	err := config.Save(m.cfg)
	if err != nil {
		logger.Error("Failed to save config", err, nil)
	} else {
		logger.Info("Config saved", map[string]interface{}{"path": m.cfg.Path()})
	}
	return ConfigSavedMsg{Err: err}
}

// Update handles messages
func (m *ConfigEditor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == ConfigMenuSelection {
			switch {
			case key.Matches(msg, m.universalKeys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case key.Matches(msg, m.universalKeys.Quit), key.Matches(msg, m.universalKeys.Back):
				return m, back
			}
		}

		switch m.state {
		case ConfigMenuSelection:
			switch msg.String() {
			case "backspace":
				return m, back

			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}

			case "down", "j":
				if m.cursor < len(m.configItems)-1 {
					m.cursor++
				}

			case "enter":
				m.editErr = nil
				item := m.configItems[m.cursor]
				switch item.Type {
				case ConfigTypeText, ConfigTypeNumber:
					m.textInput.SetValue(fmt.Sprintf("%v", item.Value))
					m.textInput.CursorEnd()
					m.state = ConfigTextEdit
					return m, m.textInput.Focus()

				case ConfigTypeToggle:
					current := item.Value.(bool)
					if err := m.applyConfigChange(item.Name, !current); err == nil {
						m.configItems[m.cursor].Value = !current
					}

				case ConfigTypeSelect:
					m.selectOptions = item.Options
					m.selectCursor = 0
					for i, opt := range item.Options {
						if opt == fmt.Sprintf("%v", item.Value) {
							m.selectCursor = i
							break
						}
					}
					m.state = ConfigSelectEdit
					m.buildSelectList()
				}

			case "s":
				m.state = ConfigSaving
				return m, m.saveConfig
			}

		case ConfigTextEdit:
			switch msg.String() {
			case "esc":
				m.state = ConfigMenuSelection
				m.textInput.Blur()
				return m, nil

			case "enter":
				item := &m.configItems[m.cursor]
				value := m.textInput.Value()
				if err := m.applyConfigChange(item.Name, value); err != nil {
					// Stay in the editor until the value parses
					m.editErr = err
					return m, nil
				}
				if item.Type == ConfigTypeNumber {
					item.Value, _ = strconv.Atoi(value)
				} else {
					item.Value = value
				}
				m.editErr = nil
				m.state = ConfigMenuSelection
				m.textInput.Blur()
				return m, nil
			}

			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd

		case ConfigSelectEdit:
			if m.selectList.FilterState() == list.Filtering {
				var cmd tea.Cmd
				m.selectList, cmd = m.selectList.Update(msg)
				m.syncSelectCursor()
				return m, cmd
			}

			switch msg.String() {
			case "esc", "q", "backspace":
				m.state = ConfigMenuSelection
				return m, nil

			case "up", "k":
				if m.selectCursor > 0 {
					m.selectCursor--
					m.selectList.Select(m.selectCursor)
				}
				return m, nil

			case "down", "j":
				if m.selectCursor < len(m.selectOptions)-1 {
					m.selectCursor++
					m.selectList.Select(m.selectCursor)
				}
				return m, nil

			case "enter":
				item := &m.configItems[m.cursor]
				selected := m.selectOptions[m.selectCursor]
				if err := m.applyConfigChange(item.Name, selected); err == nil {
					item.Value = selected
				}
				m.state = ConfigMenuSelection
				return m, nil
			}

			var cmd tea.Cmd
			m.selectList, cmd = m.selectList.Update(msg)
			m.syncSelectCursor()
			return m, cmd

		case ConfigSaved:
			return m, back
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if m.state == ConfigSelectEdit {
			m.buildSelectList()
		}

	case ConfigSavedMsg:
		m.state = ConfigSaved
		m.err = msg.Err
	}

	return m, nil
}

// syncSelectCursor follows the list's highlighted item
func (m *ConfigEditor) syncSelectCursor() {
	selected := m.selectList.SelectedItem()
	if selected == nil {
		return
	}
	item := selected.(selectItem)
	for i, opt := range m.selectOptions {
		if opt == item.title {
			m.selectCursor = i
			return
		}
	}
}

// buildSelectList builds the select list for dropdown
func (m *ConfigEditor) buildSelectList() {
	items := make([]list.Item, len(m.selectOptions))
	for i, opt := range m.selectOptions {
		items[i] = selectItem{title: opt}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#4A90E2")).
		Bold(true).
		Padding(0, 1)

	listHeight := 10
	if len(m.selectOptions)+4 < listHeight {
		listHeight = len(m.selectOptions) + 4
	}

	l := list.New(items, delegate, 40, listHeight)
	l.Title = "Select Option"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowHelp(false)
	l.Select(m.selectCursor)
	m.selectList = l
}

// selectItem represents an item in the select list
type selectItem struct {
	title string
}

func (i selectItem) Title() string       { return i.title }
func (i selectItem) Description() string { return "" }
func (i selectItem) FilterValue() string { return i.title }

// applyConfigChange writes one edited value into the config
func (m *ConfigEditor) applyConfigChange(name string, value interface{}) error {
	str := fmt.Sprintf("%v", value)

	number := func() (int, error) {
		n, err := strconv.Atoi(str)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s must be a positive number", name)
		}
		return n, nil
	}

	switch name {
	case "endpoint":
		if str == "" {
			return fmt.Errorf("endpoint cannot be empty")
		}
		m.cfg.Upstream.Endpoint = str
	case "admin_secret":
		m.cfg.Upstream.AdminSecret = str
	case "port":
		n, err := number()
		if err != nil {
			return err
		}
		m.cfg.Server.Port = n
	case "default_category":
		m.cfg.Browse.DefaultCategory = str
	case "page_size":
		n, err := number()
		if err != nil {
			return err
		}
		m.cfg.Browse.PageSize = n
	case "debounce_ms":
		n, err := number()
		if err != nil {
			return err
		}
		m.cfg.Browse.DebounceMillis = n
	case "player":
		m.cfg.Player.Player = str
	case "player_arguments":
		m.cfg.Player.PlayerArguments = str
	case "discord_presence":
		if b, ok := value.(bool); ok {
			m.cfg.Discord.DiscordPresence = b
		} else {
			m.cfg.Discord.DiscordPresence = str == "true"
		}
	default:
		return fmt.Errorf("unknown setting %q", name)
	}
	return nil
}

// View renders the config editor
func (m *ConfigEditor) View() string {
	switch m.state {
	case ConfigMenuSelection:
		s := m.styles.Title.Render("Settings") + "\n\n"

		for i, item := range m.configItems {
			if i == 0 || m.configItems[i-1].Category != item.Category {
				s += m.styles.Heading.Render(item.Category) + "\n"
			}

			var display string
			switch {
			case item.Type == ConfigTypeToggle:
				status := "OFF"
				if item.Value.(bool) {
					status = "ON"
				}
				display = fmt.Sprintf("%s: [%s]", item.DisplayName, status)
			case item.Name == "admin_secret" && item.Value != "":
				display = fmt.Sprintf("%s: ********", item.DisplayName)
			default:
				display = fmt.Sprintf("%s: %v", item.DisplayName, item.Value)
			}

			if m.cursor == i {
				s += m.styles.SelectedItem.Render("> "+display) + "\n"
			} else {
				s += m.styles.MenuItem.Render("  "+display) + "\n"
			}
		}

		keys := configMenuKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
			Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		}
		s += "\n" + m.help.View(ExtendedKeyMap{
			Universal: m.universalKeys,
			ViewKeys:  keys.ShortHelp(),
			ViewFull:  keys.FullHelp(),
		})
		return s

	case ConfigTextEdit:
		item := m.configItems[m.cursor]
		s := m.styles.Title.Render("Settings") + "\n\n"
		s += m.styles.Info.Render(fmt.Sprintf("Editing: %s", item.DisplayName)) + "\n\n"
		s += m.styles.Prompt.Render("Value:") + "\n"
		s += m.textInput.View() + "\n\n"
		if m.editErr != nil {
			s += m.styles.Error.Render(m.editErr.Error()) + "\n\n"
		}
		s += m.styles.Help.Render("enter save • esc cancel")
		return s

	case ConfigSelectEdit:
		item := m.configItems[m.cursor]
		s := m.styles.Title.Render("Settings") + "\n\n"
		s += m.styles.Info.Render(fmt.Sprintf("Select: %s", item.DisplayName)) + "\n\n"
		s += m.selectList.View() + "\n"
		s += m.styles.Help.Render("↑/k up • ↓/j down • enter select • esc cancel")
		return s

	case ConfigSaving:
		return m.styles.Info.Render("Saving settings...") + "\n"

	case ConfigSaved:
		if m.err != nil {
			s := m.styles.Error.Render(fmt.Sprintf("Error saving settings: %v", m.err)) + "\n\n"
			return s + m.styles.Help.Render("press any key to continue")
		}
		s := m.styles.Success.Render("Settings saved to "+m.cfg.Path()) + "\n\n"
		return s + m.styles.Help.Render("press any key to continue")
	}

	return ""
}

type configMenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Save   key.Binding
}

func (k configMenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Save}
}

func (k configMenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Select, k.Save}}
}
