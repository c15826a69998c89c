package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/debounce"
	"github.com/pranshuj73/gifzoo/gallery"
	"github.com/pranshuj73/gifzoo/hasura"
)

// browserFocus is the part of the browser receiving keys
type browserFocus int

const (
	focusList browserFocus = iota
	focusSearch
)

// lines used by everything except the list rows
const browserChrome = 8

// Browser is the infinite-scroll GIF list with category buttons and a
// debounced search box.
type Browser struct {
	cfg           *config.Config
	styles        Styles
	pager         *gallery.Pager
	debouncer     *debounce.Debouncer
	categories    []string
	input         textinput.Model
	focus         browserFocus
	cursor        int
	offset        int
	width         int
	height        int
	spinner       spinner.Model
	help          help.Model
	keys          browserKeyMap
	universalKeys UniversalKeys
}

type browserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding
	Category key.Binding
	Next     key.Binding
	Search   key.Binding
	Retry    key.Binding
}

// DefaultBrowserKeyMap returns the default keybindings
func DefaultBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", " "),
			key.WithHelp("pgdn", "page down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open gif"),
		),
		Category: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "category"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next category"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
	}
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Category, k.Search}
}

func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Open, k.Category, k.Next, k.Search, k.Retry},
	}
}

// searchTickMsg fires once the debounce delay for a keystroke has passed
type searchTickMsg struct {
	ticket debounce.Ticket
}

// pageLoadedMsg carries the result of one LoadNextPage call
type pageLoadedMsg struct {
	outcome gallery.Outcome
	err     error
}

// GifSelectedMsg asks the app to open a GIF in the external viewer
type GifSelectedMsg struct {
	Gif hasura.Gif
}

// CategoryChangedMsg reports a newly committed category
type CategoryChangedMsg struct {
	Category string
}

// NewBrowser creates a browser showing initial, or the configured default
// category when initial is empty.
func NewBrowser(cfg *config.Config, fetcher gallery.Fetcher, initial string) *Browser {
	if initial == "" {
		initial = cfg.Browse.DefaultCategory
	}
	initial = gallery.NormalizeCategory(initial)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	ti := textinput.New()
	ti.Prompt = "search: "
	ti.Placeholder = fmt.Sprintf("animal (min %d letters)", debounce.MinLength)
	ti.CharLimit = 32
	ti.SetValue(initial)

	b := &Browser{
		cfg:           cfg,
		styles:        DefaultStyles(),
		pager:         gallery.NewPager(fetcher, cfg.Browse.PageSize),
		debouncer:     debounce.New(time.Duration(cfg.Browse.DebounceMillis)*time.Millisecond, initial),
		categories:    config.DefaultCategories,
		input:         ti,
		width:         80,
		height:        24,
		spinner:       s,
		help:          help.New(),
		keys:          DefaultBrowserKeyMap(),
		universalKeys: DefaultUniversalKeys(),
	}
	b.help.ShowAll = false
	return b
}

// Init commits the initial category and fetches its first page
func (m *Browser) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.applyCategory(m.debouncer.Committed()))
}

// Category returns the category in effect
func (m *Browser) Category() string {
	return m.pager.Category()
}

// Update handles messages
func (m *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - len(m.input.Prompt) - 4
		m.ensureVisible()
		return m, m.loadIfSentinelVisible()

	case searchTickMsg:
		value, ok := m.debouncer.Expire(msg.ticket)
		if !ok {
			return m, nil
		}
		return m, m.applyCategory(value)

	case pageLoadedMsg:
		if msg.outcome == gallery.Appended {
			// A tall window may still show the end of the list
			return m, m.loadIfSentinelVisible()
		}
		return m, nil

	case tea.KeyMsg:
		if m.focus == focusSearch {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *Browser) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.universalKeys.Back), msg.Type == tea.KeyEnter:
		m.focus = focusList
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.cycleCategory(1)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	value := m.input.Value()
	if value == before {
		return m, cmd
	}

	ticket := m.debouncer.Input(value)
	tick := tea.Tick(m.debouncer.Delay(), func(time.Time) tea.Msg {
		return searchTickMsg{ticket: ticket}
	})
	return m, tea.Batch(cmd, tick)
}

func (m *Browser) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.pager.Len()

	switch {
	case key.Matches(msg, m.universalKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.universalKeys.Back):
		return m, back

	case key.Matches(msg, m.universalKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.PageUp):
		m.cursor = max(m.cursor-m.listHeight(), 0)

	case key.Matches(msg, m.keys.PageDown):
		m.cursor = max(min(m.cursor+m.listHeight(), n-1), 0)

	case key.Matches(msg, m.keys.Open):
		items := m.pager.Items()
		if m.cursor < len(items) {
			gif := items[m.cursor]
			return m, func() tea.Msg { return GifSelectedMsg{Gif: gif} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Category):
		i := int(msg.Runes[0] - '1')
		if i < len(m.categories) {
			return m, m.selectCategory(i)
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.cycleCategory(1)

	case msg.Type == tea.KeyShiftTab:
		return m, m.cycleCategory(-1)

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Retry):
		if m.pager.Err() != nil {
			return m, m.loadNextPage()
		}
		return m, nil

	default:
		return m, nil
	}

	m.ensureVisible()
	return m, m.loadIfSentinelVisible()
}

// selectCategory commits categories[i] immediately, skipping the debounce
func (m *Browser) selectCategory(i int) tea.Cmd {
	value := m.debouncer.Select(m.categories[i])
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.applyCategory(value)
}

// cycleCategory moves to the next or previous predefined category
func (m *Browser) cycleCategory(step int) tea.Cmd {
	current := m.activeCategory()
	next := 0
	if current >= 0 {
		next = (current + step + len(m.categories)) % len(m.categories)
	}
	return m.selectCategory(next)
}

// activeCategory returns the index of the committed category among the
// predefined ones, or -1
func (m *Browser) activeCategory() int {
	current := m.pager.Category()
	for i, c := range m.categories {
		if c == current {
			return i
		}
	}
	return -1
}

// applyCategory resets the list when value differs from the category in
// effect and starts loading its first page.
func (m *Browser) applyCategory(value string) tea.Cmd {
	if !m.pager.SetCategory(value) {
		return nil
	}
	m.cursor = 0
	m.offset = 0

	category := m.pager.Category()
	changed := func() tea.Msg { return CategoryChangedMsg{Category: category} }
	return tea.Batch(m.loadNextPage(), changed)
}

// loadNextPage returns a command fetching the next page, or nil when the
// pager would skip it anyway.
func (m *Browser) loadNextPage() tea.Cmd {
	if m.pager.InFlight() || m.pager.Exhausted() {
		return nil
	}
	pager := m.pager
	return func() tea.Msg {
		outcome, err := pager.LoadNextPage(context.Background())
		return pageLoadedMsg{outcome: outcome, err: err}
	}
}

// loadIfSentinelVisible fetches more when the row after the last GIF is
// inside the visible window.
func (m *Browser) loadIfSentinelVisible() tea.Cmd {
	if !m.sentinelVisible() {
		return nil
	}
	return m.loadNextPage()
}

// listHeight is the number of rows available for GIFs and the sentinel
func (m *Browser) listHeight() int {
	h := m.height - browserChrome
	if m.help.ShowAll {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	return h
}

// ensureVisible scrolls the window so the cursor is shown. On the last
// item the sentinel row is scrolled in as well.
func (m *Browser) ensureVisible() {
	n := m.pager.Len()
	rows := m.listHeight()

	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if n > 0 && m.cursor == n-1 && m.offset+rows < n+1 {
		m.offset = n + 1 - rows
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Browser) sentinelVisible() bool {
	n := m.pager.Len()
	return m.offset <= n && n < m.offset+m.listHeight()
}

// View renders the browser
func (m *Browser) View() string {
	s := m.styles.Title.Render("Browse GIFs") + "\n\n"

	active := m.activeCategory()
	var tabs []string
	for i, c := range m.categories {
		label := fmt.Sprintf("%d %s", i+1, titleCase(c))
		if i == active {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(label))
		}
	}
	s += lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n"
	s += m.input.View() + "\n\n"

	items := m.pager.Items()
	rows := m.listHeight()
	end := min(m.offset+rows, len(items)+1)
	for i := m.offset; i < end; i++ {
		if i == len(items) {
			s += m.sentinelView(len(items)) + "\n"
			continue
		}
		line := fitLine(fmt.Sprintf("%3d. %s", i+1, items[i].URL), m.width)
		if i == m.cursor && m.focus == focusList {
			s += m.styles.SelectedItem.Render(line) + "\n"
		} else {
			s += m.styles.MenuItem.Render(line) + "\n"
		}
	}

	var helpKeys ExtendedKeyMap
	if m.focus == focusSearch {
		done := key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "done"))
		helpKeys = ExtendedKeyMap{
			Universal: m.universalKeys,
			ViewKeys:  []key.Binding{done, m.keys.Next},
			ViewFull:  [][]key.Binding{{done, m.keys.Next}},
		}
	} else {
		helpKeys = ExtendedKeyMap{
			Universal: m.universalKeys,
			ViewKeys:  m.keys.ShortHelp(),
			ViewFull:  m.keys.FullHelp(),
		}
	}
	s += "\n" + m.help.View(helpKeys)
	return s
}

// sentinelView renders the row after the last GIF
func (m *Browser) sentinelView(n int) string {
	switch {
	case m.pager.InFlight():
		label := "Loading more GIFs..."
		if n == 0 {
			label = "Loading GIFs..."
		}
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Info.Render(label))
	case m.pager.Err() != nil:
		return m.styles.Error.Render("Error fetching GIFs. Press r to retry.")
	case m.pager.Exhausted() && n == 0:
		return m.styles.Info.Render(fmt.Sprintf("No GIFs found for %q", m.pager.Category()))
	case m.pager.Exhausted():
		return m.styles.Help.Render("No more GIFs")
	}
	return m.styles.Help.Render("...")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fitLine shortens line to fit a list of the given width, cutting by
// display cells
func fitLine(line string, width int) string {
	if width <= 8 || lipgloss.Width(line) <= width-6 {
		return line
	}
	return ansi.Truncate(line, width-6, "...")
}
