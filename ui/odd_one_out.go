package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pranshuj73/gifzoo/game"
	"github.com/pranshuj73/gifzoo/logger"
)

// OddOneOut renders a game.Session: ten GIFs, one from another category
type OddOneOut struct {
	session       *game.Session
	styles        Styles
	cursor        int
	spinner       spinner.Model
	help          help.Model
	keys          oddOneOutKeyMap
	universalKeys UniversalKeys
}

type oddOneOutKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Open   key.Binding
	Retry  key.Binding
}

// DefaultOddOneOutKeyMap returns the default keybindings
func DefaultOddOneOutKeyMap() oddOneOutKeyMap {
	return oddOneOutKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "left", "h"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "right", "l"),
			key.WithHelp("↓/j", "down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open gif"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
	}
}

// roundDoneMsg is sent when a round finished loading, successfully or not
type roundDoneMsg struct {
	err error
}

// ScoreChangedMsg reports the score after each submission
type ScoreChangedMsg struct {
	Correct int
	Played  int
}

// NewOddOneOut creates the game view for session
func NewOddOneOut(session *game.Session) *OddOneOut {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	m := &OddOneOut{
		session:       session,
		cursor:        -1,
		styles:        DefaultStyles(),
		spinner:       s,
		help:          help.New(),
		keys:          DefaultOddOneOutKeyMap(),
		universalKeys: DefaultUniversalKeys(),
	}
	m.help.ShowAll = false
	return m
}

// Init starts the first round
func (m *OddOneOut) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run(m.session.StartRound))
}

// run performs a round transition off the UI goroutine
func (m *OddOneOut) run(transition func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return roundDoneMsg{err: transition(context.Background())}
	}
}

// Update handles messages
func (m *OddOneOut) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case roundDoneMsg:
		if msg.err != nil && !isStaleTransition(msg.err) {
			logger.Warn("Odd-one-out round failed", map[string]interface{}{
				"error": msg.err.Error(),
			})
		}
		m.cursor = -1

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *OddOneOut) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()

	// Any key closes the result notice and deals the next round
	if snap.State == game.Submitted {
		if key.Matches(msg, m.universalKeys.Back) {
			return m, back
		}
		return m, m.run(m.session.Dismiss)
	}

	switch {
	case key.Matches(msg, m.universalKeys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.universalKeys.Back):
		return m, back

	case key.Matches(msg, m.universalKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Retry):
		if snap.State == game.Failed {
			return m, m.run(m.session.Retry)
		}

	case snap.State != game.Ready:
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(snap.Round.Items) - 1
		}
		_ = m.session.Select(m.cursor)

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(snap.Round.Items)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
		_ = m.session.Select(m.cursor)

	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9':
		// 1-9 pick items one to nine, 0 picks the tenth
		i := int(msg.Runes[0]-'0') - 1
		if i < 0 {
			i = 9
		}
		if m.session.Select(i) == nil {
			m.cursor = i
		}

	case key.Matches(msg, m.keys.Open):
		if m.cursor < 0 {
			return m, nil
		}
		gif := snap.Round.Items[m.cursor]
		return m, func() tea.Msg { return GifSelectedMsg{Gif: gif} }

	case key.Matches(msg, m.keys.Submit):
		if _, err := m.session.Submit(); err != nil {
			return m, nil
		}
		after := m.session.Snapshot()
		return m, func() tea.Msg {
			return ScoreChangedMsg{Correct: after.Correct, Played: after.Played}
		}
	}

	return m, nil
}

// isStaleTransition reports errors from keys pressed while another
// transition was already running
func isStaleTransition(err error) bool {
	return errors.Is(err, game.ErrRoundInFlight) ||
		errors.Is(err, game.ErrNotSubmitted) ||
		errors.Is(err, game.ErrNotFailed)
}

// View renders the game
func (m *OddOneOut) View() string {
	snap := m.session.Snapshot()

	s := m.styles.Title.Render("Odd One Out") + "  "
	s += m.styles.Help.Render(fmt.Sprintf("score %d/%d", snap.Correct, snap.Played)) + "\n\n"

	switch snap.State {
	case game.Loading:
		s += fmt.Sprintf("%s %s\n", m.spinner.View(), m.styles.Info.Render("Fetching GIFs..."))
		return s + "\n" + m.help.View(m.helpKeys(snap.State))

	case game.Failed:
		s += m.styles.Error.Render(snap.ErrMessage) + "\n\n"
		s += m.styles.Help.Render("press r to try again") + "\n"
		return s + "\n" + m.help.View(m.helpKeys(snap.State))
	}

	s += m.styles.Prompt.Render("Which GIF is not like the others?") + "\n\n"
	for i, gif := range snap.Round.Items {
		line := fmt.Sprintf("%2d. %s", i+1, gif.URL)
		switch {
		case snap.State == game.Submitted && i == snap.Round.OddIndex:
			s += m.styles.Success.Render("  "+line+"  ← "+snap.Round.Minority) + "\n"
		case i == snap.Selected:
			s += m.styles.SelectedItem.Render(line) + "\n"
		default:
			s += m.styles.MenuItem.Render(line) + "\n"
		}
	}

	if snap.Notice != nil {
		box := m.styles.ErrorBox
		if snap.Notice.Kind == game.Success {
			box = m.styles.SuccessBox
		}
		s += "\n" + box.Render(snap.Notice.Message) + "\n"
		s += m.styles.Help.Render("press any key for the next round") + "\n"
		return s
	}

	return s + "\n" + m.help.View(m.helpKeys(snap.State))
}

func (m *OddOneOut) helpKeys(state game.State) ExtendedKeyMap {
	var view []key.Binding
	switch state {
	case game.Ready:
		view = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Open, m.keys.Submit}
	case game.Failed:
		view = []key.Binding{m.keys.Retry}
	}
	return ExtendedKeyMap{
		Universal: m.universalKeys,
		ViewKeys:  view,
		ViewFull:  [][]key.Binding{view},
	}
}
