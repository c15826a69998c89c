package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/discord"
	"github.com/pranshuj73/gifzoo/game"
	"github.com/pranshuj73/gifzoo/hasura"
	"github.com/pranshuj73/gifzoo/logger"
	"github.com/pranshuj73/gifzoo/player"
	"github.com/pranshuj73/gifzoo/ui"
)

// AppState represents the current application state
type AppState int

const (
	StateMainMenu AppState = iota
	StateBrowse
	StateOddOneOut
	StateEditConfig
)

// Upstream is what the TUI needs from Hasura
type Upstream interface {
	SearchGifs(ctx context.Context, category string, limit, offset int) ([]hasura.Gif, error)
	SampleGifs(ctx context.Context, category string, limit int) ([]hasura.Gif, error)
}

// App represents the main application model
type App struct {
	cfg          *config.Config
	client       Upstream
	discordMgr   *discord.PresenceManager
	state        AppState
	currentModel tea.Model
	mainMenu     *ui.MainMenu // kept to preserve the cursor
	category     string       // category for the next browser, "" for the default
	err          error
	status       string // result of the last viewer launch
	width        int
	height       int
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger.Info("Application started", map[string]interface{}{
		"version": version,
	})

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if discordOn {
		cfg.Discord.DiscordPresence = true
	}

	client := hasura.NewClient(cfg.Upstream.Endpoint, cfg.Upstream.AdminSecret)

	discordMgr := discord.NewPresenceManager(cfg.Discord.DiscordPresence)
	if cfg.Discord.DiscordPresence {
		reportPresence("connect", discordMgr.Connect())
	}

	app := newApp(cfg, client, discordMgr)
	app.category = category
	switch {
	case startGame:
		app.openGame()
	case category != "":
		app.openBrowser()
	}

	logger.Info("Starting TUI application", map[string]interface{}{
		"state": app.state,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, runErr := p.Run()

	reportPresence("clear", discordMgr.Clear())

	if runErr != nil {
		logger.Fatal("TUI application error", runErr, nil)
		return runErr
	}
	logger.Info("Application shutdown complete", nil)
	return nil
}

func newApp(cfg *config.Config, client Upstream, discordMgr *discord.PresenceManager) *App {
	mainMenu := ui.NewMainMenu(cfg)
	return &App{
		cfg:          cfg,
		client:       client,
		discordMgr:   discordMgr,
		state:        StateMainMenu,
		currentModel: mainMenu,
		mainMenu:     mainMenu,
	}
}

// viewerResultMsg reports whether the external viewer started
type viewerResultMsg struct {
	name string
	err  error
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.currentModel.Init(), tea.WindowSize())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if a.err != nil {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "esc", "enter", "backspace", "m":
				a.err = nil
				return a, a.switchTo(StateMainMenu, a.mainMenu)
			}
			return a, nil
		}
		a.status = ""

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case ui.MenuSelectionMsg:
		return a, a.handleMenuSelection(msg.Selection)

	case ui.BackMsg:
		a.category = ""
		return a, a.switchTo(StateMainMenu, a.mainMenu)

	case ui.GifSelectedMsg:
		return a, a.openViewer(msg.Gif)

	case viewerResultMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Could not open GIF: %v", msg.err)
		} else {
			a.status = fmt.Sprintf("Opened in %s", msg.name)
		}
		return a, nil

	case ui.CategoryChangedMsg:
		reportPresence("browsing", a.discordMgr.SetBrowsing(msg.Category))
		return a, nil

	case ui.ScoreChangedMsg:
		reportPresence("playing", a.discordMgr.SetPlaying(msg.Correct, msg.Played))
		return a, nil
	}

	var cmd tea.Cmd
	a.currentModel, cmd = a.currentModel.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.err != nil {
		styles := ui.DefaultStyles()
		s := ui.GetBannerGradient() + "\n\n"
		s += styles.Error.Render("⚠ Error") + "\n\n"
		s += styles.Info.Render(a.err.Error()) + "\n\n"

		if logPath := logger.GetLogFilePath(); logPath != "" {
			s += styles.Help.Render(fmt.Sprintf("Details saved to: %s", logPath)) + "\n\n"
		}

		s += styles.MenuItem.Render("  Esc/Enter/m") + " " + styles.Help.Render("→ Go back to main menu") + "\n"
		s += styles.MenuItem.Render("  q") + " " + styles.Help.Render("→ Quit") + "\n"
		return s
	}

	view := a.currentModel.View()
	if a.status != "" {
		view += "\n" + ui.DefaultStyles().Help.Render(a.status)
	}
	return view
}

func (a *App) handleMenuSelection(selection string) tea.Cmd {
	logger.Info("Menu selection", map[string]interface{}{
		"selection": selection,
	})

	switch selection {
	case ui.MenuBrowse:
		return a.openBrowser()
	case ui.MenuOddOne:
		return a.openGame()
	case ui.MenuSettings:
		return a.switchTo(StateEditConfig, ui.NewConfigEditor(a.cfg))
	}
	return nil
}

func (a *App) openBrowser() tea.Cmd {
	return a.switchTo(StateBrowse, ui.NewBrowser(a.cfg, a.client, a.category))
}

func (a *App) openGame() tea.Cmd {
	session, err := game.NewSession(a.client, a.cfg.Game.Categories, nil)
	if err != nil {
		logger.Error("Cannot start Odd One Out", err, map[string]interface{}{
			"categories": a.cfg.Game.Categories,
		})
		a.err = err
		return nil
	}
	reportPresence("playing", a.discordMgr.SetPlaying(0, 0))
	return a.switchTo(StateOddOneOut, ui.NewOddOneOut(session))
}

// switchTo makes model current, replays the window size to it and returns
// its Init command
func (a *App) switchTo(state AppState, model tea.Model) tea.Cmd {
	a.state = state
	a.currentModel = model
	if a.width > 0 {
		a.currentModel.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return a.currentModel.Init()
}

// openViewer launches the configured player for gif
func (a *App) openViewer(gif hasura.Gif) tea.Cmd {
	viewer, err := player.GetViewer(a.cfg)
	if err != nil {
		return func() tea.Msg { return viewerResultMsg{err: err} }
	}
	title := fmt.Sprintf("%s gif", gif.Category)
	return func() tea.Msg {
		err := viewer.Open(context.Background(), gif.URL, title)
		return viewerResultMsg{name: viewer.Name(), err: err}
	}
}

// reportPresence logs a Discord presence call that failed
func reportPresence(action string, err error) {
	if err == nil {
		return
	}
	logger.Warn("Failed to update Discord presence", map[string]interface{}{
		"action": action,
		"error":  err.Error(),
	})
}
