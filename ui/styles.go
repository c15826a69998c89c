package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the lipgloss styles used in the UI
type Styles struct {
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	MenuItem     lipgloss.Style
	SelectedItem lipgloss.Style
	Info         lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Prompt       lipgloss.Style
	Border       lipgloss.Style
	Help         lipgloss.Style
	StatusBar    lipgloss.Style
	Heading      lipgloss.Style
	ItemInfo     lipgloss.Style
	ActiveTab    lipgloss.Style
	InactiveTab  lipgloss.Style
	SuccessBox   lipgloss.Style
	ErrorBox     lipgloss.Style
}

// DefaultStyles returns the default styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4A90E2")).
			Padding(0, 1),

		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B9BD5")).
			Padding(0, 1),

		MenuItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D0D0D0")).
			Padding(0, 2),

		SelectedItem: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 2),

		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B9BD5")).
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E06C75")). // Soft red
			Padding(0, 1),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98C379")).
			Padding(0, 1),

		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")). // Gold
			Padding(0, 1),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A90E2")).
			Padding(1, 2),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA")).
			Padding(0, 1),

		ItemInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D0D0D0")).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("5")).
			Padding(0, 1),

		InactiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Background(lipgloss.Color("8")).
			Padding(0, 1),

		SuccessBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#98C379")).
			Foreground(lipgloss.Color("#98C379")).
			Bold(true).
			Padding(0, 2),

		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E06C75")).
			Foreground(lipgloss.Color("#E06C75")).
			Bold(true).
			Padding(0, 2),
	}
}

var banner = []string{
	"  __ _(_)/ _|_______   ___  ",
	" / _` | | |_|_  / _ \\ / _ \\ ",
	"| (_| | |  _|/ / (_) | (_) |",
	" \\__, |_|_| /___\\___/ \\___/ ",
	" |___/                      ",
}

var bannerColors = []string{"#4A90E2", "#5B9BD5", "#7B8CDE", "#A78BFA", "#C084FC"}

// GetBannerGradient renders the app banner with one color per line
func GetBannerGradient() string {
	lines := make([]string, len(banner))
	for i, line := range banner {
		lines[i] = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(bannerColors[i%len(bannerColors)])).
			Render(line)
	}
	return strings.Join(lines, "\n")
}
