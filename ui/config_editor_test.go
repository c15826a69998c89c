package ui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuj73/gifzoo/config"
)

func TestConfigEditorRejectsBadNumbers(t *testing.T) {
	cfg := config.Default()
	m := NewConfigEditor(cfg)

	assert.Error(t, m.applyConfigChange("page_size", "lots"))
	assert.Error(t, m.applyConfigChange("page_size", "0"))
	assert.Equal(t, 20, cfg.Browse.PageSize)

	require.NoError(t, m.applyConfigChange("page_size", "40"))
	assert.Equal(t, 40, cfg.Browse.PageSize)

	assert.Error(t, m.applyConfigChange("endpoint", ""))
	assert.Error(t, m.applyConfigChange("nope", "x"))
}

func TestConfigEditorEditAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)

	m := NewConfigEditor(cfg)

	// Toggle Discord presence, the last item
	for range m.configItems[:len(m.configItems)-1] {
		press(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, cfg.Discord.DiscordPresence)

	// Pick vlc as the player
	for m.configItems[m.cursor].Name != "player" {
		press(m, tea.KeyMsg{Type: tea.KeyUp})
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ConfigSelectEdit, m.state)
	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "vlc", cfg.Player.Player)

	drain(t, m, press(m, runes("s"))[0])
	require.Equal(t, ConfigSaved, m.state)
	require.NoError(t, m.err)
	assert.Contains(t, m.View(), path)

	reloaded, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Discord.DiscordPresence)
	assert.Equal(t, "vlc", reloaded.Player.Player)
}

func TestConfigEditorTextEditKeepsEditorOnError(t *testing.T) {
	m := NewConfigEditor(config.Default())

	for m.configItems[m.cursor].Name != "debounce_ms" {
		press(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ConfigTextEdit, m.state)

	m.textInput.SetValue("soon")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ConfigTextEdit, m.state)
	assert.Contains(t, m.View(), "positive number")

	m.textInput.SetValue("150")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ConfigMenuSelection, m.state)
	assert.Equal(t, 150, m.cfg.Browse.DebounceMillis)
	assert.Equal(t, 150, m.configItems[m.cursor].Value)
}
