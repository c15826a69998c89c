package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/discord"
	"github.com/pranshuj73/gifzoo/hasura"
	"github.com/pranshuj73/gifzoo/logger"
	"github.com/pranshuj73/gifzoo/ui"
)

type stubUpstream struct{}

func (stubUpstream) SearchGifs(ctx context.Context, category string, limit, offset int) ([]hasura.Gif, error) {
	return nil, nil
}

func (stubUpstream) SampleGifs(ctx context.Context, category string, limit int) ([]hasura.Gif, error) {
	return nil, nil
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "gifzoo version "+version+"\n", out.String())
}

func TestApplyServeFlags(t *testing.T) {
	t.Cleanup(func() { servePort, serveEndpoint = 0, "" })

	cfg := config.Default()
	applyServeFlags(cfg)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultEndpoint, cfg.Upstream.Endpoint)

	servePort, serveEndpoint = 5050, "http://hasura:8080/v1/graphql"
	applyServeFlags(cfg)
	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, "http://hasura:8080/v1/graphql", cfg.Upstream.Endpoint)
}

func TestServeHandlerForwardsToHasura(t *testing.T) {
	var gotSecret string
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(hasura.AdminSecretHeader)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"users":[{"id":1,"name":"Ada","email":"ada@example.com","mobile":5}]}}`))
	}))
	defer fake.Close()

	cfg := config.Default()
	cfg.Upstream.Endpoint = fake.URL
	cfg.Upstream.AdminSecret = "hunter2"

	handler, err := newServeHandler(cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ getUsers { name } }"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"getUsers":[{"name":"Ada"}]}}`, rec.Body.String())
	assert.Equal(t, "hunter2", gotSecret)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), `gifzoo_upstream_requests_total{operation="Users",outcome="ok"} 1`)
}

func TestAppNavigation(t *testing.T) {
	cfg := config.Default()
	app := newApp(cfg, stubUpstream{}, discord.NewPresenceManager(false))
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	app.Update(ui.MenuSelectionMsg{Selection: ui.MenuBrowse})
	assert.Equal(t, StateBrowse, app.state)
	assert.IsType(t, &ui.Browser{}, app.currentModel)

	app.Update(ui.BackMsg{})
	assert.Equal(t, StateMainMenu, app.state)
	assert.Same(t, app.mainMenu, app.currentModel)

	app.Update(ui.MenuSelectionMsg{Selection: ui.MenuOddOne})
	assert.Equal(t, StateOddOneOut, app.state)
	assert.IsType(t, &ui.OddOneOut{}, app.currentModel)

	app.Update(ui.MenuSelectionMsg{Selection: ui.MenuSettings})
	assert.Equal(t, StateEditConfig, app.state)
	assert.IsType(t, &ui.ConfigEditor{}, app.currentModel)
}

func TestAppGameNeedsTwoCategories(t *testing.T) {
	cfg := config.Default()
	cfg.Game.Categories = []string{"cat"}
	app := newApp(cfg, stubUpstream{}, discord.NewPresenceManager(false))

	app.Update(ui.MenuSelectionMsg{Selection: ui.MenuOddOne})
	require.Error(t, app.err)
	assert.Contains(t, app.View(), "Error")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.NoError(t, app.err)
	assert.Equal(t, StateMainMenu, app.state)
}

func TestAppViewerStatus(t *testing.T) {
	cfg := config.Default()
	cfg.Player.Player = "quicktime"
	app := newApp(cfg, stubUpstream{}, discord.NewPresenceManager(false))

	_, cmd := app.Update(ui.GifSelectedMsg{Gif: hasura.Gif{URL: "https://gifs/cat.gif", Category: "cat"}})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Contains(t, app.View(), "Could not open GIF")

	app.Update(viewerResultMsg{name: "mpv"})
	assert.Contains(t, app.View(), "Opened in mpv")

	app.Update(viewerResultMsg{err: errors.New("missing")})
	assert.Contains(t, app.View(), "missing")
}

func TestReportPresenceLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWriter(&buf)

	reportPresence("browsing", nil)
	assert.Empty(t, buf.String())

	reportPresence("browsing", errors.New("broken pipe"))
	assert.Contains(t, buf.String(), "Failed to update Discord presence")
	assert.Contains(t, buf.String(), "broken pipe")
	assert.Contains(t, buf.String(), "browsing")
}
