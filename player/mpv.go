package player

import (
	"context"
	"fmt"

	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/logger"
)

// MPVViewer shows GIFs in mpv, looping
type MPVViewer struct {
	cfg *config.Config
}

// NewMPVViewer creates a new mpv viewer
func NewMPVViewer(cfg *config.Config) *MPVViewer {
	return &MPVViewer{
		cfg: cfg,
	}
}

// Name returns the viewer name
func (p *MPVViewer) Name() string {
	return "mpv"
}

// Args returns the mpv command line for url
func (p *MPVViewer) Args(url, title string) []string {
	args := []string{
		url,
		"--loop-file=inf",
		"--keep-open=yes",
		fmt.Sprintf("--force-media-title=%s", title),
		"--msg-level=ffmpeg/demuxer=error",
	}
	return append(args, extraArgs(p.cfg)...)
}

// Open plays the GIF in mpv
func (p *MPVViewer) Open(ctx context.Context, url string, title string) error {
	logger.Info("Opening GIF in mpv", map[string]interface{}{
		"url":           url,
		"hasCustomArgs": p.cfg.Player.PlayerArguments != "",
	})
	return launch(ctx, p.cfg.Player.Player, p.Args(url, title))
}
