package player

import (
	"context"
	"fmt"

	"github.com/pranshuj73/gifzoo/config"
)

// VLCViewer shows GIFs in VLC
type VLCViewer struct {
	cfg *config.Config
}

// NewVLCViewer creates a new VLC viewer
func NewVLCViewer(cfg *config.Config) *VLCViewer {
	return &VLCViewer{
		cfg: cfg,
	}
}

// Name returns the viewer name
func (p *VLCViewer) Name() string {
	return "vlc"
}

// Args returns the vlc command line for url
func (p *VLCViewer) Args(url, title string) []string {
	args := []string{
		"--loop",
		fmt.Sprintf("--meta-title=%s", title),
	}
	args = append(args, extraArgs(p.cfg)...)
	return append(args, url)
}

// Open plays the GIF in VLC
func (p *VLCViewer) Open(ctx context.Context, url string, title string) error {
	return launch(ctx, "vlc", p.Args(url, title))
}

// IINAViewer shows GIFs in IINA (macOS)
type IINAViewer struct {
	cfg *config.Config
}

// NewIINAViewer creates a new IINA viewer
func NewIINAViewer(cfg *config.Config) *IINAViewer {
	return &IINAViewer{
		cfg: cfg,
	}
}

// Name returns the viewer name
func (p *IINAViewer) Name() string {
	return "iina"
}

// Open plays the GIF in IINA
func (p *IINAViewer) Open(ctx context.Context, url string, title string) error {
	args := []string{
		"--no-stdin",
		"--mpv-loop-file=inf",
		fmt.Sprintf("--mpv-force-media-title=%s", title),
	}
	args = append(args, extraArgs(p.cfg)...)
	return launch(ctx, "iina", append(args, url))
}
