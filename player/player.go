package player

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/logger"
)

// Viewer opens a GIF URL in an external program
type Viewer interface {
	// Open shows the GIF at url and returns once the program has started
	Open(ctx context.Context, url string, title string) error

	// Name returns the viewer name
	Name() string
}

// GetViewer returns a viewer by configured name
func GetViewer(cfg *config.Config) (Viewer, error) {
	switch cfg.Player.Player {
	case "mpv", "mpv.exe":
		return NewMPVViewer(cfg), nil
	case "vlc":
		return NewVLCViewer(cfg), nil
	case "iina":
		return NewIINAViewer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown player: %s", cfg.Player.Player)
	}
}

// commandFunc builds the process to run; replaced in tests
var commandFunc = exec.CommandContext

// launch starts name with args and reaps it in the background
func launch(ctx context.Context, name string, args []string) error {
	cmd := commandFunc(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		logger.Error("Failed to start viewer", err, map[string]interface{}{
			"viewer": name,
		})
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	logger.Debug("Viewer started", map[string]interface{}{
		"viewer": name,
		"pid":    cmd.Process.Pid,
	})

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Viewer exited with error (may be normal)", map[string]interface{}{
				"viewer": name,
				"error":  err.Error(),
			})
		}
	}()
	return nil
}

// extraArgs splits the configured player_arguments
func extraArgs(cfg *config.Config) []string {
	return strings.Fields(cfg.Player.PlayerArguments)
}
