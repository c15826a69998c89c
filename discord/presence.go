package discord

import (
	"fmt"
	"time"

	"github.com/hugolgst/rich-go/client"
	"github.com/pranshuj73/gifzoo/logger"
)

// ApplicationID is the Discord application the presence is published under
const ApplicationID = "1436820992306450532"

// transport is the subset of rich-go used here; swapped in tests
type transport struct {
	login       func(appID string) error
	setActivity func(client.Activity) error
	logout      func()
}

var richGo = transport{
	login:       client.Login,
	setActivity: client.SetActivity,
	logout:      client.Logout,
}

// PresenceManager manages Discord Rich Presence
type PresenceManager struct {
	enabled   bool
	connected bool
	rpc       transport
	since     time.Time
}

// NewPresenceManager creates a new presence manager
func NewPresenceManager(enabled bool) *PresenceManager {
	return &PresenceManager{
		enabled: enabled,
		rpc:     richGo,
		since:   time.Now(),
	}
}

// Connect connects to Discord
func (pm *PresenceManager) Connect() error {
	if !pm.enabled {
		logger.Debug("Discord presence disabled, skipping connection", nil)
		return nil
	}

	if pm.connected {
		return nil
	}

	logger.Debug("Attempting to connect to Discord", nil)

	if err := pm.rpc.login(ApplicationID); err != nil {
		// Discord not running is not an error for the app
		logger.Warn("Failed to connect to Discord", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	pm.connected = true
	logger.Info("Discord connected successfully", nil)
	return nil
}

// SetBrowsing shows the category currently being browsed
func (pm *PresenceManager) SetBrowsing(category string) error {
	return pm.set(client.Activity{
		Details:   fmt.Sprintf("Browsing %s GIFs", category),
		State:     fmt.Sprintf("Category: %s", category),
		LargeText: category,
	})
}

// SetPlaying shows the odd-one-out score
func (pm *PresenceManager) SetPlaying(correct, played int) error {
	return pm.set(client.Activity{
		Details: "Playing Odd One Out",
		State:   fmt.Sprintf("Score %d/%d", correct, played),
	})
}

func (pm *PresenceManager) set(activity client.Activity) error {
	if !pm.enabled {
		return nil
	}

	if !pm.connected {
		_ = pm.Connect()
		if !pm.connected {
			return nil
		}
	}

	start := pm.since
	activity.Timestamps = &client.Timestamps{Start: &start}

	if err := pm.rpc.setActivity(activity); err != nil {
		// Connection lost; reconnect on the next update
		logger.Warn("Failed to set Discord presence", map[string]interface{}{
			"error":   err.Error(),
			"details": activity.Details,
		})
		pm.connected = false
		return nil
	}

	logger.Debug("Discord presence updated", map[string]interface{}{
		"details": activity.Details,
		"state":   activity.State,
	})
	return nil
}

// Clear clears the Discord Rich Presence
func (pm *PresenceManager) Clear() error {
	if !pm.enabled || !pm.connected {
		return nil
	}

	// Logout errors (broken pipe once Discord closed) are ignored
	pm.rpc.logout()
	pm.connected = false

	logger.Info("Discord presence cleared", nil)
	return nil
}

// IsEnabled returns whether Discord presence is enabled
func (pm *PresenceManager) IsEnabled() bool {
	return pm.enabled
}

// IsConnected returns whether Discord is connected
func (pm *PresenceManager) IsConnected() bool {
	return pm.connected
}
