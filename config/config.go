package config

import (
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// GetWorkingDir returns the per-user working directory for the application,
// creating it if necessary. Downloaded frames, processed photos and rendered
// sheets all live under this directory.
func GetWorkingDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting user home directory: %v", err)
	}
	dir := filepath.Join(homeDir, "."+strings.ToLower(AppName))
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("error creating working directory: %v", err)
	}
	return dir
}

// AppNotificationsEnabledKey is the key for the app notifications enabled preference
const AppNotificationsEnabledKey = "app_notifications_enabled"

// AppUpdateCheckEnabledKey is the key for the app update check enabled preference
const AppUpdateCheckEnabledKey = "app_update_check_enabled"

// AppConfig holds the application-wide configuration
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// GetAppNotificationsEnabled returns whether system notifications are enabled
func (c *AppConfig) GetAppNotificationsEnabled() bool {
	return c.prefs.BoolWithFallback(AppNotificationsEnabledKey, true)
}

// SetAppNotificationsEnabled sets whether system notifications are enabled
func (c *AppConfig) SetAppNotificationsEnabled(enabled bool) {
	c.prefs.SetBool(AppNotificationsEnabledKey, enabled)
}

// GetUpdateCheckEnabled returns whether the application should check for updates
func (c *AppConfig) GetUpdateCheckEnabled() bool {
	return c.prefs.BoolWithFallback(AppUpdateCheckEnabledKey, true)
}

// SetUpdateCheckEnabled sets whether the application should check for updates
func (c *AppConfig) SetUpdateCheckEnabled(enabled bool) {
	c.prefs.SetBool(AppUpdateCheckEnabledKey, enabled)
}
