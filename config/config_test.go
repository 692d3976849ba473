package config

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestAppConfigDefaults(t *testing.T) {
	cfg := NewAppConfig(test.NewApp().Preferences())

	assert.True(t, cfg.GetAppNotificationsEnabled(), "notifications default on")
	assert.True(t, cfg.GetUpdateCheckEnabled(), "update check defaults on")
}

func TestAppConfigRoundTrip(t *testing.T) {
	cfg := NewAppConfig(test.NewApp().Preferences())

	cfg.SetAppNotificationsEnabled(false)
	cfg.SetUpdateCheckEnabled(false)

	assert.False(t, cfg.GetAppNotificationsEnabled())
	assert.False(t, cfg.GetUpdateCheckEnabled())
}
