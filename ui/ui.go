// Package ui hosts the tray application that owns the fyne app, the tray
// menu, and plugin registration.
package ui

import (
	"net/url"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/dixieflatline76/Passfoto/asset"
	"github.com/dixieflatline76/Passfoto/config"
	pui "github.com/dixieflatline76/Passfoto/pkg/ui"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// PassfotoApp represents the application: a tray icon, a menu assembled from
// the registered plugins, and desktop notifications.
type PassfotoApp struct {
	app      fyne.App
	assetMgr *asset.Manager
	trayMenu *fyne.Menu
	prefs    fyne.Preferences
	appCfg   *config.AppConfig

	pluginsMu sync.Mutex
	plugins   []pui.Plugin
	notifiers []pui.Notifier
}

var (
	instance *PassfotoApp
	once     sync.Once
)

// GetInstance returns the singleton instance of the application, or nil on
// platforms without a system tray.
func GetInstance() *PassfotoApp {
	a := app.NewWithID(config.AppName)
	if _, ok := a.(desktop.App); !ok {
		log.Print("Tray icon not supported on this platform")
		return nil
	}
	once.Do(func() {
		instance = &PassfotoApp{
			app:      a,
			assetMgr: asset.NewManager(),
			prefs:    a.Preferences(),
			appCfg:   config.NewAppConfig(a.Preferences()),
		}
	})
	return instance
}

// Start activates all registered plugins, builds the tray menu and runs the
// fyne main loop until quit.
func (pa *PassfotoApp) Start() {
	pa.pluginsMu.Lock()
	for _, p := range pa.plugins {
		p.Init(pa)
		p.Activate()
	}
	pa.pluginsMu.Unlock()

	pa.RefreshTrayMenu()
	pa.app.Run()
}

// Lifecycle returns the application lifecycle.
func (pa *PassfotoApp) Lifecycle() fyne.Lifecycle {
	return pa.app.Lifecycle()
}

// Register adds a plugin. Must be called before Start.
func (pa *PassfotoApp) Register(p pui.Plugin) {
	pa.pluginsMu.Lock()
	defer pa.pluginsMu.Unlock()
	pa.plugins = append(pa.plugins, p)
	log.Debugf("Registered plugin: %s", p.Name())
}

// Deregister deactivates and removes a plugin.
func (pa *PassfotoApp) Deregister(p pui.Plugin) {
	pa.pluginsMu.Lock()
	defer pa.pluginsMu.Unlock()
	for i, reg := range pa.plugins {
		if reg == p {
			pa.plugins = append(pa.plugins[:i], pa.plugins[i+1:]...)
			p.Deactivate()
			return
		}
	}
}

// NotifyUser shows a desktop notification and fans it out to registered
// notifiers. The desktop notification honors the user's notification
// preference; in-app notifiers always receive the message.
func (pa *PassfotoApp) NotifyUser(title, message string) {
	if pa.appCfg.GetAppNotificationsEnabled() {
		pa.app.SendNotification(fyne.NewNotification(title, message))
	}
	pa.pluginsMu.Lock()
	notifiers := append([]pui.Notifier(nil), pa.notifiers...)
	pa.pluginsMu.Unlock()
	for _, n := range notifiers {
		n(title, message)
	}
}

// RegisterNotifier adds a notification listener.
func (pa *PassfotoApp) RegisterNotifier(n pui.Notifier) {
	pa.pluginsMu.Lock()
	defer pa.pluginsMu.Unlock()
	pa.notifiers = append(pa.notifiers, n)
}

// CreateMenuItem creates a tray menu item with an icon from the asset store.
func (pa *PassfotoApp) CreateMenuItem(label string, action func(), iconName string) *fyne.MenuItem {
	mi := fyne.NewMenuItem(label, action)
	icon, err := pa.assetMgr.GetIcon(iconName)
	if err != nil {
		log.Debugf("Failed to load icon %s: %v", iconName, err)
		return mi
	}
	mi.Icon = icon
	return mi
}

// OpenURL opens the URL in the default browser.
func (pa *PassfotoApp) OpenURL(u *url.URL) error {
	return pa.app.OpenURL(u)
}

// GetPreferences returns the preferences.
func (pa *PassfotoApp) GetPreferences() fyne.Preferences {
	return pa.prefs
}

// GetAssetManager returns the asset manager.
func (pa *PassfotoApp) GetAssetManager() *asset.Manager {
	return pa.assetMgr
}

// RefreshTrayMenu rebuilds the tray menu from the registered plugins.
func (pa *PassfotoApp) RefreshTrayMenu() {
	desk := pa.app.(desktop.App)

	items := []*fyne.MenuItem{}
	pa.pluginsMu.Lock()
	for _, p := range pa.plugins {
		items = append(items, p.CreateTrayMenuItems()...)
		items = append(items, fyne.NewMenuItemSeparator())
	}
	pa.pluginsMu.Unlock()

	notifItem := fyne.NewMenuItem("Notifications", nil)
	notifItem.Checked = pa.appCfg.GetAppNotificationsEnabled()
	notifItem.Action = func() {
		pa.appCfg.SetAppNotificationsEnabled(!pa.appCfg.GetAppNotificationsEnabled())
		pa.RefreshTrayMenu()
	}
	updateItem := fyne.NewMenuItem("Check for Updates on Start", nil)
	updateItem.Checked = pa.appCfg.GetUpdateCheckEnabled()
	updateItem.Action = func() {
		pa.appCfg.SetUpdateCheckEnabled(!pa.appCfg.GetUpdateCheckEnabled())
		pa.RefreshTrayMenu()
	}
	items = append(items, notifItem, updateItem, fyne.NewMenuItemSeparator())

	items = append(items, pa.CreateMenuItem("Quit", func() {
		pa.pluginsMu.Lock()
		for _, p := range pa.plugins {
			p.Deactivate()
		}
		pa.pluginsMu.Unlock()
		pa.app.Quit()
	}, "quit.png"))

	menu := fyne.NewMenu(config.AppName, items...)
	if trayIcon, err := pa.assetMgr.GetIcon("passfoto.png"); err == nil {
		desk.SetSystemTrayIcon(trayIcon)
		pa.app.SetIcon(trayIcon)
	}
	desk.SetSystemTrayMenu(menu)
	pa.trayMenu = menu
}
