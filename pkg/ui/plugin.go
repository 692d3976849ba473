package ui

import (
	"net/url"

	"fyne.io/fyne/v2"
	"github.com/dixieflatline76/Passfoto/asset"
)

// Plugin is the interface that must be implemented by all plugins.
type Plugin interface {
	Name() string                          // Returns the plugin's name.
	Activate()                             // Called to activate the plugin.
	Deactivate()                           // Called to deactivate the plugin.
	CreateTrayMenuItems() []*fyne.MenuItem // Returns menu items to add to the tray.
	Init(PluginManager)                    // Injects the manager and preferences.
}

// Notifier is a function that notifies the user.
type Notifier func(title, message string)

// PluginManager is the interface that must be implemented by all UI plugin managers.
type PluginManager interface {
	Register(Plugin)                                      // Registers a plugin.
	Deregister(Plugin)                                    // Deregisters a plugin.
	NotifyUser(string, string)                            // Notifies the user.
	RegisterNotifier(Notifier)                            // Registers a notifier.
	CreateMenuItem(string, func(), string) *fyne.MenuItem // Creates a menu item.
	OpenURL(*url.URL) error                               // Opens a URL.
	GetPreferences() fyne.Preferences                     // Returns the preferences.
	GetAssetManager() *asset.Manager                      // Returns the asset manager.
	RefreshTrayMenu()                                     // Refreshes the tray menu.
}

// App is the interface that must be implemented by all applications.
type App interface {
	Start()                    // Start runs the application until quit.
	Lifecycle() fyne.Lifecycle // Lifecycle returns the application lifecycle.
}
