package photoid

import (
	"net/url"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/mock"

	"github.com/dixieflatline76/Passfoto/asset"
	pui "github.com/dixieflatline76/Passfoto/pkg/ui"
)

// MockPluginManager records the notifications and menu refreshes a plugin
// triggers, without a running tray.
type MockPluginManager struct {
	mock.Mock
	prefs fyne.Preferences
}

func NewMockPluginManager(prefs fyne.Preferences) *MockPluginManager {
	return &MockPluginManager{prefs: prefs}
}

func (m *MockPluginManager) Register(p pui.Plugin)   {}
func (m *MockPluginManager) Deregister(p pui.Plugin) {}
func (m *MockPluginManager) NotifyUser(title, message string) {
	m.Called(title, message)
}
func (m *MockPluginManager) RegisterNotifier(n pui.Notifier) {}
func (m *MockPluginManager) CreateMenuItem(label string, action func(), icon string) *fyne.MenuItem {
	return fyne.NewMenuItem(label, action)
}
func (m *MockPluginManager) OpenURL(u *url.URL) error         { return nil }
func (m *MockPluginManager) GetPreferences() fyne.Preferences { return m.prefs }
func (m *MockPluginManager) GetAssetManager() *asset.Manager  { return asset.NewManager() }
func (m *MockPluginManager) RefreshTrayMenu() {
	m.Called()
}

// MockPreferences satisfies fyne.Preferences for tests without a running app.
type MockPreferences struct {
	data map[string]interface{}
}

func NewMockPreferences() *MockPreferences {
	return &MockPreferences{data: make(map[string]interface{})}
}

func (m *MockPreferences) Bool(key string) bool {
	if v, ok := m.data[key]; ok {
		return v.(bool)
	}
	return false
}
func (m *MockPreferences) BoolWithFallback(key string, fallback bool) bool {
	if v, ok := m.data[key]; ok {
		return v.(bool)
	}
	return fallback
}
func (m *MockPreferences) SetBool(key string, value bool) { m.data[key] = value }
func (m *MockPreferences) Int(key string) int {
	if v, ok := m.data[key]; ok {
		return v.(int)
	}
	return 0
}
func (m *MockPreferences) IntWithFallback(key string, fallback int) int {
	if v, ok := m.data[key]; ok {
		return v.(int)
	}
	return fallback
}
func (m *MockPreferences) SetInt(key string, value int) { m.data[key] = value }
func (m *MockPreferences) String(key string) string {
	if v, ok := m.data[key]; ok {
		return v.(string)
	}
	return ""
}
func (m *MockPreferences) StringWithFallback(key string, fallback string) string {
	if v, ok := m.data[key]; ok {
		return v.(string)
	}
	return fallback
}
func (m *MockPreferences) SetString(key string, value string)                     { m.data[key] = value }
func (m *MockPreferences) Float(key string) float64                               { return 0.0 }
func (m *MockPreferences) FloatWithFallback(key string, fallback float64) float64 { return fallback }
func (m *MockPreferences) SetFloat(key string, value float64)                     {}
func (m *MockPreferences) RemoveValue(key string)                                 { delete(m.data, key) }
func (m *MockPreferences) AddChangeListener(func())                               {}
func (m *MockPreferences) ChangeListeners() []func()                              { return nil }

func (m *MockPreferences) BoolList(key string) []bool                              { return nil }
func (m *MockPreferences) BoolListWithFallback(key string, fallback []bool) []bool { return fallback }
func (m *MockPreferences) SetBoolList(key string, value []bool)                    {}
func (m *MockPreferences) IntList(key string) []int                                { return nil }
func (m *MockPreferences) IntListWithFallback(key string, fallback []int) []int    { return fallback }
func (m *MockPreferences) SetIntList(key string, value []int)                      {}
func (m *MockPreferences) FloatList(key string) []float64                          { return nil }
func (m *MockPreferences) FloatListWithFallback(key string, fallback []float64) []float64 {
	return fallback
}
func (m *MockPreferences) SetFloatList(key string, value []float64) {}
func (m *MockPreferences) StringList(key string) []string           { return nil }
func (m *MockPreferences) StringListWithFallback(key string, fallback []string) []string {
	return fallback
}
func (m *MockPreferences) SetStringList(key string, value []string) {}
