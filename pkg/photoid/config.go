package photoid

import (
	"encoding/json"
	"errors"
	"os/user"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/zalando/go-keyring"

	"github.com/dixieflatline76/Passfoto/asset"
	"github.com/dixieflatline76/Passfoto/config"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// Engine selects where background removal runs.
type Engine string

// Supported background engines.
const (
	EngineDevice Engine = "device"
	EngineRemote Engine = "remote"
)

// Config holds the photoid plugin settings on top of fyne preferences. The
// cutout API key lives in the OS keyring, never in the preferences file.
type Config struct {
	fyne.Preferences
	assetMgr *asset.Manager
	userid   string
	mu       sync.RWMutex
}

// defaults mirrors the embedded default_config.json.
type defaults struct {
	Quantity int    `json:"quantity"`
	Engine   string `json:"engine"`
	Profile  string `json:"profile"`
}

var (
	cfgInstance *Config
	cfgOnce     sync.Once
)

// GetConfig returns the singleton instance of Config.
func GetConfig(p fyne.Preferences) *Config {
	cfgOnce.Do(func() {
		u, e := user.Current()
		if e != nil {
			log.Fatalf("failed to initialize %s: %s", config.AppName, e)
		}
		cfgInstance = &Config{
			Preferences: p,
			assetMgr:    asset.NewManager(),
			userid:      u.Uid,
		}
		cfgInstance.seedDefaults()
	})
	return cfgInstance
}

// seedDefaults writes the embedded defaults into any preference key that has
// never been set, so the settings UI starts populated.
func (c *Config) seedDefaults() {
	raw, err := c.assetMgr.GetText("default_config.json")
	if err != nil {
		log.Printf("failed to load embedded defaults: %v", err)
		return
	}
	var d defaults
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		log.Printf("failed to parse embedded defaults: %v", err)
		return
	}
	c.SetInt(CopyQuantityPrefKey, c.IntWithFallback(CopyQuantityPrefKey, d.Quantity))
	c.SetString(EnginePrefKey, c.StringWithFallback(EnginePrefKey, d.Engine))
	c.SetString(EnhanceProfilePrefKey, c.StringWithFallback(EnhanceProfilePrefKey, d.Profile))
}

// GetEngine returns the selected background engine, defaulting to device.
func (c *Config) GetEngine() Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if Engine(c.StringWithFallback(EnginePrefKey, string(EngineDevice))) == EngineRemote {
		return EngineRemote
	}
	return EngineDevice
}

// SetEngine stores the background engine selection.
func (c *Config) SetEngine(e Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetString(EnginePrefKey, string(e))
}

// GetCopyQuantity returns the configured sheet copy count, snapped to the
// nearest supported quantity.
func (c *Config) GetCopyQuantity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q := c.IntWithFallback(CopyQuantityPrefKey, 4)
	for _, s := range SupportedQuantities {
		if q == s {
			return q
		}
	}
	return 4
}

// SetCopyQuantity stores the sheet copy count.
func (c *Config) SetCopyQuantity(q int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetInt(CopyQuantityPrefKey, q)
}

// GetEnhanceProfile returns the enhancement profile for finished photos.
func (c *Config) GetEnhanceProfile() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ProfileByName(c.StringWithFallback(EnhanceProfilePrefKey, StudioProfile.Name))
}

// SetEnhanceProfile stores the enhancement profile name.
func (c *Config) SetEnhanceProfile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetString(EnhanceProfilePrefKey, name)
}

// GetRemoteEndpoint returns the cutout service URL.
func (c *Config) GetRemoteEndpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.StringWithFallback(RemoteEndpointPrefKey, DefaultCutoutEndpoint)
}

// SetRemoteEndpoint stores the cutout service URL.
func (c *Config) SetRemoteEndpoint(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetString(RemoteEndpointPrefKey, url)
}

// GetCutoutAPIKey returns the cutout service API key from the keyring.
func (c *Config) GetCutoutAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, err := keyring.Get(RemoteAPIKeyPrefKey, c.userid)
	if err != nil {
		// Log only if it's not a "not found" error to avoid noise on first run
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Printf("failed to retrieve cutout API key from keyring: %v", err)
		}
		return ""
	}
	return key
}

// SetCutoutAPIKey sets the cutout service API key in the keyring.
func (c *Config) SetCutoutAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := keyring.Set(RemoteAPIKeyPrefKey, c.userid, key); err != nil {
		log.Printf("failed to save cutout API key to keyring: %v", err)
	}
}
