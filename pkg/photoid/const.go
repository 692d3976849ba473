package photoid

import (
	"math"
	"time"
)

// pluginName is the name of the photoid plugin
const pluginName = "photoid"

// Preference keys for photoid
const (
	pluginPrefix          = pluginName + "_"
	EnginePrefKey         = pluginPrefix + "background_engine_key" // EnginePrefKey is used to set and retrieve the selected background engine
	CopyQuantityPrefKey   = pluginPrefix + "copy_quantity_key"     // CopyQuantityPrefKey is used to set and retrieve the print copy quantity
	EnhanceProfilePrefKey = pluginPrefix + "enhance_profile_key"   // EnhanceProfilePrefKey is used to set and retrieve the enhancement profile name
	RemoteEndpointPrefKey = pluginPrefix + "remote_endpoint_key"   // RemoteEndpointPrefKey is used to set and retrieve the cutout service endpoint
	RemoteAPIKeyPrefKey   = pluginPrefix + "remote_api_key"        // RemoteAPIKeyPrefKey is the keyring service name for the cutout API key
)

// Physical print geometry. All millimeter constants are converted to pixels
// through a single scale factor so preview and export sheets are identical up
// to scale.
const (
	MMPerInch = 25.4

	PhotoWidthMM  = 35.0
	PhotoHeightMM = 45.0
	PrintDPI      = 300.0

	SheetWidthMM  = 210.0 // A4 portrait
	SheetHeightMM = 297.0
	SheetMarginMM = 10.0
	SheetGapMM    = 7.0

	// Minimum gap between grid cells, in canonical sheet units, when the grid
	// has to be squeezed to fit inside the margins.
	sheetGapFloorUnits = 2.0
)

// Face framing thresholds used by live validation.
const (
	minFaceHeightFrac = 0.18 // below this the subject is too far away
	maxFaceHeightFrac = 0.58 // above this the subject is too close
	maxXOffset        = 0.14
	maxYOffset        = 0.20
	targetYCenter     = 0.45 // head framing sits 5% above true vertical center
)

// Crop planning constants.
const (
	faceToCropHeightFrac = 0.55
	minCropHeightFrac    = 0.45
	maxCropHeightFrac    = 0.98
	cropVerticalBias     = -0.08 // shifts the window up so the chin is not too low
)

// Mask refinement thresholds.
const (
	liteRampLow     = 60
	liteRampHigh    = 210
	liteGamma       = 0.9
	aggrForeground  = 205
	aggrBackground  = 145
	floodThreshold  = 40
	floodSeedRadius = 14
)

// Detector escalation.
const (
	// MissStreakThreshold is the number of consecutive no-face results after
	// which the session escalates to the next detector backend.
	MissStreakThreshold = 8

	liveValidationInterval = 400 * time.Millisecond
)

// Remote cutout service defaults.
const (
	DefaultCutoutEndpoint  = "https://api.remove.bg/v1.0/removebg"
	cutoutRequestTimeout   = 30 * time.Second
	cutoutRequestsPerMin   = 20
	maxCutoutResponseBytes = 50 * 1024 * 1024
)

// Export settings.
const (
	jpegExportQuality = 95

	// Preview sheets render at screen density, export sheets at print density.
	PreviewDPI = 96.0
)

// mmToPx converts a millimeter length to pixels at the given density.
func mmToPx(mm, dpi float64) int {
	return int(math.Round(mm * dpi / MMPerInch))
}

// PhotoWidthPx and PhotoHeightPx return the photo raster dimensions at print
// density (413x531 for 35x45mm at 300 DPI).
func PhotoWidthPx() int  { return mmToPx(PhotoWidthMM, PrintDPI) }
func PhotoHeightPx() int { return mmToPx(PhotoHeightMM, PrintDPI) }

// SheetWidthPx and SheetHeightPx return the canonical A4 sheet dimensions at
// print density.
func SheetWidthPx() int  { return mmToPx(SheetWidthMM, PrintDPI) }
func SheetHeightPx() int { return mmToPx(SheetHeightMM, PrintDPI) }
