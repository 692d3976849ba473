package photoid

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDetector returns canned results in order, repeating the last one.
type scriptedDetector struct {
	name    string
	results []Detection
	errs    []error
	calls   int
}

func (d *scriptedDetector) Name() string { return d.name }

func (d *scriptedDetector) Detect(_ image.Image) (Detection, error) {
	i := d.calls
	if i >= len(d.results) {
		i = len(d.results) - 1
	}
	d.calls++
	var err error
	if i < len(d.errs) {
		err = d.errs[i]
	}
	return d.results[i], err
}

func missing() Detection { return Detection{Count: 0} }
func found() Detection {
	return Detection{Count: 1, Box: FaceBox{XCenter: 0.5, YCenter: 0.45, Height: 0.3, Width: 0.25}}
}

func testFrame() image.Image {
	return image.NewNRGBA(image.Rect(0, 0, 64, 64))
}

func TestDetectorBankEscalatesAfterMissStreak(t *testing.T) {
	blind := &scriptedDetector{name: "blind", results: []Detection{missing()}}
	backup := &scriptedDetector{name: "backup", results: []Detection{found()}}
	bank := newDetectorBankWith(blind, backup)

	for i := 0; i < MissStreakThreshold; i++ {
		assert.Equal(t, ModePrimary, bank.Mode(), "still primary before the threshold, call %d", i)
		bank.Detect(testFrame())
	}

	assert.Equal(t, ModeNativeFallback, bank.Mode(), "threshold crossed, must escalate")

	det, err := bank.Detect(testFrame())
	require.NoError(t, err)
	assert.Equal(t, 1, det.Count, "fallback serves the detection")
	assert.Equal(t, MissStreakThreshold, blind.calls, "escalated bank must stop calling the primary")
}

func TestDetectorBankHitResetsStreak(t *testing.T) {
	// Seven misses, one hit, seven more misses: never escalates.
	results := make([]Detection, 0, 15)
	for i := 0; i < 7; i++ {
		results = append(results, missing())
	}
	results = append(results, found())
	for i := 0; i < 7; i++ {
		results = append(results, missing())
	}
	flaky := &scriptedDetector{name: "flaky", results: results}
	bank := newDetectorBankWith(flaky, &scriptedDetector{name: "unused", results: []Detection{found()}})

	for i := 0; i < 15; i++ {
		bank.Detect(testFrame())
	}
	assert.Equal(t, ModePrimary, bank.Mode())
}

func TestDetectorBankErrorsCountAsMisses(t *testing.T) {
	boom := errors.New("camera unplugged")
	errs := make([]error, MissStreakThreshold)
	results := make([]Detection, MissStreakThreshold)
	for i := range errs {
		errs[i] = boom
		results[i] = Detection{}
	}
	failing := &scriptedDetector{name: "failing", results: results, errs: errs}
	backup := &scriptedDetector{name: "backup", results: []Detection{found()}}
	bank := newDetectorBankWith(failing, backup)

	for i := 0; i < MissStreakThreshold; i++ {
		_, err := bank.Detect(testFrame())
		assert.Error(t, err)
	}
	assert.Equal(t, ModeNativeFallback, bank.Mode())
}

func TestDetectorBankExhaustedChainStaysOnLast(t *testing.T) {
	blind := &scriptedDetector{name: "blind", results: []Detection{missing()}}
	alsoBlind := &scriptedDetector{name: "also blind", results: []Detection{missing()}}
	bank := newDetectorBankWith(blind, alsoBlind)

	for i := 0; i < 3*MissStreakThreshold; i++ {
		bank.Detect(testFrame())
	}
	assert.Equal(t, ModeNativeFallback, bank.Mode(), "no backend beyond the last")
}

func TestDetectorBankEmptyChain(t *testing.T) {
	bank := newDetectorBankWith()
	_, err := bank.Detect(testFrame())
	assert.ErrorIs(t, err, ErrDetectionTransient)
}

func TestDetectorBankActiveNameTracksLoadedBackend(t *testing.T) {
	// When a configured backend fails to load the chain shifts down; the
	// reported name must follow the detector actually serving, not the stage
	// index it happens to occupy.
	blind := &scriptedDetector{name: "saliency", results: []Detection{missing()}}
	backup := &scriptedDetector{name: "pigo relaxed", results: []Detection{found()}}
	bank := newDetectorBankWith(blind, backup)

	assert.Equal(t, "saliency", bank.ActiveName())

	for i := 0; i < MissStreakThreshold; i++ {
		bank.Detect(testFrame())
	}
	assert.Equal(t, "pigo relaxed", bank.ActiveName())

	assert.Equal(t, "none", newDetectorBankWith().ActiveName())
}

func TestDetectorBankMissStreakCounter(t *testing.T) {
	blind := &scriptedDetector{name: "blind", results: []Detection{missing()}}
	bank := newDetectorBankWith(blind, &scriptedDetector{name: "unused", results: []Detection{found()}})

	for i := 0; i < MissStreakThreshold-1; i++ {
		bank.Detect(testFrame())
	}
	assert.Equal(t, MissStreakThreshold-1, bank.misses.Value())

	bank.Detect(testFrame())
	assert.Equal(t, 0, bank.misses.Value(), "escalation starts the new backend with a fresh streak")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "primary", ModePrimary.String())
	assert.Equal(t, "native fallback", ModeNativeFallback.String())
	assert.Equal(t, "secondary model", ModeSecondaryModel.String())
}
