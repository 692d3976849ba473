package photoid

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/muesli/smartcrop"

	"github.com/dixieflatline76/Passfoto/asset"
	"github.com/dixieflatline76/Passfoto/util"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// FaceDetector locates faces in a frame. Implementations must be safe to
// call repeatedly from the session loop but need not be goroutine safe.
type FaceDetector interface {
	Name() string
	Detect(img image.Image) (Detection, error)
}

// Mode identifies which detector backend the session is currently on.
type Mode int

// Backend escalation order. The session never de-escalates mid-run; a hit
// only resets the miss streak.
const (
	ModePrimary Mode = iota
	ModeNativeFallback
	ModeSecondaryModel
)

func (m Mode) String() string {
	switch m {
	case ModePrimary:
		return "primary"
	case ModeNativeFallback:
		return "native fallback"
	case ModeSecondaryModel:
		return "secondary model"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// pigoDetector runs an embedded pigo cascade over the full frame.
type pigoDetector struct {
	name       string
	classifier *pigo.Pigo
	minQuality float32
}

// newPigoDetector loads the named cascade from the embedded assets. A missing
// or corrupt model is not fatal here; the caller decides how to degrade.
func newPigoDetector(name, model string, minQuality float32) (*pigoDetector, error) {
	am := asset.NewManager()
	modelData, err := am.GetModel(model)
	if err != nil {
		return nil, fmt.Errorf("loading face detection model %s: %w", model, err)
	}
	classifier, err := pigo.NewPigo().Unpack(modelData)
	if err != nil {
		return nil, fmt.Errorf("unpacking face detection model %s: %w", model, err)
	}
	return &pigoDetector{name: name, classifier: classifier, minQuality: minQuality}, nil
}

func (d *pigoDetector) Name() string { return d.name }

// Detect runs the cascade at multiple scales and clusters the raw windows.
// Every surviving cluster above the quality floor counts as one face.
func (d *pigoDetector) Detect(img image.Image) (Detection, error) {
	src := pigo.ImgToNRGBA(img)
	b := src.Bounds()
	cols, rows := b.Dx(), b.Dy()
	if cols == 0 || rows == 0 {
		return Detection{}, fmt.Errorf("%w: empty frame", ErrDetectionTransient)
	}

	pixels := pigo.RgbToGrayscale(src)
	minDim := cols
	if rows < minDim {
		minDim = rows
	}

	params := pigo.CascadeParams{
		MinSize:     minDim / 10,
		MaxSize:     minDim,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	var faces []pigo.Detection
	for _, det := range dets {
		if det.Q >= d.minQuality {
			faces = append(faces, det)
		}
	}

	if len(faces) == 0 {
		return Detection{Count: 0}, nil
	}

	// Report the strongest cluster; the count carries the multi-face state.
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Q > best.Q {
			best = f
		}
	}

	size := float64(best.Scale)
	return Detection{
		Count: len(faces),
		Box: FaceBox{
			XCenter: float64(best.Col) / float64(cols),
			YCenter: float64(best.Row) / float64(rows),
			Width:   size / float64(cols),
			Height:  size / float64(rows),
			XMin:    (float64(best.Col) - size/2) / float64(cols),
			YMin:    (float64(best.Row) - size/2) / float64(rows),
		},
	}, nil
}

// resizer adapts imaging to the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// saliencyDetector approximates a face box from the frame's saliency crop.
// It never reports multiple faces and its box is coarser than the cascade's,
// which is acceptable for a fallback that keeps the session alive.
type saliencyDetector struct {
	analyzer smartcrop.Analyzer
}

func newSaliencyDetector() *saliencyDetector {
	return &saliencyDetector{
		analyzer: smartcrop.NewAnalyzer(&resizer{resampler: imaging.Lanczos}),
	}
}

func (d *saliencyDetector) Name() string { return "saliency" }

func (d *saliencyDetector) Detect(img image.Image) (Detection, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Detection{}, fmt.Errorf("%w: empty frame", ErrDetectionTransient)
	}

	// Ask for a square region; a salient portrait crop centers on the head.
	side := w
	if h < side {
		side = h
	}
	crop, err := d.analyzer.FindBestCrop(img, side, side)
	if err != nil {
		return Detection{}, fmt.Errorf("%w: saliency analysis: %v", ErrDetectionTransient, err)
	}

	// The head occupies roughly the upper middle of a salient portrait crop.
	faceW := float64(crop.Dx()) * 0.5
	faceH := float64(crop.Dy()) * 0.5
	cx := float64(crop.Min.X) + float64(crop.Dx())/2
	cy := float64(crop.Min.Y) + float64(crop.Dy())*0.38

	return Detection{
		Count: 1,
		Box: FaceBox{
			XCenter: cx / float64(w),
			YCenter: cy / float64(h),
			Width:   faceW / float64(w),
			Height:  faceH / float64(h),
			XMin:    (cx - faceW/2) / float64(w),
			YMin:    (cy - faceH/2) / float64(h),
		},
	}, nil
}

// DetectorBank owns the escalation chain. Detection failures and empty
// results accumulate a miss streak per mode; crossing MissStreakThreshold
// advances to the next backend until the chain is exhausted.
type DetectorBank struct {
	detectors []FaceDetector
	mode      Mode
	misses    *util.SafeCounter
}

// NewDetectorBank assembles the three-stage chain. Backends whose models
// fail to load are skipped with a warning; an entirely empty chain is still
// returned and reports transient failure on every call.
func NewDetectorBank() *DetectorBank {
	bank := &DetectorBank{misses: util.NewSafeInt()}

	if d, err := newPigoDetector("pigo", "facefinder", 5.0); err != nil {
		log.Printf("Warning: primary face detector unavailable: %v", err)
	} else {
		bank.detectors = append(bank.detectors, d)
	}

	bank.detectors = append(bank.detectors, newSaliencyDetector())

	if d, err := newPigoDetector("pigo relaxed", "facefinder_relaxed", 2.5); err != nil {
		log.Printf("Warning: secondary face detection model unavailable: %v", err)
	} else {
		bank.detectors = append(bank.detectors, d)
	}

	return bank
}

// newDetectorBankWith is the test seam.
func newDetectorBankWith(detectors ...FaceDetector) *DetectorBank {
	return &DetectorBank{detectors: detectors, misses: util.NewSafeInt()}
}

// Mode reports the current escalation stage.
func (b *DetectorBank) Mode() Mode { return b.mode }

// ActiveName reports the name of the backend currently serving detections.
// Backends that failed to load are never in the chain, so this names the real
// detector rather than the stage it happens to occupy.
func (b *DetectorBank) ActiveName() string {
	if d := b.current(); d != nil {
		return d.Name()
	}
	return "none"
}

// current returns the active detector, or nil when the chain is exhausted.
func (b *DetectorBank) current() FaceDetector {
	if int(b.mode) >= len(b.detectors) {
		return nil
	}
	return b.detectors[b.mode]
}

// Detect runs the active backend and applies the escalation policy: a found
// face resets the streak, a miss or backend error advances it, and crossing
// the threshold escalates to the next backend with a fresh streak.
func (b *DetectorBank) Detect(img image.Image) (Detection, error) {
	d := b.current()
	if d == nil {
		return Detection{}, fmt.Errorf("%w: no detector backends available", ErrDetectionTransient)
	}

	det, err := d.Detect(img)
	if err == nil && det.Count > 0 {
		b.misses.Set(0)
		return det, nil
	}

	if b.misses.Increment() >= MissStreakThreshold && int(b.mode) < len(b.detectors)-1 {
		b.mode++
		b.misses.Set(0)
		log.Printf("Escalating face detection from %s to %s after %d consecutive misses", d.Name(), b.ActiveName(), MissStreakThreshold)
	}

	if err != nil {
		return Detection{}, err
	}
	return det, nil
}
