package photoid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/dixieflatline76/Passfoto/util"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// FrameSource delivers camera frames to the session. Implementations live in
// pkg/capture; the session only needs the latest frame on demand.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// Result is one finished capture: the print-resolution photo with background
// removal and enhancement applied. Warning is non-nil when the pipeline
// degraded (for example segmentation was unavailable and the backdrop was
// kept) but still produced a usable photo.
type Result struct {
	CaptureID uuid.UUID
	Photo     *image.NRGBA
	Warning   error
}

// Session drives the capture workflow: a timer re-validates face framing
// against the live frame, capture is gated on the latest assessment, and a
// successful capture runs the full finishing pipeline. All state mutation
// happens on the session's own goroutine plus the caller's; the tick guard
// keeps a slow validation pass from stacking behind the next timer fire.
type Session struct {
	source    FrameSource
	bank      *DetectorBank
	segmenter Segmenter
	cutout    *CutoutClient
	cfg       *Config

	tickGuard *util.SafeFlag
	capturing *util.SafeFlag
	stopLive  chan struct{}
	liveDone  sync.WaitGroup

	mu            sync.Mutex
	lastAssess    Assessment
	activeCapture uuid.UUID

	// OnAssessment receives every live validation verdict. Optional.
	OnAssessment func(Assessment)
}

// NewSession wires a session from its collaborators. cutout may be nil when
// the remote engine is not configured.
func NewSession(source FrameSource, bank *DetectorBank, segmenter Segmenter, cutout *CutoutClient, cfg *Config) *Session {
	return &Session{
		source:     source,
		bank:       bank,
		segmenter:  segmenter,
		cutout:     cutout,
		cfg:        cfg,
		tickGuard:  util.NewSafeBoolWithValue(false),
		capturing:  util.NewSafeBoolWithValue(false),
		lastAssess: Assessment{VerdictBad, "No face detected."},
	}
}

// StartLive begins timer-driven validation. Safe to call once per session.
func (s *Session) StartLive() {
	s.stopLive = make(chan struct{})
	s.liveDone.Add(1)

	go func() {
		defer s.liveDone.Done()
		ticker := time.NewTicker(liveValidationInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopLive:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// StopLive halts the validation timer and waits for any in-flight tick.
func (s *Session) StopLive() {
	if s.stopLive == nil {
		return
	}
	close(s.stopLive)
	s.liveDone.Wait()
	s.stopLive = nil
}

// tick runs one validation pass. The compare-and-set guard drops the tick
// when the previous one is still running, and validation is suspended
// entirely while a capture is being processed.
func (s *Session) tick() {
	if s.capturing.Value() {
		return
	}
	if !s.tickGuard.CompareAndSet(false, true) {
		return
	}
	defer s.tickGuard.Set(false)

	ctx, cancel := context.WithTimeout(context.Background(), liveValidationInterval)
	defer cancel()

	frame, err := s.source.Frame(ctx)
	if err != nil {
		log.Debugf("live frame unavailable: %v", err)
		return
	}

	det, err := s.bank.Detect(frame)
	var assessment Assessment
	if err != nil {
		assessment = Assessment{VerdictBad, "Camera or detector trouble. Hold still."}
	} else {
		assessment = AssessDetection(det)
	}

	s.mu.Lock()
	s.lastAssess = assessment
	s.mu.Unlock()

	if s.OnAssessment != nil {
		s.OnAssessment(assessment)
	}
}

// Assessment returns the most recent live validation verdict.
func (s *Session) Assessment() Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAssess
}

// Retake invalidates any in-flight capture so its result is discarded on
// arrival, and resumes live validation.
func (s *Session) Retake() {
	s.mu.Lock()
	s.activeCapture = uuid.Nil
	s.mu.Unlock()
	s.capturing.Set(false)
}

// Capture freezes the current frame and runs the finishing pipeline. It
// refuses to start unless the latest live assessment allows capture, mapping
// the verdict to the matching failure class. Live validation stays suspended
// while processing and resumes automatically if the pipeline fails.
func (s *Session) Capture(ctx context.Context) (Result, error) {
	assessment := s.Assessment()
	if !assessment.OK() {
		return Result{}, captureRefusal(assessment)
	}

	s.capturing.Set(true)

	id := uuid.New()
	s.mu.Lock()
	s.activeCapture = id
	s.mu.Unlock()

	res, err := s.process(ctx, id)
	if err != nil {
		s.capturing.Set(false) // resume live validation on failure
		return Result{}, err
	}

	s.mu.Lock()
	stale := s.activeCapture != id
	s.mu.Unlock()
	if stale {
		log.Debugf("discarding stale capture %s", id)
		s.capturing.Set(false)
		return Result{}, fmt.Errorf("capture %s superseded", id)
	}
	return res, nil
}

// previewHeight bounds the live preview raster so the lite mask stays cheap.
const previewHeight = 480

// Preview composites the current frame over white using the lite mask
// policy. It is a rough, fast approximation of the finished photo meant for
// on-screen feedback, not for print.
func (s *Session) Preview(ctx context.Context) (*image.NRGBA, error) {
	frame, err := s.source.Frame(ctx)
	if err != nil {
		return nil, err
	}

	small := imaging.Resize(frame, 0, previewHeight, imaging.Linear)
	grid, err := s.segmenter.Segment(small)
	if err != nil {
		return small, err // degraded preview keeps the backdrop
	}

	mask := RefineLite(grid, small.Bounds().Dx(), small.Bounds().Dy())
	return mask.Composite(small, color.NRGBA{255, 255, 255, 255}), nil
}

// captureRefusal maps a blocking assessment onto the failure taxonomy.
func captureRefusal(a Assessment) error {
	switch a.Message {
	case "No face detected.":
		return ErrNoFace
	case "Multiple faces detected. Only one person may be in frame.":
		return ErrMultipleFaces
	default:
		return fmt.Errorf("%w: %s", ErrFaceMisaligned, a.Message)
	}
}

// process runs detect, crop, background removal and enhancement on a fresh
// frame, producing the print-resolution photo.
func (s *Session) process(ctx context.Context, id uuid.UUID) (Result, error) {
	frame, err := s.source.Frame(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDetectionTransient, err)
	}

	det, err := s.bank.Detect(frame)
	if err != nil {
		return Result{}, err
	}
	if det.Count == 0 {
		return Result{}, ErrNoFace
	}
	if det.Count > 1 {
		return Result{}, ErrMultipleFaces
	}

	b := frame.Bounds()
	crop, err := PlanCrop(det.Box, b.Dx(), b.Dy())
	if err != nil {
		return Result{}, err
	}

	photo := imaging.Resize(
		imaging.Crop(frame, crop.Bounds()),
		PhotoWidthPx(), PhotoHeightPx(), imaging.Lanczos,
	)

	finished, err := s.removeBackground(ctx, photo, faceAnchor(det.Box, crop, b.Dx(), b.Dy(), photo))
	var warning error
	if err != nil {
		if !errors.Is(err, ErrSegmentationUnavailable) {
			return Result{}, err
		}
		warning = err
	}

	s.cfg.GetEnhanceProfile().Apply(finished)

	return Result{CaptureID: id, Photo: finished, Warning: warning}, nil
}

// removeBackground applies the configured engine. A remote cutout failure
// fails the capture with the upstream reply intact; switching to the device
// engine is the user's call, never an automatic fallback. A device
// segmentation failure keeps the original backdrop and reports the
// degradation as ErrSegmentationUnavailable alongside the usable photo.
func (s *Session) removeBackground(ctx context.Context, photo *image.NRGBA, anchor image.Point) (*image.NRGBA, error) {
	if s.cfg.GetEngine() == EngineRemote && s.cutout != nil {
		out, err := s.cutout.Cutout(ctx, photo)
		if err != nil {
			return nil, err
		}
		Decontaminate(out)
		return out, nil
	}

	grid, err := s.segmenter.Segment(photo)
	if err != nil {
		log.Printf("device segmentation failed, keeping original backdrop: %v", err)
		if errors.Is(err, ErrSegmentationUnavailable) {
			return photo, ErrSegmentationUnavailable
		}
		return photo, fmt.Errorf("%w: %v", ErrSegmentationUnavailable, err)
	}

	mask := RefineAggressive(grid, photo.Bounds().Dx(), photo.Bounds().Dy(), anchor)
	return mask.Composite(photo, color.NRGBA{255, 255, 255, 255}), nil
}

// faceAnchor maps the face center from normalized frame coordinates into the
// finished photo raster, for seeding connected-component retention.
func faceAnchor(box FaceBox, crop CropRect, frameW, frameH int, photo *image.NRGBA) image.Point {
	w, h := photo.Bounds().Dx(), photo.Bounds().Dy()
	fx := (box.XCenter*float64(frameW) - crop.SX) / crop.SW
	fy := (box.YCenter*float64(frameH) - crop.SY) / crop.SH
	return image.Point{
		X: int(fx * float64(w)),
		Y: int(fy * float64(h)),
	}
}
