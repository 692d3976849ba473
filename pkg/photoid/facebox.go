package photoid

import "math"

// FaceBox is a face bounding box normalized to frame dimensions. All fields
// are fractions in [0, 1].
type FaceBox struct {
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
	XMin    float64
	YMin    float64
}

// Detection is the result of one face detection pass. Count carries the
// sentinel states: 0 means no face, anything above 1 means multiple faces and
// Box is only meaningful when Count == 1.
type Detection struct {
	Box   FaceBox
	Count int
}

// Verdict classifies a detection for capture gating.
type Verdict int

// Verdict values, from best to worst.
const (
	VerdictOK Verdict = iota
	VerdictWarn
	VerdictBad
)

// Assessment is a verdict plus the guidance message shown to the user.
type Assessment struct {
	Verdict Verdict
	Message string
}

// OK reports whether capture may proceed on this assessment.
func (a Assessment) OK() bool {
	return a.Verdict == VerdictOK
}

// AssessDetection classifies a detection as usable, adjustable or blocked.
// The rules are ordered: sentinel states first, then distance, then centering.
func AssessDetection(d Detection) Assessment {
	if d.Count > 1 {
		return Assessment{VerdictBad, "Multiple faces detected. Only one person may be in frame."}
	}
	if d.Count == 0 {
		return Assessment{VerdictBad, "No face detected."}
	}

	if d.Box.Height < minFaceHeightFrac {
		return Assessment{VerdictWarn, "Too far away. Move closer to the camera."}
	}
	if d.Box.Height > maxFaceHeightFrac {
		return Assessment{VerdictWarn, "Too close. Move back from the camera."}
	}

	xOff := math.Abs(d.Box.XCenter - 0.5)
	yOff := math.Abs(d.Box.YCenter - targetYCenter)
	if xOff > maxXOffset || yOff > maxYOffset {
		return Assessment{VerdictWarn, "Center your face in the frame."}
	}

	return Assessment{VerdictOK, "Ready to capture."}
}
