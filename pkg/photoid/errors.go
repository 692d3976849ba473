package photoid

import (
	"errors"
	"fmt"
)

// Failure classes surfaced by the capture pipeline. Callers branch on these
// with errors.Is; user-facing messages are built by the UI layer.
var (
	// ErrNoFace means detection completed but found nothing.
	ErrNoFace = errors.New("no face detected")

	// ErrMultipleFaces means more than one face was found in the frame.
	ErrMultipleFaces = errors.New("multiple faces detected")

	// ErrFaceMisaligned means a single face was found but framing is outside
	// the capture tolerances.
	ErrFaceMisaligned = errors.New("face misaligned")

	// ErrDetectionTransient means the detector backend itself failed; the
	// frame may be fine on retry.
	ErrDetectionTransient = errors.New("transient detection failure")

	// ErrSegmentationUnavailable means no background segmentation engine
	// could produce a mask for this capture.
	ErrSegmentationUnavailable = errors.New("segmentation unavailable")

	// ErrEncoding means an output artifact could not be serialized.
	ErrEncoding = errors.New("encoding failure")
)

// RemoteError is a non-2xx reply from the cutout service. The status and the
// body are preserved verbatim so the upstream diagnostic reaches the user.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("cutout service returned %d: %s", e.Status, e.Body)
}
