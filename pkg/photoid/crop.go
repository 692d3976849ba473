package photoid

import (
	"fmt"
	"image"
	"math"
)

// CropRect is a fixed-aspect source crop window in source pixel coordinates.
// SW/SH always equals the photo aspect ratio (35:45). Immutable once planned.
type CropRect struct {
	SX, SY float64
	SW, SH float64
}

// Bounds returns the crop window as an integer rectangle for use with
// SubImage style APIs.
func (c CropRect) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Round(c.SX)),
		int(math.Round(c.SY)),
		int(math.Round(c.SX+c.SW)),
		int(math.Round(c.SY+c.SH)),
	)
}

// PlanCrop derives the source crop window from a normalized face box. The
// crop is sized so the face occupies a fixed fraction of the crop height,
// biased upward so the chin does not sit too low, and translated (never
// resized) back inside the source bounds.
func PlanCrop(box FaceBox, srcW, srcH int) (CropRect, error) {
	if srcW <= 0 || srcH <= 0 {
		return CropRect{}, fmt.Errorf("invalid source dimensions %dx%d", srcW, srcH)
	}

	aspect := PhotoWidthMM / PhotoHeightMM

	cropH := box.Height * float64(srcH) / faceToCropHeightFrac
	cropH = math.Max(minCropHeightFrac*float64(srcH), cropH)
	cropH = math.Min(maxCropHeightFrac*float64(srcH), cropH)

	cropW := cropH * aspect
	if cropW > float64(srcW) {
		// The width constraint always wins; recompute height from it.
		cropW = float64(srcW)
		cropH = cropW / aspect
	}

	cx := box.XCenter * float64(srcW)
	cy := box.YCenter*float64(srcH) + cropVerticalBias*cropH

	sx := cx - cropW/2
	sy := cy - cropH/2

	// Translate, never resize, to stay fully inside the source.
	sx = math.Max(0, math.Min(sx, float64(srcW)-cropW))
	sy = math.Max(0, math.Min(sy, float64(srcH)-cropH))

	return CropRect{SX: sx, SY: sy, SW: cropW, SH: cropH}, nil
}
