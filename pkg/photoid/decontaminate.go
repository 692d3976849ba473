package photoid

import (
	"image"
	"math"
)

// Edge decontamination thresholds. Bright, low-saturation pixels are the
// matting halo a cloud cutout leaves along hair and shoulders; saturated
// foreground (skin, hair, clothing) must stay untouched.
const (
	decontamWhiteFloor   = 252
	decontamBrightFloor  = 210
	decontamSatCeiling   = 0.22
	decontamBlendDivisor = 45.0
)

// Decontaminate pushes residual fringe color toward white in place. It is
// only meaningful on images that were already composited onto a white
// background by an external cutout service.
func Decontaminate(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b := int(img.Pix[i]), int(img.Pix[i+1]), int(img.Pix[i+2])

		if r >= decontamWhiteFloor && g >= decontamWhiteFloor && b >= decontamWhiteFloor {
			continue // already pure white
		}

		maxC := maxOf3(r, g, b)
		minC := minOf3(r, g, b)
		var sat float64
		if maxC > 0 {
			sat = float64(maxC-minC) / float64(maxC)
		}

		if maxC > decontamBrightFloor && sat < decontamSatCeiling {
			k := float64(maxC-decontamBrightFloor) / decontamBlendDivisor
			k = math.Max(0, math.Min(1, k))
			img.Pix[i+0] = uint8(float64(r) + (255-float64(r))*k)
			img.Pix[i+1] = uint8(float64(g) + (255-float64(g))*k)
			img.Pix[i+2] = uint8(float64(b) + (255-float64(b))*k)
		}
	}
}

func maxOf3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
