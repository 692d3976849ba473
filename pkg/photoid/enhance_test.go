package photoid

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8((x * 255) / w)
			img.Pix[i+1] = uint8((y * 255) / h)
			img.Pix[i+2] = uint8(((x + y) * 255) / (w + h))
			img.Pix[i+3] = 255
		}
	}
	return img
}

func TestConvolveCopiesBorder(t *testing.T) {
	img := gradientImage(8, 8)
	want := make([]uint8, len(img.Pix))
	copy(want, img.Pix)

	sharpenStudio.convolve(img)

	for x := 0; x < 8; x++ {
		for _, y := range []int{0, 7} {
			i := img.PixOffset(x, y)
			assert.Equal(t, want[i], img.Pix[i], "border row pixel (%d,%d) must be untouched", x, y)
		}
	}
	for y := 0; y < 8; y++ {
		for _, x := range []int{0, 7} {
			i := img.PixOffset(x, y)
			assert.Equal(t, want[i], img.Pix[i], "border column pixel (%d,%d) must be untouched", x, y)
		}
	}
}

func TestConvolvePreservesFlatRegions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = 100
		img.Pix[i+1] = 100
		img.Pix[i+2] = 100
		img.Pix[i+3] = 255
	}

	sharpenStudio.convolve(img)

	// The kernel weights sum to one, so a flat region is a fixed point.
	i := img.PixOffset(4, 4)
	assert.Equal(t, uint8(100), img.Pix[i])
}

func TestApplyLiftsShadows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255 // opaque black
	}

	StudioProfile.Apply(img)

	i := img.PixOffset(2, 2)
	assert.Greater(t, img.Pix[i+1], uint8(0), "pure black should be lifted")
	assert.Less(t, img.Pix[i+1], uint8(60), "shadow lift must stay subtle")
}

func TestApplyKeepsWhiteWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	StudioProfile.Apply(img)

	i := img.PixOffset(2, 2)
	assert.Equal(t, uint8(255), img.Pix[i+0])
	assert.Equal(t, uint8(255), img.Pix[i+1])
	assert.Equal(t, uint8(255), img.Pix[i+2])
}

func TestApplyDoesNotTouchAlpha(t *testing.T) {
	img := gradientImage(8, 8)
	StudioProfile.Apply(img)
	for i := 3; i < len(img.Pix); i += 4 {
		assert.Equal(t, uint8(255), img.Pix[i])
	}
}

func TestProfileByName(t *testing.T) {
	assert.Equal(t, "soft", ProfileByName("soft").Name)
	assert.Equal(t, "studio", ProfileByName("studio").Name)
	assert.Equal(t, "studio", ProfileByName("bogus").Name, "unknown names fall back to studio")
}
