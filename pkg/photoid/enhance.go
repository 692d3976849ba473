package photoid

import (
	"image"
	"math"
)

// Profile holds the tone and sharpening parameters for one enhancement
// preset. Tone mapping runs per pixel: contrast around mid-gray, brightness
// offset, optional warm bias, gamma correction and an optional shadow lift
// driven by the luma deficit. Alpha is never touched.
type Profile struct {
	Name            string
	Brightness      float64 // additive offset after contrast
	Contrast        float64 // multiplier around mid-gray 128
	Gamma           float64 // applied as pow(c, 1/gamma)
	WarmBias        float64 // added to red, half subtracted from blue
	ShadowLift      float64 // fraction of the luma deficit added back
	ShadowThreshold float64 // luma below this gets the lift
	Sharpen         Kernel
}

// Kernel is a 3x3 convolution kernel in row-major order.
type Kernel [9]float64

// sharpenStudio boosts local contrast noticeably; weights sum to 1.
var sharpenStudio = Kernel{
	0, -0.35, 0,
	-0.35, 2.4, -0.35,
	0, -0.35, 0,
}

// sharpenSoft is the gentler configuration used to preserve skin texture.
var sharpenSoft = Kernel{
	0, -0.15, 0,
	-0.15, 1.6, -0.15,
	0, -0.15, 0,
}

// StudioProfile is the default print enhancement.
var StudioProfile = Profile{
	Name:            "studio",
	Brightness:      6,
	Contrast:        1.08,
	Gamma:           1.06,
	WarmBias:        3,
	ShadowLift:      0.25,
	ShadowThreshold: 96,
	Sharpen:         sharpenStudio,
}

// SoftProfile trades crispness for smoother skin rendition.
var SoftProfile = Profile{
	Name:            "soft",
	Brightness:      4,
	Contrast:        1.04,
	Gamma:           1.03,
	WarmBias:        2,
	ShadowLift:      0.15,
	ShadowThreshold: 90,
	Sharpen:         sharpenSoft,
}

// ProfileByName returns the named profile, defaulting to studio.
func ProfileByName(name string) Profile {
	if name == SoftProfile.Name {
		return SoftProfile
	}
	return StudioProfile
}

// Apply runs the full enhancement over the raster in place: tone mapping
// first, then the sharpening convolution.
func (p Profile) Apply(img *image.NRGBA) {
	p.applyTone(img)
	p.Sharpen.convolve(img)
}

func (p Profile) applyTone(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		r := (float64(img.Pix[i+0])-128)*p.Contrast + 128 + p.Brightness
		g := (float64(img.Pix[i+1])-128)*p.Contrast + 128 + p.Brightness
		b := (float64(img.Pix[i+2])-128)*p.Contrast + 128 + p.Brightness

		r += p.WarmBias
		b -= p.WarmBias / 2

		r = gammaCorrect(r, p.Gamma)
		g = gammaCorrect(g, p.Gamma)
		b = gammaCorrect(b, p.Gamma)

		if p.ShadowLift > 0 {
			luma := 0.299*r + 0.587*g + 0.114*b
			if luma < p.ShadowThreshold {
				lift := (p.ShadowThreshold - luma) * p.ShadowLift
				r += lift
				g += lift
				b += lift
			}
		}

		img.Pix[i+0] = clamp8(r)
		img.Pix[i+1] = clamp8(g)
		img.Pix[i+2] = clamp8(b)
	}
}

// convolve applies the kernel to interior pixels only. Border row and column
// pixels are copied unchanged from the pre-convolution buffer; the kernel
// window is never reflected or clamped.
func (k Kernel) convolve(img *image.NRGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := 0; c < 3; c++ {
				var sum float64
				ki := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						sum += k[ki] * float64(src[((y+dy)*w+(x+dx))*4+c])
						ki++
					}
				}
				img.Pix[(y*w+x)*4+c] = clamp8(sum)
			}
		}
	}
}

func gammaCorrect(c, gamma float64) float64 {
	c = math.Max(0, math.Min(255, c))
	return 255 * math.Pow(c/255, 1/gamma)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
