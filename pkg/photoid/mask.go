package photoid

import (
	"image"
	"image/color"
	"math"
)

// Mask is an 8-bit alpha plane with the same dimensions as the photo raster.
// 255 keeps the photo, 0 reveals the background.
type Mask struct {
	W, H int
	Pix  []uint8
}

// NewMask allocates a zeroed mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]uint8, w*h)}
}

// At returns the alpha value at (x, y).
func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.W+x]
}

// RefineLite converts a raw confidence grid into a compositing mask using a
// soft ramp. Cheap enough for the live preview path.
func RefineLite(raw []uint8, w, h int) *Mask {
	m := NewMask(w, h)
	for i, v := range raw {
		t := (float64(v) - liteRampLow) / (liteRampHigh - liteRampLow)
		t = math.Max(0, math.Min(1, t))
		m.Pix[i] = uint8(math.Round(255 * math.Pow(t, liteGamma)))
	}
	meanBlur3(m)
	return m
}

// RefineAggressive converts a raw confidence grid into a hard-edged
// compositing mask: threshold ramp, morphological closing plus one extra
// erosion to trim the halo, connected-component retention seeded at the face
// anchor, and a final blur pass for anti-aliasing. This is the studio-quality
// policy; disconnected blobs the segmenter misclassified as foreground are
// removed entirely.
func RefineAggressive(raw []uint8, w, h int, anchor image.Point) *Mask {
	m := NewMask(w, h)
	for i, v := range raw {
		switch {
		case v >= aggrForeground:
			m.Pix[i] = 255
		case v <= aggrBackground:
			m.Pix[i] = 0
		default:
			m.Pix[i] = uint8(math.Round(float64(v-aggrBackground) / (aggrForeground - aggrBackground) * 255))
		}
	}

	dilate3(m)
	erode3(m) // closing fills small holes
	erode3(m) // one further pass trims the matting halo

	keepConnected(m, anchor)

	meanBlur3(m)
	return m
}

// dilate3 applies a 3x3 maximum filter in place.
func dilate3(m *Mask) {
	morph3(m, func(best, v uint8) bool { return v > best })
}

// erode3 applies a 3x3 minimum filter in place.
func erode3(m *Mask) {
	morph3(m, func(best, v uint8) bool { return v < best })
}

func morph3(m *Mask, better func(best, v uint8) bool) {
	src := make([]uint8, len(m.Pix))
	copy(src, m.Pix)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			best := src[y*m.W+x]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= m.W || ny < 0 || ny >= m.H {
						continue
					}
					if v := src[ny*m.W+nx]; better(best, v) {
						best = v
					}
				}
			}
			m.Pix[y*m.W+x] = best
		}
	}
}

// meanBlur3 applies one pass of a 3x3 mean filter. Border pixels are copied
// from the source unchanged.
func meanBlur3(m *Mask) {
	src := make([]uint8, len(m.Pix))
	copy(src, m.Pix)
	for y := 1; y < m.H-1; y++ {
		for x := 1; x < m.W-1; x++ {
			sum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(src[(y+dy)*m.W+(x+dx)])
				}
			}
			m.Pix[y*m.W+x] = uint8((sum + 4) / 9)
		}
	}
}

// keepConnected zeroes all alpha not 4-connected to the seed region around
// the anchor. If the anchor pixel itself is below the flood threshold, the
// nearest foreground pixel on an expanding square ring is used instead; if
// none is found within the search radius the mask is left untouched.
func keepConnected(m *Mask, anchor image.Point) {
	seed, ok := findSeed(m, anchor)
	if !ok {
		return
	}

	reachable := make([]bool, len(m.Pix))
	stack := []int{seed.Y*m.W + seed.X}
	reachable[stack[0]] = true

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%m.W, i/m.W

		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= m.W || ny < 0 || ny >= m.H {
				continue
			}
			ni := ny*m.W + nx
			if !reachable[ni] && m.Pix[ni] >= floodThreshold {
				reachable[ni] = true
				stack = append(stack, ni)
			}
		}
	}

	for i := range m.Pix {
		if !reachable[i] {
			m.Pix[i] = 0
		}
	}
}

// findSeed locates a foreground pixel at or near the anchor.
func findSeed(m *Mask, anchor image.Point) (image.Point, bool) {
	clampPt := func(p image.Point) image.Point {
		if p.X < 0 {
			p.X = 0
		}
		if p.X >= m.W {
			p.X = m.W - 1
		}
		if p.Y < 0 {
			p.Y = 0
		}
		if p.Y >= m.H {
			p.Y = m.H - 1
		}
		return p
	}

	anchor = clampPt(anchor)
	if m.At(anchor.X, anchor.Y) >= floodThreshold {
		return anchor, true
	}

	for r := 1; r <= floodSeedRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue // ring only
				}
				p := image.Point{anchor.X + dx, anchor.Y + dy}
				if p.X < 0 || p.X >= m.W || p.Y < 0 || p.Y >= m.H {
					continue
				}
				if m.At(p.X, p.Y) >= floodThreshold {
					return p, true
				}
			}
		}
	}
	return image.Point{}, false
}

// Composite blends the photo over a solid background through the mask and
// returns a fully opaque raster.
func (m *Mask) Composite(photo *image.NRGBA, background color.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			a := int(m.At(x, y))
			si := photo.PixOffset(x, y)
			di := out.PixOffset(x, y)
			out.Pix[di+0] = uint8((int(photo.Pix[si+0])*a + int(background.R)*(255-a)) / 255)
			out.Pix[di+1] = uint8((int(photo.Pix[si+1])*a + int(background.G)*(255-a)) / 255)
			out.Pix[di+2] = uint8((int(photo.Pix[si+2])*a + int(background.B)*(255-a)) / 255)
			out.Pix[di+3] = 255
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
