package photoid

import (
	"image"
	"math"
)

// Segmenter produces a per-pixel foreground confidence grid for a photo
// raster. Values run 0 (certain background) to 255 (certain foreground); the
// grid is refined into a compositing mask by the mask policies.
type Segmenter interface {
	Name() string
	Segment(img *image.NRGBA) ([]uint8, error)
}

// Border sampling parameters for the on-device segmenter.
const (
	borderSampleInset   = 2
	borderSampleStride  = 4
	segmentDistanceNorm = 150.0
)

// colorSegmenter is the on-device engine. It models the background as the
// set of dominant colors sampled along the frame border (studio backdrops
// are near-uniform) and scores each pixel by its distance to the nearest
// background sample. No network, no model download, modest quality.
type colorSegmenter struct{}

// NewColorSegmenter returns the built-in device segmentation engine.
func NewColorSegmenter() Segmenter {
	return &colorSegmenter{}
}

func (s *colorSegmenter) Name() string { return "device color model" }

func (s *colorSegmenter) Segment(img *image.NRGBA) ([]uint8, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 4*borderSampleInset || h < 4*borderSampleInset {
		return nil, ErrSegmentationUnavailable
	}

	samples := sampleBorder(img, w, h)
	if len(samples) == 0 {
		return nil, ErrSegmentationUnavailable
	}

	grid := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			r, g, bb := img.Pix[i], img.Pix[i+1], img.Pix[i+2]

			best := math.MaxFloat64
			for _, c := range samples {
				d := colorDistance(r, g, bb, c[0], c[1], c[2])
				if d < best {
					best = d
				}
			}

			conf := best / segmentDistanceNorm
			if conf > 1 {
				conf = 1
			}
			grid[y*w+x] = uint8(math.Round(255 * conf))
		}
	}
	return grid, nil
}

// sampleBorder collects a strided set of pixels just inside the frame edge.
func sampleBorder(img *image.NRGBA, w, h int) [][3]uint8 {
	var samples [][3]uint8
	at := func(x, y int) {
		i := img.PixOffset(x, y)
		samples = append(samples, [3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]})
	}

	for x := borderSampleInset; x < w-borderSampleInset; x += borderSampleStride {
		at(x, borderSampleInset)
		at(x, h-1-borderSampleInset)
	}
	for y := borderSampleInset; y < h-borderSampleInset; y += borderSampleStride {
		at(borderSampleInset, y)
		at(w-1-borderSampleInset, y)
	}
	return samples
}

// colorDistance is a luma-weighted euclidean distance in RGB.
func colorDistance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return math.Sqrt(0.299*dr*dr + 0.587*dg*dg + 0.114*db*db)
}
