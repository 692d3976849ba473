package photoid

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// sheetGrids maps a supported copy quantity to its grid shape.
var sheetGrids = map[int][2]int{
	1:  {1, 1},
	4:  {2, 2},
	8:  {2, 4},
	12: {3, 4},
}

// SupportedQuantities lists the copy counts the composer has dedicated grids
// for, in ascending order.
var SupportedQuantities = []int{1, 4, 8, 12}

// Layout is a resolved sheet grid in target pixel coordinates. The grid is
// planned in canonical millimeter units and scaled uniformly, so a preview
// layout and an export layout differ only by Scale.
type Layout struct {
	Cols, Rows       int
	PhotoW, PhotoH   int
	GapX, GapY       int
	OriginX, OriginY int
	Scale            float64 // target pixels per canonical millimeter
}

// cellOrigin returns the top-left corner of the grid cell at (col, row).
func (l Layout) cellOrigin(col, row int) image.Point {
	return image.Point{
		X: l.OriginX + col*(l.PhotoW+l.GapX),
		Y: l.OriginY + row*(l.PhotoH+l.GapY),
	}
}

// PlanLayout computes the grid for the requested quantity on an A4 sheet
// rendered at targetW x targetH pixels. Unknown quantities fall back to a
// two-column grid. Gaps shrink toward the floor, width axis first, when the
// grid would otherwise overflow the printable area; photo size and margins
// never change.
func PlanLayout(quantity, targetW, targetH int) (Layout, error) {
	if targetW <= 0 || targetH <= 0 {
		return Layout{}, fmt.Errorf("invalid sheet dimensions %dx%d", targetW, targetH)
	}
	if quantity < 1 {
		return Layout{}, fmt.Errorf("invalid copy quantity %d", quantity)
	}

	grid, ok := sheetGrids[quantity]
	if !ok {
		grid = [2]int{2, (quantity + 1) / 2}
	}
	cols, rows := grid[0], grid[1]

	availW := SheetWidthMM - 2*SheetMarginMM
	availH := SheetHeightMM - 2*SheetMarginMM

	gapX := fitGap(availW, PhotoWidthMM, cols)
	gapY := fitGap(availH, PhotoHeightMM, rows)

	gridW := float64(cols)*PhotoWidthMM + float64(cols-1)*gapX
	gridH := float64(rows)*PhotoHeightMM + float64(rows-1)*gapY
	if gridW > availW || gridH > availH {
		return Layout{}, fmt.Errorf("%d copies do not fit on the sheet", quantity)
	}

	scale := math.Min(float64(targetW)/SheetWidthMM, float64(targetH)/SheetHeightMM)

	px := func(mm float64) int { return int(math.Round(mm * scale)) }
	return Layout{
		Cols:    cols,
		Rows:    rows,
		PhotoW:  px(PhotoWidthMM),
		PhotoH:  px(PhotoHeightMM),
		GapX:    px(gapX),
		GapY:    px(gapY),
		OriginX: px(SheetMarginMM + (availW-gridW)/2),
		OriginY: px(SheetMarginMM + (availH-gridH)/2),
		Scale:   scale,
	}, nil
}

// fitGap returns the largest gap, between the default and the floor, that
// lets n cells fit within avail millimeters.
func fitGap(avail, cell float64, n int) float64 {
	if n <= 1 {
		return SheetGapMM
	}
	gap := (avail - float64(n)*cell) / float64(n-1)
	gap = math.Min(gap, SheetGapMM)
	return math.Max(gap, sheetGapFloorUnits)
}

// ComposeSheet tiles quantity copies of the finished photo onto a white A4
// canvas of targetW x targetH pixels, row-major from the top-left. Cells
// beyond the quantity stay blank. Each copy gets a soft drop shadow and a
// hairline border so the cutting guides survive printing.
func ComposeSheet(photo image.Image, quantity, targetW, targetH int) (*image.NRGBA, error) {
	layout, err := PlanLayout(quantity, targetW, targetH)
	if err != nil {
		return nil, err
	}

	sheet := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	fill(sheet, sheet.Bounds(), color.NRGBA{255, 255, 255, 255})

	// Scale the photo once; every cell reuses the same raster.
	tile := image.NewNRGBA(image.Rect(0, 0, layout.PhotoW, layout.PhotoH))
	xdraw.CatmullRom.Scale(tile, tile.Bounds(), photo, photo.Bounds(), xdraw.Over, nil)

	shadow := color.NRGBA{200, 200, 200, 255}
	border := color.NRGBA{120, 120, 120, 255}
	shadowOffset := int(math.Max(1, math.Round(0.5*layout.Scale)))

	drawn := 0
	for row := 0; row < layout.Rows && drawn < quantity; row++ {
		for col := 0; col < layout.Cols && drawn < quantity; col++ {
			at := layout.cellOrigin(col, row)
			cell := image.Rect(at.X, at.Y, at.X+layout.PhotoW, at.Y+layout.PhotoH)

			fill(sheet, cell.Add(image.Point{shadowOffset, shadowOffset}), shadow)
			xdraw.Draw(sheet, cell, tile, image.Point{}, xdraw.Src)
			strokeRect(sheet, cell, border)
			drawn++
		}
	}
	return sheet, nil
}

func fill(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = c.A
		}
	}
}

// strokeRect draws a one pixel outline just inside r.
func strokeRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
