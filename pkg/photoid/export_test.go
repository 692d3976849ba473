package photoid

import (
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bluePhoto() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, PhotoWidthPx()/4, PhotoHeightPx()/4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+2] = 200
		img.Pix[i+3] = 255
	}
	return img
}

func TestRenderSheetsProducesBothDensities(t *testing.T) {
	set, err := RenderSheets(context.Background(), bluePhoto(), 4)
	require.NoError(t, err)

	assert.Equal(t, mmToPx(SheetWidthMM, PreviewDPI), set.Preview.Bounds().Dx())
	assert.Equal(t, mmToPx(SheetHeightMM, PreviewDPI), set.Preview.Bounds().Dy())
	assert.Equal(t, mmToPx(SheetWidthMM, PrintDPI), set.Export.Bounds().Dx())
	assert.Equal(t, mmToPx(SheetHeightMM, PrintDPI), set.Export.Bounds().Dy())
}

func TestRenderSheetsPreviewMatchesExport(t *testing.T) {
	set, err := RenderSheets(context.Background(), bluePhoto(), 4)
	require.NoError(t, err)

	pLayout, err := PlanLayout(4, set.Preview.Bounds().Dx(), set.Preview.Bounds().Dy())
	require.NoError(t, err)
	eLayout, err := PlanLayout(4, set.Export.Bounds().Dx(), set.Export.Bounds().Dy())
	require.NoError(t, err)

	// The center of every cell holds the photo in both renders.
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			pAt := pLayout.cellOrigin(col, row)
			eAt := eLayout.cellOrigin(col, row)

			pi := set.Preview.PixOffset(pAt.X+pLayout.PhotoW/2, pAt.Y+pLayout.PhotoH/2)
			ei := set.Export.PixOffset(eAt.X+eLayout.PhotoW/2, eAt.Y+eLayout.PhotoH/2)

			assert.Equal(t, uint8(200), set.Preview.Pix[pi+2], "preview cell (%d,%d)", col, row)
			assert.Equal(t, uint8(200), set.Export.Pix[ei+2], "export cell (%d,%d)", col, row)
		}
	}
}

func TestExportJPEG(t *testing.T) {
	sheet, err := ComposeSheet(bluePhoto(), 4, 400, 566)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sheet.jpg")
	require.NoError(t, ExportJPEG(sheet, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, decoded.Bounds().Dx())
}

func TestExportPDF(t *testing.T) {
	sheet, err := ComposeSheet(bluePhoto(), 4, 400, 566)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sheet.pdf")
	require.NoError(t, ExportPDF(sheet, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000), "the PDF should embed the sheet image")

	header := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(header))
}

func TestExportJPEGFailsOnBadPath(t *testing.T) {
	sheet, err := ComposeSheet(bluePhoto(), 1, 400, 566)
	require.NoError(t, err)
	assert.Error(t, ExportJPEG(sheet, filepath.Join(t.TempDir(), "missing", "sheet.jpg")))
}
