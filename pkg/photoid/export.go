package photoid

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/sync/errgroup"
)

// SheetSet is a pair of sheet renders of the same layout: one at screen
// density for display, one at print density for export.
type SheetSet struct {
	Preview *image.NRGBA
	Export  *image.NRGBA
}

// RenderSheets produces the preview and export sheets for the finished photo
// in parallel. Both renders share the same canonical layout, so the preview
// is a faithful scale model of the print.
func RenderSheets(ctx context.Context, photo image.Image, quantity int) (*SheetSet, error) {
	set := &SheetSet{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := ComposeSheet(photo, quantity,
			mmToPx(SheetWidthMM, PreviewDPI), mmToPx(SheetHeightMM, PreviewDPI))
		if err != nil {
			return fmt.Errorf("rendering preview sheet: %w", err)
		}
		set.Preview = s
		return nil
	})
	g.Go(func() error {
		s, err := ComposeSheet(photo, quantity,
			mmToPx(SheetWidthMM, PrintDPI), mmToPx(SheetHeightMM, PrintDPI))
		if err != nil {
			return fmt.Errorf("rendering export sheet: %w", err)
		}
		set.Export = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// ExportJPEG writes the sheet to path as a high quality JPEG.
func ExportJPEG(sheet image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, sheet, &jpeg.Options{Quality: jpegExportQuality}); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrEncoding, path, err)
	}
	return nil
}

// ExportPDF writes the sheet to path as a single-page A4 PDF with the image
// placed full bleed, so the millimeter geometry of the sheet maps one to one
// onto the page.
func ExportPDF(sheet image.Image, path string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return fmt.Errorf("%w: encoding sheet: %v", ErrEncoding, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("sheet", opts, &buf)
	pdf.ImageOptions("sheet", 0, 0, SheetWidthMM, SheetHeightMM, false, opts, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrEncoding, path, err)
	}
	return nil
}
