// Package report renders the one-page PDF summary of a detection session.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"detectdemo/internal/counts"
	"detectdemo/pkg/log"
)

const fontFamily = "Helvetica"

type Builder struct {
	Title string
	// Compress controls PDF stream compression; tests disable it to inspect text.
	Compress bool
	// Now stamps the document creation date.
	Now    func() time.Time
	logger *logrus.Entry
}

func NewBuilder(title string) *Builder {
	return &Builder{
		Title:    title,
		Compress: true,
		Now:      time.Now,
		logger:   log.NewLogger().WithField("component", "report"),
	}
}

// Build lays out the title, the image at imagePath and one line per label of
// totals, and returns the finished PDF. Labels follow the order of totals;
// percentages come from table. Labels that do not fit on the page are folded
// into a closing "more classes" line. An unreadable image yields
// *ImageReadError.
func (b *Builder) Build(imagePath string, totals *counts.ClassCounts, table counts.PercentageTable) ([]byte, error) {
	raster, err := loadRaster(imagePath)
	if err != nil {
		return nil, err
	}

	l := newPageLayout()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(b.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("detectdemo", true)
	pdf.SetTitle(b.Title, true)
	if b.Now != nil {
		pdf.SetCreationDate(b.Now())
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", titleFontSize)
	pdf.SetXY(0, l.TitleY)
	pdf.CellFormat(pageWidth, titleHeight, tr(b.Title), "", 0, "C", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("source", opts, bytes.NewReader(raster))
	pdf.ImageOptions("source", l.ImageX, l.ImageY, imageSize, imageSize, false, opts, 0, "")

	pdf.SetFont(fontFamily, "B", bodyFontSize)
	pdf.SetXY(l.ImageX, l.HeaderY)
	pdf.CellFormat(imageSize, lineHeight, tableHeader, "", 0, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", bodyFontSize)
	for i, line := range fitLines(reportLines(totals, table), l.MaxRows()) {
		pdf.SetXY(l.ImageX, l.RowY(i))
		pdf.CellFormat(imageSize, lineHeight, tr(line), "", 0, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	b.logger.Debugf("report rendered, image: %s, labels: %d, size: %d", imagePath, totals.Len(), buf.Len())
	return buf.Bytes(), nil
}

func reportLines(totals *counts.ClassCounts, table counts.PercentageTable) []string {
	shares := table.Map()
	lines := make([]string, 0, totals.Len())
	for _, item := range totals.Items() {
		pct, ok := shares[item.Label]
		if !ok {
			pct = counts.Share{}.Formatted()
		}
		lines = append(lines, fmt.Sprintf("%s: %d detections - %s", item.Label, item.Count, pct))
	}
	return lines
}

// loadRaster decodes the image at path and rescales it to the embed
// resolution, returning PNG bytes.
func loadRaster(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImageReadError{Path: path, Err: err}
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, &ImageReadError{Path: path, Err: err}
	}

	dst := image.NewRGBA(image.Rect(0, 0, embedPixels, embedPixels))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode report image: %w", err)
	}
	return buf.Bytes(), nil
}
