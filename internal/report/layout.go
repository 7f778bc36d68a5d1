package report

import "fmt"

// All values are PDF points on a US-Letter portrait page.
const (
	pageWidth  = 612.0
	pageHeight = 792.0

	titleTop      = 40.0
	titleHeight   = 24.0
	titleFontSize = 18.0

	imagePadding = 24.0
	imageSize    = 320.0

	lineHeight   = 20.0
	bodyFontSize = 12.0
	bottomMargin = 24.0

	// pixels per side of the embedded raster, 2x the layout size
	embedPixels = 640
)

const tableHeader = "Detections by Class:"

type pageLayout struct {
	TitleY   float64
	ImageX   float64
	ImageY   float64
	HeaderY  float64
	FirstRow float64
}

func newPageLayout() pageLayout {
	imageY := titleTop + titleHeight + imagePadding
	imageBottom := imageY + imageSize
	return pageLayout{
		TitleY:   titleTop,
		ImageX:   (pageWidth - imageSize) / 2,
		ImageY:   imageY,
		HeaderY:  imageBottom + lineHeight,
		FirstRow: imageBottom + 2*lineHeight,
	}
}

// RowY is the top of the i-th table row.
func (l pageLayout) RowY(i int) float64 {
	return l.FirstRow + float64(i)*lineHeight
}

// MaxRows is how many table rows fit above the bottom margin.
func (l pageLayout) MaxRows() int {
	return int((pageHeight - bottomMargin - l.FirstRow) / lineHeight)
}

// fitLines keeps lines within limit rows, replacing the overflow with a
// single line naming how many were left out.
func fitLines(lines []string, limit int) []string {
	if len(lines) <= limit || limit < 1 {
		return lines
	}
	kept := append([]string(nil), lines[:limit-1]...)
	return append(kept, fmt.Sprintf("... and %d more classes", len(lines)-len(kept)))
}
