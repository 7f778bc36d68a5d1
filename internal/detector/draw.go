package detector

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"detectdemo/internal/dao"
)

var (
	boxColor  = color.RGBA{0, 255, 0, 255}
	textColor = color.RGBA{0, 0, 0, 255}
)

func drawDetections(frame *gocv.Mat, boxes []*dao.DetectionBox) gocv.Mat {
	annotatedFrame := frame.Clone()

	for _, box := range boxes {
		label := fmt.Sprintf("%s: %.2f", box.Label, box.Confidence)
		labelSize := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.5, 2)

		gocv.Rectangle(&annotatedFrame, image.Rect(box.X1, box.Y1, box.X2, box.Y2), boxColor, 2)
		gocv.Rectangle(&annotatedFrame, image.Rect(box.X1, box.Y1-labelSize.Y-10, box.X1+labelSize.X, box.Y1), boxColor, -1)
		gocv.PutText(&annotatedFrame, label, image.Pt(box.X1, box.Y1-5), gocv.FontHersheySimplex, 0.5, textColor, 2)
	}

	return annotatedFrame
}
