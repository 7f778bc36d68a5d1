package detector

import (
	"context"

	"gocv.io/x/gocv"

	"detectdemo/internal/dao"
)

// Result is the output of one inference call. The caller owns Overlay and
// must Close the result.
type Result struct {
	Overlay gocv.Mat
	Boxes   []*dao.DetectionBox
	// Summary is the verbose text form, e.g. "2 tomato, 1 leaf".
	Summary string
}

func (r *Result) Close() error {
	return r.Overlay.Close()
}

// Detector runs a pretrained model over a single frame.
type Detector interface {
	Detect(ctx context.Context, frame *gocv.Mat, confThreshold float32) (*Result, error)
}
