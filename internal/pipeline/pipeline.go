// Package pipeline reads frames from uploaded media, runs the detector on each
// one and hands rendered overlays and summaries to the caller.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"detectdemo/internal/config"
	"detectdemo/internal/dao"
	"detectdemo/internal/detector"
	"detectdemo/internal/frameloop"
	"detectdemo/internal/metrics"
	"detectdemo/pkg/log"
)

type Processor struct {
	detector detector.Detector
	conf     config.DetectConfig
	metrics  *metrics.Metrics
	logger   *logrus.Entry
}

func NewProcessor(ctx context.Context, det detector.Detector, conf config.DetectConfig, m *metrics.Metrics) *Processor {
	return &Processor{
		detector: det,
		conf:     conf,
		metrics:  m,
		logger:   log.GetLogger(ctx).WithField("component", "pipeline"),
	}
}

// RunImage processes a single still image.
func (p *Processor) RunImage(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return fmt.Errorf("failed to read image %s", path)
	}

	update, err := p.processFrame(ctx, &img)
	if err != nil {
		return err
	}
	update.Index = 0
	update.Total = 1
	onFrame(update)
	return nil
}

// RunVideo processes every frame of the video at path until the stream ends or
// ctx is cancelled. A failed inference is logged and the frame is passed on
// without boxes.
func (p *Processor) RunVideo(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	video, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return fmt.Errorf("failed to open input video: %w", err)
	}
	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))
	total := int(video.Get(gocv.VideoCaptureFrameCount))
	logger := p.logger.WithField("input", path)
	logger.Infof("video properties: %dx%d @ %.2f FPS, %d frames", width, height, fps, total)

	frame := gocv.NewMat()
	defer frame.Close()

	step := func(ctx context.Context, index int) (dao.FrameUpdate, error) {
		if ok := video.Read(&frame); !ok {
			return dao.FrameUpdate{}, io.EOF
		}
		if frame.Empty() {
			return dao.FrameUpdate{}, frameloop.ErrEmptyFrame
		}
		return p.processFrame(ctx, &frame)
	}
	return frameloop.Run(ctx, total, step, onFrame, logger)
}

func (p *Processor) processFrame(ctx context.Context, frame *gocv.Mat) (dao.FrameUpdate, error) {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(*frame, &resized, image.Pt(p.conf.InputSize, p.conf.InputSize), 0, 0, gocv.InterpolationLinear)

	start := time.Now()
	result, err := p.detector.Detect(ctx, &resized, p.conf.ConfThreshold)
	p.metrics.ObserveFrame(time.Since(start), err)

	var update dao.FrameUpdate
	overlay := &resized
	if err != nil {
		if ctx.Err() != nil {
			return update, ctx.Err()
		}
		p.logger.WithError(err).Errorf("inference error")
	} else {
		defer result.Close()
		overlay = &result.Overlay
		update.Summary = result.Summary
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *overlay)
	if err != nil {
		return update, fmt.Errorf("encode overlay: %w", err)
	}
	defer buf.Close()
	update.Overlay = append([]byte(nil), buf.GetBytes()...)
	return update, nil
}
