package detector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"detectdemo/internal/config"
	"detectdemo/internal/dao"
	"detectdemo/pkg/log"
)

const (
	inputName  = "FRAME"
	outputName = "DETECTIONS"
)

// TritonDetector calls a detection model hosted by Triton Inference Server.
// The model takes a HxWx3 UINT8 frame and returns a flat [N, 6] float32 tensor.
type TritonDetector struct {
	cli          base.Client
	modelName    string
	modelVersion string
	labelMap     map[int]string
	logger       *logrus.Entry
}

func NewTritonDetector(ctx context.Context, conf config.TritonConfig) (*TritonDetector, error) {
	cli, err := tritonGrpc.NewClient(
		conf.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, fmt.Errorf("create triton client: %w", err)
	}

	version := conf.ModelVersion
	if version == "" {
		version = "1"
	}
	return &TritonDetector{
		cli:          cli,
		modelName:    conf.ModelName,
		modelVersion: version,
		labelMap:     dao.ParseLabels(conf.Labels),
		logger:       log.GetLogger(ctx).WithField("component", "detector"),
	}, nil
}

// Ready checks that the server is live and the model is loaded.
func (d *TritonDetector) Ready(ctx context.Context) error {
	if isLive, err := d.cli.IsServerLive(ctx, nil); err != nil {
		return err
	} else if !isLive {
		return errors.New("triton server is not live")
	}

	if isReady, err := d.cli.IsServerReady(ctx, nil); err != nil {
		return err
	} else if !isReady {
		return errors.New("triton server is not ready")
	}

	if isReady, err := d.cli.IsModelReady(ctx, d.modelName, d.modelVersion, nil); err != nil {
		return err
	} else if !isReady {
		return fmt.Errorf("triton model %s is not ready", d.modelName)
	}
	return nil
}

func (d *TritonDetector) Detect(ctx context.Context, frame *gocv.Mat, confThreshold float32) (*Result, error) {
	frameInput := tritonGrpc.NewInferInput(inputName, "BYTES", []int64{int64(frame.Rows()), int64(frame.Cols()), 3}, nil)
	if err := frameInput.SetData(frame.ToBytes(), true); err != nil {
		return nil, fmt.Errorf("failed to set %s input data: %w", inputName, err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput(outputName, map[string]any{"binary_data": false}),
	}

	response, err := d.cli.Infer(ctx, d.modelName, d.modelVersion, []base.InferInput{frameInput}, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	detections, err := response.AsFloat32Slice(outputName)
	if err != nil {
		return nil, fmt.Errorf("failed to get detection data: %w", err)
	}

	boxes := dao.DecodeDetections(detections, confThreshold, d.labelMap)
	d.logger.Debugf("%dx%d %d boxes", frame.Cols(), frame.Rows(), len(boxes))

	return &Result{
		Overlay: drawDetections(frame, boxes),
		Boxes:   boxes,
		Summary: dao.Summarize(boxes),
	}, nil
}
