package cmd

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"detectdemo/internal/config"
	"detectdemo/internal/detector"
	"detectdemo/internal/metrics"
	"detectdemo/internal/pipeline"
	"detectdemo/internal/utils"
)

func newProcessor(ctx context.Context, conf *config.Config, m *metrics.Metrics) *pipeline.Processor {
	det, err := detector.NewTritonDetector(ctx, conf.Triton)
	if err != nil {
		logrus.Fatalf("failed to create detector, %s", err.Error())
	}

	readyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := det.Ready(readyCtx); err != nil {
		logrus.WithError(err).Warnf("triton server %s is not ready yet", conf.Triton.ServerAddr)
	}

	return pipeline.NewProcessor(ctx, det, conf.Detect, m)
}

// newMinioClient returns nil when archiving is disabled or unavailable.
func newMinioClient(ctx context.Context, conf *config.Config) *minio.Client {
	if !conf.S3.Enabled {
		return nil
	}
	minioCli, err := utils.NewMinioClient(conf.S3)
	if err != nil {
		logrus.WithError(err).Error("archiving disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := utils.EnsureBucket(ctx, minioCli, conf.S3.Bucket, conf.S3.Region); err != nil {
		logrus.WithError(err).Warn("bucket check failed, uploads may fail")
	}
	return minioCli
}
