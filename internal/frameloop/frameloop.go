// Package frameloop drives frame-by-frame processing of a stream.
package frameloop

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"detectdemo/internal/dao"
)

// ErrEmptyFrame is returned by a Step when the decoder yields a frame without
// pixels.
var ErrEmptyFrame = errors.New("empty frame")

// Step reads and processes the frame at index. It returns io.EOF once the
// stream has no more frames.
type Step func(ctx context.Context, index int) (dao.FrameUpdate, error)

// Run calls step for consecutive frame indexes until the stream ends or ctx is
// cancelled, handing every frame to onFrame. total is the advertised frame
// count, zero when unknown.
//
// A frame that fails is logged and still handed on with an empty summary, so
// that the caller sees every index including the last one.
func Run(ctx context.Context, total int, step Step, onFrame func(dao.FrameUpdate), logger *logrus.Entry) error {
	lastLogTime := time.Now()
	for index := 0; ; index++ {
		select {
		case <-ctx.Done():
			logger.Infof("stopped at frame %d", index)
			return ctx.Err()
		default:
		}

		update, err := step(ctx, index)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			logger.Infof("end of stream after %d frames", index)
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			logger.WithError(err).Errorf("frame %d failed", index)
			update = dao.FrameUpdate{}
		}
		update.Index = index
		update.Total = total
		onFrame(update)

		if time.Since(lastLogTime) > 5*time.Second {
			logger.Infof("processed %d/%d frames", index+1, total)
			lastLogTime = time.Now()
		}
	}
}
