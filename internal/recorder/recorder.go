// Package recorder persists what is left of a session once it is done:
// archived files in MinIO, a history record in badger and an NSQ event.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"detectdemo/internal/config"
	"detectdemo/internal/dao"
	"detectdemo/internal/history"
	"detectdemo/internal/session"
	"detectdemo/internal/utils"
	"detectdemo/pkg/log"
)

// Publisher is satisfied by *nsq.Producer.
type Publisher interface {
	Publish(topic string, body []byte) error
}

type Recorder struct {
	conf     *config.Config
	ctx      context.Context
	history  *history.Store
	minioCli *minio.Client
	producer Publisher
	logger   *logrus.Entry
}

// NewRecorder takes optional sinks, nil disables the sink.
func NewRecorder(ctx context.Context, conf *config.Config, store *history.Store, minioCli *minio.Client, producer Publisher) *Recorder {
	return &Recorder{
		conf:     conf,
		ctx:      ctx,
		history:  store,
		minioCli: minioCli,
		producer: producer,
		logger:   log.GetLogger(ctx).WithField("component", "recorder"),
	}
}

// SessionFinished is meant to be installed as session.Manager.OnFinish.
func (r *Recorder) SessionFinished(s *session.Session) {
	rec := s.HistoryRecord()
	ev := &dao.SessionEvent{
		Event:     dao.EventSessionFinished,
		Timestamp: time.Now().UnixNano(),
	}

	if r.minioCli != nil {
		ev.SourcePath, ev.ReportPath = r.archive(s)
		rec.ReportPath = ev.ReportPath
	}
	ev.Record = rec

	if r.history != nil {
		if err := r.history.Put(&rec); err != nil {
			r.logger.WithError(err).Errorf("save history of session %s failed", rec.Uuid)
		}
	}

	if r.producer != nil {
		msgData, _ := json.Marshal(ev)
		if err := r.producer.Publish(r.conf.NSQ.Topic, msgData); err != nil {
			r.logger.WithError(err).Errorf("publish to NSQ failed for session %s", rec.Uuid)
		}
	}

	r.logger.WithFields(logrus.Fields{
		log.CtxSessionId: rec.Uuid,
		"state":          rec.State,
		"frames":         rec.Frames,
	}).Infof("session recorded")
}

func (r *Recorder) archive(s *session.Session) (sourcePath, reportPath string) {
	ctx, cancel := context.WithTimeout(r.ctx, 30*time.Second)
	defer cancel()

	p := fmt.Sprintf("/%s/%s", s.Uuid, filepath.Base(s.SourcePath))
	if err := utils.UploadFileToMinio(ctx, r.minioCli, r.conf.S3.Bucket, s.SourcePath, p); err != nil {
		r.logger.WithError(err).Errorf("upload %s to minio failed", s.SourcePath)
	} else {
		sourcePath = p
	}

	data := s.ReportData()
	if data == nil {
		return sourcePath, ""
	}
	p = fmt.Sprintf("/%s/%s", s.Uuid, r.conf.Report.FileName)
	if err := utils.UploadBytesToMinio(ctx, r.minioCli, r.conf.S3.Bucket, data, p); err != nil {
		r.logger.WithError(err).Errorf("upload report of session %s to minio failed", s.Uuid)
		return sourcePath, ""
	}
	return sourcePath, p
}
