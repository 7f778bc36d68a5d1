// Package session drives one upload through detection, aggregation and the
// optional report, as an explicit state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"detectdemo/internal/config"
	"detectdemo/internal/counts"
	"detectdemo/internal/dao"
	"detectdemo/internal/metrics"
	"detectdemo/internal/report"
)

const overlayFileName = "last_overlay.jpg"

// Runner feeds frames of an uploaded file to onFrame, one call per frame.
type Runner interface {
	RunImage(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error
	RunVideo(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error
}

type ReportBuilder interface {
	Build(imagePath string, totals *counts.ClassCounts, table counts.PercentageTable) ([]byte, error)
}

type Session struct {
	Uuid       string
	Kind       dao.MediaKind
	FileName   string
	SourcePath string

	workDir    string
	videoImage string
	metrics    *metrics.Metrics
	logger     *logrus.Entry
	onFinish   func(*Session)

	mu            sync.Mutex
	state         State
	agg           *counts.Aggregator
	table         counts.PercentageTable
	frameIndex    int
	frameTotal    int
	summary       string
	overlay       []byte
	reportOffered bool
	reportSize    int
	reportData    []byte
	lastErr       string
	createTime    time.Time
	updateTime    time.Time
	finishTime    time.Time
	cancel        context.CancelFunc
	done          chan struct{}

	reportMu sync.Mutex
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the frame loop has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start moves the session out of AwaitingUpload and runs the frame loop in
// the background.
func (s *Session) Start(ctx context.Context, runner Runner) error {
	s.mu.Lock()
	if s.state != StateAwaitingUpload {
		s.mu.Unlock()
		return fmt.Errorf("%w: start in state %s", ErrInvalidState, s.state)
	}
	run := runner.RunVideo
	s.state = StateProcessingVideo
	if s.Kind == dao.MediaKindImage {
		run = runner.RunImage
		s.state = StateProcessingImage
	}
	s.agg.Reset()
	s.table = counts.PercentageTable{}
	ctx, s.cancel = context.WithCancel(ctx)
	s.updateTime = time.Now()
	s.mu.Unlock()

	s.metrics.SessionStarted(string(s.Kind))
	s.logger.Infof("processing %s %s", s.Kind, s.SourcePath)

	go func() {
		defer close(s.done)
		defer s.metrics.SessionStopped()
		err := run(ctx, s.SourcePath, s.onFrame)
		s.finishLoop(err)
	}()
	return nil
}

func (s *Session) onFrame(update dao.FrameUpdate) {
	frameCounts := counts.Extract(update.Summary)
	for _, item := range frameCounts.Items() {
		s.metrics.AddDetections(item.Label, item.Count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.agg.Merge(frameCounts)
	s.table = s.agg.Percentages()
	s.frameIndex = update.Index
	s.frameTotal = update.Total
	s.summary = update.Summary
	if update.Overlay != nil {
		s.overlay = update.Overlay
	}
	s.updateTime = time.Now()

	if s.Kind == dao.MediaKindVideo && update.Total > 0 && update.Index == update.Total-1 {
		s.offerReportLocked()
	}
}

func (s *Session) offerReportLocked() {
	if s.reportOffered {
		return
	}
	s.reportOffered = true
	s.state = StateAwaitingReportConfirmation
	s.logger.Infof("report offered at frame %d", s.frameIndex)
}

func (s *Session) finishLoop(err error) {
	s.mu.Lock()

	finished := false
	switch {
	case s.reportOffered:
		// a report request may have stopped the loop
	case errors.Is(err, context.Canceled):
		s.state = StateDone
		s.lastErr = "stopped"
		finished = true
	case err != nil:
		s.state = StateDone
		s.lastErr = err.Error()
		finished = true
		s.logger.WithError(err).Errorf("processing failed")
	case s.Kind == dao.MediaKindImage:
		s.offerReportLocked()
	case s.frameTotal <= 0:
		// the container did not report a frame count
		s.offerReportLocked()
	default:
		s.state = StateDone
		s.lastErr = fmt.Sprintf("stream ended at frame %d before last reported frame %d", s.frameIndex, s.frameTotal-1)
		finished = true
		s.logger.Warn(s.lastErr)
	}
	s.updateTime = time.Now()
	s.mu.Unlock()

	if finished {
		s.finish()
	}
}

// Stop ends the session without a report. A running frame loop is cancelled
// and waited for; a session waiting for report confirmation is closed too.
func (s *Session) Stop() error {
	s.reportMu.Lock()
	defer s.reportMu.Unlock()

	s.mu.Lock()
	state := s.state
	if !state.Processing() && state != StateAwaitingReportConfirmation {
		s.mu.Unlock()
		return fmt.Errorf("%w: stop in state %s", ErrInvalidState, state)
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-s.done

	s.mu.Lock()
	if s.state != StateAwaitingReportConfirmation {
		// the loop ended the session itself
		s.mu.Unlock()
		return nil
	}
	s.state = StateDone
	s.lastErr = "stopped"
	s.updateTime = time.Now()
	s.mu.Unlock()

	s.logger.Infof("stopped without report")
	s.finish()
	return nil
}

// Report renders the one-shot PDF. It is only available once the report has
// been offered; a successful report ends the session. A report that fails
// leaves the session as it was.
func (s *Session) Report(builder ReportBuilder) ([]byte, error) {
	s.reportMu.Lock()
	defer s.reportMu.Unlock()

	s.mu.Lock()
	if s.state != StateAwaitingReportConfirmation {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: report in state %s", ErrInvalidState, state)
	}
	cancel := s.cancel
	s.mu.Unlock()

	// requesting the report ends the loop
	if cancel != nil {
		cancel()
	}
	<-s.done

	s.mu.Lock()
	totals := s.agg.Totals()
	table := s.table
	overlay := s.overlay
	s.mu.Unlock()

	imagePath, err := s.reportImagePath(overlay)
	if err != nil {
		return nil, err
	}

	data, err := builder.Build(imagePath, totals, table)
	if err != nil {
		var readErr *report.ImageReadError
		if errors.As(err, &readErr) {
			s.metrics.ReportResult(metrics.ReportImageError)
		} else {
			s.metrics.ReportResult(metrics.ReportError)
		}
		s.mu.Lock()
		s.lastErr = err.Error()
		s.updateTime = time.Now()
		s.mu.Unlock()
		s.logger.WithError(err).Errorf("report failed")
		return nil, err
	}
	s.metrics.ReportResult(metrics.ReportOK)

	s.mu.Lock()
	s.state = StateDone
	s.reportSize = len(data)
	s.reportData = data
	s.lastErr = ""
	s.updateTime = time.Now()
	s.mu.Unlock()

	s.logger.Infof("report generated, %d bytes", len(data))
	s.finish()
	return data, nil
}

// reportImagePath picks the still image embedded in the report. Videos embed
// the uploaded file itself unless configured to use the last overlay frame.
func (s *Session) reportImagePath(overlay []byte) (string, error) {
	if s.Kind == dao.MediaKindImage || s.videoImage != config.VideoImageOverlay {
		return s.SourcePath, nil
	}
	if len(overlay) == 0 {
		return "", &report.ImageReadError{Path: overlayFileName, Err: errors.New("no frame was rendered")}
	}
	if err := os.MkdirAll(s.workDir, 0755); err != nil {
		return "", err
	}
	p := filepath.Join(s.workDir, overlayFileName)
	if err := os.WriteFile(p, overlay, 0644); err != nil {
		return "", fmt.Errorf("write overlay: %w", err)
	}
	return p, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.finishTime = time.Now()
	s.mu.Unlock()

	if s.onFinish != nil {
		s.onFinish(s)
	}
}

// release drops what is only needed until the session has been recorded.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportData = nil
}

// finishedAt returns when the session was handed to the finish hook.
func (s *Session) finishedAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDone || s.finishTime.IsZero() {
		return time.Time{}, false
	}
	return s.finishTime, true
}

// ReportData returns the generated document. It is kept until the session
// has been handed to the finish hook, nil otherwise.
func (s *Session) ReportData() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportData
}

// Overlay returns the last rendered frame as JPEG, nil before the first frame.
func (s *Session) Overlay() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

func (s *Session) Spec() dao.SessionSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dao.SessionSpec{
		Uuid:        s.Uuid,
		Kind:        s.Kind,
		FileName:    s.FileName,
		State:       s.state.String(),
		FrameIndex:  s.frameIndex,
		FrameTotal:  max(s.frameTotal, 0),
		Summary:     s.summary,
		Totals:      s.agg.Totals(),
		Percentages: s.table,
		ReportReady: s.state == StateAwaitingReportConfirmation,
		Error:       s.lastErr,
		CreateTime:  s.createTime.Format(time.RFC3339),
		UpdateTime:  s.updateTime.Format(time.RFC3339),
	}
}

func (s *Session) HistoryRecord() dao.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dao.HistoryRecord{
		Uuid:        s.Uuid,
		Kind:        s.Kind,
		FileName:    s.FileName,
		State:       s.state.String(),
		Frames:      s.frameIndex + 1,
		Totals:      s.agg.Totals(),
		Percentages: s.table,
		ReportSize:  s.reportSize,
		FinishTime:  s.updateTime.Format(time.RFC3339),
	}
}
