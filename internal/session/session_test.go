package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"detectdemo/internal/config"
	"detectdemo/internal/counts"
	"detectdemo/internal/dao"
	"detectdemo/internal/report"
)

type fakeRunner struct {
	frames []dao.FrameUpdate
	err    error
	// block keeps the loop running after the scripted frames until cancelled
	block bool
}

func (f *fakeRunner) run(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	for _, frame := range f.frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		onFrame(frame)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeRunner) RunImage(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	return f.run(ctx, path, onFrame)
}

func (f *fakeRunner) RunVideo(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	return f.run(ctx, path, onFrame)
}

type fakeBuilder struct {
	mu     sync.Mutex
	calls  int
	path   string
	totals map[string]int
	err    error
}

func (b *fakeBuilder) Build(imagePath string, totals *counts.ClassCounts, table counts.PercentageTable) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.path = imagePath
	b.totals = totals.Map()
	if b.err != nil {
		return nil, b.err
	}
	return []byte("%PDF-fake"), nil
}

func newTestManager(t *testing.T, runner Runner) (*Manager, *[]string) {
	t.Helper()
	conf := config.DefaultConfig()
	conf.WorkDir = t.TempDir()
	m := NewManager(context.Background(), conf, runner, nil)
	var mu sync.Mutex
	finished := []string{}
	m.OnFinish = func(s *Session) {
		mu.Lock()
		defer mu.Unlock()
		finished = append(finished, s.Uuid)
	}
	return m, &finished
}

func waitLoop(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("frame loop did not finish")
	}
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 8), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestImageSession(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "2 tomato, 5 leaf"}}}
	m, finished := newTestManager(t, runner)

	s, err := m.Upload(context.Background(), dao.MediaKindImage, "plant.jpg", "uploads/plant.jpg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)

	if s.State() != StateAwaitingReportConfirmation {
		t.Fatalf("state = %s", s.State())
	}
	spec := s.Spec()
	if !reflect.DeepEqual(spec.Totals.Map(), map[string]int{"tomato": 2, "leaf": 5}) {
		t.Fatalf("totals = %v", spec.Totals.Map())
	}
	if !spec.ReportReady {
		t.Fatalf("report not ready")
	}
	if got := spec.Percentages.Map(); got["tomato"] != "28.57%" || got["leaf"] != "71.43%" {
		t.Fatalf("percentages = %v", got)
	}

	builder := &fakeBuilder{}
	data, err := s.Report(builder)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if string(data) != "%PDF-fake" {
		t.Fatalf("data = %q", data)
	}
	if builder.path != "uploads/plant.jpg" {
		t.Fatalf("report image = %q", builder.path)
	}
	if s.State() != StateDone {
		t.Fatalf("state after report = %s", s.State())
	}
	if len(*finished) != 1 || (*finished)[0] != s.Uuid {
		t.Fatalf("finished = %v", *finished)
	}

	if _, err := s.Report(builder); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second report err = %v", err)
	}
	if builder.calls != 1 {
		t.Fatalf("builder calls = %d", builder.calls)
	}
}

func TestVideoSessionAggregates(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{
		{Index: 0, Total: 3, Summary: "2 tomato"},
		{Index: 1, Total: 3, Summary: "1 tomato, 1 leaf"},
		{Index: 2, Total: 3, Summary: "3 leaf"},
	}}
	m, _ := newTestManager(t, runner)

	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)

	if s.State() != StateAwaitingReportConfirmation {
		t.Fatalf("state = %s", s.State())
	}
	spec := s.Spec()
	if spec.FrameIndex != 2 || spec.FrameTotal != 3 {
		t.Fatalf("frame = %d/%d", spec.FrameIndex, spec.FrameTotal)
	}
	if !reflect.DeepEqual(spec.Totals.Labels(), []string{"tomato", "leaf"}) {
		t.Fatalf("labels = %v", spec.Totals.Labels())
	}

	builder := &fakeBuilder{}
	if _, err := s.Report(builder); err != nil {
		t.Fatalf("report: %v", err)
	}
	if builder.path != "uploads/clip.mp4" {
		t.Fatalf("video report should embed the uploaded file, got %q", builder.path)
	}
	if !reflect.DeepEqual(builder.totals, map[string]int{"tomato": 3, "leaf": 4}) {
		t.Fatalf("report totals = %v", builder.totals)
	}
}

func TestVideoReportImageReadError(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(video, []byte("\x00\x00\x00\x18ftypmp42"), 0644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "1 tomato"}}}
	m, finished := newTestManager(t, runner)

	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", video)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)

	data, err := s.Report(report.NewBuilder("Detection Report"))
	var readErr *report.ImageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ImageReadError, got %v", err)
	}
	if data != nil {
		t.Fatalf("document returned on failure")
	}
	if s.State() != StateAwaitingReportConfirmation {
		t.Fatalf("failed report changed state to %s", s.State())
	}
	if s.Spec().Error == "" {
		t.Fatalf("error not surfaced in session")
	}
	if len(*finished) != 0 {
		t.Fatalf("session finished on failed report")
	}
}

func TestVideoReportOverlayImage(t *testing.T) {
	overlay := jpegBytes(t)
	runner := &fakeRunner{frames: []dao.FrameUpdate{
		{Index: 0, Total: 2, Summary: "1 tomato", Overlay: overlay},
		{Index: 1, Total: 2, Summary: "1 leaf", Overlay: overlay},
	}}
	conf := config.DefaultConfig()
	conf.WorkDir = t.TempDir()
	conf.Report.VideoImage = config.VideoImageOverlay
	m := NewManager(context.Background(), conf, runner, nil)

	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)

	data, err := s.Report(report.NewBuilder("Detection Report"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
	if !bytes.Equal(s.Overlay(), overlay) {
		t.Fatalf("overlay not kept")
	}
}

func TestVideoReportStopsRunningLoop(t *testing.T) {
	// the container under-reports its frame count, so the offer comes early
	runner := &fakeRunner{
		frames: []dao.FrameUpdate{
			{Index: 0, Total: 2, Summary: "1 tomato"},
			{Index: 1, Total: 2, Summary: "1 tomato"},
		},
		block: true,
	}
	m, _ := newTestManager(t, runner)
	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.State() != StateAwaitingReportConfirmation {
		if time.Now().After(deadline) {
			t.Fatalf("report never offered, state %s", s.State())
		}
		time.Sleep(5 * time.Millisecond)
	}

	builder := &fakeBuilder{}
	if _, err := s.Report(builder); err != nil {
		t.Fatalf("report: %v", err)
	}
	waitLoop(t, s)
	if builder.totals["tomato"] != 2 {
		t.Fatalf("totals = %v", builder.totals)
	}
}

func TestVideoStop(t *testing.T) {
	runner := &fakeRunner{
		frames: []dao.FrameUpdate{{Index: 0, Total: 10, Summary: "1 leaf"}},
		block:  true,
	}
	m, finished := newTestManager(t, runner)
	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.State() != StateDone {
		t.Fatalf("state = %s", s.State())
	}
	if s.Spec().Error != "stopped" {
		t.Fatalf("error = %q", s.Spec().Error)
	}
	if len(*finished) != 1 {
		t.Fatalf("finished = %v", *finished)
	}
	if _, err := s.Report(&fakeBuilder{}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("report after stop err = %v", err)
	}
	if err := s.Stop(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second stop err = %v", err)
	}
}

func TestVideoEndsBeforeLastFrame(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{
		{Index: 0, Total: 5, Summary: "1 tomato"},
		{Index: 1, Total: 5, Summary: "1 tomato"},
	}}
	m, finished := newTestManager(t, runner)
	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)

	if s.State() != StateDone {
		t.Fatalf("state = %s", s.State())
	}
	if s.Spec().ReportReady {
		t.Fatalf("report offered without reaching the last frame")
	}
	if len(*finished) != 1 {
		t.Fatalf("finished = %v", *finished)
	}
}

func TestVideoUnknownFrameCount(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{
		{Index: 0, Total: 0, Summary: "1 tomato"},
		{Index: 1, Total: 0, Summary: "no detections"},
	}}
	m, _ := newTestManager(t, runner)
	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)
	if s.State() != StateAwaitingReportConfirmation {
		t.Fatalf("state = %s", s.State())
	}
}

func TestRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("failed to open input video")}
	m, _ := newTestManager(t, runner)
	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)
	if s.State() != StateDone {
		t.Fatalf("state = %s", s.State())
	}
	if s.Spec().Error != "failed to open input video" {
		t.Fatalf("error = %q", s.Spec().Error)
	}
	if len(s.Spec().Percentages) != 0 {
		t.Fatalf("percentages without frames")
	}
}

func TestZeroDetectionsImage(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "(no detections)"}}}
	m, _ := newTestManager(t, runner)
	s, err := m.Upload(context.Background(), dao.MediaKindImage, "empty.png", "uploads/empty.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)
	spec := s.Spec()
	if spec.Totals.Len() != 0 || len(spec.Percentages) != 0 {
		t.Fatalf("spec = %+v", spec)
	}
}

func TestStartTwice(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "1 leaf"}}}
	m, _ := newTestManager(t, runner)
	s := m.Create(dao.MediaKindImage, "a.png", "uploads/a.png")
	if s.State() != StateAwaitingUpload {
		t.Fatalf("state = %s", s.State())
	}
	if err := s.Start(context.Background(), runner); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(context.Background(), runner); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second start err = %v", err)
	}
	waitLoop(t, s)
}

func TestManagerGet(t *testing.T) {
	m, _ := newTestManager(t, &fakeRunner{})
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	s := m.Create(dao.MediaKindImage, "a.png", "uploads/a.png")
	got, err := m.Get(s.Uuid)
	if err != nil || got != s {
		t.Fatalf("get = %v, %v", got, err)
	}
	if len(m.List()) != 1 {
		t.Fatalf("list = %d", len(m.List()))
	}
	m.Remove(s.Uuid)
	if _, err := m.Get(s.Uuid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("removed session still found")
	}
}

func TestStateString(t *testing.T) {
	if StateAwaitingReportConfirmation.String() != "awaiting_report_confirmation" {
		t.Fatalf("string = %s", StateAwaitingReportConfirmation)
	}
	if !StateProcessingVideo.Processing() || StateDone.Processing() {
		t.Fatalf("processing flags wrong")
	}
}

func TestStopAfterFailedVideoReport(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(video, []byte("\x00\x00\x00\x18ftypmp42"), 0644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "1 tomato"}}}
	m, finished := newTestManager(t, runner)

	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", video)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)

	if _, err := s.Report(report.NewBuilder("Detection Report")); err == nil {
		t.Fatalf("report of a video file should fail")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop while awaiting confirmation: %v", err)
	}
	spec := s.Spec()
	if spec.State != StateDone.String() || spec.Error != "stopped" {
		t.Fatalf("state = %s, error = %q", spec.State, spec.Error)
	}
	if len(*finished) != 1 || (*finished)[0] != s.Uuid {
		t.Fatalf("finished = %v", *finished)
	}
	if err := s.Stop(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second stop err = %v", err)
	}
	if _, err := s.Report(&fakeBuilder{}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("report after stop err = %v", err)
	}
}

func TestFinishedSessionReleasesReport(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "1 leaf"}}}
	m, _ := newTestManager(t, runner)
	var seen []byte
	m.OnFinish = func(s *Session) {
		seen = s.ReportData()
	}

	s, err := m.Upload(context.Background(), dao.MediaKindImage, "a.png", "uploads/a.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)
	if _, err := s.Report(&fakeBuilder{}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if string(seen) != "%PDF-fake" {
		t.Fatalf("finish hook saw %q", seen)
	}
	if s.ReportData() != nil {
		t.Fatalf("report data kept after finish")
	}
}

func finishImageSession(t *testing.T, m *Manager) *Session {
	t.Helper()
	s, err := m.Upload(context.Background(), dao.MediaKindImage, "a.png", "uploads/a.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	waitLoop(t, s)
	if _, err := s.Report(&fakeBuilder{}); err != nil {
		t.Fatalf("report: %v", err)
	}
	return s
}

func TestManagerEvictsBeyondMaxFinished(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "1 leaf"}}}
	m, _ := newTestManager(t, runner)
	m.conf.Session = config.SessionConfig{MaxFinished: 1}

	first := finishImageSession(t, m)
	second := finishImageSession(t, m)

	if _, err := m.Get(first.Uuid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("oldest finished session kept, err = %v", err)
	}
	if _, err := m.Get(second.Uuid); err != nil {
		t.Fatalf("newest finished session evicted: %v", err)
	}

	live := m.Create(dao.MediaKindImage, "b.png", "uploads/b.png")
	if _, err := m.Get(live.Uuid); err != nil {
		t.Fatalf("unfinished session evicted: %v", err)
	}
	if len(m.List()) != 2 {
		t.Fatalf("list = %d", len(m.List()))
	}
}

func TestManagerEvictsExpired(t *testing.T) {
	runner := &fakeRunner{frames: []dao.FrameUpdate{{Index: 0, Total: 1, Summary: "1 leaf"}}}
	m, _ := newTestManager(t, runner)
	m.conf.Session = config.SessionConfig{Retention: 20 * time.Millisecond}

	old := finishImageSession(t, m)
	if _, err := m.Get(old.Uuid); err != nil {
		t.Fatalf("session evicted right after finishing: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	m.Create(dao.MediaKindImage, "b.png", "uploads/b.png")
	if _, err := m.Get(old.Uuid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session kept, err = %v", err)
	}
}
