package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"detectdemo/internal/config"
	"detectdemo/internal/counts"
	"detectdemo/internal/dao"
	"detectdemo/internal/history"
	"detectdemo/internal/session"
)

type fakePublisher struct {
	mu       sync.Mutex
	topic    string
	messages [][]byte
	err      error
}

func (p *fakePublisher) Publish(topic string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.messages = append(p.messages, body)
	return p.err
}

type pdfBuilder struct{}

func (pdfBuilder) Build(imagePath string, totals *counts.ClassCounts, table counts.PercentageTable) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

type oneFrameRunner struct {
	summary string
}

func (r oneFrameRunner) RunImage(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	onFrame(dao.FrameUpdate{Index: 0, Total: 1, Summary: r.summary})
	return nil
}

func (r oneFrameRunner) RunVideo(ctx context.Context, path string, onFrame func(dao.FrameUpdate)) error {
	return errors.New("cannot open video")
}

func TestSessionFinished(t *testing.T) {
	conf := config.DefaultConfig()
	conf.WorkDir = t.TempDir()

	store, err := history.NewStore(t.TempDir(), logrus.NewEntry(logrus.New()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	pub := &fakePublisher{}
	r := NewRecorder(context.Background(), conf, store, nil, pub)

	m := session.NewManager(context.Background(), conf, oneFrameRunner{summary: "3 tomato"}, nil)
	m.OnFinish = r.SessionFinished

	s, err := m.Upload(context.Background(), dao.MediaKindVideo, "clip.mp4", "uploads/clip.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("session did not finish")
	}

	rec, err := store.Get(s.Uuid)
	if err != nil {
		t.Fatalf("history get: %v", err)
	}
	if rec.State != "done" || rec.Kind != dao.MediaKindVideo {
		t.Fatalf("record = %+v", rec)
	}

	if pub.topic != conf.NSQ.Topic || len(pub.messages) != 1 {
		t.Fatalf("published %d messages to %q", len(pub.messages), pub.topic)
	}
	ev := dao.SessionEvent{}
	if err := json.Unmarshal(pub.messages[0], &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if ev.Event != dao.EventSessionFinished || ev.Record.Uuid != s.Uuid {
		t.Fatalf("event = %+v", ev)
	}
	if ev.SourcePath != "" || ev.ReportPath != "" {
		t.Fatalf("archive paths set without storage: %+v", ev)
	}
}

func TestSessionFinishedWithReport(t *testing.T) {
	conf := config.DefaultConfig()
	conf.WorkDir = t.TempDir()

	pub := &fakePublisher{err: errors.New("nsqd down")}
	r := NewRecorder(context.Background(), conf, nil, nil, pub)

	m := session.NewManager(context.Background(), conf, oneFrameRunner{summary: "1 leaf"}, nil)
	m.OnFinish = r.SessionFinished

	s, err := m.Upload(context.Background(), dao.MediaKindImage, "leaf.png", "uploads/leaf.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	<-s.Done()
	if len(pub.messages) != 0 {
		t.Fatalf("published before the report")
	}

	if _, err := s.Report(pdfBuilder{}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("messages = %d", len(pub.messages))
	}
	ev := dao.SessionEvent{}
	if err := json.Unmarshal(pub.messages[0], &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if ev.Record.ReportSize != len("%PDF-1.3") || ev.Record.Totals.Get("leaf") != 1 {
		t.Fatalf("record = %+v", ev.Record)
	}
}
