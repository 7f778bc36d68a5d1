package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"detectdemo/internal/config"
	"detectdemo/internal/counts"
	"detectdemo/internal/dao"
	"detectdemo/internal/metrics"
	"detectdemo/pkg/log"
)

// Manager owns the live sessions of the process.
type Manager struct {
	conf    *config.Config
	runner  Runner
	metrics *metrics.Metrics
	logger  *logrus.Entry

	// OnFinish is called once when a session reaches Done.
	OnFinish func(*Session)

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(ctx context.Context, conf *config.Config, runner Runner, m *metrics.Metrics) *Manager {
	return &Manager{
		conf:     conf,
		runner:   runner,
		metrics:  m,
		logger:   log.GetLogger(ctx).WithField("component", "session"),
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for an uploaded file, in AwaitingUpload.
func (m *Manager) Create(kind dao.MediaKind, fileName, sourcePath string) *Session {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	now := time.Now()
	s := &Session{
		Uuid:       id,
		Kind:       kind,
		FileName:   fileName,
		SourcePath: sourcePath,
		workDir:    m.conf.SessionDir(id),
		videoImage: m.conf.Report.VideoImage,
		metrics:    m.metrics,
		logger:     m.logger.WithField(log.CtxSessionId, id),
		onFinish:   m.finished,
		state:      StateAwaitingUpload,
		agg:        counts.NewAggregator(),
		table:      counts.PercentageTable{},
		frameIndex: -1,
		createTime: now,
		updateTime: now,
		done:       make(chan struct{}),
	}

	m.evict()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Upload creates a session and starts processing it.
func (m *Manager) Upload(ctx context.Context, kind dao.MediaKind, fileName, sourcePath string) (*Session, error) {
	s := m.Create(kind, fileName, sourcePath)
	if err := s.Start(ctx, m.runner); err != nil {
		m.Remove(s.Uuid)
		return nil, err
	}
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// List returns the sessions ordered by creation time, newest first.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].createTime.After(list[j].createTime)
	})
	return list
}

// Shutdown stops every running frame loop.
func (m *Manager) Shutdown() {
	for _, s := range m.List() {
		if s.State().Processing() {
			if err := s.Stop(); err != nil {
				m.logger.WithError(err).Warnf("stop session %s", s.Uuid)
			}
		}
	}
}

func (m *Manager) finished(s *Session) {
	if m.OnFinish != nil {
		m.OnFinish(s)
	}
	s.release()
	m.evict()
}

// evict forgets finished sessions older than the retention, then the oldest
// ones beyond MaxFinished.
func (m *Manager) evict() {
	conf := m.conf.Session
	cutoff := time.Now().Add(-conf.Retention)

	type finishedSession struct {
		id string
		at time.Time
	}
	var kept []finishedSession
	for _, s := range m.List() {
		at, ok := s.finishedAt()
		if !ok {
			continue
		}
		if conf.Retention > 0 && at.Before(cutoff) {
			m.Remove(s.Uuid)
			m.logger.Debugf("session %s expired", s.Uuid)
			continue
		}
		kept = append(kept, finishedSession{id: s.Uuid, at: at})
	}
	if conf.MaxFinished == 0 || len(kept) <= conf.MaxFinished {
		return
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].at.After(kept[j].at)
	})
	for _, f := range kept[conf.MaxFinished:] {
		m.Remove(f.id)
		m.logger.Debugf("session %s evicted", f.id)
	}
}
