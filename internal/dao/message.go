package dao

const EventSessionFinished = "session_finished"

// SessionEvent is published to NSQ when a session reaches its final state.
// SourcePath and ReportPath are storage paths, set when the files were archived.
type SessionEvent struct {
	Event      string        `json:"event"`
	Timestamp  int64         `json:"timestamp"`
	SourcePath string        `json:"sourcePath,omitempty"`
	ReportPath string        `json:"reportPath,omitempty"`
	Record     HistoryRecord `json:"record"`
}
