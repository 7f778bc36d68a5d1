package dao

import (
	"path/filepath"
	"strings"

	"detectdemo/internal/counts"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// KindOfFile guesses the media kind from the file extension, "" when the
// extension is not a supported one.
func KindOfFile(name string) MediaKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return MediaKindImage
	case ".mp4":
		return MediaKindVideo
	}
	return ""
}

// FrameUpdate is what the frame loop hands to the session for each frame.
type FrameUpdate struct {
	Index int
	// Total is the frame count reported by the source, <= 0 when unknown.
	Total   int
	Summary string
	// Overlay is the rendered frame as JPEG.
	Overlay []byte
}

type SessionSpec struct {
	Uuid        string                 `json:"uuid" jsonschema_description:"Session id"`
	Kind        MediaKind              `json:"kind" jsonschema:"enum=image,enum=video"`
	FileName    string                 `json:"fileName" jsonschema_description:"Uploaded file name"`
	State       string                 `json:"state" jsonschema_description:"Session state"`
	FrameIndex  int                    `json:"frameIndex" jsonschema_description:"Index of the last processed frame, -1 before the first"`
	FrameTotal  int                    `json:"frameTotal" jsonschema_description:"Frame count reported by the source, 0 when unknown"`
	Summary     string                 `json:"summary,omitempty" jsonschema_description:"Detector summary of the last frame"`
	Totals      *counts.ClassCounts    `json:"totals" jsonschema:"type=array"`
	Percentages counts.PercentageTable `json:"percentages"`
	ReportReady bool                   `json:"reportReady" jsonschema_description:"Whether the report can be generated now"`
	Error       string                 `json:"error,omitempty"`
	CreateTime  string                 `json:"createTime"`
	UpdateTime  string                 `json:"updateTime"`
}

// CreateSessionRequest is the multipart form of an upload. Kind defaults to
// the one implied by the file extension.
type CreateSessionRequest struct {
	Kind MediaKind `form:"kind" binding:"omitempty,oneof=image video"`
}

type CreateSessionResponse struct {
	Uuid string `json:"uuid"`
}

// HistoryRecord is the final tally of a finished session.
type HistoryRecord struct {
	Uuid        string                 `json:"uuid"`
	Kind        MediaKind              `json:"kind"`
	FileName    string                 `json:"fileName"`
	State       string                 `json:"state"`
	Frames      int                    `json:"frames"`
	Totals      *counts.ClassCounts    `json:"totals"`
	Percentages counts.PercentageTable `json:"percentages"`
	ReportSize  int                    `json:"reportSize,omitempty"`
	ReportPath  string                 `json:"reportPath,omitempty"`
	FinishTime  string                 `json:"finishTime"`
}

type ListHistoryRequest struct {
	Start int `json:"start" form:"start" binding:"min=0"`
	Limit int `json:"limit" form:"limit" binding:"min=0,max=50"`
}

type ListHistoryResponse struct {
	Items []HistoryRecord `json:"items"`
	Total int64           `json:"total"`
}
