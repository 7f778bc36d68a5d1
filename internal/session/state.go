package session

import "errors"

type State int

const (
	StateAwaitingUpload State = iota
	StateProcessingImage
	StateProcessingVideo
	StateAwaitingReportConfirmation
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingUpload:
		return "awaiting_upload"
	case StateProcessingImage:
		return "processing_image"
	case StateProcessingVideo:
		return "processing_video"
	case StateAwaitingReportConfirmation:
		return "awaiting_report_confirmation"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

func (s State) Processing() bool {
	return s == StateProcessingImage || s == StateProcessingVideo
}

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidState = errors.New("invalid session state")
)
