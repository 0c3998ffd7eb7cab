package model

import "time"

// VideoStatus is the lifecycle state of an uploaded video. Transitions
// are forward-only: uploading -> queued -> processing -> completed|failed.
type VideoStatus string

const (
	StatusUploading  VideoStatus = "uploading"
	StatusQueued     VideoStatus = "queued"
	StatusProcessing VideoStatus = "processing"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s VideoStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ValidTransition enforces the allowed status edges.
func ValidTransition(from, to VideoStatus) bool {
	switch from {
	case StatusUploading:
		return to == StatusQueued
	case StatusQueued:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

type Video struct {
	ID                 int64
	Filename           string
	OriginalFilename   string
	Duration           float64
	Status             VideoStatus
	FileSize           int64
	MimeType           string
	JobID              string
	ProcessingStep     string
	ProcessingProgress int
	ThumbnailPath      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
