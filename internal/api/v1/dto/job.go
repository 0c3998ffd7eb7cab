package dto

import (
	"time"

	"videochat/internal/app/pipeline"
)

// JobResponse is the public shape of a pipeline job's tracked state.
type JobResponse struct {
	JobID     string    `json:"job_id"`
	VideoID   int64     `json:"video_id"`
	State     string    `json:"state"`
	Step      string    `json:"step,omitempty"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJobResponse maps a tracked status to its API shape.
func NewJobResponse(s *pipeline.JobStatus) *JobResponse {
	return &JobResponse{
		JobID:     s.JobID,
		VideoID:   s.VideoID,
		State:     string(s.State),
		Step:      s.Step,
		Progress:  s.Progress,
		Error:     s.Error,
		UpdatedAt: s.UpdatedAt,
	}
}
