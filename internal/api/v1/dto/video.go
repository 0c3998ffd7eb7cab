package dto

import (
	"time"

	"videochat/internal/app/model"
)

// VideoResponse is the public shape of a stored video.
type VideoResponse struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"original_filename"`
	Duration      float64   `json:"duration"`
	Status        string    `json:"status"`
	FileSize      int64     `json:"file_size"`
	MimeType      string    `json:"mime_type"`
	JobID         string    `json:"job_id,omitempty"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewVideoResponse maps a stored video to its API shape.
func NewVideoResponse(v *model.Video) *VideoResponse {
	return &VideoResponse{
		ID:            v.ID,
		Filename:      v.Filename,
		OriginalName:  v.OriginalFilename,
		Duration:      v.Duration,
		Status:        string(v.Status),
		FileSize:      v.FileSize,
		MimeType:      v.MimeType,
		JobID:         v.JobID,
		ThumbnailPath: v.ThumbnailPath,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	Video *VideoResponse `json:"video"`
	JobID string         `json:"job_id"`
}

// VideoListResponse wraps a listing.
type VideoListResponse struct {
	Videos []*VideoResponse `json:"videos"`
	Total  int              `json:"total"`
}

// StatusResponse is one processing status snapshot.
type StatusResponse struct {
	VideoID  int64  `json:"video_id"`
	Status   string `json:"status"`
	Step     string `json:"step,omitempty"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// NewStatusResponse maps a snapshot to its API shape.
func NewStatusResponse(s model.StatusSnapshot) *StatusResponse {
	return &StatusResponse{
		VideoID:  s.VideoID,
		Status:   string(s.Status),
		Step:     s.Step,
		Progress: s.Progress,
		Error:    s.Error,
	}
}

// TranslationResponse describes one subtitle track.
type TranslationResponse struct {
	LanguageCode string `json:"language_code"`
	VTTPath      string `json:"vtt_path"`
}
