package dto

import (
	"time"

	"videochat/internal/app/model"
)

// ChatRequest is a question about one video. Timestamp, when present,
// is the playback position in seconds the viewer was at.
type ChatRequest struct {
	Question  string   `json:"question" binding:"required,min=1,max=2000"`
	Timestamp *float64 `json:"timestamp,omitempty" binding:"omitempty,gte=0"`
}

// ChatResponse is a grounded answer with the segments it drew on.
type ChatResponse struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Segments []model.SegmentMatch `json:"relevant_segments"`
}

// ChatHistoryEntry is one past exchange.
type ChatHistoryEntry struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryResponse wraps a video's exchange log.
type ChatHistoryResponse struct {
	VideoID int64              `json:"video_id"`
	History []ChatHistoryEntry `json:"history"`
}
