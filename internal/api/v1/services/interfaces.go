package services

import (
	"context"
	"mime/multipart"

	"videochat/internal/api/v1/dto"
	"videochat/internal/app/model"
)

// VideoService owns the video lifecycle: intake, listing, status and
// removal.
type VideoService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error)
	Get(ctx context.Context, id int64) (*dto.VideoResponse, error)
	List(ctx context.Context) (*dto.VideoListResponse, error)
	Delete(ctx context.Context, id int64) error
	Status(ctx context.Context, id int64) (*dto.StatusResponse, error)
	Translations(ctx context.Context, id int64) ([]dto.TranslationResponse, error)
}

// ChatService answers questions about completed videos.
type ChatService interface {
	Ask(ctx context.Context, videoID int64, req *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, videoID int64) (*dto.ChatHistoryResponse, error)
}

// JobService exposes tracked pipeline jobs.
type JobService interface {
	Get(ctx context.Context, jobID string) (*dto.JobResponse, error)
}

// StatusStreamer feeds live status snapshots to streaming handlers.
type StatusStreamer interface {
	Watch(ctx context.Context, videoID int64) <-chan model.StatusSnapshot
}
