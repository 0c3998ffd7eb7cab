package repository

import (
	"context"
	"errors"

	"videochat/internal/app/model"
)

// ErrNotFound is returned when a video or dependent row does not exist.
var ErrNotFound = errors.New("not found")

// VideoDAO is the persistence contract for videos and their dependent
// segments, translations and chat history. The video row has exactly
// one writer (the pipeline run owning its job); readers tolerate stale
// snapshots.
type VideoDAO interface {
	Close() error

	CreateVideo(ctx context.Context, video *model.Video) (int64, error)
	GetVideo(ctx context.Context, id int64) (*model.Video, error)
	ListVideos(ctx context.Context) ([]model.Video, error)
	// DeleteVideo removes the video and cascades to all dependents.
	DeleteVideo(ctx context.Context, id int64) error

	// UpdateStatus applies a status transition. Must be flushed durably
	// before the caller proceeds, so observers see a monotone snapshot.
	UpdateStatus(ctx context.Context, id int64, status model.VideoStatus) error
	// UpdateProgress persists the current pipeline step and progress.
	UpdateProgress(ctx context.Context, id int64, step string, progress int) error
	UpdateDuration(ctx context.Context, id int64, duration float64) error
	SetJobID(ctx context.Context, id int64, jobID string) error
	SetThumbnail(ctx context.Context, id int64, path string) error

	AddTranslation(ctx context.Context, t *model.Translation) error
	ListTranslations(ctx context.Context, videoID int64) ([]model.Translation, error)

	// ListSegments returns a video's transcript in playback order.
	ListSegments(ctx context.Context, videoID int64) ([]model.Segment, error)

	// StoreSegments persists a video's entire segment batch atomically:
	// either all rows commit or none do.
	StoreSegments(ctx context.Context, videoID int64, segments []model.Segment) error
	// SearchSegments ranks a video's segments against queryEmbedding.
	// With timestamp set, scoring is 0.7*similarity + 0.3*temporal
	// proximity; otherwise plain cosine similarity. Ties break on
	// ascending segment id.
	SearchSegments(ctx context.Context, videoID int64, queryEmbedding []float32, limit int, timestamp *float64) ([]model.SegmentMatch, error)

	AddChat(ctx context.Context, videoID int64, question, answer string) error
	GetChatHistory(ctx context.Context, videoID int64) ([]model.ChatHistory, error)
}
