package pg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"videochat/internal/app/model"
	"videochat/internal/app/repository"
)

// VideoDB implements repository.VideoDAO on PostgreSQL with the
// pgvector extension for segment embeddings.
type VideoDB struct {
	db *sql.DB
}

// NewVideoDB wraps an open PostgreSQL connection.
func NewVideoDB(db *sql.DB) *VideoDB {
	return &VideoDB{db: db}
}

func (v *VideoDB) Close() error {
	return v.db.Close()
}

func (v *VideoDB) CreateVideo(ctx context.Context, video *model.Video) (int64, error) {
	query := `INSERT INTO videos (filename, original_filename, status, file_size, mime_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id`

	var id int64
	err := v.db.QueryRowContext(ctx, query,
		video.Filename, video.OriginalFilename, video.Status, video.FileSize, video.MimeType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert video: %w", err)
	}
	return id, nil
}

func (v *VideoDB) GetVideo(ctx context.Context, id int64) (*model.Video, error) {
	query := `SELECT id, filename, original_filename, COALESCE(duration, 0), status,
			COALESCE(file_size, 0), COALESCE(mime_type, ''), COALESCE(job_id, ''),
			COALESCE(processing_step, ''), COALESCE(processing_progress, 0),
			COALESCE(thumbnail_path, ''), created_at, updated_at
		FROM videos WHERE id = $1`

	var video model.Video
	err := v.db.QueryRowContext(ctx, query, id).Scan(
		&video.ID, &video.Filename, &video.OriginalFilename, &video.Duration, &video.Status,
		&video.FileSize, &video.MimeType, &video.JobID,
		&video.ProcessingStep, &video.ProcessingProgress,
		&video.ThumbnailPath, &video.CreatedAt, &video.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query video: %w", err)
	}
	return &video, nil
}

func (v *VideoDB) ListVideos(ctx context.Context) ([]model.Video, error) {
	query := `SELECT id, filename, original_filename, COALESCE(duration, 0), status,
			COALESCE(file_size, 0), COALESCE(mime_type, ''), COALESCE(job_id, ''),
			COALESCE(processing_step, ''), COALESCE(processing_progress, 0),
			COALESCE(thumbnail_path, ''), created_at, updated_at
		FROM videos ORDER BY created_at DESC`

	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var video model.Video
		err = rows.Scan(
			&video.ID, &video.Filename, &video.OriginalFilename, &video.Duration, &video.Status,
			&video.FileSize, &video.MimeType, &video.JobID,
			&video.ProcessingStep, &video.ProcessingProgress,
			&video.ThumbnailPath, &video.CreatedAt, &video.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return videos, nil
}

func (v *VideoDB) DeleteVideo(ctx context.Context, id int64) error {
	// Dependent rows go with the video via ON DELETE CASCADE.
	result, err := v.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (v *VideoDB) UpdateStatus(ctx context.Context, id int64, status model.VideoStatus) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (v *VideoDB) UpdateProgress(ctx context.Context, id int64, step string, progress int) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET processing_step = $1, processing_progress = $2, updated_at = now() WHERE id = $3`,
		step, progress, id)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (v *VideoDB) UpdateDuration(ctx context.Context, id int64, duration float64) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET duration = $1, updated_at = now() WHERE id = $2`, duration, id)
	if err != nil {
		return fmt.Errorf("update duration: %w", err)
	}
	return nil
}

func (v *VideoDB) SetJobID(ctx context.Context, id int64, jobID string) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET job_id = $1, updated_at = now() WHERE id = $2`, jobID, id)
	if err != nil {
		return fmt.Errorf("set job id: %w", err)
	}
	return nil
}

func (v *VideoDB) SetThumbnail(ctx context.Context, id int64, path string) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET thumbnail_path = $1, updated_at = now() WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}
	return nil
}

func (v *VideoDB) AddTranslation(ctx context.Context, t *model.Translation) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO translations (video_id, language_code, vtt_path, created_at) VALUES ($1, $2, $3, now())`,
		t.VideoID, t.LanguageCode, t.VTTPath)
	if err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	return nil
}

func (v *VideoDB) ListTranslations(ctx context.Context, videoID int64) ([]model.Translation, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, video_id, language_code, COALESCE(vtt_path, ''), created_at
		 FROM translations WHERE video_id = $1 ORDER BY id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	var translations []model.Translation
	for rows.Next() {
		var t model.Translation
		if err = rows.Scan(&t.ID, &t.VideoID, &t.LanguageCode, &t.VTTPath, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		translations = append(translations, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return translations, nil
}

func (v *VideoDB) AddChat(ctx context.Context, videoID int64, question, answer string) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO chat_history (video_id, question, answer, created_at) VALUES ($1, $2, $3, now())`,
		videoID, question, answer)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (v *VideoDB) GetChatHistory(ctx context.Context, videoID int64) ([]model.ChatHistory, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, video_id, question, answer, created_at
		 FROM chat_history WHERE video_id = $1 ORDER BY created_at DESC, id DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	var history []model.ChatHistory
	for rows.Next() {
		var c model.ChatHistory
		if err = rows.Scan(&c.ID, &c.VideoID, &c.Question, &c.Answer, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		history = append(history, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return history, nil
}
