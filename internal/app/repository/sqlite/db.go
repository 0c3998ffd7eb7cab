package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"videochat/internal/app/embedding/similarity"
	"videochat/internal/app/model"
	"videochat/internal/app/repository"
	"videochat/internal/app/repository/migrate"
)

// VideoDB implements repository.VideoDAO on SQLite for single-node
// deployments without PostgreSQL. Embeddings are stored as JSON and
// ranked in-process with the same formula the pgvector backend uses.
type VideoDB struct {
	db     *sql.DB
	cosine *similarity.CosineCalculator
}

// Open opens (creating if needed) the SQLite database at dbPath and
// applies the schema.
func Open(dbPath string) (*VideoDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_foreign_keys=on", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate.SQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewVideoDB(db), nil
}

// NewVideoDB wraps an open SQLite connection.
func NewVideoDB(db *sql.DB) *VideoDB {
	return &VideoDB{db: db, cosine: similarity.NewCosineCalculator()}
}

func (v *VideoDB) Close() error {
	return v.db.Close()
}

func (v *VideoDB) CreateVideo(ctx context.Context, video *model.Video) (int64, error) {
	result, err := v.db.ExecContext(ctx,
		`INSERT INTO videos (filename, original_filename, status, file_size, mime_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, datetime('now'), datetime('now'))`,
		video.Filename, video.OriginalFilename, video.Status, video.FileSize, video.MimeType)
	if err != nil {
		return 0, fmt.Errorf("insert video: %w", err)
	}
	return result.LastInsertId()
}

func (v *VideoDB) GetVideo(ctx context.Context, id int64) (*model.Video, error) {
	query := `SELECT id, filename, original_filename, COALESCE(duration, 0), status,
			COALESCE(file_size, 0), COALESCE(mime_type, ''), COALESCE(job_id, ''),
			COALESCE(processing_step, ''), COALESCE(processing_progress, 0),
			COALESCE(thumbnail_path, ''), created_at, updated_at
		FROM videos WHERE id = ?`

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
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, filename, original_filename, COALESCE(duration, 0), status,
			COALESCE(file_size, 0), COALESCE(mime_type, ''), COALESCE(job_id, ''),
			COALESCE(processing_step, ''), COALESCE(processing_progress, 0),
			COALESCE(thumbnail_path, ''), created_at, updated_at
		 FROM videos ORDER BY created_at DESC`)
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
	return videos, rows.Err()
}

func (v *VideoDB) DeleteVideo(ctx context.Context, id int64) error {
	result, err := v.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
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
		`UPDATE videos SET status = ?, updated_at = datetime('now') WHERE id = ?`, status, id)
	return err
}

func (v *VideoDB) UpdateProgress(ctx context.Context, id int64, step string, progress int) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET processing_step = ?, processing_progress = ?, updated_at = datetime('now') WHERE id = ?`,
		step, progress, id)
	return err
}

func (v *VideoDB) UpdateDuration(ctx context.Context, id int64, duration float64) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET duration = ?, updated_at = datetime('now') WHERE id = ?`, duration, id)
	return err
}

func (v *VideoDB) SetJobID(ctx context.Context, id int64, jobID string) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET job_id = ?, updated_at = datetime('now') WHERE id = ?`, jobID, id)
	return err
}

func (v *VideoDB) SetThumbnail(ctx context.Context, id int64, path string) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE videos SET thumbnail_path = ?, updated_at = datetime('now') WHERE id = ?`, path, id)
	return err
}

func (v *VideoDB) AddTranslation(ctx context.Context, t *model.Translation) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO translations (video_id, language_code, vtt_path, created_at) VALUES (?, ?, ?, datetime('now'))`,
		t.VideoID, t.LanguageCode, t.VTTPath)
	return err
}

func (v *VideoDB) ListTranslations(ctx context.Context, videoID int64) ([]model.Translation, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, video_id, language_code, COALESCE(vtt_path, ''), created_at
		 FROM translations WHERE video_id = ? ORDER BY id`, videoID)
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
	return translations, rows.Err()
}

// StoreSegments inserts the whole batch in one transaction.
func (v *VideoDB) StoreSegments(ctx context.Context, videoID int64, segments []model.Segment) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin segment batch: %w", err)
	}

	for _, seg := range segments {
		embeddingJSON, err := json.Marshal(seg.Embedding)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode embedding: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO video_segments (video_id, start_time, end_time, text, translated_text, language_code, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))`,
			videoID, seg.Start, seg.End, seg.Text, seg.TranslatedText, seg.LanguageCode, string(embeddingJSON))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert segment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit segment batch: %w", err)
	}
	return nil
}

// ListSegments returns the transcript in playback order, embeddings
// omitted.
func (v *VideoDB) ListSegments(ctx context.Context, videoID int64) ([]model.Segment, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, video_id, start_time, end_time, text, COALESCE(translated_text, ''), COALESCE(language_code, ''), created_at
		 FROM video_segments WHERE video_id = ? ORDER BY start_time, id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var s model.Segment
		if err = rows.Scan(&s.ID, &s.VideoID, &s.Start, &s.End, &s.Text, &s.TranslatedText, &s.LanguageCode, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return segments, nil
}

// SearchSegments loads the video's segments and ranks them in-process
// with the shared ranking policy, ties broken by ascending id.
func (v *VideoDB) SearchSegments(ctx context.Context, videoID int64, queryEmbedding []float32, limit int, timestamp *float64) ([]model.SegmentMatch, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, text, COALESCE(translated_text, ''), start_time, end_time, embedding
		 FROM video_segments WHERE video_id = ? ORDER BY id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("segment search: %w", err)
	}
	defer rows.Close()

	var matches []model.SegmentMatch
	for rows.Next() {
		var m model.SegmentMatch
		var embeddingJSON string
		if err = rows.Scan(&m.SegmentID, &m.Text, &m.TranslatedText, &m.Start, &m.End, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}

		var embedding []float32
		if err = json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}

		sim, err := v.cosine.Calculate(queryEmbedding, embedding)
		if err != nil {
			return nil, fmt.Errorf("similarity: %w", err)
		}

		if timestamp != nil {
			m.Score = repository.HybridScore(sim, m.Start, *timestamp)
		} else {
			m.Score = sim
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].SegmentID < matches[j].SegmentID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (v *VideoDB) AddChat(ctx context.Context, videoID int64, question, answer string) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO chat_history (video_id, question, answer, created_at) VALUES (?, ?, ?, datetime('now'))`,
		videoID, question, answer)
	return err
}

func (v *VideoDB) GetChatHistory(ctx context.Context, videoID int64) ([]model.ChatHistory, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT id, video_id, question, answer, created_at
		 FROM chat_history WHERE video_id = ? ORDER BY created_at DESC, id DESC`, videoID)
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
	return history, rows.Err()
}
