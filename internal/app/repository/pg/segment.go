package pg

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"videochat/internal/app/model"
	"videochat/internal/app/repository"
)

// StoreSegments inserts a video's whole segment batch inside a single
// transaction. A failed insert rolls everything back so a partial
// transcript is never visible.
func (v *VideoDB) StoreSegments(ctx context.Context, videoID int64, segments []model.Segment) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin segment batch: %w", err)
	}

	insertSQL := `INSERT INTO video_segments (video_id, start_time, end_time, text, translated_text, language_code, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

	for _, seg := range segments {
		_, err = tx.ExecContext(ctx, insertSQL,
			videoID, seg.Start, seg.End, seg.Text, seg.TranslatedText, seg.LanguageCode,
			pgvector.NewVector(seg.Embedding))
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
		 FROM video_segments WHERE video_id = $1 ORDER BY start_time, id`, videoID)
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

// SearchSegments ranks a video's segments against the query embedding.
// pgvector's <=> operator is cosine distance, so 1-(a<=>b) is cosine
// similarity; the hybrid form blends it with temporal proximity using
// the repository ranking constants.
func (v *VideoDB) SearchSegments(ctx context.Context, videoID int64, queryEmbedding []float32, limit int, timestamp *float64) ([]model.SegmentMatch, error) {
	query := `SELECT id, text, COALESCE(translated_text, ''), start_time, end_time,
			1 - (embedding <=> $1) AS score
		FROM video_segments
		WHERE video_id = $2
		ORDER BY score DESC, id ASC
		LIMIT $3`
	args := []interface{}{pgvector.NewVector(queryEmbedding), videoID, limit}

	if timestamp != nil {
		query = fmt.Sprintf(`SELECT id, text, COALESCE(translated_text, ''), start_time, end_time,
				(1 - (embedding <=> $1)) * %v + (1 / (1 + ABS(start_time - $2) / %v)) * %v AS score
			FROM video_segments
			WHERE video_id = $3
			ORDER BY score DESC, id ASC
			LIMIT $4`,
			repository.SimilarityWeight, repository.TemporalScale, repository.TemporalWeight)
		args = []interface{}{pgvector.NewVector(queryEmbedding), *timestamp, videoID, limit}
	}

	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("segment search: %w", err)
	}
	defer rows.Close()

	var matches []model.SegmentMatch
	for rows.Next() {
		var m model.SegmentMatch
		if err = rows.Scan(&m.SegmentID, &m.Text, &m.TranslatedText, &m.Start, &m.End, &m.Score); err != nil {
			return nil, fmt.Errorf("scan segment match: %w", err)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return matches, nil
}
