package migrate

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// postgresSchema bootstraps the pgvector-backed schema. The embedding
// column dimension must match the embedding provider in use.
func postgresSchema(dimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS videos (
			id BIGSERIAL PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			original_filename VARCHAR(255) NOT NULL,
			duration DOUBLE PRECISION,
			status VARCHAR(50) NOT NULL DEFAULT 'uploading',
			file_size BIGINT,
			mime_type VARCHAR(100),
			job_id VARCHAR(255),
			processing_step VARCHAR(100),
			processing_progress INTEGER DEFAULT 0,
			thumbnail_path VARCHAR(500),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS video_segments (
			id BIGSERIAL PRIMARY KEY,
			video_id BIGINT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			start_time DOUBLE PRECISION NOT NULL,
			end_time DOUBLE PRECISION NOT NULL,
			text TEXT NOT NULL,
			translated_text TEXT,
			language_code VARCHAR(10) DEFAULT 'en',
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_video_segments_video_id ON video_segments (video_id)`,
		`CREATE TABLE IF NOT EXISTS translations (
			id BIGSERIAL PRIMARY KEY,
			video_id BIGINT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			language_code VARCHAR(10) NOT NULL,
			vtt_path VARCHAR(500),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			id BIGSERIAL PRIMARY KEY,
			video_id BIGINT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
}

// sqliteSchema mirrors the postgres schema; embeddings are JSON text.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		duration REAL,
		status TEXT NOT NULL DEFAULT 'uploading',
		file_size INTEGER,
		mime_type TEXT,
		job_id TEXT,
		processing_step TEXT,
		processing_progress INTEGER DEFAULT 0,
		thumbnail_path TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT (datetime('now')),
		updated_at TIMESTAMP NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS video_segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		start_time REAL NOT NULL,
		end_time REAL NOT NULL,
		text TEXT NOT NULL,
		translated_text TEXT,
		language_code TEXT DEFAULT 'en',
		embedding TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_video_segments_video_id ON video_segments (video_id)`,
	`CREATE TABLE IF NOT EXISTS translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		language_code TEXT NOT NULL,
		vtt_path TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS chat_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT (datetime('now'))
	)`,
}

// Postgres applies the postgres schema to an open connection.
func Postgres(db *sql.DB, embeddingDimension int) error {
	for _, stmt := range postgresSchema(embeddingDimension) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}

// SQLite applies the sqlite schema to an open connection.
func SQLite(db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}
