package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videochat/internal/app/model"
	"videochat/internal/app/repository"
)

func newMockDB(t *testing.T) (*VideoDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewVideoDB(db), mock
}

func videoColumns() []string {
	return []string{
		"id", "filename", "original_filename", "duration", "status",
		"file_size", "mime_type", "job_id",
		"processing_step", "processing_progress",
		"thumbnail_path", "created_at", "updated_at",
	}
}

func TestCreateVideo(t *testing.T) {
	dao, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO videos`).
		WithArgs("abc.mp4", "holiday.mp4", model.StatusUploading, int64(1024), "video/mp4").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := dao.CreateVideo(context.Background(), &model.Video{
		Filename:         "abc.mp4",
		OriginalFilename: "holiday.mp4",
		Status:           model.StatusUploading,
		FileSize:         1024,
		MimeType:         "video/mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVideo(t *testing.T) {
	dao, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM videos WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(videoColumns()).
			AddRow(int64(7), "abc.mp4", "holiday.mp4", 12.5, "processing",
				int64(1024), "video/mp4", "job-1", "transcoding", 40, "", now, now))

	video, err := dao.GetVideo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, video.Status)
	assert.Equal(t, "transcoding", video.ProcessingStep)
	assert.Equal(t, 40, video.ProcessingProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVideoNotFound(t *testing.T) {
	dao, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM videos WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(videoColumns()))

	_, err := dao.GetVideo(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVideo(t *testing.T) {
	dao, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM videos WHERE id`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, dao.DeleteVideo(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVideoNotFound(t *testing.T) {
	dao, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM videos WHERE id`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, dao.DeleteVideo(context.Background(), 99), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProgress(t *testing.T) {
	dao, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE videos SET processing_step`).
		WithArgs("transcribing", 75, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, dao.UpdateProgress(context.Background(), 7, "transcribing", 75))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusError(t *testing.T) {
	dao, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE videos SET status`).
		WithArgs(model.StatusFailed, int64(7)).
		WillReturnError(errors.New("connection reset"))

	assert.Error(t, dao.UpdateStatus(context.Background(), 7, model.StatusFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
