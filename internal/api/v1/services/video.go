package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	apierrors "videochat/internal/api/errors"
	"videochat/internal/api/v1/dto"
	"videochat/internal/app/model"
	"videochat/internal/app/pipeline"
	"videochat/internal/app/repository"
)

// MaxUploadSize caps a single upload at 2 GiB.
const MaxUploadSize = 2 << 30

var allowedExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

// videoService implements VideoService on top of the store and the
// pipeline worker.
type videoService struct {
	dao       repository.VideoDAO
	worker    *pipeline.Worker
	logger    *zap.Logger
	uploadDir string
}

// NewVideoService creates the video lifecycle service.
func NewVideoService(dao repository.VideoDAO, worker *pipeline.Worker, logger *zap.Logger, uploadDir string) VideoService {
	return &videoService{dao: dao, worker: worker, logger: logger, uploadDir: uploadDir}
}

// Upload stores the file, registers the video row and queues a
// pipeline job for it. The response carries the job id so the caller
// can follow progress.
func (s *videoService) Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimeType, ok := allowedExtensions[ext]
	if !ok {
		return nil, apierrors.NewValidationError("Unsupported video format", map[string]string{
			"file": fmt.Sprintf("extension %q is not supported", ext),
		})
	}
	if file.Size > MaxUploadSize {
		return nil, apierrors.NewValidationError("File too large", map[string]string{
			"file": "exceeds the 2 GiB upload limit",
		})
	}

	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(s.uploadDir, storedName)
	if err := s.saveUpload(file, storedPath); err != nil {
		s.logger.Error("upload not stored", zap.String("filename", file.Filename), zap.Error(err))
		return nil, apierrors.NewInternalError("Failed to store upload")
	}

	video := &model.Video{
		Filename:         storedName,
		OriginalFilename: file.Filename,
		Status:           model.StatusUploading,
		FileSize:         file.Size,
		MimeType:         mimeType,
	}
	id, err := s.dao.CreateVideo(ctx, video)
	if err != nil {
		os.Remove(storedPath)
		s.logger.Error("video row not created", zap.Error(err))
		return nil, apierrors.NewInternalError("Failed to register video")
	}
	video.ID = id

	if err := s.dao.UpdateStatus(ctx, id, model.StatusQueued); err != nil {
		return nil, apierrors.NewInternalError("Failed to queue video")
	}
	video.Status = model.StatusQueued

	job := pipeline.NewJob(id, storedPath)
	if err := s.worker.Enqueue(ctx, job); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			return nil, apierrors.NewServiceUnavailableError("Processing queue is full, try again later")
		}
		s.logger.Error("job not queued", zap.Int64("video_id", id), zap.Error(err))
		return nil, apierrors.NewInternalError("Failed to queue processing job")
	}
	if err := s.dao.SetJobID(ctx, id, job.ID); err != nil {
		s.logger.Warn("job id not persisted", zap.Int64("video_id", id), zap.Error(err))
	}
	video.JobID = job.ID

	return &dto.UploadResponse{Video: dto.NewVideoResponse(video), JobID: job.ID}, nil
}

func (s *videoService) saveUpload(file *multipart.FileHeader, dst string) error {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func (s *videoService) Get(ctx context.Context, id int64) (*dto.VideoResponse, error) {
	video, err := s.dao.GetVideo(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "video")
	}
	return dto.NewVideoResponse(video), nil
}

func (s *videoService) List(ctx context.Context) (*dto.VideoListResponse, error) {
	videos, err := s.dao.ListVideos(ctx)
	if err != nil {
		s.logger.Error("video listing failed", zap.Error(err))
		return nil, apierrors.NewInternalError("Failed to list videos")
	}
	responses := lo.Map(videos, func(v model.Video, _ int) *dto.VideoResponse {
		return dto.NewVideoResponse(&v)
	})
	return &dto.VideoListResponse{Videos: responses, Total: len(responses)}, nil
}

// Delete removes the stored file and the row; dependents go with the
// row via cascade.
func (s *videoService) Delete(ctx context.Context, id int64) error {
	video, err := s.dao.GetVideo(ctx, id)
	if err != nil {
		return mapStoreError(err, "video")
	}
	if err := s.dao.DeleteVideo(ctx, id); err != nil {
		return mapStoreError(err, "video")
	}

	storedPath := filepath.Join(s.uploadDir, video.Filename)
	if err := os.Remove(storedPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("stored file not removed", zap.String("path", storedPath), zap.Error(err))
	}
	return nil
}

func (s *videoService) Status(ctx context.Context, id int64) (*dto.StatusResponse, error) {
	video, err := s.dao.GetVideo(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "video")
	}
	resp := &dto.StatusResponse{
		VideoID:  id,
		Status:   string(video.Status),
		Step:     video.ProcessingStep,
		Progress: video.ProcessingProgress,
	}
	if video.Status == model.StatusFailed {
		resp.Error = "processing failed"
	}
	return resp, nil
}

func (s *videoService) Translations(ctx context.Context, id int64) ([]dto.TranslationResponse, error) {
	if _, err := s.dao.GetVideo(ctx, id); err != nil {
		return nil, mapStoreError(err, "video")
	}
	translations, err := s.dao.ListTranslations(ctx, id)
	if err != nil {
		return nil, apierrors.NewInternalError("Failed to list subtitle tracks")
	}
	return lo.Map(translations, func(t model.Translation, _ int) dto.TranslationResponse {
		return dto.TranslationResponse{LanguageCode: t.LanguageCode, VTTPath: t.VTTPath}
	}), nil
}

func mapStoreError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.NewNotFoundError(resource)
	}
	return apierrors.NewInternalError("Storage error")
}
