package services

import (
	"context"
	"errors"

	apierrors "videochat/internal/api/errors"
	"videochat/internal/api/v1/dto"
	"videochat/internal/app/pipeline"
)

type jobService struct {
	tracker pipeline.Tracker
}

// NewJobService creates the job lookup service.
func NewJobService(tracker pipeline.Tracker) JobService {
	return &jobService{tracker: tracker}
}

func (s *jobService) Get(ctx context.Context, jobID string) (*dto.JobResponse, error) {
	status, err := s.tracker.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, pipeline.ErrJobNotFound) {
			return nil, apierrors.NewNotFoundError("job")
		}
		return nil, apierrors.NewInternalError("Failed to read job status")
	}
	return dto.NewJobResponse(status), nil
}
