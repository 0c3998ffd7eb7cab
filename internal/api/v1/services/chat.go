package services

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"

	apierrors "videochat/internal/api/errors"
	"videochat/internal/api/v1/dto"
	"videochat/internal/app/chat"
	"videochat/internal/app/model"
	"videochat/internal/app/repository"
)

type chatService struct {
	orchestrator *chat.Orchestrator
	dao          repository.VideoDAO
	logger       *zap.Logger
}

// NewChatService creates the chat service.
func NewChatService(orchestrator *chat.Orchestrator, dao repository.VideoDAO, logger *zap.Logger) ChatService {
	return &chatService{orchestrator: orchestrator, dao: dao, logger: logger}
}

func (s *chatService) Ask(ctx context.Context, videoID int64, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	answer, err := s.orchestrator.Ask(ctx, videoID, req.Question, req.Timestamp)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierrors.NewNotFoundError("video")
		case errors.Is(err, chat.ErrVideoNotReady):
			return nil, apierrors.NewValidationError("Video is not ready for chat", map[string]string{
				"video": "processing has not completed",
			})
		case errors.Is(err, chat.ErrNoSegments):
			return nil, apierrors.NewNotFoundError("relevant transcript segments")
		default:
			s.logger.Error("chat failed", zap.Int64("video_id", videoID), zap.Error(err))
			return nil, apierrors.NewInternalError("Failed to answer question")
		}
	}
	return &dto.ChatResponse{
		Question: answer.Question,
		Answer:   answer.Text,
		Segments: answer.Segments,
	}, nil
}

func (s *chatService) History(ctx context.Context, videoID int64) (*dto.ChatHistoryResponse, error) {
	if _, err := s.dao.GetVideo(ctx, videoID); err != nil {
		return nil, mapStoreError(err, "video")
	}
	history, err := s.dao.GetChatHistory(ctx, videoID)
	if err != nil {
		s.logger.Error("chat history read failed", zap.Int64("video_id", videoID), zap.Error(err))
		return nil, apierrors.NewInternalError("Failed to read chat history")
	}
	entries := lo.Map(history, func(h model.ChatHistory, _ int) dto.ChatHistoryEntry {
		return dto.ChatHistoryEntry{ID: h.ID, Question: h.Question, Answer: h.Answer, CreatedAt: h.CreatedAt}
	})
	return &dto.ChatHistoryResponse{VideoID: videoID, History: entries}, nil
}
