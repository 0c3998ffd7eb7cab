// Package chat answers natural-language questions about a processed
// video by retrieving the transcript segments closest to the question
// and prompting a language model with them.
package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"videochat/internal/app/api"
	"videochat/internal/app/embedding/provider"
	"videochat/internal/app/model"
	"videochat/internal/app/repository"
)

// TopK is how many segments back a single answer.
const TopK = 5

// ErrVideoNotReady rejects questions about a video that has not
// finished processing.
var ErrVideoNotReady = errors.New("chat: video processing is not completed")

// ErrNoSegments means retrieval found nothing to ground an answer on.
var ErrNoSegments = errors.New("chat: no relevant segments found")

// Reasoning models leak deliberation wrapped in think tags; answers
// must not carry it.
var thinkPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Answer is one grounded chat response.
type Answer struct {
	Question string               `json:"question"`
	Text     string               `json:"answer"`
	Segments []model.SegmentMatch `json:"relevant_segments"`
}

// Orchestrator wires retrieval and generation for one question at a
// time.
type Orchestrator struct {
	dao       repository.VideoDAO
	embedder  provider.EmbeddingProvider
	generator api.Generator
	logger    *zap.Logger
}

func NewOrchestrator(dao repository.VideoDAO, embedder provider.EmbeddingProvider, generator api.Generator, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{dao: dao, embedder: embedder, generator: generator, logger: logger}
}

// Ask answers a question about a completed video. When timestamp is
// set, retrieval blends semantic similarity with proximity to that
// moment in the video. Empty retrieval is a hard error; a generation
// failure degrades to an apology that is still persisted so the
// history stays complete.
func (o *Orchestrator) Ask(ctx context.Context, videoID int64, question string, timestamp *float64) (*Answer, error) {
	video, err := o.dao.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.Status != model.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrVideoNotReady, video.Status)
	}

	queryEmbedding, err := o.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := o.dao.SearchSegments(ctx, videoID, queryEmbedding, TopK, timestamp)
	if err != nil {
		return nil, fmt.Errorf("search segments: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNoSegments
	}

	answer := o.generate(ctx, question, matches)

	if err := o.dao.AddChat(ctx, videoID, question, answer); err != nil {
		o.logger.Warn("chat history not persisted", zap.Int64("video_id", videoID), zap.Error(err))
	}

	return &Answer{Question: question, Text: answer, Segments: matches}, nil
}

func (o *Orchestrator) generate(ctx context.Context, question string, matches []model.SegmentMatch) string {
	prompt := buildPrompt(question, matches)
	raw, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Warn("answer generation failed", zap.Error(err))
		return fmt.Sprintf("Sorry, I couldn't generate an answer. Error: %s", err)
	}
	return CleanAnswer(raw)
}

// buildPrompt lays the retrieved segments out as timestamped context
// lines ahead of the question.
func buildPrompt(question string, matches []model.SegmentMatch) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions about a video based on its transcript.\n\n")
	b.WriteString("Relevant transcript segments:\n")
	for _, match := range matches {
		fmt.Fprintf(&b, "[%.1fs - %.1fs]: %s\n", match.Start, match.End, match.Text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer based only on the transcript segments above. Be concise.", question)
	return b.String()
}

// CleanAnswer strips reasoning spans from a model response.
func CleanAnswer(raw string) string {
	return strings.TrimSpace(thinkPattern.ReplaceAllString(raw, ""))
}
