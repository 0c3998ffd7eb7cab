package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"videochat/internal/app/model"
)

// WhisperTranscriber implements api.Transcriber using the OpenAI
// whisper-1 model with verbose JSON output, which carries per-segment
// timestamps.
type WhisperTranscriber struct {
	client *openai.Client
}

// NewWhisperTranscriber creates a new WhisperTranscriber instance.
func NewWhisperTranscriber(client *openai.Client) *WhisperTranscriber {
	return &WhisperTranscriber{client: client}
}

// Transcribe converts an audio file into ordered transcript segments.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.Segment, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("createTranscription failed: %w", err)
	}

	segments := make([]model.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, model.Segment{
			Start:        s.Start,
			End:          s.End,
			Text:         s.Text,
			LanguageCode: resp.Language,
		})
	}
	return segments, nil
}
