package api

import (
	"context"

	"videochat/internal/app/model"
)

// Transcriber converts an audio file into an ordered sequence of
// timestamped transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]model.Segment, error)
}

// Translator translates a text into the target language. A failed call
// must degrade to returning the original text unchanged; it never
// surfaces an error to the caller, so one bad translation can never
// abort a pipeline run.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) string
}

// Generator produces a natural-language answer from a fully rendered
// prompt. Errors are returned to the caller; the chat orchestrator
// decides how to absorb them.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
