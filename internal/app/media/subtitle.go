package media

import (
	"fmt"
	"os"
	"strings"

	"videochat/internal/app/model"
)

// GenerateVTT renders segments as a WebVTT document in transcript
// order. With useTranslated set, the translated text of each segment
// is used instead of the original.
func GenerateVTT(segments []model.Segment, useTranslated bool) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")

	for i, seg := range segments {
		text := seg.Text
		if useTranslated {
			text = seg.TranslatedText
		}
		b.WriteString(fmt.Sprintf("%d\n", i+1))
		b.WriteString(fmt.Sprintf("%s --> %s\n", formatTimestamp(seg.Start), formatTimestamp(seg.End)))
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n\n")
	}

	return b.String()
}

// WriteVTT writes the rendered document to path.
func WriteVTT(path string, segments []model.Segment, useTranslated bool) error {
	if err := os.WriteFile(path, []byte(GenerateVTT(segments, useTranslated)), 0644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return nil
}

// formatTimestamp renders seconds as the WebVTT HH:MM:SS.mmm form.
func formatTimestamp(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}
