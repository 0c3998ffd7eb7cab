package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"videochat/internal/app/model"
)

// Processor is the media transform collaborator consumed by the
// pipeline. Implementations shell out to ffmpeg; tests use fakes.
type Processor interface {
	Transcode(ctx context.Context, inputPath, outputPath string, height int, videoBitrate, audioBitrate string) error
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	Thumbnail(ctx context.Context, videoPath, imagePath string) error
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)
	Probe(ctx context.Context, path string) (*model.FFProbeOutput, error)
}

// FFmpeg implements Processor by invoking the ffmpeg and ffprobe
// binaries found on PATH.
type FFmpeg struct{}

// NewFFmpeg creates a new ffmpeg-backed processor.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

// Transcode produces one MP4 rendition scaled to the given height with
// the given bitrates. Width is derived to keep the aspect ratio.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string, height int, videoBitrate, audioBitrate string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=-2:%d", height),
		"-b:v", videoBitrate,
		"-b:a", audioBitrate,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "fast",
		"-movflags", "faststart",
		"-f", "mp4",
		"-y", outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg transcode failed: %v, stderr: %s", err, stderr.String())
	}
	return nil
}

// ExtractAudio writes a 16kHz mono WAV suitable for transcription.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-y", audioPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %v, stderr: %s", err, stderr.String())
	}
	return nil
}

// Thumbnail grabs a single frame one second in as a JPEG.
func (f *FFmpeg) Thumbnail(ctx context.Context, videoPath, imagePath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-ss", "00:00:01",
		"-vframes", "1",
		"-y", imagePath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail failed: %v, stderr: %s", err, stderr.String())
	}
	return nil
}

// ProbeDuration returns the container duration in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", output, err)
	}
	return duration, nil
}

// Probe returns stream-level metadata for a media file.
func (f *FFmpeg) Probe(ctx context.Context, path string) (*model.FFProbeOutput, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe model.FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &probe, nil
}
