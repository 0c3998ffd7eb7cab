package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"videochat/internal/app/api"
	"videochat/internal/app/embedding/provider"
	"videochat/internal/app/media"
	"videochat/internal/app/model"
	"videochat/internal/app/repository"
	"videochat/internal/app/storage"
	"videochat/internal/config"
)

// Pipeline step labels. The set of labels is a contract with status
// observers; the progress breakpoints next to them are too.
const (
	StepStart       = "start"
	StepTranscoding = "transcoding"
	StepThumbnail   = "thumbnail"
	StepAudio       = "extracting_audio"
	StepTranscribe  = "transcribing"
	StepSubtitles   = "generating_subtitles"
	StepTranslate   = "translating"
	StepEmbeddings  = "generating_embeddings"
	StepDone        = "done"
	StepFailed      = "failed"
)

// Pipeline drives one video through the fixed stage sequence,
// persisting progress after every stage. Exactly one Run exists per
// video; the run owns all writes to its video row.
type Pipeline struct {
	dao         repository.VideoDAO
	media       media.Processor
	transcriber api.Transcriber
	translator  api.Translator
	embedder    provider.EmbeddingProvider
	artifacts   storage.ArtifactStore // nil when object storage is not configured
	tracker     Tracker
	metrics     *Metrics
	logger      *zap.Logger
	cfg         config.PipelineConfig
	workDir     string
}

// New assembles a pipeline from its collaborators. artifacts may be
// nil; everything else is required.
func New(
	dao repository.VideoDAO,
	proc media.Processor,
	transcriber api.Transcriber,
	translator api.Translator,
	embedder provider.EmbeddingProvider,
	artifacts storage.ArtifactStore,
	tracker Tracker,
	metrics *Metrics,
	logger *zap.Logger,
	cfg config.PipelineConfig,
	workDir string,
) *Pipeline {
	return &Pipeline{
		dao:         dao,
		media:       proc,
		transcriber: transcriber,
		translator:  translator,
		embedder:    embedder,
		artifacts:   artifacts,
		tracker:     tracker,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		workDir:     workDir,
	}
}

// Run executes the full pipeline for one queued video. Any stage error
// is terminal: status flips to failed, the cause goes to the tracker,
// and no stage is retried.
func (p *Pipeline) Run(ctx context.Context, job Job) error {
	log := p.logger.With(zap.String("job_id", job.ID), zap.Int64("video_id", job.VideoID))
	log.Info("pipeline started")

	if p.metrics != nil {
		p.metrics.JobsStarted.Inc()
		p.metrics.JobsInFlight.Inc()
		defer p.metrics.JobsInFlight.Dec()
	}

	video, err := p.dao.GetVideo(ctx, job.VideoID)
	if err != nil {
		return p.fail(ctx, job, StepStart, err)
	}
	if !model.ValidTransition(video.Status, model.StatusProcessing) {
		// A stale or duplicate job must not clobber the video's state,
		// so this rejection leaves the row untouched.
		err := fmt.Errorf("video in status %s cannot start processing", video.Status)
		log.Error("job rejected", zap.Error(err))
		p.report(ctx, JobStatus{
			JobID: job.ID, VideoID: job.VideoID, State: JobStateFailed,
			Step: StepStart, Progress: video.ProcessingProgress, Error: err.Error(),
		})
		return err
	}

	if err := p.dao.UpdateStatus(ctx, job.VideoID, model.StatusProcessing); err != nil {
		return p.fail(ctx, job, StepStart, err)
	}
	p.advance(ctx, job, StepStart, 5)

	probe, err := p.media.Probe(ctx, job.SourcePath)
	if err != nil {
		return p.fail(ctx, job, StepStart, err)
	}
	if !probe.HasVideoStream() {
		return p.fail(ctx, job, StepStart, errors.New("source has no video stream"))
	}

	videoDir := filepath.Join(p.workDir, fmt.Sprintf("%d", job.VideoID))
	if err := os.MkdirAll(videoDir, 0755); err != nil {
		return p.fail(ctx, job, StepStart, err)
	}

	// Thumbnail generation contributes nothing downstream, so it runs
	// alongside the transcode ladder. An error only costs the preview
	// image.
	thumbDone := make(chan struct{})
	thumbPath := filepath.Join(videoDir, "thumbnail.jpg")
	go func() {
		defer close(thumbDone)
		if err := p.media.Thumbnail(ctx, job.SourcePath, thumbPath); err != nil {
			log.Warn("thumbnail generation failed", zap.Error(err))
			return
		}
		if err := p.dao.SetThumbnail(ctx, job.VideoID, thumbPath); err != nil {
			log.Warn("thumbnail reference not persisted", zap.Error(err))
			return
		}
		p.uploadArtifact(ctx, log, thumbPath, fmt.Sprintf("%d/thumbnail.jpg", job.VideoID))
	}()
	// Every exit path waits for the goroutine, so a failed run cannot
	// leave it writing against an abandoned video.
	defer func() { <-thumbDone }()

	if err := p.transcodeLadder(ctx, job, videoDir, log); err != nil {
		return p.fail(ctx, job, StepTranscoding, err)
	}

	p.advance(ctx, job, StepAudio, 70)
	audioPath := filepath.Join(videoDir, "audio.wav")
	if err := p.timed(StepAudio, func() error {
		return p.media.ExtractAudio(ctx, job.SourcePath, audioPath)
	}); err != nil {
		return p.fail(ctx, job, StepAudio, err)
	}
	// The extracted audio is transient; drop it on every exit path,
	// failure included.
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			log.Warn("audio cleanup failed", zap.Error(err))
		}
	}()

	p.advance(ctx, job, StepTranscribe, 75)
	var segments []model.Segment
	if err := p.timed(StepTranscribe, func() error {
		var err error
		segments, err = p.transcriber.Transcribe(ctx, audioPath)
		return err
	}); err != nil {
		return p.fail(ctx, job, StepTranscribe, err)
	}
	for i := range segments {
		segments[i].VideoID = job.VideoID
		if segments[i].LanguageCode == "" {
			segments[i].LanguageCode = p.cfg.SourceLanguage
		}
	}

	duration, err := p.media.ProbeDuration(ctx, job.SourcePath)
	if err != nil {
		return p.fail(ctx, job, StepTranscribe, err)
	}
	if err := p.dao.UpdateDuration(ctx, job.VideoID, duration); err != nil {
		return p.fail(ctx, job, StepTranscribe, err)
	}

	p.advance(ctx, job, StepSubtitles, 85)
	vttPath := filepath.Join(videoDir, fmt.Sprintf("subtitles_%s.vtt", p.cfg.SourceLanguage))
	if err := media.WriteVTT(vttPath, segments, false); err != nil {
		return p.fail(ctx, job, StepSubtitles, err)
	}
	if err := p.dao.AddTranslation(ctx, &model.Translation{
		VideoID: job.VideoID, LanguageCode: p.cfg.SourceLanguage, VTTPath: vttPath,
	}); err != nil {
		return p.fail(ctx, job, StepSubtitles, err)
	}
	p.uploadArtifact(ctx, log, vttPath, fmt.Sprintf("%d/subtitles_%s.vtt", job.VideoID, p.cfg.SourceLanguage))

	p.advance(ctx, job, StepTranslate, 90)
	translated, err := p.translateFanOut(ctx, job, videoDir, segments, log)
	if err != nil {
		return p.fail(ctx, job, StepTranslate, err)
	}

	p.advance(ctx, job, StepEmbeddings, 95)
	if err := p.timed(StepEmbeddings, func() error {
		return p.embedAndStore(ctx, job.VideoID, segments, translated)
	}); err != nil {
		return p.fail(ctx, job, StepEmbeddings, err)
	}

	<-thumbDone

	if err := p.dao.UpdateStatus(ctx, job.VideoID, model.StatusCompleted); err != nil {
		return p.fail(ctx, job, StepDone, err)
	}
	p.advance(ctx, job, StepDone, 100)
	p.report(ctx, JobStatus{JobID: job.ID, VideoID: job.VideoID, State: JobStateCompleted, Step: StepDone, Progress: 100})

	if p.metrics != nil {
		p.metrics.JobsCompleted.Inc()
	}
	log.Info("pipeline completed", zap.Float64("duration", duration), zap.Int("segments", len(segments)))
	return nil
}

// transcodeLadder produces every configured rendition with bounded
// concurrency, advancing progress linearly from 10 to 70 as renditions
// finish. Progress is bumped by completion count and persisted under
// the same lock, so the stored value stays monotone even when
// renditions finish out of order.
func (p *Pipeline) transcodeLadder(ctx context.Context, job Job, videoDir string, log *zap.Logger) error {
	profiles := p.cfg.Profiles
	p.advance(ctx, job, StepTranscoding, 10)

	sem := make(chan struct{}, p.cfg.TranscodeConcurrency)
	errs := make([]error, len(profiles))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	start := time.Now()
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, profile config.TranscodeProfile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outputPath := filepath.Join(videoDir, fmt.Sprintf("video_%s.mp4", profile.Name))
			if err := p.media.Transcode(ctx, job.SourcePath, outputPath, profile.Height, profile.VideoBitrate, profile.AudioBitrate); err != nil {
				errs[i] = err
				return
			}
			p.uploadArtifact(ctx, log, outputPath, fmt.Sprintf("%d/video_%s.mp4", job.VideoID, profile.Name))

			mu.Lock()
			done++
			p.advance(ctx, job, StepTranscoding, 10+done*60/len(profiles))
			mu.Unlock()
		}(i, profile)
	}
	wg.Wait()
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(StepTranscoding).Observe(time.Since(start).Seconds())
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// translateFanOut translates the transcript into every configured
// target language, one bounded task per language, writes each
// language's subtitle artifact and translation row, and returns the
// per-language translated texts indexed by segment position.
func (p *Pipeline) translateFanOut(ctx context.Context, job Job, videoDir string, segments []model.Segment, log *zap.Logger) (map[string][]string, error) {
	translated := make(map[string][]string, len(p.cfg.TargetLanguages))
	if len(p.cfg.TargetLanguages) == 0 {
		return translated, nil
	}

	sem := make(chan struct{}, p.cfg.TranslateConcurrency)
	errs := make([]error, len(p.cfg.TargetLanguages))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	start := time.Now()
	for i, lang := range p.cfg.TargetLanguages {
		wg.Add(1)
		go func(i int, lang string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Translate degrades per-segment, so this loop cannot fail
			// on a bad translation; a segment just keeps its original.
			texts := lo.Map(segments, func(seg model.Segment, _ int) string {
				return p.translator.Translate(ctx, seg.Text, lang)
			})

			localized := make([]model.Segment, len(segments))
			copy(localized, segments)
			for j := range localized {
				localized[j].TranslatedText = texts[j]
			}

			vttPath := filepath.Join(videoDir, fmt.Sprintf("subtitles_%s.vtt", lang))
			if err := media.WriteVTT(vttPath, localized, true); err != nil {
				errs[i] = err
				return
			}
			if err := p.dao.AddTranslation(ctx, &model.Translation{
				VideoID: job.VideoID, LanguageCode: lang, VTTPath: vttPath,
			}); err != nil {
				errs[i] = err
				return
			}
			p.uploadArtifact(ctx, log, vttPath, fmt.Sprintf("%d/subtitles_%s.vtt", job.VideoID, lang))

			mu.Lock()
			translated[lang] = texts
			mu.Unlock()
		}(i, lang)
	}
	wg.Wait()
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(StepTranslate).Observe(time.Since(start).Seconds())
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return translated, nil
}

// embedAndStore computes an embedding per segment from the original
// text, attaches the first configured target language's translation as
// the default translated text, and stores the whole batch atomically.
func (p *Pipeline) embedAndStore(ctx context.Context, videoID int64, segments []model.Segment, translated map[string][]string) error {
	var defaultTexts []string
	if len(p.cfg.TargetLanguages) > 0 {
		defaultTexts = translated[p.cfg.TargetLanguages[0]]
	}

	for i := range segments {
		embedding, err := p.embedder.GenerateEmbedding(ctx, segments[i].Text)
		if err != nil {
			return fmt.Errorf("embed segment %d: %w", i, err)
		}
		segments[i].Embedding = embedding
		if defaultTexts != nil {
			segments[i].TranslatedText = defaultTexts[i]
		}
	}

	return p.dao.StoreSegments(ctx, videoID, segments)
}

// advance persists the current step and progress, then mirrors it to
// the side channel. Persistence happens first so observers never see
// the tracker ahead of the store.
func (p *Pipeline) advance(ctx context.Context, job Job, step string, progress int) {
	if err := p.dao.UpdateProgress(ctx, job.VideoID, step, progress); err != nil {
		p.logger.Warn("progress not persisted",
			zap.String("job_id", job.ID), zap.String("step", step), zap.Error(err))
	}
	p.report(ctx, JobStatus{JobID: job.ID, VideoID: job.VideoID, State: JobStateRunning, Step: step, Progress: progress})
}

// fail marks the video failed, freezes progress at its last value, and
// surfaces the cause on the side channel.
func (p *Pipeline) fail(ctx context.Context, job Job, step string, cause error) error {
	p.logger.Error("pipeline failed",
		zap.String("job_id", job.ID), zap.Int64("video_id", job.VideoID),
		zap.String("step", step), zap.Error(cause))

	if err := p.dao.UpdateStatus(ctx, job.VideoID, model.StatusFailed); err != nil {
		p.logger.Error("failed status not persisted", zap.Error(err))
	}
	progress := 0
	if video, err := p.dao.GetVideo(ctx, job.VideoID); err == nil {
		progress = video.ProcessingProgress
	}
	if err := p.dao.UpdateProgress(ctx, job.VideoID, StepFailed, progress); err != nil {
		p.logger.Error("failed step not persisted", zap.Error(err))
	}
	p.report(ctx, JobStatus{
		JobID: job.ID, VideoID: job.VideoID, State: JobStateFailed,
		Step: step, Progress: progress, Error: cause.Error(),
	})

	if p.metrics != nil {
		p.metrics.JobsFailed.Inc()
	}
	return fmt.Errorf("pipeline stage %s: %w", step, cause)
}

func (p *Pipeline) report(ctx context.Context, status JobStatus) {
	if err := p.tracker.Report(ctx, status); err != nil {
		p.logger.Warn("job status report failed", zap.String("job_id", status.JobID), zap.Error(err))
	}
}

func (p *Pipeline) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
	return err
}

func (p *Pipeline) uploadArtifact(ctx context.Context, log *zap.Logger, localPath, objectKey string) {
	if p.artifacts == nil {
		return
	}
	if _, err := p.artifacts.Upload(ctx, localPath, objectKey); err != nil {
		log.Warn("artifact upload failed", zap.String("key", objectKey), zap.Error(err))
	}
}
