package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"videochat/internal/app/embedding/provider"
	"videochat/internal/app/model"
	"videochat/internal/app/repository"
	"videochat/internal/config"
)

type progressUpdate struct {
	step     string
	progress int
}

// fakeDAO records every pipeline write so tests can assert ordering
// and content.
type fakeDAO struct {
	mu           sync.Mutex
	video        model.Video
	statuses     []model.VideoStatus
	progress     []progressUpdate
	translations []model.Translation
	segments     []model.Segment
	storeErr     error
}

func newFakeDAO(videoID int64) *fakeDAO {
	return &fakeDAO{video: model.Video{ID: videoID, Status: model.StatusQueued}}
}

func (f *fakeDAO) Close() error { return nil }

func (f *fakeDAO) CreateVideo(ctx context.Context, v *model.Video) (int64, error) {
	return f.video.ID, nil
}

func (f *fakeDAO) GetVideo(ctx context.Context, id int64) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.video.ID {
		return nil, repository.ErrNotFound
	}
	v := f.video
	return &v, nil
}

func (f *fakeDAO) ListVideos(ctx context.Context) ([]model.Video, error) { return nil, nil }
func (f *fakeDAO) DeleteVideo(ctx context.Context, id int64) error       { return nil }

func (f *fakeDAO) UpdateStatus(ctx context.Context, id int64, status model.VideoStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.video.Status = status
	return nil
}

func (f *fakeDAO) UpdateProgress(ctx context.Context, id int64, step string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, progressUpdate{step, progress})
	f.video.ProcessingStep = step
	f.video.ProcessingProgress = progress
	return nil
}

func (f *fakeDAO) UpdateDuration(ctx context.Context, id int64, duration float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.video.Duration = duration
	return nil
}

func (f *fakeDAO) SetJobID(ctx context.Context, id int64, jobID string) error { return nil }

func (f *fakeDAO) SetThumbnail(ctx context.Context, id int64, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.video.ThumbnailPath = path
	return nil
}

func (f *fakeDAO) AddTranslation(ctx context.Context, tr *model.Translation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translations = append(f.translations, *tr)
	return nil
}

func (f *fakeDAO) ListTranslations(ctx context.Context, videoID int64) ([]model.Translation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Translation(nil), f.translations...), nil
}

func (f *fakeDAO) ListSegments(ctx context.Context, videoID int64) ([]model.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Segment(nil), f.segments...), nil
}

func (f *fakeDAO) StoreSegments(ctx context.Context, videoID int64, segments []model.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.segments = append([]model.Segment(nil), segments...)
	return nil
}

func (f *fakeDAO) SearchSegments(ctx context.Context, videoID int64, queryEmbedding []float32, limit int, timestamp *float64) ([]model.SegmentMatch, error) {
	return nil, nil
}

func (f *fakeDAO) AddChat(ctx context.Context, videoID int64, question, answer string) error {
	return nil
}

func (f *fakeDAO) GetChatHistory(ctx context.Context, videoID int64) ([]model.ChatHistory, error) {
	return nil, nil
}

// fakeProcessor stands in for ffmpeg. ExtractAudio writes a real file
// so cleanup behavior is observable; the delay knobs let tests control
// the relative timing of concurrent stages.
type fakeProcessor struct {
	mu              sync.Mutex
	transcoded      []int
	transcodeErr    error
	transcodeBlock  chan struct{}
	transcodeDelays map[int]time.Duration
	thumbErr        error
	thumbDelay      time.Duration
	audioErr        error
	probeErr        error
	noVideo         bool
}

func (f *fakeProcessor) Transcode(ctx context.Context, in, out string, height int, vb, ab string) error {
	if f.transcodeBlock != nil {
		<-f.transcodeBlock
	}
	if d, ok := f.transcodeDelays[height]; ok {
		time.Sleep(d)
	}
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	f.mu.Lock()
	f.transcoded = append(f.transcoded, height)
	f.mu.Unlock()
	return os.WriteFile(out, []byte("mp4"), 0644)
}

func (f *fakeProcessor) ExtractAudio(ctx context.Context, in, out string) error {
	if f.audioErr != nil {
		return f.audioErr
	}
	return os.WriteFile(out, []byte("wav"), 0644)
}

func (f *fakeProcessor) Thumbnail(ctx context.Context, in, out string) error {
	if f.thumbDelay > 0 {
		time.Sleep(f.thumbDelay)
	}
	if f.thumbErr != nil {
		return f.thumbErr
	}
	return os.WriteFile(out, []byte("jpg"), 0644)
}

func (f *fakeProcessor) ProbeDuration(ctx context.Context, in string) (float64, error) {
	return 42.5, nil
}

func (f *fakeProcessor) Probe(ctx context.Context, in string) (*model.FFProbeOutput, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	out := &model.FFProbeOutput{}
	if !f.noVideo {
		out.Streams = append(out.Streams, model.FFProbeStream{CodecType: "video", CodecName: "h264"})
	}
	out.Streams = append(out.Streams, model.FFProbeStream{CodecType: "audio", CodecName: "aac", SampleRate: 44100})
	return out, nil
}

type fakeTranscriber struct {
	segments []model.Segment
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Segment(nil), f.segments...), nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(ctx context.Context, text, targetLang string) string {
	return fmt.Sprintf("[%s] %s", targetLang, text)
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{Name: "fake", Dimension: 3}
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Profiles: []config.TranscodeProfile{
			{Name: "720p", Height: 720, VideoBitrate: "2800k", AudioBitrate: "128k"},
			{Name: "360p", Height: 360, VideoBitrate: "800k", AudioBitrate: "96k"},
		},
		SourceLanguage:       "en",
		TargetLanguages:      []string{"es", "fr"},
		Workers:              1,
		TranscodeConcurrency: 2,
		TranslateConcurrency: 2,
	}
}

type pipelineFixture struct {
	pipeline *Pipeline
	dao      *fakeDAO
	proc     *fakeProcessor
	tracker  *MemoryTracker
	workDir  string
}

func newFixture(t *testing.T, proc *fakeProcessor, transcriber *fakeTranscriber, embedder *fakeEmbedder) *pipelineFixture {
	t.Helper()
	dao := newFakeDAO(7)
	tracker := NewMemoryTracker()
	workDir := t.TempDir()
	p := New(dao, proc, transcriber, fakeTranslator{}, embedder, nil, tracker,
		NewMetrics(prometheus.NewRegistry()), zap.NewNop(), testConfig(), workDir)
	return &pipelineFixture{pipeline: p, dao: dao, proc: proc, tracker: tracker, workDir: workDir}
}

func sourceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp4")
	require.NoError(t, os.WriteFile(path, []byte("source"), 0644))
	return path
}

func defaultSegments() []model.Segment {
	return []model.Segment{
		{Start: 0, End: 5, Text: "hello"},
		{Start: 5, End: 10, Text: "world"},
	}
}

func TestRunHappyPath(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.NoError(t, fx.pipeline.Run(context.Background(), job))

	// Status walks the full chain and ends completed.
	assert.Equal(t, []model.VideoStatus{model.StatusProcessing, model.StatusCompleted}, fx.dao.statuses)

	// Progress is monotone and ends at 100.
	last := -1
	for _, u := range fx.dao.progress {
		assert.GreaterOrEqual(t, u.progress, last, "progress went backwards at step %s", u.step)
		last = u.progress
	}
	assert.Equal(t, progressUpdate{StepDone, 100}, fx.dao.progress[len(fx.dao.progress)-1])

	// Both renditions were produced.
	assert.ElementsMatch(t, []int{720, 360}, fx.proc.transcoded)

	// Segments carry embeddings and the first target language's text.
	require.Len(t, fx.dao.segments, 2)
	assert.Equal(t, []float32{1, 0, 0}, fx.dao.segments[0].Embedding)
	assert.Equal(t, "[es] hello", fx.dao.segments[0].TranslatedText)

	// One subtitle track per language plus the source.
	assert.Len(t, fx.dao.translations, 3)

	// Duration was probed and persisted.
	assert.Equal(t, 42.5, fx.dao.video.Duration)

	// The tracker saw the terminal report.
	status, err := fx.tracker.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStateCompleted, status.State)
	assert.Equal(t, 100, status.Progress)
}

func TestRunCleansUpAudioOnSuccess(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.NoError(t, fx.pipeline.Run(context.Background(), job))

	_, err := os.Stat(filepath.Join(fx.workDir, "7", "audio.wav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCleansUpAudioOnFailure(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{err: errors.New("whisper down")}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))

	_, err := os.Stat(filepath.Join(fx.workDir, "7", "audio.wav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunTranscodeFailureIsTerminal(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{transcodeErr: errors.New("codec missing")},
		&fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))

	assert.Equal(t, model.StatusFailed, fx.dao.video.Status)
	assert.Equal(t, StepFailed, fx.dao.video.ProcessingStep)

	status, err := fx.tracker.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStateFailed, status.State)
	assert.Contains(t, status.Error, "codec missing")
}

func TestRunThumbnailFailureIsNotFatal(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{thumbErr: errors.New("no frame")},
		&fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.NoError(t, fx.pipeline.Run(context.Background(), job))

	assert.Equal(t, model.StatusCompleted, fx.dao.video.Status)
	assert.Empty(t, fx.dao.video.ThumbnailPath)
}

func TestRunEmbeddingFailureIsTerminal(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()},
		&fakeEmbedder{err: errors.New("quota exceeded")})
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))

	assert.Equal(t, model.StatusFailed, fx.dao.video.Status)
	assert.Empty(t, fx.dao.segments)
}

func TestRunStoreFailureIsTerminal(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	fx.dao.storeErr = errors.New("disk full")
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))
	assert.Equal(t, model.StatusFailed, fx.dao.video.Status)
}

func TestRunRejectsInvalidStartingStatus(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	fx.dao.video.Status = model.StatusCompleted
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))

	// The rejected run left the video untouched.
	assert.Empty(t, fx.dao.statuses)
	assert.Equal(t, model.StatusCompleted, fx.dao.video.Status)
	assert.Empty(t, fx.dao.segments)

	status, err := fx.tracker.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStateFailed, status.State)
	assert.Contains(t, status.Error, "completed")
}

func TestRunRejectsSourceWithoutVideoStream(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{noVideo: true},
		&fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))

	assert.Equal(t, model.StatusFailed, fx.dao.video.Status)
	assert.Empty(t, fx.proc.transcoded)

	status, err := fx.tracker.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Contains(t, status.Error, "no video stream")
}

func TestRunFailureWaitsForThumbnail(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{thumbDelay: 50 * time.Millisecond, transcodeErr: errors.New("codec missing")},
		&fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.Error(t, fx.pipeline.Run(context.Background(), job))

	// The run returned only after the slow thumbnail goroutine finished
	// its write.
	fx.dao.mu.Lock()
	defer fx.dao.mu.Unlock()
	assert.NotEmpty(t, fx.dao.video.ThumbnailPath)
}

func TestTranscodeProgressPersistsInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles = []config.TranscodeProfile{
		{Name: "1080p", Height: 1080, VideoBitrate: "5000k", AudioBitrate: "192k"},
		{Name: "720p", Height: 720, VideoBitrate: "2800k", AudioBitrate: "128k"},
		{Name: "480p", Height: 480, VideoBitrate: "1400k", AudioBitrate: "128k"},
		{Name: "360p", Height: 360, VideoBitrate: "800k", AudioBitrate: "96k"},
	}
	cfg.TranscodeConcurrency = 4
	// Staggered delays force renditions to finish in scrambled order.
	proc := &fakeProcessor{transcodeDelays: map[int]time.Duration{
		1080: 40 * time.Millisecond,
		720:  0,
		480:  20 * time.Millisecond,
		360:  10 * time.Millisecond,
	}}
	dao := newFakeDAO(7)
	p := New(dao, proc, &fakeTranscriber{segments: defaultSegments()}, fakeTranslator{},
		&fakeEmbedder{}, nil, NewMemoryTracker(), NewMetrics(prometheus.NewRegistry()),
		zap.NewNop(), cfg, t.TempDir())
	job := NewJob(7, sourceFile(t))

	require.NoError(t, p.Run(context.Background(), job))

	// The persisted sequence never regresses, whatever the completion
	// order was.
	last := -1
	transcoding := 0
	for _, u := range dao.progress {
		require.GreaterOrEqual(t, u.progress, last,
			"persisted progress went backwards at step %s", u.step)
		last = u.progress
		if u.step == StepTranscoding {
			transcoding++
		}
	}
	// One initial bump plus one per rendition, ending at 70.
	assert.Equal(t, 5, transcoding)
}

func TestRunProgressBreakpoints(t *testing.T) {
	fx := newFixture(t, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()}, &fakeEmbedder{})
	job := NewJob(7, sourceFile(t))

	require.NoError(t, fx.pipeline.Run(context.Background(), job))

	seen := map[string]int{}
	for _, u := range fx.dao.progress {
		seen[u.step] = u.progress
	}
	assert.Equal(t, 5, seen[StepStart])
	assert.Equal(t, 70, seen[StepTranscoding])
	assert.Equal(t, 70, seen[StepAudio])
	assert.Equal(t, 75, seen[StepTranscribe])
	assert.Equal(t, 85, seen[StepSubtitles])
	assert.Equal(t, 90, seen[StepTranslate])
	assert.Equal(t, 95, seen[StepEmbeddings])
	assert.Equal(t, 100, seen[StepDone])
}
