package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"videochat/internal/app/model"
)

func newTestWorker(t *testing.T, workers, queueSize int) (*Worker, *fakeDAO, *MemoryTracker) {
	t.Helper()
	dao := newFakeDAO(7)
	tracker := NewMemoryTracker()
	p := New(dao, &fakeProcessor{}, &fakeTranscriber{segments: defaultSegments()},
		fakeTranslator{}, &fakeEmbedder{}, nil, tracker,
		NewMetrics(prometheus.NewRegistry()), zap.NewNop(), testConfig(), t.TempDir())
	w := NewWorker(p, tracker, zap.NewNop(), workers, queueSize)
	return w, dao, tracker
}

func TestWorkerProcessesQueuedJob(t *testing.T) {
	w, dao, tracker := newTestWorker(t, 1, 4)
	job := NewJob(7, sourceFile(t))

	require.NoError(t, w.Enqueue(context.Background(), job))

	// The queued state is visible before the run starts.
	status, err := tracker.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Contains(t, []JobState{JobStateQueued, JobStateRunning, JobStateCompleted}, status.State)

	w.Stop()

	status, err = tracker.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStateCompleted, status.State)

	dao.mu.Lock()
	defer dao.mu.Unlock()
	assert.Equal(t, model.StatusCompleted, dao.video.Status)
}

func TestWorkerEnqueueAfterStop(t *testing.T) {
	w, _, _ := newTestWorker(t, 1, 1)
	w.Stop()

	err := w.Enqueue(context.Background(), NewJob(7, "unused.mp4"))
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	w, _, _ := newTestWorker(t, 2, 2)
	w.Stop()
	w.Stop()
}

func TestWorkerFullQueueLeavesNoTrackerRecord(t *testing.T) {
	block := make(chan struct{})
	dao := newFakeDAO(7)
	tracker := NewMemoryTracker()
	p := New(dao, &fakeProcessor{transcodeBlock: block}, &fakeTranscriber{segments: defaultSegments()},
		fakeTranslator{}, &fakeEmbedder{}, nil, tracker,
		NewMetrics(prometheus.NewRegistry()), zap.NewNop(), testConfig(), t.TempDir())
	w := NewWorker(p, tracker, zap.NewNop(), 1, 1)
	defer func() {
		close(block)
		w.Stop()
	}()

	busy := NewJob(7, sourceFile(t))
	require.NoError(t, w.Enqueue(context.Background(), busy))

	// Wait until the pool picked the job up and stalled in transcoding,
	// leaving the buffer empty.
	require.Eventually(t, func() bool {
		s, err := tracker.Get(context.Background(), busy.ID)
		return err == nil && s.State == JobStateRunning
	}, 5*time.Second, 5*time.Millisecond)

	waiting := NewJob(7, sourceFile(t))
	require.NoError(t, w.Enqueue(context.Background(), waiting))

	overflow := NewJob(7, sourceFile(t))
	assert.ErrorIs(t, w.Enqueue(context.Background(), overflow), ErrQueueFull)

	// The rejected job never touched the tracker; the buffered one did.
	_, err := tracker.Get(context.Background(), overflow.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	status, err := tracker.Get(context.Background(), waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStateQueued, status.State)
}

func TestWorkerStopDrainsQueue(t *testing.T) {
	w, dao, _ := newTestWorker(t, 2, 8)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Enqueue(context.Background(), NewJob(7, sourceFile(t))))
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not drain")
	}

	dao.mu.Lock()
	defer dao.mu.Unlock()
	assert.Equal(t, model.StatusCompleted, dao.video.Status)
}
