package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is one unit of pipeline work: a stored upload waiting for its
// run.
type Job struct {
	ID         string
	VideoID    int64
	SourcePath string
}

// NewJob mints a job with a fresh identifier.
func NewJob(videoID int64, sourcePath string) Job {
	return Job{ID: uuid.NewString(), VideoID: videoID, SourcePath: sourcePath}
}

// ErrQueueClosed is returned by Enqueue after Stop.
var ErrQueueClosed = errors.New("pipeline: queue closed")

// ErrQueueFull is returned by Enqueue when the buffer is at capacity.
var ErrQueueFull = errors.New("pipeline: queue full")

// Worker fans a buffered job queue out over a fixed pool of pipeline
// runs. Jobs are accepted until Stop; Stop drains what was accepted.
type Worker struct {
	pipeline *Pipeline
	tracker  Tracker
	logger   *zap.Logger

	jobs   chan Job
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewWorker sizes the pool from workers and the buffer from queueSize.
func NewWorker(pipeline *Pipeline, tracker Tracker, logger *zap.Logger, workers, queueSize int) *Worker {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}
	w := &Worker{
		pipeline: pipeline,
		tracker:  tracker,
		logger:   logger,
		jobs:     make(chan Job, queueSize),
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.run(i)
	}
	return w
}

// Enqueue registers the job as queued and hands it to the pool without
// blocking the caller.
func (w *Worker) Enqueue(ctx context.Context, job Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrQueueClosed
	}

	// Only the pool drains the channel and the lock serializes
	// producers, so a capacity check here cannot be invalidated before
	// the send below. A rejected job must leave no tracker record.
	if len(w.jobs) == cap(w.jobs) {
		return ErrQueueFull
	}

	if err := w.tracker.Report(ctx, JobStatus{
		JobID: job.ID, VideoID: job.VideoID, State: JobStateQueued, Step: StepStart,
	}); err != nil {
		w.logger.Warn("queued status report failed", zap.String("job_id", job.ID), zap.Error(err))
	}

	w.jobs <- job
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Worker) run(id int) {
	defer w.wg.Done()
	for job := range w.jobs {
		// Jobs outlive the request that queued them, so runs carry a
		// fresh context rather than the caller's.
		if err := w.pipeline.Run(context.Background(), job); err != nil {
			w.logger.Error("job failed",
				zap.Int("worker", id), zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}
