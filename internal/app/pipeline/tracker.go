package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobState is the tracker-side view of a pipeline execution.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// JobStatus is what the orchestrator reports after every stage and
// what a caller polling the side channel reads back.
type JobStatus struct {
	JobID     string    `json:"job_id"`
	VideoID   int64     `json:"video_id"`
	State     JobState  `json:"state"`
	Step      string    `json:"step,omitempty"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrJobNotFound is returned when polling an unknown job id.
var ErrJobNotFound = fmt.Errorf("job not found")

// Tracker is the job-tracking side channel. It is advisory: a failed
// report must never abort the pipeline run that issued it.
type Tracker interface {
	Report(ctx context.Context, status JobStatus) error
	Get(ctx context.Context, jobID string) (*JobStatus, error)
}

const trackerTTL = 24 * time.Hour

// RedisTracker stores job status under task:<id>:status / task:<id>:result
// keys with a 24h TTL.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker wraps a connected redis client.
func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func (t *RedisTracker) Report(ctx context.Context, status JobStatus) error {
	status.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}

	statusKey := fmt.Sprintf("task:%s:status", status.JobID)
	resultKey := fmt.Sprintf("task:%s:result", status.JobID)

	if err := t.client.Set(ctx, statusKey, string(status.State), trackerTTL).Err(); err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	if err := t.client.Set(ctx, resultKey, payload, trackerTTL).Err(); err != nil {
		return fmt.Errorf("set task result: %w", err)
	}
	return nil
}

func (t *RedisTracker) Get(ctx context.Context, jobID string) (*JobStatus, error) {
	payload, err := t.client.Get(ctx, fmt.Sprintf("task:%s:result", jobID)).Result()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task result: %w", err)
	}

	var status JobStatus
	if err := json.Unmarshal([]byte(payload), &status); err != nil {
		return nil, fmt.Errorf("decode task result: %w", err)
	}
	return &status, nil
}

// MemoryTracker keeps job status in-process, for tests and for
// deployments without redis.
type MemoryTracker struct {
	mu   sync.RWMutex
	jobs map[string]JobStatus
}

// NewMemoryTracker creates an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{jobs: make(map[string]JobStatus)}
}

func (t *MemoryTracker) Report(ctx context.Context, status JobStatus) error {
	status.UpdatedAt = time.Now().UTC()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[status.JobID] = status
	return nil
}

func (t *MemoryTracker) Get(ctx context.Context, jobID string) (*JobStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &status, nil
}
