// Package status turns the persisted processing state of a video into
// a stream of change events suitable for server-sent delivery.
package status

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"videochat/internal/app/model"
	"videochat/internal/app/repository"
)

const (
	// DefaultInterval is the polling cadence.
	DefaultInterval = time.Second
	// DefaultMaxTicks bounds a watch to ten minutes at the default
	// cadence.
	DefaultMaxTicks = 600
)

// ErrWatchTimeout closes a watch that hit its tick ceiling without the
// video reaching a terminal status.
var ErrWatchTimeout = errors.New("status: watch timed out")

// Observer polls the store on behalf of a subscriber and emits only
// snapshots that differ from the previous one.
type Observer struct {
	dao      repository.VideoDAO
	logger   *zap.Logger
	interval time.Duration
	maxTicks int
}

// Option adjusts an Observer. Tests shrink the interval with these.
type Option func(*Observer)

func WithInterval(d time.Duration) Option {
	return func(o *Observer) { o.interval = d }
}

func WithMaxTicks(n int) Option {
	return func(o *Observer) { o.maxTicks = n }
}

func NewObserver(dao repository.VideoDAO, logger *zap.Logger, opts ...Option) *Observer {
	o := &Observer{
		dao:      dao,
		logger:   logger,
		interval: DefaultInterval,
		maxTicks: DefaultMaxTicks,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Watch emits status snapshots for the video until it reaches a
// terminal status, the watch times out, or ctx is done. The channel is
// closed when the watch ends. A video that cannot be found produces a
// single error snapshot.
func (o *Observer) Watch(ctx context.Context, videoID int64) <-chan model.StatusSnapshot {
	out := make(chan model.StatusSnapshot)
	go func() {
		defer close(out)
		o.watch(ctx, videoID, out)
	}()
	return out
}

func (o *Observer) watch(ctx context.Context, videoID int64, out chan<- model.StatusSnapshot) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	var last *model.StatusSnapshot
	for tick := 0; tick < o.maxTicks; tick++ {
		snapshot, terminal, err := o.observe(ctx, videoID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				o.send(ctx, out, model.StatusSnapshot{
					VideoID: videoID,
					Error:   "video not found",
				})
				return
			}
			// Transient store errors keep the watch alive; the next
			// tick retries.
			o.logger.Warn("status poll failed", zap.Int64("video_id", videoID), zap.Error(err))
		} else {
			if last == nil || !snapshot.Equal(*last) {
				if !o.send(ctx, out, snapshot) {
					return
				}
				last = &snapshot
			}
			if terminal {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	o.send(ctx, out, model.StatusSnapshot{
		VideoID: videoID,
		Status:  "",
		Error:   ErrWatchTimeout.Error(),
	})
}

// observe reads one snapshot, normalizing terminal shapes: completed
// always reads as done at 100, failed carries an error indicator.
func (o *Observer) observe(ctx context.Context, videoID int64) (model.StatusSnapshot, bool, error) {
	video, err := o.dao.GetVideo(ctx, videoID)
	if err != nil {
		return model.StatusSnapshot{}, false, err
	}

	snapshot := model.StatusSnapshot{
		VideoID:  videoID,
		Status:   video.Status,
		Step:     video.ProcessingStep,
		Progress: video.ProcessingProgress,
	}
	switch video.Status {
	case model.StatusCompleted:
		snapshot.Step = "done"
		snapshot.Progress = 100
	case model.StatusFailed:
		snapshot.Error = "processing failed"
	}
	return snapshot, video.Status.IsTerminal(), nil
}

func (o *Observer) send(ctx context.Context, out chan<- model.StatusSnapshot, snapshot model.StatusSnapshot) bool {
	select {
	case out <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}
