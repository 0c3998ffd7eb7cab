package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects pipeline-level prometheus metrics.
type Metrics struct {
	JobsStarted   prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	JobsInFlight  prometheus.Gauge
	StageDuration *prometheus.HistogramVec
}

// NewMetrics registers pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "videochat_pipeline_jobs_started_total",
			Help: "Number of pipeline jobs started.",
		}),
		JobsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "videochat_pipeline_jobs_completed_total",
			Help: "Number of pipeline jobs that reached completed.",
		}),
		JobsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "videochat_pipeline_jobs_failed_total",
			Help: "Number of pipeline jobs that failed.",
		}),
		JobsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videochat_pipeline_jobs_in_flight",
			Help: "Pipeline jobs currently occupying a worker.",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "videochat_pipeline_stage_duration_seconds",
			Help:    "Wall time spent in each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
	}
}
