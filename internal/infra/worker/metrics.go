package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"transcript-summarizer/internal/pkg/config"
)

// WorkerMetrics holds the Prometheus metrics of scheduled runs.
// It embeds the configuration metrics of the "worker" component.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts scheduled runs by status (started, success, failure, timeout).
	JobRunsTotal *prometheus.CounterVec

	JobDurationSeconds prometheus.Histogram

	// JobRecordsSummarizedTotal counts records summarized by scheduled runs.
	JobRecordsSummarizedTotal prometheus.Counter

	JobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics.
// Call it once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled summarization runs by status",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled summarization runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600},
		}),

		JobRecordsSummarizedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_records_summarized_total",
			Help: "Total number of records summarized across scheduled runs",
		}),

		JobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled run",
		}),
	}
}

// RecordJobRun increments the run counter for status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordRecordsSummarized adds count to the summarized counter.
func (m *WorkerMetrics) RecordRecordsSummarized(count int) {
	m.JobRecordsSummarizedTotal.Add(float64(count))
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
