// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track requests to the worker's operational endpoints
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Summarization metrics track runs, records and model service calls
var (
	// RecordsProcessedTotal counts records by final outcome of one attempt
	RecordsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_records_processed_total",
			Help: "Total number of records processed by outcome",
		},
		[]string{"outcome"}, // summarized, skipped, invalid, failed, persist_failed, aborted, cancelled, dry_run
	)

	// RecordProcessingDuration measures time spent on one record from fetch to outcome
	RecordProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarizer_record_duration_seconds",
			Help:    "Time taken to process one record",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"outcome"},
	)

	// RecordChunks measures how many chunks a record was split into (0 for the direct path)
	RecordChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarizer_record_chunks",
			Help:    "Number of chunks per record",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	// CompletionRequestsTotal counts chat completion calls by provider and status
	CompletionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_completion_requests_total",
			Help: "Total number of chat completion requests",
		},
		[]string{"provider", "status"},
	)

	// CompletionDuration measures chat completion latency including retries
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarizer_completion_duration_seconds",
			Help:    "Time taken by a chat completion call",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"provider"},
	)

	// CircuitBreakerState exposes breaker state (0 closed, 1 half-open, 2 open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "summarizer_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	// RunsTotal counts summarization runs by result
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_runs_total",
			Help: "Total number of summarization runs",
		},
		[]string{"result"}, // completed, aborted, error
	)

	// RunDuration measures the duration of a summarization run
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarizer_run_duration_seconds",
			Help:    "Time taken by a summarization run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	// LastRunTimestamp records when the last run finished (unix seconds)
	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "summarizer_last_run_timestamp_seconds",
			Help: "Unix time the last summarization run finished",
		},
	)

	// LastRunSummarized records how many summaries the last run stored
	LastRunSummarized = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "summarizer_last_run_summarized",
			Help: "Number of records summarized by the last run",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
