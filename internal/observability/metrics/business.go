package metrics

import (
	"time"
)

// RecordRecordOutcome records the outcome and duration of one record attempt.
func RecordRecordOutcome(outcome string, duration time.Duration) {
	RecordsProcessedTotal.WithLabelValues(outcome).Inc()
	RecordProcessingDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordChunkCount records the chunk count chosen for a record.
func RecordChunkCount(count int) {
	RecordChunks.Observe(float64(count))
}

// RecordCompletionCall records one chat completion call.
// Status should be either "success" or "failure".
func RecordCompletionCall(provider string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	CompletionRequestsTotal.WithLabelValues(provider, status).Inc()
	CompletionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCircuitBreakerState records a breaker transition.
// state follows gobreaker ordering: 0 closed, 1 half-open, 2 open.
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordRun records a finished run.
// Result should be one of "completed", "aborted" or "error".
//
// Example:
//
//	stats, err := svc.Run(ctx)
//	metrics.RecordRun("completed", stats.Duration, stats.Summarized)
func RecordRun(result string, duration time.Duration, summarized int) {
	RunsTotal.WithLabelValues(result).Inc()
	RunDuration.Observe(duration.Seconds())
	LastRunTimestamp.Set(float64(time.Now().Unix()))
	LastRunSummarized.Set(float64(summarized))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "next_pending", "set_summary").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
