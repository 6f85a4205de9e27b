package summarize

import "time"

// Record outcomes reported to MetricsRecorder.
const (
	OutcomeSummarized    = "summarized"
	OutcomeSkipped       = "skipped"
	OutcomeInvalid       = "invalid"
	OutcomeFailed        = "failed"
	OutcomePersistFailed = "persist_failed"
	OutcomeAborted       = "aborted"
	OutcomeCancelled     = "cancelled"
	OutcomeDryRun        = "dry_run"
)

// MetricsRecorder receives run measurements.
type MetricsRecorder interface {
	ObserveRecord(outcome string, duration time.Duration)
	ObserveCompletion(duration time.Duration, err error)
	ObserveChunks(count int)
	ObserveRun(stats RunStats)
}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRecord(string, time.Duration)     {}
func (NoopMetrics) ObserveCompletion(time.Duration, error) {}
func (NoopMetrics) ObserveChunks(int)                      {}
func (NoopMetrics) ObserveRun(RunStats)                    {}
