package metrics

import (
	"time"

	"transcript-summarizer/internal/usecase/summarize"
)

// Recorder reports summarization run measurements to Prometheus.
type Recorder struct {
	// Provider labels completion metrics ("openai", "claude", "dry-run").
	Provider string
}

var _ summarize.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a Prometheus-backed summarize.MetricsRecorder.
func NewRecorder(provider string) *Recorder {
	return &Recorder{Provider: provider}
}

func (r *Recorder) ObserveRecord(outcome string, duration time.Duration) {
	RecordRecordOutcome(outcome, duration)
}

func (r *Recorder) ObserveCompletion(duration time.Duration, err error) {
	RecordCompletionCall(r.Provider, err == nil, duration)
}

func (r *Recorder) ObserveChunks(count int) {
	RecordChunkCount(count)
}

func (r *Recorder) ObserveRun(stats summarize.RunStats) {
	result := "completed"
	if stats.Aborted {
		result = "aborted"
	}
	RecordRun(result, stats.Duration, stats.Summarized)
}
