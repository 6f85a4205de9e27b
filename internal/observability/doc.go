// Package observability groups the logging, metrics and tracing packages used
// by the summarizer binaries.
//
// Subpackages:
//   - logging: slog setup with request and run id propagation
//   - metrics: Prometheus collectors for runs, completions, breakers and the database
//   - tracing: OpenTelemetry tracer setup and HTTP middleware
//
// Example usage:
//
//	import (
//	    "transcript-summarizer/internal/observability/logging"
//	    "transcript-summarizer/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    rec := metrics.NewRecorder("openai")
//	    rec.ObserveRecord("summarized", time.Second)
//	}
package observability
