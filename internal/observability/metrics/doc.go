// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Summarization metrics (runs, record outcomes, chunk counts)
//   - Chat completion call metrics and circuit breaker state
//   - Database query and connection pool metrics
//   - HTTP metrics for the worker's operational endpoints
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "transcript-summarizer/internal/observability/metrics"
//
//	recorder := metrics.NewRecorder("openai")
//	svc := summarize.NewService(repo, completer, nil, input, recorder, cfg)
package metrics
