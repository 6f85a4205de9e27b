// Package tracing provides OpenTelemetry tracing integration.
//
// The summarization run opens one span per record ("summarize.record") carrying
// the external id, token estimate, chunk count, decision and outcome. The worker's
// HTTP endpoints are wrapped with Middleware.
//
// Spans go to the globally registered TracerProvider; without one they are no-ops.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "summarize.record")
//	defer span.End()
package tracing
