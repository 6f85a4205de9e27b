package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"transcript-summarizer/internal/domain/entity"
	"transcript-summarizer/internal/observability/logging"
	"transcript-summarizer/internal/observability/tracing"
	"transcript-summarizer/internal/repository"
)

// ChatCompleter performs one chat completion call and returns the raw text.
type ChatCompleter interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}

// Service runs the summarization state machine over all pending records.
// Records are processed strictly one at a time.
type Service struct {
	Records   repository.RecordRepository
	Completer ChatCompleter
	Estimator TokenEstimator
	Input     InputProvider
	Metrics   MetricsRecorder
	cfg       Config
}

// NewService creates a summarization Service.
//
// Parameters:
//   - records: Record store holding transcripts and summaries
//   - completer: Chat completion client
//   - estimator: Token estimator (nil uses CharEstimator)
//   - input: Confirmation source for large records (may be nil when nothing needs confirmation)
//   - metrics: Metrics recorder (nil disables metrics)
//   - cfg: Budgets and model parameters
//
// Example:
//
//	svc := NewService(repo, completer, nil, confirm.NewTerminal(os.Stdin, os.Stdout), recorder, DefaultConfig())
//	stats, err := svc.Run(ctx)
func NewService(
	records repository.RecordRepository,
	completer ChatCompleter,
	estimator TokenEstimator,
	input InputProvider,
	metrics MetricsRecorder,
	cfg Config,
) *Service {
	if estimator == nil {
		estimator = CharEstimator{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Service{
		Records:   records,
		Completer: completer,
		Estimator: estimator,
		Input:     input,
		Metrics:   metrics,
		cfg:       cfg,
	}
}

// RunStats contains statistics about one summarization run.
type RunStats struct {
	Fetched         int
	Summarized      int
	Previewed       int
	Skipped         int
	Invalid         int
	Failed          int
	PersistFailures int
	CompletionCalls int
	Aborted         bool
	Duration        time.Duration
}

type state int

const (
	stateFetch state = iota
	stateValidate
	stateEstimate
	stateChunkDecision
	stateConfirm
	stateProcess
	statePersist
	stateDone
)

func (s state) String() string {
	switch s {
	case stateFetch:
		return "fetch"
	case stateValidate:
		return "validate"
	case stateEstimate:
		return "estimate"
	case stateChunkDecision:
		return "chunk_decision"
	case stateConfirm:
		return "confirm"
	case stateProcess:
		return "process"
	case statePersist:
		return "persist"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// stateHandler executes one state and returns the next one.
// A non-nil error terminates the run.
type stateHandler func(ctx context.Context, rc *runContext) (state, error)

// runContext carries everything the handlers share during one run.
type runContext struct {
	logger   *slog.Logger
	stats    RunStats
	excluded []string

	// Per-record fields, reset at FETCH.
	record           *entity.Record
	recordCtx        context.Context
	recordLogger     *slog.Logger
	span             trace.Span
	recordStart      time.Time
	userPrompt       string
	inputTokens      int
	availableTokens  int
	requiresChunking bool
	chunks           []string
	summary          string
}

// exclude keeps the current record out of the rest of this run.
func (rc *runContext) exclude() {
	rc.excluded = append(rc.excluded, rc.record.ExternalID)
}

func (s *Service) transitions() map[state]stateHandler {
	return map[state]stateHandler{
		stateFetch:         s.fetch,
		stateValidate:      s.validate,
		stateEstimate:      s.estimate,
		stateChunkDecision: s.chunkDecision,
		stateConfirm:       s.confirm,
		stateProcess:       s.process,
		statePersist:       s.persist,
	}
}

// Run processes pending records until none remain, the operator aborts,
// the context is cancelled, or the record store fails to list.
// Per-record failures are logged and counted, never returned.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	rc := &runContext{
		logger: logging.WithRun(ctx, logging.FromContext(ctx)),
	}
	table := s.transitions()

	var runErr error
	current := stateFetch
	for current != stateDone {
		handler, ok := table[current]
		if !ok {
			runErr = fmt.Errorf("no handler for state %s", current)
			break
		}

		handlerCtx := ctx
		if rc.recordCtx != nil {
			handlerCtx = rc.recordCtx
		}

		next, err := handler(handlerCtx, rc)
		if err != nil {
			runErr = err
			break
		}
		current = next
	}

	if rc.record != nil {
		s.finishRecord(rc, OutcomeCancelled)
	}

	rc.stats.Duration = time.Since(start)
	s.Metrics.ObserveRun(rc.stats)

	rc.logger.Info("summarization run completed",
		slog.Int("fetched", rc.stats.Fetched),
		slog.Int("summarized", rc.stats.Summarized),
		slog.Int("previewed", rc.stats.Previewed),
		slog.Int("skipped", rc.stats.Skipped),
		slog.Int("invalid", rc.stats.Invalid),
		slog.Int("failed", rc.stats.Failed),
		slog.Int("persist_failures", rc.stats.PersistFailures),
		slog.Int("completion_calls", rc.stats.CompletionCalls),
		slog.Bool("aborted", rc.stats.Aborted),
		slog.Duration("duration", rc.stats.Duration),
	)

	stats := rc.stats
	return &stats, runErr
}

// fetch selects the next pending record with the smallest chunk-count hint.
func (s *Service) fetch(ctx context.Context, rc *runContext) (state, error) {
	if err := ctx.Err(); err != nil {
		return stateDone, fmt.Errorf("run cancelled: %w", err)
	}

	filter := repository.PendingFilter{
		ExcludeIDs:  append([]string(nil), rc.excluded...),
		MaxAttempts: s.cfg.MaxAttempts,
	}
	record, err := s.Records.NextPending(ctx, filter)
	if err != nil {
		return stateDone, fmt.Errorf("fetch pending record: %w", err)
	}
	if record == nil {
		rc.logger.Info("no more records found that require a summary")
		return stateDone, nil
	}

	rc.stats.Fetched++
	rc.record = record
	rc.recordStart = time.Now()
	rc.recordCtx, rc.span = tracing.GetTracer().Start(ctx, "summarize.record",
		trace.WithAttributes(attribute.String("record.external_id", record.ExternalID)))
	rc.recordLogger = rc.logger.With(slog.String("external_id", record.ExternalID))
	rc.userPrompt = ""
	rc.inputTokens = 0
	rc.availableTokens = 0
	rc.requiresChunking = false
	rc.chunks = nil
	rc.summary = ""

	return stateValidate, nil
}

func (s *Service) validate(_ context.Context, rc *runContext) (state, error) {
	if err := rc.record.Validate(); err != nil {
		rc.recordLogger.Warn("transcription is empty or invalid, skipping record",
			slog.String("stage", stateValidate.String()),
			slog.Any("error", err))
		rc.stats.Invalid++
		rc.exclude()
		s.finishRecord(rc, OutcomeInvalid)
		return stateFetch, nil
	}
	return stateEstimate, nil
}

func (s *Service) estimate(_ context.Context, rc *runContext) (state, error) {
	rc.userPrompt = DirectPrompt(rc.record.Title, rc.record.Transcription)
	rc.inputTokens = s.Estimator.Estimate(SystemPrompt + rc.userPrompt)
	rc.availableTokens = s.cfg.ContextLimit - rc.inputTokens
	rc.requiresChunking = rc.availableTokens < s.cfg.OutputReserve
	return stateChunkDecision, nil
}

func (s *Service) chunkDecision(_ context.Context, rc *runContext) (state, error) {
	recommended := s.cfg.Model
	if rc.requiresChunking {
		rc.chunks = SplitIntoChunks(rc.record.Transcription, s.cfg.ChunkTokenBudget, s.Estimator)
		recommended = "Chunked Processing with " + s.cfg.Model
	}
	s.Metrics.ObserveChunks(len(rc.chunks))

	rc.span.SetAttributes(
		attribute.Int("record.input_tokens", rc.inputTokens),
		attribute.Int("record.chunks", len(rc.chunks)),
	)
	rc.recordLogger.Info("summary needed",
		slog.String("title", rc.record.Title),
		slog.Int("input_tokens", rc.inputTokens),
		slog.Int("available_tokens", rc.availableTokens),
		slog.String("recommended_model", recommended),
		slog.Bool("requires_chunking", rc.requiresChunking),
		slog.Int("chunks", len(rc.chunks)),
	)
	return stateConfirm, nil
}

func (s *Service) confirm(ctx context.Context, rc *runContext) (state, error) {
	decision, err := Decide(ctx, len(rc.chunks), s.cfg.AutoConfirmThreshold, s.Input)
	if err != nil {
		rc.recordLogger.Warn("confirmation input failed, aborting run",
			slog.String("stage", stateConfirm.String()),
			slog.Any("error", err))
	}
	rc.span.SetAttributes(attribute.String("record.decision", decision.String()))

	switch decision {
	case DecisionProceedAutomatically:
		rc.recordLogger.Info("automatic processing due to chunk count",
			slog.Int("threshold", s.cfg.AutoConfirmThreshold))
		return stateProcess, nil
	case DecisionProceedConfirmed:
		return stateProcess, nil
	case DecisionSkipRecord:
		rc.recordLogger.Info("skipping record")
		rc.stats.Skipped++
		rc.exclude()
		s.finishRecord(rc, OutcomeSkipped)
		return stateFetch, nil
	default:
		rc.recordLogger.Info("summary process aborted")
		rc.stats.Aborted = true
		s.finishRecord(rc, OutcomeAborted)
		return stateDone, nil
	}
}

func (s *Service) process(ctx context.Context, rc *runContext) (state, error) {
	var (
		summary string
		err     error
	)
	if rc.requiresChunking {
		summary, err = s.summarizeChunks(ctx, rc)
	} else {
		summary, err = s.summarizeDirect(ctx, rc)
	}

	if err != nil {
		if ctx.Err() != nil {
			// Cancellation is not the record's fault; FETCH ends the run.
			rc.recordLogger.Warn("completion interrupted by cancellation",
				slog.String("stage", stateProcess.String()),
				slog.Any("error", err))
			s.finishRecord(rc, OutcomeCancelled)
			return stateFetch, nil
		}

		rc.recordLogger.Error("error communicating with model service",
			slog.String("stage", stateProcess.String()),
			slog.Any("error", err))
		rc.stats.Failed++
		s.recordFailure(ctx, rc)
		rc.span.RecordError(err)
		s.finishRecord(rc, OutcomeFailed)
		return stateFetch, nil
	}

	rc.summary = summary
	return statePersist, nil
}

func (s *Service) summarizeDirect(ctx context.Context, rc *runContext) (string, error) {
	req := newCompletionRequest(s.cfg.Model, rc.userPrompt, rc.availableTokens, s.cfg.Temperature)
	text, err := s.complete(ctx, rc, req)
	if err != nil {
		return "", &ExternalServiceError{ExternalID: rc.record.ExternalID, ChunkIndex: -1, Err: err}
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) summarizeChunks(ctx context.Context, rc *runContext) (string, error) {
	rc.recordLogger.Info("processing transcription in chunks", slog.Int("chunks", len(rc.chunks)))

	summaries := make([]string, 0, len(rc.chunks))
	for i, chunk := range rc.chunks {
		rc.recordLogger.Info("processing chunk",
			slog.Int("chunk", i+1),
			slog.Int("of", len(rc.chunks)))

		req := newCompletionRequest(s.cfg.Model, ChunkPrompt(chunk), s.cfg.ChunkOutputTokens, s.cfg.Temperature)
		text, err := s.complete(ctx, rc, req)
		if err != nil {
			return "", &ExternalServiceError{ExternalID: rc.record.ExternalID, ChunkIndex: i, Err: err}
		}
		summaries = append(summaries, strings.TrimSpace(text))
	}
	return strings.Join(summaries, " "), nil
}

func (s *Service) complete(ctx context.Context, rc *runContext, req entity.CompletionRequest) (string, error) {
	rc.stats.CompletionCalls++
	start := time.Now()
	text, err := s.Completer.Complete(ctx, req)
	s.Metrics.ObserveCompletion(time.Since(start), err)
	return text, err
}

func (s *Service) persist(ctx context.Context, rc *runContext) (state, error) {
	if s.cfg.DryRun {
		rc.stats.Previewed++
		rc.recordLogger.Info("dry run, summary not written", slog.Int("summary_length", len(rc.summary)))
		rc.recordLogger.Debug("summary", slog.String("summary", rc.summary))
		rc.exclude()
		s.finishRecord(rc, OutcomeDryRun)
		return stateFetch, nil
	}

	if err := s.Records.SetSummary(ctx, rc.record.ExternalID, rc.summary); err != nil {
		perr := &PersistenceError{ExternalID: rc.record.ExternalID, Err: err}
		rc.recordLogger.Error("failed to update the summary in the database",
			slog.String("stage", statePersist.String()),
			slog.Any("error", perr))
		rc.stats.PersistFailures++
		s.recordFailure(ctx, rc)
		rc.span.RecordError(perr)
		s.finishRecord(rc, OutcomePersistFailed)
		return stateFetch, nil
	}

	rc.stats.Summarized++
	rc.recordLogger.Info("summary successfully updated", slog.Int("summary_length", len(rc.summary)))
	rc.recordLogger.Debug("summary", slog.String("summary", rc.summary))
	s.finishRecord(rc, OutcomeSummarized)
	return stateFetch, nil
}

// recordFailure increments the attempt counter; its own failure is only logged.
// A dry run excludes the record for the rest of the run instead.
func (s *Service) recordFailure(ctx context.Context, rc *runContext) {
	if s.cfg.DryRun {
		rc.exclude()
		return
	}
	if err := s.Records.RecordFailure(context.WithoutCancel(ctx), rc.record.ExternalID); err != nil {
		rc.recordLogger.Warn("failed to record summarization attempt", slog.Any("error", err))
	}
}

// finishRecord ends the record span, reports its outcome and clears per-record state.
func (s *Service) finishRecord(rc *runContext, outcome string) {
	if rc.span != nil {
		rc.span.SetAttributes(attribute.String("record.outcome", outcome))
		switch outcome {
		case OutcomeFailed, OutcomePersistFailed:
			rc.span.SetStatus(codes.Error, outcome)
		default:
			rc.span.SetStatus(codes.Ok, "")
		}
		rc.span.End()
	}
	s.Metrics.ObserveRecord(outcome, time.Since(rc.recordStart))

	rc.record = nil
	rc.recordCtx = nil
	rc.recordLogger = nil
	rc.span = nil
}
