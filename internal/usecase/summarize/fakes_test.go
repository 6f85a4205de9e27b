package summarize_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"transcript-summarizer/internal/domain/entity"
	"transcript-summarizer/internal/repository"
	"transcript-summarizer/internal/usecase/summarize"
)

// fakeRepo is an in-memory record store with the same selection rules as the SQL one.
type fakeRepo struct {
	records []*entity.Record
	nextErr error
	// setErrs holds errors returned by successive SetSummary calls per id.
	setErrs  map[string][]error
	failErr  error
	filters  []repository.PendingFilter
	setCalls []string
	failures []string
}

func newFakeRepo(records ...*entity.Record) *fakeRepo {
	return &fakeRepo{records: records, setErrs: map[string][]error{}}
}

func (r *fakeRepo) NextPending(_ context.Context, filter repository.PendingFilter) (*entity.Record, error) {
	r.filters = append(r.filters, filter)
	if r.nextErr != nil {
		return nil, r.nextErr
	}

	excluded := make(map[string]bool, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = true
	}

	var best *entity.Record
	for _, rec := range r.records {
		if rec.Summary != nil || excluded[rec.ExternalID] {
			continue
		}
		if filter.MaxAttempts > 0 && rec.Attempts >= filter.MaxAttempts {
			continue
		}
		if best == nil || rec.ChunkCountHint < best.ChunkCountHint {
			best = rec
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *fakeRepo) SetSummary(_ context.Context, externalID, summary string) error {
	r.setCalls = append(r.setCalls, externalID)
	if errs := r.setErrs[externalID]; len(errs) > 0 {
		r.setErrs[externalID] = errs[1:]
		return errs[0]
	}
	rec := r.find(externalID)
	if rec == nil || rec.Summary != nil {
		return fmt.Errorf("SetSummary: %s: %w", externalID, repository.ErrNoRowsUpdated)
	}
	rec.Summary = &summary
	return nil
}

func (r *fakeRepo) RecordFailure(_ context.Context, externalID string) error {
	r.failures = append(r.failures, externalID)
	if r.failErr != nil {
		return r.failErr
	}
	if rec := r.find(externalID); rec != nil {
		rec.Attempts++
	}
	return nil
}

func (r *fakeRepo) find(id string) *entity.Record {
	for _, rec := range r.records {
		if rec.ExternalID == id {
			return rec
		}
	}
	return nil
}

func (r *fakeRepo) summaryOf(id string) *string {
	if rec := r.find(id); rec != nil {
		return rec.Summary
	}
	return nil
}

// fakeCompleter answers with respond, recording every request.
type fakeCompleter struct {
	respond  func(call int, req entity.CompletionRequest) (string, error)
	requests []entity.CompletionRequest
}

func (c *fakeCompleter) Complete(_ context.Context, req entity.CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)
	if c.respond == nil {
		return fmt.Sprintf("  summary %d  ", len(c.requests)), nil
	}
	return c.respond(len(c.requests), req)
}

type fakeMetrics struct {
	mu          sync.Mutex
	outcomes    []string
	completions int
	failedCalls int
	chunks      []int
	runs        []summarize.RunStats
}

func (m *fakeMetrics) ObserveRecord(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) ObserveCompletion(_ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions++
	if err != nil {
		m.failedCalls++
	}
}

func (m *fakeMetrics) ObserveChunks(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, count)
}

func (m *fakeMetrics) ObserveRun(stats summarize.RunStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, stats)
}

func pendingRecord(id, title, transcription string, hint int) *entity.Record {
	return &entity.Record{ExternalID: id, Title: title, Transcription: transcription, ChunkCountHint: hint}
}
