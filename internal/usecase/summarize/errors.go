// Package summarize implements the batch summarization use case: token-budget
// estimation, word-aligned chunking, the confirmation gate and the per-record
// state machine that drives chat completion calls and persists summaries.
package summarize

import (
	"errors"
	"fmt"
)

// Sentinel errors for summarization use case operations.
var (
	// ErrCompletionFailed indicates that a chat completion call failed.
	// The record is left pending and its attempt counter is incremented.
	ErrCompletionFailed = errors.New("chat completion failed")

	// ErrPersistFailed indicates that a produced summary could not be stored.
	ErrPersistFailed = errors.New("failed to persist summary")

	// ErrNoInputProvider indicates that confirmation was required but no input source is configured.
	ErrNoInputProvider = errors.New("confirmation required but no input provider configured")
)

// ExternalServiceError reports a failed completion call for one record.
// ChunkIndex is -1 for the direct (unchunked) path.
type ExternalServiceError struct {
	ExternalID string
	ChunkIndex int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.ChunkIndex >= 0 {
		return fmt.Sprintf("completion for %s chunk %d: %v", e.ExternalID, e.ChunkIndex+1, e.Err)
	}
	return fmt.Sprintf("completion for %s: %v", e.ExternalID, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Is matches ErrCompletionFailed.
func (e *ExternalServiceError) Is(target error) bool { return target == ErrCompletionFailed }

// PersistenceError reports a failed summary write for one record.
type PersistenceError struct {
	ExternalID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist summary for %s: %v", e.ExternalID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is matches ErrPersistFailed.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistFailed }
