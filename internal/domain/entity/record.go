// Package entity defines the core domain entities and validation logic for the application.
// It contains the transcript record that is summarized, the chat completion request
// exchanged with the model service, and the domain-specific errors.
package entity

import "strings"

// Record represents a stored video transcript awaiting (or holding) a summary.
// Records are written by upstream ingestion; this application only writes Summary,
// exactly once, keyed by ExternalID.
type Record struct {
	// ExternalID is the unique external identifier (the yt_id column).
	ExternalID string
	Title      string
	// Transcription is the immutable input text.
	Transcription string
	// Summary is nil while the record is pending.
	Summary *string
	// ChunkCountHint is only used to order selection (smallest first).
	// Nothing in this application keeps it in sync with real chunk counts.
	ChunkCountHint int
	// Attempts counts failed summarization attempts (service or persistence failures).
	Attempts int
}

// IsPending reports whether the record still needs a summary.
func (r *Record) IsPending() bool {
	return r.Summary == nil
}

// Validate checks that the record carries a usable transcription.
// Returns a ValidationError wrapping ErrEmptyTranscription for blank input.
func (r *Record) Validate() error {
	if r.ExternalID == "" {
		return &ValidationError{Field: "external_id", Message: "external id is required"}
	}
	if strings.TrimSpace(r.Transcription) == "" {
		return &ValidationError{Field: "transcription", Message: "transcription is empty or invalid", Err: ErrEmptyTranscription}
	}
	return nil
}
