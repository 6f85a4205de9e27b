package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "empty transcription",
			field:    "transcription",
			message:  "transcription is empty or invalid",
			expected: "validation error on field 'transcription': transcription is empty or invalid",
		},
		{
			name:     "missing id",
			field:    "external_id",
			message:  "external id is required",
			expected: "validation error on field 'external_id': external id is required",
		},
		{
			name:     "empty message",
			field:    "title",
			message:  "",
			expected: "validation error on field 'title': ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{
				Field:   tt.field,
				Message: tt.message,
			}

			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	t.Run("defaults to ErrValidationFailed", func(t *testing.T) {
		err := &ValidationError{Field: "external_id", Message: "required"}
		assert.True(t, errors.Is(err, ErrValidationFailed))
		assert.False(t, errors.Is(err, ErrEmptyTranscription))
	})

	t.Run("carries sentinel", func(t *testing.T) {
		err := &ValidationError{Field: "transcription", Message: "empty", Err: ErrEmptyTranscription}
		assert.True(t, errors.Is(err, ErrEmptyTranscription))
	})

	t.Run("survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("validate record abc: %w",
			&ValidationError{Field: "transcription", Message: "empty", Err: ErrEmptyTranscription})

		var validationErr *ValidationError
		assert.True(t, errors.As(wrapped, &validationErr))
		assert.Equal(t, "transcription", validationErr.Field)
		assert.True(t, errors.Is(wrapped, ErrEmptyTranscription))
	})
}

func TestSentinelErrors_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "ErrValidationFailed", err: ErrValidationFailed, expected: "validation failed"},
		{name: "ErrEmptyTranscription", err: ErrEmptyTranscription, expected: "empty transcription"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
