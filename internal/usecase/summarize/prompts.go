package summarize

import (
	"fmt"

	"transcript-summarizer/internal/domain/entity"
)

const (
	// SystemPrompt is sent as the system message of every completion call.
	SystemPrompt = "You are a helpful assistant that summarizes text content."

	directPromptFormat = "Summarize the following transcription from a video titled (%s):\n\n%s"
	chunkPromptFormat  = "Summarize the following transcription:\n\n%s"
)

// DirectPrompt builds the user message for summarizing a whole transcript in one call.
func DirectPrompt(title, transcription string) string {
	return fmt.Sprintf(directPromptFormat, title, transcription)
}

// ChunkPrompt builds the user message for summarizing one chunk.
func ChunkPrompt(chunk string) string {
	return fmt.Sprintf(chunkPromptFormat, chunk)
}

func newCompletionRequest(model, userPrompt string, maxTokens int, temperature float32) entity.CompletionRequest {
	return entity.CompletionRequest{
		Model: model,
		Messages: []entity.ChatMessage{
			{Role: entity.RoleSystem, Content: SystemPrompt},
			{Role: entity.RoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
