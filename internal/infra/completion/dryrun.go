package completion

import (
	"context"
	"fmt"
	"log/slog"

	"transcript-summarizer/internal/domain/entity"
)

const dryRunPreviewRunes = 80

// DryRun answers every request locally with a preview of its user prompt.
// It lets an operator walk through a run without spending API calls.
type DryRun struct{}

// Complete returns "[dry-run] " followed by the start of the last user message.
func (DryRun) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	var user string
	for _, m := range req.Messages {
		if m.Role == entity.RoleUser {
			user = m.Content
		}
	}

	preview := []rune(user)
	if len(preview) > dryRunPreviewRunes {
		preview = preview[:dryRunPreviewRunes]
	}

	slog.DebugContext(ctx, "dry-run completion",
		slog.String("model", req.Model),
		slog.Int("max_tokens", req.MaxTokens))

	return fmt.Sprintf("[dry-run] %s", string(preview)), nil
}
