package summarize

// Config holds the budgets and model parameters of a summarization run.
type Config struct {
	// Model is the chat completion model name sent with every request.
	Model string
	// ContextLimit is the model context window in estimated tokens.
	ContextLimit int
	// OutputReserve is the minimum output budget below which a record is chunked.
	OutputReserve int
	// ChunkTokenBudget is the per-chunk size limit passed to SplitIntoChunks.
	ChunkTokenBudget int
	// AutoConfirmThreshold is the chunk count above which confirmation is requested.
	AutoConfirmThreshold int
	// ChunkOutputTokens is max_tokens for each per-chunk call.
	ChunkOutputTokens int
	Temperature       float32
	// MaxAttempts stops selecting a record after this many failures. 0 means unlimited.
	MaxAttempts int
	// DryRun logs each summary instead of writing it. Attempt counters are not touched either.
	DryRun bool
}

// DefaultConfig returns the standard budgets for gpt-4-turbo.
func DefaultConfig() Config {
	return Config{
		Model:                "gpt-4-turbo",
		ContextLimit:         4096,
		OutputReserve:        500,
		ChunkTokenBudget:     3000,
		AutoConfirmThreshold: 20,
		ChunkOutputTokens:    1000,
		Temperature:          0.7,
		MaxAttempts:          3,
	}
}
