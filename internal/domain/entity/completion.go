package entity

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleSystem ChatRole = "system"
	RoleUser   ChatRole = "user"
)

// ChatMessage is a single message in a chat completion request.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// CompletionRequest describes one chat completion call against the model service.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float32
}

// SystemPrompt returns the content of the first system message, if any.
func (r CompletionRequest) SystemPrompt() string {
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			return m.Content
		}
	}
	return ""
}
