package llm

import "time"

// CompletionRequest is one chat completion call. An empty Model, a zero
// MaxTokens or a nil Temperature leaves the choice to the client.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Model        string
	MaxTokens    int
	// Temperature is a pointer so that 0 asks for deterministic sampling.
	Temperature *float64
}

// Message is a conversation turn.
type Message struct {
	Role    Role
	Content string
}

// UserMessage returns a user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Role identifies who sent a message.
type Role string

// Message roles understood by every client.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// CompletionResponse holds the text a client returned.
type CompletionResponse struct {
	Content string
	Usage   TokenUsage
	// Model is the model that answered, as far as the client knows.
	Model        string
	FinishReason string
	Duration     time.Duration
}

// TokenUsage counts tokens. Clients that cannot report usage leave it zero.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Add accumulates other into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
