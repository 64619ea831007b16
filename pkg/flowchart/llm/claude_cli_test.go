package llm

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeCLI_BuildArgs(t *testing.T) {
	tests := []struct {
		name     string
		client   *ClaudeCLI
		req      CompletionRequest
		expected []string
	}{
		{
			name:   "basic request",
			client: NewClaudeCLI(),
			req: CompletionRequest{
				Messages: []Message{{Role: RoleUser, Content: "Hello"}},
			},
			expected: []string{"--print", "-p", "Hello"},
		},
		{
			name:   "system prompt and sampling",
			client: NewClaudeCLI(),
			req: CompletionRequest{
				SystemPrompt: "Be helpful",
				MaxTokens:    1000,
				Messages:     []Message{{Role: RoleUser, Content: "Hi"}},
			},
			expected: []string{"--print", "--system-prompt", "Be helpful", "--max-tokens", "1000", "-p", "Hi"},
		},
		{
			name:   "model from client",
			client: NewClaudeCLI(WithClaudeModel("claude-3-opus")),
			req: CompletionRequest{
				Messages: []Message{{Role: RoleUser, Content: "Test"}},
			},
			expected: []string{"--print", "--model", "claude-3-opus", "-p", "Test"},
		},
		{
			name:   "model from request overrides client",
			client: NewClaudeCLI(WithClaudeModel("default-model")),
			req: CompletionRequest{
				Model:    "request-model",
				Messages: []Message{{Role: RoleUser, Content: "Test"}},
			},
			expected: []string{"--print", "--model", "request-model", "-p", "Test"},
		},
		{
			name:   "conversation history",
			client: NewClaudeCLI(),
			req: CompletionRequest{
				Messages: []Message{
					{Role: RoleUser, Content: "First"},
					{Role: RoleAssistant, Content: "Answer"},
					{Role: RoleUser, Content: "Again"},
				},
			},
			expected: []string{"--print", "-p", "First\n\nAssistant: Answer\n\nUser: Again"},
		},
		{
			name:     "no messages",
			client:   NewClaudeCLI(),
			req:      CompletionRequest{},
			expected: []string{"--print"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.client.buildArgs(tt.req))
		})
	}
}

func TestClaudeCLI_Options(t *testing.T) {
	c := NewClaudeCLI(
		WithClaudePath("/custom/claude"),
		WithClaudeModel("claude-3-opus"),
		WithWorkdir("/project"),
		WithClaudeTimeout(time.Minute),
	)

	assert.Equal(t, "/custom/claude", c.path)
	assert.Equal(t, "claude-3-opus", c.model)
	assert.Equal(t, "/project", c.workdir)
	assert.Equal(t, time.Minute, c.timeout)
}

func TestClaudeCLI_MissingBinary(t *testing.T) {
	c := NewClaudeCLI(WithClaudePath(filepath.Join(t.TempDir(), "no-such-claude")))

	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "complete", llmErr.Op)
	assert.False(t, llmErr.Retryable)
}

func TestClaudeCLI_Complete(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	script := filepath.Join(t.TempDir(), "claude")
	stub := "#!/bin/sh\nprintf '  [(\"a\", \"A\", \"block\", [])]\\n'\n"
	require.NoError(t, os.WriteFile(script, []byte(stub), 0o755))

	c := NewClaudeCLI(WithClaudePath(script), WithClaudeModel("sonnet"))
	resp, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, `[("a", "A", "block", [])]`, resp.Content)
	assert.Equal(t, "sonnet", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestClaudeCLI_FailureIsClassified(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	script := filepath.Join(t.TempDir(), "claude")
	stub := "#!/bin/sh\necho 'Rate limit exceeded' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(script, []byte(stub), 0o755))

	_, err := NewClaudeCLI(WithClaudePath(script)).Complete(context.Background(), CompletionRequest{})

	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "Rate limit exceeded")
}

func TestClaudeCLI_EmptyPathKeepsDefault(t *testing.T) {
	assert.Equal(t, "claude", NewClaudeCLI(WithClaudePath("")).path)
}

func TestConversation_LeadingAssistantDropped(t *testing.T) {
	got := conversation([]Message{
		{Role: RoleAssistant, Content: "ignored"},
		UserMessage("Draw tea"),
	})
	assert.Equal(t, "Draw tea", got)
}
