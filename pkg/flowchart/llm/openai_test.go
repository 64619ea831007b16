package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChat records the messages and options it receives.
type fakeChat struct {
	input []*schema.Message
	opts  *model.Options
	out   *schema.Message
	err   error
}

func (f *fakeChat) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	f.opts = model.GetCommonOptions(&model.Options{}, opts...)
	return f.out, f.err
}

func TestOpenAI_Complete(t *testing.T) {
	chat := &fakeChat{out: &schema.Message{
		Role:    schema.Assistant,
		Content: "[('a', 'A', 'block', [])]",
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage:        &schema.TokenUsage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20},
		},
	}}
	c := newOpenAI(chat, DefaultOpenAIModel)

	resp, err := c.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "You are helpful.",
		Messages:     []Message{{Role: RoleUser, Content: "Make a flowchart"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "[('a', 'A', 'block', [])]", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, DefaultOpenAIModel, resp.Model)
	assert.Equal(t, TokenUsage{InputTokens: 12, OutputTokens: 8, TotalTokens: 20}, resp.Usage)

	require.Len(t, chat.input, 2)
	assert.Equal(t, schema.System, chat.input[0].Role)
	assert.Equal(t, "You are helpful.", chat.input[0].Content)
	assert.Equal(t, schema.User, chat.input[1].Role)

	require.NotNil(t, chat.opts.Temperature)
	assert.InDelta(t, 0.7, *chat.opts.Temperature, 1e-6)
	require.NotNil(t, chat.opts.MaxTokens)
	assert.Equal(t, DefaultMaxTokens, *chat.opts.MaxTokens)
	require.NotNil(t, chat.opts.Model)
	assert.Equal(t, DefaultOpenAIModel, *chat.opts.Model)
}

func TestOpenAI_RequestOverrides(t *testing.T) {
	chat := &fakeChat{out: &schema.Message{Content: "ok"}}
	c := newOpenAI(chat, DefaultOpenAIModel)

	temperature := 0.2
	resp, err := c.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o-mini",
		Temperature: &temperature,
		MaxTokens:   50,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.InDelta(t, 0.2, *chat.opts.Temperature, 1e-6)
	assert.Equal(t, 50, *chat.opts.MaxTokens)
}

func TestOpenAI_ZeroTemperature(t *testing.T) {
	chat := &fakeChat{out: &schema.Message{Content: "ok"}}
	zero := 0.0

	_, err := newOpenAI(chat, DefaultOpenAIModel).Complete(context.Background(), CompletionRequest{Temperature: &zero})
	require.NoError(t, err)
	require.NotNil(t, chat.opts.Temperature)
	assert.Zero(t, *chat.opts.Temperature)
}

func TestOpenAI_Errors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		c := newOpenAI(&fakeChat{err: errors.New("429 Too Many Requests: rate limit")}, DefaultOpenAIModel)
		_, err := c.Complete(context.Background(), CompletionRequest{})

		var llmErr *Error
		require.ErrorAs(t, err, &llmErr)
		assert.True(t, llmErr.Retryable)
	})

	t.Run("bad request", func(t *testing.T) {
		c := newOpenAI(&fakeChat{err: errors.New("invalid api key")}, DefaultOpenAIModel)
		_, err := c.Complete(context.Background(), CompletionRequest{})
		assert.False(t, IsRetryable(err))
	})

	t.Run("nil message", func(t *testing.T) {
		c := newOpenAI(&fakeChat{}, DefaultOpenAIModel)
		_, err := c.Complete(context.Background(), CompletionRequest{})
		assert.Error(t, err)
	})
}

func TestNewOpenAI_MissingKey(t *testing.T) {
	_, err := NewOpenAI(context.Background(), OpenAIConfig{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestToSchemaMessages(t *testing.T) {
	msgs := toSchemaMessages(CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "u"},
			{Role: RoleAssistant, Content: "a"},
		},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
}
