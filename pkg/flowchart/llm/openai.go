package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Defaults used for OpenAI requests that leave a field unset.
const (
	DefaultOpenAIModel = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// ErrMissingAPIKey is returned by NewOpenAI without an API key.
var ErrMissingAPIKey = errors.New("llm: OpenAI API key is not set")

// chatModel is the part of the eino chat model interface OpenAI uses.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// OpenAIConfig configures NewOpenAI.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI implements Client with the OpenAI chat completions API.
type OpenAI struct {
	chat  chatModel
	model string
}

// NewOpenAI creates an OpenAI client.
func NewOpenAI(ctx context.Context, cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, NewError("init", err, false)
	}
	return newOpenAI(chat, cfg.Model), nil
}

func newOpenAI(chat chatModel, modelName string) *OpenAI {
	return &OpenAI{chat: chat, model: modelName}
}

// Complete implements Client. A nil Temperature and a zero MaxTokens fall
// back to DefaultTemperature and DefaultMaxTokens.
func (c *OpenAI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	modelName := c.model
	if req.Model != "" {
		modelName = req.Model
	}
	temperature := float32(DefaultTemperature)
	if req.Temperature != nil {
		temperature = float32(*req.Temperature)
	}
	maxTokens := DefaultMaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	out, err := c.chat.Generate(ctx, toSchemaMessages(req),
		model.WithModel(modelName),
		model.WithTemperature(temperature),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewError("complete", ctx.Err(), ctx.Err() == context.DeadlineExceeded)
		}
		return nil, NewError("complete", err, isRetryableMessage(err.Error()))
	}
	if out == nil {
		return nil, NewError("complete", errors.New("empty response"), true)
	}

	resp := &CompletionResponse{
		Content:  out.Content,
		Model:    modelName,
		Duration: time.Since(start),
	}
	if meta := out.ResponseMeta; meta != nil {
		resp.FinishReason = meta.FinishReason
		if meta.Usage != nil {
			resp.Usage = TokenUsage{
				InputTokens:  meta.Usage.PromptTokens,
				OutputTokens: meta.Usage.CompletionTokens,
				TotalTokens:  meta.Usage.TotalTokens,
			}
		}
	}
	return resp, nil
}

func toSchemaMessages(req CompletionRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, schema.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, schema.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(m.Content))
		}
	}
	return msgs
}
