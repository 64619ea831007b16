package prompt

import (
	_ "embed"
	"strings"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
	"github.com/randalmurphal/flowchart/pkg/flowchart/llm"
)

// SystemMessage is sent ahead of every flowchart request.
const SystemMessage = "You are a helpful assistant that creates flowchart data structures."

// FlowchartTemplate asks for a flowchart about ${topic} as a list of
// (id, text, kind, edges) tuples.
//
//go:embed flowchart.tmpl
var FlowchartTemplate string

// Sampling defaults.
const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Builder turns a topic into a completion request.
type Builder struct {
	template    string
	system      string
	model       string
	temperature float64
	maxTokens   int
}

// Option configures a Builder.
type Option func(*Builder)

// WithTemplate replaces the user prompt template. It must reference ${topic}.
func WithTemplate(tmpl string) Option {
	return func(b *Builder) { b.template = tmpl }
}

// WithSystemMessage replaces the system message.
func WithSystemMessage(msg string) Option {
	return func(b *Builder) { b.system = msg }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(b *Builder) {
		if model != "" {
			b.model = model
		}
	}
}

// WithTemperature sets the sampling temperature. Zero is kept.
func WithTemperature(t float64) Option {
	return func(b *Builder) { b.temperature = t }
}

// WithMaxTokens sets the completion length limit.
func WithMaxTokens(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxTokens = n
		}
	}
}

// NewBuilder creates a Builder using the flowchart template and defaults.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		template:    FlowchartTemplate,
		system:      SystemMessage,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the request for topic. A blank topic fails with
// flowchart.ErrEmptyTopic.
func (b *Builder) Build(topic string) (llm.CompletionRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return llm.CompletionRequest{}, flowchart.ErrEmptyTopic
	}
	text, err := Expand(b.template, map[string]string{"topic": topic})
	if err != nil {
		return llm.CompletionRequest{}, err
	}
	temperature := b.temperature
	return llm.CompletionRequest{
		SystemPrompt: b.system,
		Messages:     []llm.Message{llm.UserMessage(text)},
		Model:        b.model,
		Temperature:  &temperature,
		MaxTokens:    b.maxTokens,
	}, nil
}

// Build is NewBuilder().Build(topic).
func Build(topic string) (llm.CompletionRequest, error) {
	return NewBuilder().Build(topic)
}
