package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowchart/pkg/flowchart/config"
	fcerrors "github.com/randalmurphal/flowchart/pkg/flowchart/errors"
	"github.com/randalmurphal/flowchart/pkg/flowchart/generator"
	"github.com/randalmurphal/flowchart/pkg/flowchart/history"
	"github.com/randalmurphal/flowchart/pkg/flowchart/llm"
	"github.com/randalmurphal/flowchart/pkg/flowchart/observability"
	"github.com/randalmurphal/flowchart/pkg/flowchart/pipeline"
	"github.com/randalmurphal/flowchart/pkg/flowchart/prompt"
	"github.com/randalmurphal/flowchart/pkg/flowchart/render"
)

// overrides maps persistent flags onto config keys.
var overrides = map[string]string{
	"output-dir": "output.dir",
	"format":     "output.format",
	"log-level":  "log.level",
	"history":    "history.path",
}

// loadSettings reads the config file and applies flag overrides.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Settings{}, err
	}
	for flag, key := range overrides {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			cfg.Set(key, v)
		}
	}
	s := cfg.Settings()
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

// newPipeline builds the pipeline for the configured output.
func newPipeline(s config.Settings, logger *slog.Logger) (*pipeline.Pipeline, error) {
	enc, err := render.DefaultRegistry().Encoder(s.Output.Format)
	if err != nil {
		return nil, err
	}
	return pipeline.New(render.NewFileRenderer(s.Output.Dir, enc),
		pipeline.WithStrictKinds(s.Parse.StrictKinds),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(observability.NewMetricsRecorder()),
		pipeline.WithSpanManager(observability.NewSpanManager()),
	), nil
}

// newClient builds the configured LLM client.
func newClient(ctx context.Context, s config.LLMSettings) (llm.Client, error) {
	switch s.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAI(ctx, llm.OpenAIConfig{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	case config.ProviderClaude:
		return llm.NewClaudeCLI(
			llm.WithClaudePath(s.ClaudePath),
			llm.WithClaudeTimeout(s.Timeout),
		), nil
	case config.ProviderMock:
		return llm.NewMockClient(s.MockResponse), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}

// newGenerator wires a Generator from settings. The caller closes the
// returned store.
func newGenerator(ctx context.Context, s config.Settings, logger *slog.Logger) (*generator.Generator, history.Store, error) {
	client, err := newClient(ctx, s.LLM)
	if err != nil {
		return nil, nil, err
	}
	p, err := newPipeline(s, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := history.Open(s.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}

	builder := prompt.NewBuilder(
		prompt.WithModel(s.LLM.Model),
		prompt.WithTemperature(s.LLM.Temperature),
		prompt.WithMaxTokens(s.LLM.MaxTokens),
	)
	retry := fcerrors.NewRetryConfig(
		fcerrors.WithMaxAttempts(s.Retry.MaxAttempts),
		fcerrors.WithDelay(s.Retry.Delay),
	)
	g := generator.New(client, p,
		generator.WithPromptBuilder(builder),
		generator.WithRetry(retry),
		generator.WithRetryUpstream(s.Retry.Upstream),
		generator.WithHistory(store),
		generator.WithLogger(logger),
		generator.WithMetrics(observability.NewMetricsRecorder()),
		generator.WithSpanManager(observability.NewSpanManager()),
	)
	return g, store, nil
}

// newLogger logs to stderr. Pipeline diagnostics reach the user through it.
func newLogger(cmd *cobra.Command, s config.Settings) (*slog.Logger, error) {
	return observability.NewLoggerTo(cmd.ErrOrStderr(), s.Log.Level, s.Log.Format)
}
