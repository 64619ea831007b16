package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderMock   = "mock"
)

// APIKeyEnv names the environment variable holding the OpenAI API key.
const APIKeyEnv = "OPENAI_API_KEY"

// Settings is the typed view of a flowchart configuration.
type Settings struct {
	LLM     LLMSettings
	Retry   RetrySettings
	Output  OutputSettings
	Parse   ParseSettings
	History HistorySettings
	Log     LogSettings
}

// LLMSettings selects and tunes the completion service.
type LLMSettings struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string
	Timeout     time.Duration
	// APIKey comes from OPENAI_API_KEY, never from a file.
	APIKey string
	// ClaudePath is the claude binary used by the claude provider.
	ClaudePath string
	// MockResponse is replayed by the mock provider.
	MockResponse string
}

// RetrySettings bounds the generation retry loop.
type RetrySettings struct {
	MaxAttempts int
	Delay       time.Duration
	// Upstream also retries completion failures the client marks retryable.
	Upstream bool
}

// OutputSettings controls where and how images are written.
type OutputSettings struct {
	Dir    string
	Format string
}

// ParseSettings tunes normalization.
type ParseSettings struct {
	StrictKinds bool
}

// HistorySettings configures the generation history store.
type HistorySettings struct {
	// Path is a SQLite file; empty keeps history in memory.
	Path string
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string
	Format string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{
			Provider:    ProviderOpenAI,
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			MaxTokens:   1000,
			Timeout:     2 * time.Minute,
			ClaudePath:  "claude",
		},
		Retry: RetrySettings{
			MaxAttempts: 5,
			Delay:       time.Second,
		},
		Output: OutputSettings{
			Dir:    "static",
			Format: "png",
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Settings extracts typed settings, falling back to DefaultSettings for
// anything missing. The API key is read from the environment.
func (c Config) Settings() Settings {
	d := DefaultSettings()
	return Settings{
		LLM: LLMSettings{
			Provider:     strings.ToLower(c.String("llm.provider", d.LLM.Provider)),
			Model:        c.String("llm.model", d.LLM.Model),
			Temperature:  c.Float("llm.temperature", d.LLM.Temperature),
			MaxTokens:    c.Int("llm.max_tokens", d.LLM.MaxTokens),
			BaseURL:      c.String("llm.base_url", d.LLM.BaseURL),
			Timeout:      c.Duration("llm.timeout", d.LLM.Timeout),
			APIKey:       os.Getenv(APIKeyEnv),
			ClaudePath:   c.String("llm.claude_path", d.LLM.ClaudePath),
			MockResponse: c.String("llm.mock_response", d.LLM.MockResponse),
		},
		Retry: RetrySettings{
			MaxAttempts: c.Int("retry.max_attempts", d.Retry.MaxAttempts),
			Delay:       c.Duration("retry.delay", d.Retry.Delay),
			Upstream:    c.Bool("retry.upstream", d.Retry.Upstream),
		},
		Output: OutputSettings{
			Dir:    c.String("output.dir", d.Output.Dir),
			Format: strings.ToLower(c.String("output.format", d.Output.Format)),
		},
		Parse: ParseSettings{
			StrictKinds: c.Bool("parse.strict_kinds", d.Parse.StrictKinds),
		},
		History: HistorySettings{
			Path: c.String("history.path", d.History.Path),
		},
		Log: LogSettings{
			Level:  c.String("log.level", d.Log.Level),
			Format: c.String("log.format", d.Log.Format),
		},
	}
}

// Validate reports settings that cannot work.
func (s Settings) Validate() error {
	switch s.LLM.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderMock:
	default:
		return fmt.Errorf("config: unknown llm.provider %q", s.LLM.Provider)
	}
	if s.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config: llm.max_tokens must be positive, got %d", s.LLM.MaxTokens)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("config: llm.temperature must be within [0, 2], got %g", s.LLM.Temperature)
	}
	if s.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: retry.max_attempts must be at least 1, got %d", s.Retry.MaxAttempts)
	}
	if s.Retry.Delay < 0 {
		return fmt.Errorf("config: retry.delay must not be negative, got %s", s.Retry.Delay)
	}
	if s.Output.Dir == "" {
		return fmt.Errorf("config: output.dir must not be empty")
	}
	return nil
}
