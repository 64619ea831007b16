// Package generator produces flowchart images from a topic.
//
// Generate builds the prompt, asks the LLM for flowchart text and runs it
// through a pipeline.Pipeline. A parse or render failure triggers a fresh
// attempt, up to a fixed budget; every run is recorded in the history
// store.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
	fcerrors "github.com/randalmurphal/flowchart/pkg/flowchart/errors"
	"github.com/randalmurphal/flowchart/pkg/flowchart/history"
	"github.com/randalmurphal/flowchart/pkg/flowchart/llm"
	"github.com/randalmurphal/flowchart/pkg/flowchart/observability"
	"github.com/randalmurphal/flowchart/pkg/flowchart/pipeline"
	"github.com/randalmurphal/flowchart/pkg/flowchart/prompt"
)

// Generator turns topics into rendered flowcharts.
type Generator struct {
	client        llm.Client
	pipeline      *pipeline.Pipeline
	builder       *prompt.Builder
	retry         fcerrors.RetryConfig
	retryUpstream bool
	store         history.Store
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	newRunID      func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithPromptBuilder replaces the default prompt builder.
func WithPromptBuilder(b *prompt.Builder) Option {
	return func(g *Generator) {
		if b != nil {
			g.builder = b
		}
	}
}

// WithRetry replaces errors.FixedRetry. RetryableFunc is ignored; use
// WithRetryUpstream to widen what is retried.
func WithRetry(cfg fcerrors.RetryConfig) Option {
	return func(g *Generator) { g.retry = cfg }
}

// WithRetryUpstream also retries LLM failures the client marks retryable.
func WithRetryUpstream(enabled bool) Option {
	return func(g *Generator) { g.retryUpstream = enabled }
}

// WithHistory records every run in store.
func WithHistory(store history.Store) Option {
	return func(g *Generator) { g.store = store }
}

// WithLogger enables run logging.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithMetrics enables generation metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(g *Generator) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithSpanManager enables generation tracing.
func WithSpanManager(s observability.SpanManager) Option {
	return func(g *Generator) {
		if s != nil {
			g.spans = s
		}
	}
}

// New creates a Generator that asks client for flowchart text and renders
// it with p.
func New(client llm.Client, p *pipeline.Pipeline, opts ...Option) *Generator {
	g := &Generator{
		client:   client,
		pipeline: p,
		builder:  prompt.NewBuilder(),
		retry:    fcerrors.FixedRetry,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result describes a generation run.
type Result struct {
	RunID string
	Topic string
	// ImagePath is empty unless the run succeeded.
	ImagePath string
	// FlowchartText is the completion text of the last attempt.
	FlowchartText string
	Strategy      string
	Attempts      int
	Nodes         int
	Edges         int
	// Diagnostics come from the last attempt.
	Diagnostics []flowchart.Diagnostic
	// Usage sums token usage over all attempts.
	Usage    llm.TokenUsage
	Duration time.Duration
}

// attempt carries what one try produced, successful or not.
type attempt struct {
	text   string
	result *pipeline.Result
}

// Generate produces a flowchart image for topic.
//
// A blank topic fails with flowchart.ErrEmptyTopic before anything is
// called. Otherwise the returned Result is never nil. When every attempt
// fails the error wraps the last failure, so errors.Is(err,
// flowchart.ErrParseFailure) holds after repeated parse failures.
func (g *Generator) Generate(ctx context.Context, topic string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, flowchart.ErrEmptyTopic
	}
	req, err := g.builder.Build(topic)
	if err != nil {
		return nil, err
	}

	elapsed := observability.TimedOperation()
	res := &Result{RunID: g.newRunID(), Topic: topic}

	ctx, span := g.spans.StartGenerateSpan(ctx, res.RunID, topic)
	observability.LogGenerateStart(g.logger, res.RunID, topic)

	var last attempt
	cfg := g.retryConfig(res.RunID)
	outcome := fcerrors.WithRetryContext(ctx, cfg, func(ctx context.Context) (*pipeline.Result, error) {
		n := res.Attempts + 1
		res.Attempts = n
		ctx = pipeline.WithAttempt(ctx, n)

		resp, err := g.client.Complete(ctx, req)
		if err != nil {
			g.metrics.RecordAttempt(ctx, observability.OutcomeUpstream)
			return nil, &flowchart.UpstreamError{Err: err}
		}
		res.Usage.Add(resp.Usage)
		last = attempt{text: resp.Content}

		pr, err := g.pipeline.Process(ctx, resp.Content)
		last.result = pr
		g.metrics.RecordAttempt(ctx, attemptOutcome(err))
		return pr, err
	})

	res.FlowchartText = last.text
	if last.result != nil {
		res.Strategy = last.result.Strategy
		res.Diagnostics = last.result.Diagnostics
		if last.result.Graph != nil {
			res.Nodes = last.result.Graph.Len()
			res.Edges = last.result.Graph.EdgeCount()
		}
	}
	if outcome.Err == nil {
		res.ImagePath = outcome.Value.Path
	}
	res.Duration = time.Duration(elapsed() * float64(time.Millisecond))

	err = outcome.Err
	g.metrics.RecordGeneration(ctx, err == nil, res.Attempts, res.Duration)
	if err != nil {
		observability.LogGenerateError(g.logger, res.RunID, err, res.Attempts, elapsed())
	} else {
		observability.LogGenerateComplete(g.logger, res.RunID, res.ImagePath, res.Attempts, elapsed())
	}
	g.record(res, err)
	g.spans.EndSpanWithError(span, err)
	return res, err
}

func (g *Generator) retryConfig(runID string) fcerrors.RetryConfig {
	cfg := g.retry
	categorizer := fcerrors.Categorizer{RetryUpstream: g.retryUpstream}
	cfg.RetryableFunc = categorizer.IsRetryable

	onRetry := cfg.OnRetry
	maxAttempts := cfg.MaxAttempts
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		observability.LogAttemptFailed(g.logger, runID, attempt, maxAttempts, err)
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}
	}
	return cfg
}

// record saves the run to the history store. Store failures are logged,
// never returned.
func (g *Generator) record(res *Result, err error) {
	if g.store == nil {
		return
	}
	entry := history.Entry{
		RunID:     res.RunID,
		Topic:     res.Topic,
		Outcome:   runOutcome(err),
		Attempts:  res.Attempts,
		Strategy:  res.Strategy,
		ImagePath: res.ImagePath,
		Nodes:     res.Nodes,
		Edges:     res.Edges,
		Text:      res.FlowchartText,
		Duration:  res.Duration,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if saveErr := g.store.Save(entry); saveErr != nil && g.logger != nil {
		g.logger.Warn("failed to record history",
			slog.String("run_id", res.RunID),
			slog.String("error", saveErr.Error()),
		)
	}
}

// attemptOutcome names the result of one pipeline run for metrics.
func attemptOutcome(err error) string {
	var renderErr *flowchart.RenderError
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.Is(err, flowchart.ErrParseFailure):
		return observability.OutcomeParseFailure
	case errors.As(err, &renderErr):
		return observability.OutcomeRenderFailure
	default:
		return observability.OutcomeError
	}
}

// runOutcome names the result of a whole run for history.
func runOutcome(err error) string {
	var upstream *flowchart.UpstreamError
	if errors.As(err, &upstream) {
		return observability.OutcomeUpstream
	}
	return attemptOutcome(err)
}
