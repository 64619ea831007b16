// Package pipeline turns flowchart text into an image file.
//
// A Pipeline runs the four stages in order: sanitize, parse, normalize,
// render. It holds no per-request state, so one Pipeline can serve any
// number of concurrent calls.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
	"github.com/randalmurphal/flowchart/pkg/flowchart/observability"
	"github.com/randalmurphal/flowchart/pkg/flowchart/render"
)

// Renderer writes a graph somewhere and returns where.
// *render.FileRenderer implements it.
type Renderer interface {
	Render(ctx context.Context, g *flowchart.Graph) (string, error)
}

// Pipeline runs sanitize, parse, normalize and render.
type Pipeline struct {
	renderer    Renderer
	strategies  []flowchart.Strategy
	strictKinds bool
	sink        flowchart.Sink
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink sends every diagnostic to s as well as to the Result.
func WithSink(s flowchart.Sink) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithStrategies replaces the parsing strategies.
func WithStrategies(strategies ...flowchart.Strategy) Option {
	return func(p *Pipeline) {
		if len(strategies) > 0 {
			p.strategies = strategies
		}
	}
}

// WithStrictKinds drops records whose kind is neither block nor conditional.
func WithStrictKinds(strict bool) Option {
	return func(p *Pipeline) { p.strictKinds = strict }
}

// WithLogger logs diagnostics and parse failures to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics records parse and normalize metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithSpanManager traces each stage.
func WithSpanManager(s observability.SpanManager) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.spans = s
		}
	}
}

// New creates a Pipeline that renders with r. A nil r stops Process after
// normalization, which is useful for validating text.
func New(r Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:   r,
		strategies: flowchart.DefaultStrategies(),
		sink:       flowchart.Discard,
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDefault creates a Pipeline writing PNG files under render.DefaultDir.
func NewDefault(opts ...Option) (*Pipeline, error) {
	enc, err := render.NewGraphvizEncoder("png")
	if err != nil {
		return nil, err
	}
	return New(render.NewFileRenderer(render.DefaultDir, enc), opts...), nil
}

// WithoutRenderer returns a copy of p that stops after normalization.
func (p *Pipeline) WithoutRenderer() *Pipeline {
	cp := *p
	cp.renderer = nil
	return &cp
}

// Result describes one run of the pipeline.
type Result struct {
	// Graph is nil when parsing failed.
	Graph *flowchart.Graph
	// Strategy names the parsing strategy that succeeded.
	Strategy string
	// Repairs lists the sanitizer fixes, in order.
	Repairs []flowchart.Repair
	// Stats summarizes normalization.
	Stats flowchart.NormalizeStats
	// Path is the rendered file; empty unless rendering succeeded.
	Path        string
	Diagnostics []flowchart.Diagnostic
	Duration    time.Duration
}

// RenderFlowchart renders text and returns the image path.
//
// It fails with an error matching flowchart.ErrParseFailure when no
// strategy can parse the text, and returns rendering failures unchanged.
func (p *Pipeline) RenderFlowchart(ctx context.Context, text string) (string, error) {
	res, err := p.Process(ctx, text)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// Process runs every stage and reports what happened. The Result is never
// nil; on error it holds whatever the completed stages produced.
func (p *Pipeline) Process(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	collector := &flowchart.Collector{}
	sink := flowchart.Tee(collector, p.sink, p.logSink())
	res := &Result{}
	defer func() {
		res.Diagnostics = collector.Diagnostics()
		res.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		return res, err
	}
	attempt := Attempt(ctx)

	// Sanitize
	_, span := p.spans.StartStageSpan(ctx, flowchart.StageSanitize, attempt)
	sanitized, repairs := flowchart.SanitizeReport(text)
	res.Repairs = repairs
	for _, r := range repairs {
		sink.Emit(flowchart.Diagnostic{
			Stage:   flowchart.StageSanitize,
			Level:   slog.LevelDebug,
			Message: "applied repair",
			Attrs:   []slog.Attr{slog.String("repair", string(r))},
		})
	}
	p.spans.EndSpanWithError(span, nil)

	// Parse
	parseCtx, span := p.spans.StartStageSpan(ctx, flowchart.StageParse, attempt)
	parsed, err := flowchart.ParseDetailed(sanitized, p.strategies...)
	if err != nil {
		for _, s := range p.strategies {
			p.metrics.RecordParse(parseCtx, s.Name, false)
		}
		var parseErr *flowchart.ParseError
		if errors.As(err, &parseErr) {
			observability.LogParseFailure(p.logger, parseErr)
			sink.Emit(flowchart.Diagnostic{
				Stage:   flowchart.StageParse,
				Level:   slog.LevelWarn,
				Message: "all parsing strategies failed",
				Attrs:   []slog.Attr{slog.String("detail", parseErr.Detail())},
			})
		}
		p.spans.EndSpanWithError(span, err)
		return res, err
	}
	for _, rej := range parsed.Rejected {
		p.metrics.RecordParse(parseCtx, rej.Strategy, false)
		sink.Emit(flowchart.Diagnostic{
			Stage:   flowchart.StageParse,
			Level:   slog.LevelDebug,
			Message: "strategy rejected text",
			Attrs: []slog.Attr{
				slog.String("strategy", rej.Strategy),
				slog.String("reason", rej.Err.Error()),
			},
		})
	}
	p.metrics.RecordParse(parseCtx, parsed.Strategy, true)
	res.Strategy = parsed.Strategy
	p.spans.EndSpanWithError(span, nil)

	// Normalize
	normCtx, span := p.spans.StartStageSpan(ctx, flowchart.StageNormalize, attempt)
	opts := []flowchart.NormalizeOption{flowchart.WithSink(sink)}
	if p.strictKinds {
		opts = append(opts, flowchart.WithStrictKinds())
	}
	g, stats := flowchart.NormalizeDetailed(parsed.Records, opts...)
	res.Graph = g
	res.Stats = stats
	if stats.Dropped > 0 {
		p.metrics.RecordDropped(normCtx, stats.Dropped)
	}
	if g.Len() == 0 {
		sink.Emit(flowchart.Diagnostic{
			Stage:   flowchart.StageNormalize,
			Level:   slog.LevelWarn,
			Message: "flowchart has no nodes",
		})
	}
	p.spans.EndSpanWithError(span, nil)

	if p.renderer == nil {
		return res, nil
	}

	// Render
	renderCtx, span := p.spans.StartStageSpan(ctx, flowchart.StageRender, attempt)
	path, err := p.renderer.Render(renderCtx, g)
	p.spans.EndSpanWithError(span, err)
	if err != nil {
		sink.Emit(flowchart.Diagnostic{
			Stage:   flowchart.StageRender,
			Level:   slog.LevelError,
			Message: "render failed",
			Attrs:   []slog.Attr{slog.String("error", err.Error())},
		})
		return res, err
	}
	res.Path = path
	return res, nil
}

func (p *Pipeline) logSink() flowchart.Sink {
	if p.logger == nil {
		return flowchart.Discard
	}
	return flowchart.SinkFunc(func(d flowchart.Diagnostic) {
		observability.LogDiagnostic(p.logger, d)
	})
}
