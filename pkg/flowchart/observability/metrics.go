package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attempt outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeParseFailure  = "parse_failure"
	OutcomeRenderFailure = "render_failure"
	OutcomeUpstream      = "upstream_failure"
	OutcomeError         = "error"
)

// MetricsRecorder records generation metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordGeneration records a finished run.
	RecordGeneration(ctx context.Context, success bool, attempts int, duration time.Duration)

	// RecordAttempt records one LLM call plus pipeline run.
	RecordAttempt(ctx context.Context, outcome string)

	// RecordParse records one strategy outcome. An empty strategy with
	// ok=false means every strategy failed.
	RecordParse(ctx context.Context, strategy string, ok bool)

	// RecordDropped records records discarded during normalization.
	RecordDropped(ctx context.Context, count int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	generations       metric.Int64Counter
	generationLatency metric.Float64Histogram
	generationTries   metric.Int64Histogram
	attempts          metric.Int64Counter
	parses            metric.Int64Counter
	dropped           metric.Int64Counter
}

var (
	sharedMetrics     *otelMetrics
	sharedMetricsErr  error
	sharedMetricsOnce sync.Once
)

// instruments collects the first error from a sequence of instrument
// constructors.
type instruments struct {
	meter metric.Meter
	err   error
}

func (in *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc))
	in.keep(err)
	return c
}

func (in *instruments) histogram(name, desc string, opts ...metric.Int64HistogramOption) metric.Int64Histogram {
	h, err := in.meter.Int64Histogram(name, append(opts, metric.WithDescription(desc))...)
	in.keep(err)
	return h
}

func (in *instruments) keep(err error) {
	if in.err == nil {
		in.err = err
	}
}

func newOtelMetrics() (*otelMetrics, error) {
	in := &instruments{meter: otel.Meter("flowchart")}
	latency, err := in.meter.Float64Histogram("flowchart.generation.latency_ms",
		metric.WithDescription("Generation run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	in.keep(err)

	m := &otelMetrics{
		generations:       in.counter("flowchart.generations", "Number of generation runs"),
		generationLatency: latency,
		generationTries:   in.histogram("flowchart.generation.attempts", "Attempts needed per generation run"),
		attempts:          in.counter("flowchart.attempts", "Number of generation attempts by outcome"),
		parses:            in.counter("flowchart.parses", "Number of parse runs by strategy"),
		dropped:           in.counter("flowchart.records.dropped", "Number of malformed records dropped"),
	}
	if in.err != nil {
		return nil, in.err
	}
	return m, nil
}

// NewMetricsRecorder returns the OTel recorder shared by the process,
// built on the global meter provider the first time it is called. It falls
// back to NoopMetrics when the instruments cannot be created.
func NewMetricsRecorder() MetricsRecorder {
	sharedMetricsOnce.Do(func() {
		sharedMetrics, sharedMetricsErr = newOtelMetrics()
	})
	if err := sharedMetricsErr; err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return sharedMetrics
}

func (m *otelMetrics) RecordGeneration(ctx context.Context, success bool, attempts int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.generations.Add(ctx, 1, attrs)
	m.generationLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.generationTries.Record(ctx, int64(attempts), attrs)
}

func (m *otelMetrics) RecordAttempt(ctx context.Context, outcome string) {
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *otelMetrics) RecordParse(ctx context.Context, strategy string, ok bool) {
	if strategy == "" {
		strategy = "none"
	}
	m.parses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.Bool("ok", ok),
	))
}

func (m *otelMetrics) RecordDropped(ctx context.Context, count int) {
	if count <= 0 {
		return
	}
	m.dropped.Add(ctx, int64(count))
}
