package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer comes from the global provider. Install a provider with
// otel.SetTracerProvider before generating.
var tracer = otel.Tracer("flowchart")

// SpanPrefix starts every span name this package creates.
const SpanPrefix = "flowchart."

// SpanManager opens and closes the spans of a generation run.
// NoopSpanManager{} disables tracing.
type SpanManager interface {
	// StartGenerateSpan opens the root span of one Generate call.
	StartGenerateSpan(ctx context.Context, runID, topic string) (context.Context, trace.Span)

	// StartStageSpan opens a child span for a single stage of an attempt:
	// complete, sanitize, parse, normalize or render.
	StartStageSpan(ctx context.Context, stage string, attempt int) (context.Context, trace.Span)

	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent annotates the span in ctx, if it is recording.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns the OpenTelemetry SpanManager.
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

func (otelSpanManager) StartGenerateSpan(ctx context.Context, runID, topic string) (context.Context, trace.Span) {
	return StartGenerateSpan(ctx, runID, topic)
}

func (otelSpanManager) StartStageSpan(ctx context.Context, stage string, attempt int) (context.Context, trace.Span) {
	return StartStageSpan(ctx, stage, attempt)
}

func (otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanPrefix+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartGenerateSpan opens a "flowchart.generate" span on the global tracer.
func StartGenerateSpan(ctx context.Context, runID, topic string) (context.Context, trace.Span) {
	return startSpan(ctx, "generate",
		attribute.String("run.id", runID),
		attribute.String("topic", topic),
	)
}

// StartStageSpan opens a "flowchart.<stage>" span on the global tracer.
func StartStageSpan(ctx context.Context, stage string, attempt int) (context.Context, trace.Span) {
	return startSpan(ctx, stage,
		attribute.String("stage", stage),
		attribute.Int("attempt", attempt),
	)
}

// EndSpanWithError sets the span status from err and ends it. A nil span
// is ignored.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanEvent adds an event to the recording span in ctx.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
