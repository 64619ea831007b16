package flowchart

import (
	"context"
	"log/slog"
	"sync"
)

// Stage names used in diagnostics.
const (
	StageSanitize  = "sanitize"
	StageParse     = "parse"
	StageNormalize = "normalize"
	StageRender    = "render"
)

// Diagnostic is a structured event emitted while processing one flowchart.
// Diagnostics never change control flow.
type Diagnostic struct {
	Stage   string
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// Sink receives diagnostics. Implementations must not block for long;
// the pipeline calls Emit synchronously.
type Sink interface {
	Emit(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

// Emit implements Sink.
func (f SinkFunc) Emit(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// slogSink forwards diagnostics to a slog.Logger.
type slogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a Sink that logs each diagnostic with a "stage"
// attribute. A nil logger yields Discard.
func NewSlogSink(logger *slog.Logger) Sink {
	if logger == nil {
		return Discard
	}
	return slogSink{logger: logger}
}

// Emit implements Sink.
func (s slogSink) Emit(d Diagnostic) {
	attrs := make([]slog.Attr, 0, len(d.Attrs)+1)
	attrs = append(attrs, slog.String("stage", d.Stage))
	attrs = append(attrs, d.Attrs...)
	s.logger.LogAttrs(context.Background(), d.Level, d.Message, attrs...)
}

// Collector records diagnostics in memory. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Emit implements Sink.
func (c *Collector) Emit(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of collected diagnostics at or above level.
func (c *Collector) Count(level slog.Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Level >= level {
			n++
		}
	}
	return n
}

// Tee fans each diagnostic out to all sinks. Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(d)
			}
		}
	})
}
