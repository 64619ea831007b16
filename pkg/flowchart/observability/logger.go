// Package observability provides structured logging, metrics and tracing
// for flowchart generation.
//
// Logging uses log/slog. Metrics and tracing use OpenTelemetry through the
// global providers, with no-op implementations for when they are disabled.
// Every helper accepts a nil logger.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// NewLogger builds a logger writing to stderr. level is debug, info, warn
// or error (default info); format is text or json (default text).
func NewLogger(level, format string) (*slog.Logger, error) {
	return NewLoggerTo(os.Stderr, level, format)
}

// NewLoggerTo is NewLogger with an explicit writer.
func NewLoggerTo(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl := slog.LevelInfo
	if l := strings.TrimSpace(level); l != "" {
		if err := lvl.UnmarshalText([]byte(l)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// EnrichLogger adds run context to a logger.
func EnrichLogger(logger *slog.Logger, runID, topic string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("topic", topic),
	)
}

// LogGenerateStart logs the start of a generation run.
func LogGenerateStart(logger *slog.Logger, runID, topic string) {
	if logger == nil {
		return
	}
	logger.Info("generating flowchart",
		slog.String("run_id", runID),
		slog.String("topic", topic),
	)
}

// LogAttemptFailed logs a failed attempt that will be retried.
func LogAttemptFailed(logger *slog.Logger, runID string, attempt, maxAttempts int, err error) {
	if logger == nil {
		return
	}
	logger.Warn("attempt failed, retrying",
		slog.String("run_id", runID),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", maxAttempts),
		slog.String("error", err.Error()),
	)
}

// LogGenerateComplete logs a successful run.
func LogGenerateComplete(logger *slog.Logger, runID, path string, attempts int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("flowchart generated",
		slog.String("run_id", runID),
		slog.String("path", path),
		slog.Int("attempts", attempts),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogGenerateError logs a failed run.
func LogGenerateError(logger *slog.Logger, runID string, err error, attempts int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("flowchart generation failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Int("attempts", attempts),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogParseFailure logs every strategy failure behind a parse error at
// debug level.
func LogParseFailure(logger *slog.Logger, err *flowchart.ParseError) {
	if logger == nil || err == nil {
		return
	}
	for _, a := range err.Attempts {
		logger.Debug("parse strategy failed",
			slog.String("strategy", a.Strategy),
			slog.String("error", a.Err.Error()),
		)
	}
}

// LogDiagnostic logs a pipeline diagnostic at its own level.
func LogDiagnostic(logger *slog.Logger, d flowchart.Diagnostic) {
	if logger == nil {
		return
	}
	flowchart.NewSlogSink(logger).Emit(d)
}

// TimedOperation measures the duration of an operation.
// The returned function reports the elapsed milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
