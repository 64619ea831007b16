package flowchart

import (
	"errors"
	"fmt"
	"strings"
)

// ParseFailureMessage is the message returned when no parsing strategy
// succeeds. Callers that only see error strings match on ParseFailureMarker.
const (
	ParseFailureMessage = "Sorry a known bug, please try again and it should work."
	ParseFailureMarker  = "Sorry a known bug"
)

// Sentinel errors.
var (
	// ErrParseFailure indicates that every parsing strategy failed.
	ErrParseFailure = errors.New(ParseFailureMessage)

	// ErrEmptyTopic indicates a generation request without a topic.
	ErrEmptyTopic = errors.New("no topic provided")
)

// StrategyError records why one parsing strategy rejected the text.
type StrategyError struct {
	Strategy string
	Err      error
}

// Error implements the error interface.
func (e StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

// ParseError is returned by Parse when all strategies fail.
// It matches ErrParseFailure with errors.Is.
type ParseError struct {
	// Attempts holds one entry per strategy, in the order they were tried.
	Attempts []StrategyError
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return ParseFailureMessage
}

// Detail describes every strategy failure, for logs.
func (e *ParseError) Detail() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return strings.Join(parts, "; ")
}

// Is reports whether target is ErrParseFailure.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

// MalformedRecordError describes a raw record dropped by Normalize.
// It is reported as a diagnostic and never returned.
type MalformedRecordError struct {
	// Index is the position of the record in the parsed list.
	Index int
	// Reason says which shape rule the record broke.
	Reason string
	// Record is the offending record.
	Record Tuple
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %v", e.Index, e.Reason, []any(e.Record))
}

// RenderError wraps a failure of the rendering engine or of the output
// filesystem.
type RenderError struct {
	// Op is the step that failed ("layout", "encode", "write", ...).
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// UpstreamError wraps a failure of the LLM completion service.
type UpstreamError struct {
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream completion: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
