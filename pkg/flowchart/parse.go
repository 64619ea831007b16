package flowchart

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/randalmurphal/flowchart/pkg/flowchart/literal"
)

// Tuple is a fixed-arity raw record as produced by Parse.
//
// Every sequence in parsed output, whichever strategy produced it, is
// converted to a Tuple, so nested edge lists are Tuples of Tuples.
type Tuple []any

// errNotSequence is returned by a strategy whose top-level value is not a
// list or tuple.
var errNotSequence = errors.New("top-level value is not a sequence")

// Strategy is one way of turning sanitized text into a value.
// Parse functions must be pure.
type Strategy struct {
	Name  string
	Parse func(text string) (any, error)
}

// Built-in strategies, from strictest to most permissive.
var (
	// LiteralStrategy parses the text as a Python-style literal.
	LiteralStrategy = Strategy{Name: "literal", Parse: parseLiteral}

	// BracketJSONStrategy turns parentheses into square brackets and parses
	// strict JSON.
	BracketJSONStrategy = Strategy{Name: "json", Parse: parseBracketJSON}

	// QuotedJSONStrategy additionally turns single quotes into double quotes.
	QuotedJSONStrategy = Strategy{Name: "json-quotes", Parse: parseQuotedJSON}
)

// DefaultStrategies returns the built-in strategies in the order Parse
// tries them.
func DefaultStrategies() []Strategy {
	return []Strategy{LiteralStrategy, BracketJSONStrategy, QuotedJSONStrategy}
}

// ParseResult is the outcome of ParseDetailed.
type ParseResult struct {
	// Records are the coerced top-level elements.
	Records []Tuple
	// Strategy names the strategy that succeeded.
	Strategy string
	// Rejected lists the strategies that failed before the winner.
	Rejected []StrategyError
}

// Parse runs the default strategies over text and returns the raw records
// of the first one that succeeds. When all fail it returns a *ParseError,
// which matches ErrParseFailure.
func Parse(text string) ([]Tuple, error) {
	res, err := ParseDetailed(text, DefaultStrategies()...)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ParseWith is Parse with an explicit strategy list.
func ParseWith(text string, strategies ...Strategy) ([]Tuple, error) {
	res, err := ParseDetailed(text, strategies...)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ParseDetailed tries each strategy in order and stops at the first
// success. Results from different strategies are never mixed.
func ParseDetailed(text string, strategies ...Strategy) (*ParseResult, error) {
	var rejected []StrategyError
	for _, s := range strategies {
		v, err := s.Parse(text)
		if err == nil {
			records, ok := toRecords(v)
			if ok {
				return &ParseResult{Records: records, Strategy: s.Name, Rejected: rejected}, nil
			}
			err = errNotSequence
		}
		rejected = append(rejected, StrategyError{Strategy: s.Name, Err: err})
	}
	return nil, &ParseError{Attempts: rejected}
}

func parseLiteral(text string) (any, error) {
	return literal.Parse(text)
}

var bracketReplacer = strings.NewReplacer("(", "[", ")", "]")

func parseBracketJSON(text string) (any, error) {
	return decodeJSON(bracketReplacer.Replace(text))
}

func parseQuotedJSON(text string) (any, error) {
	return decodeJSON(bracketReplacer.Replace(strings.ReplaceAll(text, "'", `"`)))
}

func decodeJSON(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// toRecords converts a top-level sequence into records. Elements that are
// not sequences are wrapped in a one-field Tuple so that Normalize reports
// and drops them.
func toRecords(v any) ([]Tuple, bool) {
	items, ok := sequence(v)
	if !ok {
		return nil, false
	}
	records := make([]Tuple, 0, len(items))
	for _, item := range items {
		if t, ok := canonical(item).(Tuple); ok {
			records = append(records, t)
			continue
		}
		records = append(records, Tuple{canonical(item)})
	}
	return records, true
}

// canonical converts every nested list or tuple into a Tuple.
func canonical(v any) any {
	items, ok := sequence(v)
	if !ok {
		return v
	}
	out := make(Tuple, len(items))
	for i, item := range items {
		out[i] = canonical(item)
	}
	return out
}

// sequence accepts literal lists and tuples, decoded JSON arrays and Tuples.
func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case Tuple:
		return s, true
	}
	return literal.Elements(v)
}
