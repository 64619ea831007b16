// Package literal parses Python-style literal expressions: the notation
// language models tend to use when asked for "a list of tuples".
//
// The accepted grammar mirrors what a safe literal evaluator accepts:
// strings (single, double and triple quoted, with r/b/u prefixes and
// adjacent-string concatenation), integers, floats, a leading sign on
// numbers, None, True, False, lists, tuples, sets and dicts. Comments,
// line continuations and trailing commas are allowed. Anything else,
// including JSON's true/false/null, is a syntax error.
//
// Values map to Go as follows:
//
//	str, bytes     string
//	int            int64
//	float          float64
//	True, False    bool
//	None           nil
//	[...]          List
//	(...)          Tuple
//	{a, b}         Set
//	{k: v}         Dict
package literal

import (
	"fmt"
)

// List is a parsed [...] literal.
type List []any

// Tuple is a parsed (...) literal, or a bare top-level a, b expression.
type Tuple []any

// Set is a parsed {a, b} literal. Elements keep source order.
type Set []any

// KeyValue is one entry of a Dict.
type KeyValue struct {
	Key   any
	Value any
}

// Dict is a parsed {k: v} literal. Entries keep source order.
type Dict []KeyValue

// SyntaxError reports where and why parsing stopped.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal: line %d column %d: %s", e.Line, e.Column, e.Msg)
}

// Parse parses src as a single literal expression.
//
// A top-level comma-separated expression list is returned as a Tuple.
func Parse(src string) (any, error) {
	p := &parser{src: src}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty input")
	}

	v, err := p.value()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() && p.peek() == ',' {
		items := Tuple{v}
		for !p.eof() && p.peek() == ',' {
			p.pos++
			p.skipSpace()
			if p.eof() {
				break
			}
			next, err := p.value()
			if err != nil {
				return nil, err
			}
			items = append(items, next)
			p.skipSpace()
		}
		v = items
	}

	if !p.eof() {
		return nil, p.errorf("unexpected %q after expression", p.peek())
	}
	return v, nil
}

// Elements returns the items of a List or Tuple. Sets, dicts and scalars
// are not sequences.
func Elements(v any) ([]any, bool) {
	switch s := v.(type) {
	case List:
		return s, true
	case Tuple:
		return s, true
	}
	return nil, false
}
