// Package errors classifies generation failures and retries the transient
// ones.
//
// A failed attempt is either worth repeating or not:
//   - CategoryTransient: the model produced text no strategy could parse, or
//     the image could not be rendered. A fresh completion may well succeed.
//   - CategoryPermanent: the completion service itself failed, the context
//     ended, or the error is unknown.
//
// Completion failures that the client marked retryable (rate limits,
// timeouts) become transient only when a Categorizer has RetryUpstream set.
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
	"github.com/randalmurphal/flowchart/pkg/flowchart/llm"
)

// Category says whether another attempt is worth making.
type Category int

const (
	CategoryTransient Category = iota
	CategoryPermanent
)

var categoryNames = [...]string{
	CategoryTransient: "transient",
	CategoryPermanent: "permanent",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// CategorizedError is an error with its category attached. The retry loop
// returns one when it gives up.
type CategorizedError struct {
	Err      error
	Category Category
	// Attempts made before the error was returned. Zero when the error was
	// categorized outside a retry loop.
	Attempts int
	// Context names the operation, e.g. "max retries exceeded".
	Context string
}

func (e *CategorizedError) Error() string {
	msg := fmt.Sprintf("%v (category: %s, attempts: %d)", e.Err, e.Category, e.Attempts)
	if e.Context == "" {
		return msg
	}
	return e.Context + ": " + msg
}

func (e *CategorizedError) Unwrap() error { return e.Err }

// Transient tags err as worth retrying.
func Transient(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryTransient, Context: context}
}

// Permanent tags err as final.
func Permanent(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryPermanent, Context: context}
}

// Categorizer assigns categories to generation errors.
type Categorizer struct {
	// RetryUpstream makes completion failures the client marked retryable
	// transient. Off by default.
	RetryUpstream bool
}

// Categorize returns the category of err. nil and unrecognised errors are
// permanent.
func (c Categorizer) Categorize(err error) Category {
	var (
		tagged   *CategorizedError
		upstream *flowchart.UpstreamError
		render   *flowchart.RenderError
	)
	switch {
	case err == nil:
		return CategoryPermanent
	case errors.As(err, &tagged):
		return tagged.Category
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryPermanent
	case errors.As(err, &upstream):
		if c.RetryUpstream && llm.IsRetryable(upstream) {
			return CategoryTransient
		}
		return CategoryPermanent
	case errors.Is(err, flowchart.ErrParseFailure), errors.As(err, &render):
		return CategoryTransient
	}
	return CategoryPermanent
}

// IsRetryable reports whether err is transient under c.
func (c Categorizer) IsRetryable(err error) bool {
	return c.Categorize(err) == CategoryTransient
}

// Categorize uses the zero Categorizer.
func Categorize(err error) Category {
	return Categorizer{}.Categorize(err)
}

// IsRetryable uses the zero Categorizer.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}
