package pipeline

import "context"

type attemptKey struct{}

// WithAttempt tags ctx with the generation attempt it belongs to, so stage
// spans can be told apart across retries.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// Attempt returns the attempt stored by WithAttempt, or 1.
func Attempt(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok {
		return n
	}
	return 1
}
