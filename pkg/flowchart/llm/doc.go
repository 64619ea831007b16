// Package llm provides chat completion clients.
//
// Client is the single-method interface the generator depends on. OpenAI
// talks to the chat completions API through the eino OpenAI model,
// ClaudeCLI shells out to the claude binary, and MockClient replays scripted
// answers for tests and offline runs.
//
// Failures are reported as *Error. Its Retryable flag marks conditions such
// as rate limits and timeouts that may clear on their own:
//
//	resp, err := client.Complete(ctx, req)
//	if llm.IsRetryable(err) {
//	    // try again later
//	}
package llm
