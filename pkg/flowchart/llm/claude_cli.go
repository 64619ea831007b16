package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ClaudeCLI implements Client by running the claude binary in print mode.
// The CLI reports no token usage, so responses carry a zero Usage.
type ClaudeCLI struct {
	path    string
	model   string
	workdir string
	timeout time.Duration
}

// ClaudeOption configures ClaudeCLI.
type ClaudeOption func(*ClaudeCLI)

// NewClaudeCLI creates a client that runs "claude" from PATH, with a five
// minute limit per call.
func NewClaudeCLI(opts ...ClaudeOption) *ClaudeCLI {
	c := &ClaudeCLI{path: "claude", timeout: 5 * time.Minute}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithClaudePath sets the claude binary. An empty path keeps the default.
func WithClaudePath(path string) ClaudeOption {
	return func(c *ClaudeCLI) {
		if path != "" {
			c.path = path
		}
	}
}

// WithClaudeModel sets the model used when a request names none.
func WithClaudeModel(model string) ClaudeOption {
	return func(c *ClaudeCLI) { c.model = model }
}

// WithWorkdir runs the binary in dir.
func WithWorkdir(dir string) ClaudeOption {
	return func(c *ClaudeCLI) { c.workdir = dir }
}

// WithClaudeTimeout bounds each call. Zero disables the limit.
func WithClaudeTimeout(d time.Duration) ClaudeOption {
	return func(c *ClaudeCLI) { c.timeout = d }
}

// Complete implements Client.
func (c *ClaudeCLI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, c.buildArgs(req)...)
	cmd.Dir = c.workdir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, NewError("complete", ctxErr, ctxErr == context.DeadlineExceeded)
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, NewError("complete", fmt.Errorf("%w: %s", err, msg), isRetryableMessage(msg))
	}

	return &CompletionResponse{
		Content:      strings.TrimSpace(stdout.String()),
		Model:        c.modelFor(req),
		FinishReason: "stop",
		Duration:     time.Since(start),
	}, nil
}

// modelFor picks the request model over the client default.
func (c *ClaudeCLI) modelFor(req CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

// buildArgs turns a request into CLI arguments.
func (c *ClaudeCLI) buildArgs(req CompletionRequest) []string {
	args := []string{"--print"}
	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}
	if model := c.modelFor(req); model != "" {
		args = append(args, "--model", model)
	}
	if req.MaxTokens > 0 {
		args = append(args, "--max-tokens", strconv.Itoa(req.MaxTokens))
	}
	if prompt := conversation(req.Messages); prompt != "" {
		args = append(args, "-p", prompt)
	}
	return args
}

// conversation flattens messages into the single prompt the CLI accepts.
// Assistant turns before the first user turn are dropped.
func conversation(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			b.WriteString(m.Content)
			b.WriteString("\n")
		case RoleAssistant:
			if b.Len() == 0 {
				continue
			}
			fmt.Fprintf(&b, "\nAssistant: %s\n\nUser: ", m.Content)
		}
	}
	return strings.TrimSpace(b.String())
}
