package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
	"github.com/randalmurphal/flowchart/pkg/flowchart/pipeline"
	"github.com/randalmurphal/flowchart/pkg/flowchart/render"
)

const fencedText = "```python\n" + `[("1", "Start", "block", [("2", None)]),
("2", "Is it raining?", "conditional", [("3", "Yes"), ("4", "No")])
("3", "Take umbrella", "block", [("4", None)]),
("4", "Leave", "block", [])
` + "```"

// recordingMetrics captures metric calls.
type recordingMetrics struct {
	mu      sync.Mutex
	parses  map[string][]bool
	dropped int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{parses: make(map[string][]bool)}
}

func (m *recordingMetrics) RecordGeneration(context.Context, bool, int, time.Duration) {}
func (m *recordingMetrics) RecordAttempt(context.Context, string)                      {}

func (m *recordingMetrics) RecordParse(_ context.Context, strategy string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parses[strategy] = append(m.parses[strategy], ok)
}

func (m *recordingMetrics) RecordDropped(_ context.Context, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped += count
}

// stubRenderer returns a fixed path or error and records the graph.
type stubRenderer struct {
	path  string
	err   error
	graph *flowchart.Graph
}

func (r *stubRenderer) Render(ctx context.Context, g *flowchart.Graph) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.graph = g
	return r.path, r.err
}

func TestRenderFlowchart(t *testing.T) {
	dir := t.TempDir()
	p := pipeline.New(render.NewFileRenderer(dir, render.NewMermaidEncoder()))

	path, err := p.RenderFlowchart(context.Background(), fencedText)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `{"Is it raining?"}`)
	assert.Contains(t, out, `-->|"Yes"|`)
	assert.Contains(t, out, `["Take umbrella"]`)
}

func TestRenderFlowchart_ParseFailure(t *testing.T) {
	r := &stubRenderer{path: "unused"}
	p := pipeline.New(r)

	path, err := p.RenderFlowchart(context.Background(), "I cannot draw that, sorry.")
	assert.Empty(t, path)
	require.ErrorIs(t, err, flowchart.ErrParseFailure)
	assert.Contains(t, err.Error(), flowchart.ParseFailureMarker)
	assert.Nil(t, r.graph, "renderer must not run after a parse failure")
}

func TestRenderFlowchart_RenderErrorUnchanged(t *testing.T) {
	renderErr := &flowchart.RenderError{Op: "layout", Err: errors.New("engine exploded")}
	p := pipeline.New(&stubRenderer{err: renderErr})

	_, err := p.RenderFlowchart(context.Background(), fencedText)
	assert.Same(t, renderErr, err)
}

func TestProcess_Result(t *testing.T) {
	r := &stubRenderer{path: "static/flowchart.png"}
	collector := &flowchart.Collector{}
	p := pipeline.New(r, pipeline.WithSink(collector))

	res, err := p.Process(context.Background(), fencedText)
	require.NoError(t, err)

	assert.Equal(t, "static/flowchart.png", res.Path)
	assert.Equal(t, "literal", res.Strategy)
	assert.Equal(t, []flowchart.Repair{
		flowchart.RepairCodeFence,
		flowchart.RepairLanguageTag,
		flowchart.RepairClosingBracket,
		flowchart.RepairMissingComma,
	}, res.Repairs)
	require.NotNil(t, res.Graph)
	assert.Same(t, res.Graph, r.graph)
	assert.Equal(t, 4, res.Graph.Len())
	assert.Equal(t, 4, res.Graph.EdgeCount())
	assert.Equal(t, 4, res.Stats.Records)
	assert.Positive(t, res.Duration)

	// The configured sink sees the same diagnostics as the result.
	assert.Equal(t, collector.Diagnostics(), res.Diagnostics)
	assert.NotEmpty(t, res.Diagnostics)
}

func TestProcess_DiagnosticsForDroppedRecords(t *testing.T) {
	metrics := newRecordingMetrics()
	p := pipeline.New(nil, pipeline.WithMetrics(metrics))

	res, err := p.Process(context.Background(), `[("1", "A", "block", []), ("2", "B", "block"), ("1", "A again", "block", [("2", None)])]`)
	require.NoError(t, err)

	assert.Empty(t, res.Path, "nil renderer stops after normalization")
	assert.Equal(t, 1, res.Graph.Len())
	assert.Equal(t, 1, res.Stats.Dropped)
	assert.Equal(t, 1, res.Stats.Merged)
	assert.Equal(t, 1, metrics.dropped)

	var messages []string
	for _, d := range res.Diagnostics {
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "skipping invalid node format")
	assert.Contains(t, messages, "deduplicating node")
}

func TestProcess_StrictKinds(t *testing.T) {
	text := `[("1", "A", "block", []), ("2", "B", "process", [])]`

	lenient, err := pipeline.New(nil).Process(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 2, lenient.Graph.Len())

	strict, err := pipeline.New(nil, pipeline.WithStrictKinds(true)).Process(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 1, strict.Graph.Len())
}

func TestProcess_ParseMetrics(t *testing.T) {
	metrics := newRecordingMetrics()
	p := pipeline.New(nil, pipeline.WithMetrics(metrics))

	_, err := p.Process(context.Background(), `[("a", "A", "block", [("b", null)])]`)
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, metrics.parses["literal"])
	assert.Equal(t, []bool{true}, metrics.parses["json"])

	_, err = p.Process(context.Background(), "nonsense")
	require.Error(t, err)
	assert.Equal(t, []bool{false, false}, metrics.parses["literal"])
	assert.Equal(t, []bool{true, false}, metrics.parses["json"])
	assert.Equal(t, []bool{false}, metrics.parses["json-quotes"])
}

func TestProcess_ParseFailureKeepsPartialResult(t *testing.T) {
	res, err := pipeline.New(nil).Process(context.Background(), "```\nnot a list\n```")
	require.ErrorIs(t, err, flowchart.ErrParseFailure)
	require.NotNil(t, res)
	assert.Nil(t, res.Graph)
	assert.Equal(t, []flowchart.Repair{flowchart.RepairCodeFence}, res.Repairs)

	var warned bool
	for _, d := range res.Diagnostics {
		if d.Stage == flowchart.StageParse && d.Level == slog.LevelWarn {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestProcess_EmptyGraphStillRenders(t *testing.T) {
	r := &stubRenderer{path: "empty.png"}
	res, err := pipeline.New(r).Process(context.Background(), "[]")
	require.NoError(t, err)
	assert.Equal(t, "empty.png", res.Path)
	assert.Equal(t, 0, res.Graph.Len())

	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "flowchart has no nodes", res.Diagnostics[len(res.Diagnostics)-1].Message)
}

func TestProcess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &stubRenderer{path: "x"}
	_, err := pipeline.New(r).Process(ctx, fencedText)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r.graph)
}

func TestProcess_Logger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := pipeline.New(nil, pipeline.WithLogger(logger)).Process(context.Background(), "nope")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "parse strategy failed")
	assert.Contains(t, out, "all parsing strategies failed")
	assert.Contains(t, out, "stage=parse")
}

func TestProcess_Concurrent(t *testing.T) {
	p := pipeline.New(render.NewFileRenderer(t.TempDir(), render.NewMermaidEncoder()))

	var wg sync.WaitGroup
	paths := make([]string, 10)
	errs := make([]error, 10)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = p.RenderFlowchart(context.Background(), fencedText)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, path := range paths {
		require.NoError(t, errs[i])
		assert.False(t, seen[path])
		seen[path] = true
	}
}

func TestWithoutRenderer(t *testing.T) {
	r := &stubRenderer{path: "x.png"}
	p := pipeline.New(r)

	res, err := p.WithoutRenderer().Process(context.Background(), fencedText)
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Equal(t, 4, res.Graph.Len())
	assert.Nil(t, r.graph)

	path, err := p.RenderFlowchart(context.Background(), fencedText)
	require.NoError(t, err)
	assert.Equal(t, "x.png", path, "the original keeps its renderer")
}

func TestAttempt(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, 1, pipeline.Attempt(ctx))
	assert.Equal(t, 3, pipeline.Attempt(pipeline.WithAttempt(ctx, 3)))
}
