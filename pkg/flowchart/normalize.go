package flowchart

import (
	"fmt"
	"log/slog"
	"strconv"
)

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizer)

// WithSink routes normalization diagnostics to s.
func WithSink(s Sink) NormalizeOption {
	return func(n *normalizer) {
		if s != nil {
			n.sink = s
		}
	}
}

// WithStrictKinds drops records whose kind is neither "block" nor
// "conditional" instead of rendering them as blocks.
func WithStrictKinds() NormalizeOption {
	return func(n *normalizer) { n.strictKinds = true }
}

// NormalizeStats counts what Normalize kept and dropped.
type NormalizeStats struct {
	Records      int
	Dropped      int
	Merged       int
	DroppedEdges int
}

type normalizer struct {
	sink        Sink
	strictKinds bool
	stats       NormalizeStats
}

// Normalize validates raw records and folds them into a Graph.
//
// Records that do not have exactly four fields (id, text, kind, edges), or
// whose fields have the wrong shape, are dropped and reported to the sink.
// A repeated id keeps the first record's text and kind and gains any edges
// it does not already have. Normalize never fails.
func Normalize(records []Tuple, opts ...NormalizeOption) *Graph {
	g, _ := NormalizeDetailed(records, opts...)
	return g
}

// NormalizeDetailed is Normalize that also returns counters.
func NormalizeDetailed(records []Tuple, opts ...NormalizeOption) (*Graph, NormalizeStats) {
	n := &normalizer{sink: Discard}
	for _, opt := range opts {
		opt(n)
	}

	g := NewGraph()
	for i, rec := range records {
		n.stats.Records++
		node, err := n.node(i, rec)
		if err != nil {
			n.stats.Dropped++
			n.sink.Emit(Diagnostic{
				Stage:   StageNormalize,
				Level:   slog.LevelWarn,
				Message: "skipping invalid node format",
				Attrs: []slog.Attr{
					slog.Int("index", err.Index),
					slog.String("reason", err.Reason),
					slog.String("record", fmt.Sprint([]any(err.Record))),
				},
			})
			continue
		}
		if g.merge(node) {
			n.stats.Merged++
			n.sink.Emit(Diagnostic{
				Stage:   StageNormalize,
				Level:   slog.LevelInfo,
				Message: "deduplicating node",
				Attrs:   []slog.Attr{slog.String("node_id", node.ID)},
			})
		}
	}
	return g, n.stats
}

func (n *normalizer) node(index int, rec Tuple) (*Node, *MalformedRecordError) {
	malformed := func(format string, args ...any) *MalformedRecordError {
		return &MalformedRecordError{Index: index, Reason: fmt.Sprintf(format, args...), Record: rec}
	}

	if len(rec) != 4 {
		return nil, malformed("expected 4 fields, got %d", len(rec))
	}

	id, ok := scalarString(rec[0])
	if !ok {
		return nil, malformed("node id must be a string, got %T", rec[0])
	}

	text, ok := scalarString(rec[1])
	switch {
	case rec[1] == nil:
		text = id
	case !ok:
		return nil, malformed("node text must be a string, got %T", rec[1])
	}

	kind := ""
	if rec[2] != nil {
		if kind, ok = scalarString(rec[2]); !ok {
			return nil, malformed("node kind must be a string, got %T", rec[2])
		}
	}
	if n.strictKinds && !Kind(kind).Known() {
		return nil, malformed("unknown node kind %q", kind)
	}

	node := &Node{ID: id, Text: text, Kind: Kind(kind)}

	var rawEdges Tuple
	switch e := rec[3].(type) {
	case nil:
		n.sink.Emit(Diagnostic{
			Stage:   StageNormalize,
			Level:   slog.LevelWarn,
			Message: "node has no edge list",
			Attrs:   []slog.Attr{slog.String("node_id", id)},
		})
	case Tuple:
		rawEdges = e
	default:
		return nil, malformed("edges must be a sequence, got %T", rec[3])
	}

	for j, raw := range rawEdges {
		edge, reason := coerceEdge(raw)
		if reason != "" {
			n.stats.DroppedEdges++
			n.sink.Emit(Diagnostic{
				Stage:   StageNormalize,
				Level:   slog.LevelWarn,
				Message: "skipping invalid edge",
				Attrs: []slog.Attr{
					slog.String("node_id", id),
					slog.Int("edge", j),
					slog.String("reason", reason),
				},
			})
			continue
		}
		if !node.hasEdge(edge) {
			node.Edges = append(node.Edges, edge)
		}
	}
	return node, nil
}

// coerceEdge turns a raw (target, label) pair into an Edge. A non-empty
// reason means the entry is unusable.
func coerceEdge(raw any) (Edge, string) {
	pair, ok := raw.(Tuple)
	if !ok {
		return Edge{}, fmt.Sprintf("expected a (target, label) pair, got %T", raw)
	}
	if len(pair) != 2 {
		return Edge{}, fmt.Sprintf("expected 2 fields, got %d", len(pair))
	}
	if pair[0] == nil {
		return Edge{}, "edge has no target"
	}
	target, ok := scalarString(pair[0])
	if !ok {
		return Edge{}, fmt.Sprintf("edge target must be a string, got %T", pair[0])
	}
	if pair[1] == nil {
		return Edge{Target: target}, ""
	}
	label, ok := scalarString(pair[1])
	if !ok {
		return Edge{}, fmt.Sprintf("edge label must be a string, got %T", pair[1])
	}
	return NewEdge(target, label), ""
}

// scalarString renders strings, numbers and booleans as text. Whole floats
// print without a fraction so that 1 and 1.0 name the same node whichever
// parser produced them.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int64:
		return strconv.FormatInt(s, 10), true
	case int:
		return strconv.Itoa(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		if s {
			return "True", true
		}
		return "False", true
	}
	return "", false
}
