package flowchart

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the node type reported by the model.
//
// Only KindConditional changes rendering. Any other value, including typos,
// is kept as-is and rendered like KindBlock.
type Kind string

// Recognized node kinds.
const (
	KindBlock       Kind = "block"
	KindConditional Kind = "conditional"
)

// IsConditional reports whether nodes of this kind are decision points.
func (k Kind) IsConditional() bool {
	return k == KindConditional
}

// Known reports whether k is one of the recognized kinds.
func (k Kind) Known() bool {
	return k == KindBlock || k == KindConditional
}

// Edge is a directed connection from its owning node to Target.
//
// Edge is comparable; two edges are duplicates when all fields are equal.
type Edge struct {
	Target   string
	Label    string
	HasLabel bool
}

// NewEdge returns a labeled edge.
func NewEdge(target, label string) Edge {
	return Edge{Target: target, Label: label, HasLabel: true}
}

// Node is one step or decision point of a flowchart.
type Node struct {
	ID    string
	Text  string
	Kind  Kind
	Edges []Edge
}

// hasEdge reports whether e is already in the node's edge list.
func (n *Node) hasEdge(e Edge) bool {
	for _, existing := range n.Edges {
		if existing == e {
			return true
		}
	}
	return false
}

// Graph is the normalized flowchart: one node per id, in first-seen order.
//
// A Graph is built per request and is not safe for concurrent mutation.
type Graph struct {
	nodes *orderedmap.OrderedMap[string, *Node]
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: orderedmap.New[string, *Node]()}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return g.nodes.Len()
}

// Get returns the node with the given id.
func (g *Graph) Get(id string) (*Node, bool) {
	return g.nodes.Get(id)
}

// Nodes returns the nodes in first-seen order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, g.nodes.Len())
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// EdgeCount returns the total number of edges across all nodes.
func (g *Graph) EdgeCount() int {
	n := 0
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value.Edges)
	}
	return n
}

// merge inserts n, or appends its missing edges to the existing node with
// the same id. It reports whether the id was already present.
func (g *Graph) merge(n *Node) bool {
	existing, ok := g.nodes.Get(n.ID)
	if !ok {
		g.nodes.Set(n.ID, n)
		return false
	}
	for _, e := range n.Edges {
		if !existing.hasEdge(e) {
			existing.Edges = append(existing.Edges, e)
		}
	}
	return true
}

// Records converts the graph back to raw record form, the same shape Parse
// produces. Normalizing the result yields an equal graph.
func (g *Graph) Records() []Tuple {
	out := make([]Tuple, 0, g.nodes.Len())
	for _, n := range g.Nodes() {
		edges := make(Tuple, 0, len(n.Edges))
		for _, e := range n.Edges {
			var label any
			if e.HasLabel {
				label = e.Label
			}
			edges = append(edges, Tuple{e.Target, label})
		}
		out = append(out, Tuple{n.ID, n.Text, string(n.Kind), edges})
	}
	return out
}
