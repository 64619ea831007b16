package render

import (
	"context"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// Shape is the outline drawn for a node.
type Shape string

// Node shapes.
const (
	ShapeBox     Shape = "box"
	ShapeDiamond Shape = "diamond"
)

// Fill colours.
const (
	FillBlock       = "lightblue"
	FillConditional = "lightyellow"
)

// NodeSpec describes one node to draw.
type NodeSpec struct {
	ID    string
	Label string
	Shape Shape
	Fill  string
}

// EdgeSpec describes one edge to draw. Label is empty when no label
// should be shown.
type EdgeSpec struct {
	From  string
	To    string
	Label string
}

// Canvas receives drawing instructions from Dispatch.
//
// Edges may reference a target that was never added as a node; the canvas
// must then create the node implicitly, labelled with its id and drawn like
// a block.
type Canvas interface {
	AddNode(spec NodeSpec) error
	AddEdge(spec EdgeSpec) error
}

// NodeStyle returns the NodeSpec for n.
func NodeStyle(n *flowchart.Node) NodeSpec {
	spec := NodeSpec{ID: n.ID, Label: n.Text, Shape: ShapeBox, Fill: FillBlock}
	if n.Kind.IsConditional() {
		spec.Shape = ShapeDiamond
		spec.Fill = FillConditional
	}
	return spec
}

// EdgeStyle returns the EdgeSpec for an edge leaving from. The label is kept
// only when from is conditional and the edge carries one.
func EdgeStyle(from *flowchart.Node, e flowchart.Edge) EdgeSpec {
	spec := EdgeSpec{From: from.ID, To: e.Target}
	if from.Kind.IsConditional() && e.HasLabel {
		spec.Label = e.Label
	}
	return spec
}

// Dispatch draws g onto c: all nodes first, in graph order, then every edge
// in node order. The context is checked before each node.
func Dispatch(ctx context.Context, g *flowchart.Graph, c Canvas) error {
	nodes := g.Nodes()
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.AddNode(NodeStyle(n)); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		for _, e := range n.Edges {
			if err := c.AddEdge(EdgeStyle(n, e)); err != nil {
				return err
			}
		}
	}
	return nil
}
