package render

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// Layout attributes.
const (
	pageWidth    = 11.7
	pageHeight   = 8.3
	dpi          = 300
	fontName     = "Arial"
	nodeFontSize = 12
	edgeFontSize = 10
	edgeColor    = "#666666"
	nodeMarginIn = 0.2
)

var graphvizFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

// GraphvizEncoder lays a graph out top-to-bottom with the dot engine and
// encodes it as png, svg or jpg.
type GraphvizEncoder struct {
	format string
	gvFmt  graphviz.Format
}

// NewGraphvizEncoder returns an encoder for the given format.
func NewGraphvizEncoder(format string) (*GraphvizEncoder, error) {
	f, ok := graphvizFormats[format]
	if !ok {
		return nil, fmt.Errorf("%w: graphviz cannot encode %q", ErrUnknownFormat, format)
	}
	return &GraphvizEncoder{format: format, gvFmt: f}, nil
}

// Format implements Encoder.
func (e *GraphvizEncoder) Format() string {
	return e.format
}

// Encode implements Encoder.
func (e *GraphvizEncoder) Encode(ctx context.Context, g *flowchart.Graph, w io.Writer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return &flowchart.RenderError{Op: "init", Err: err}
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return &flowchart.RenderError{Op: "init", Err: err}
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	graph.SetSize(pageWidth, pageHeight)
	graph.SetDPI(dpi)

	canvas := &graphvizCanvas{graph: graph, nodes: make(map[string]*cgraph.Node, g.Len())}
	if err := Dispatch(ctx, g, canvas); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return &flowchart.RenderError{Op: "layout", Err: err}
	}

	if err := gv.Render(ctx, graph, e.gvFmt, w); err != nil {
		return &flowchart.RenderError{Op: "encode", Err: err}
	}
	return nil
}

// graphvizCanvas builds a cgraph graph from dispatch instructions.
type graphvizCanvas struct {
	graph *cgraph.Graph
	nodes map[string]*cgraph.Node
	edges int
}

func (c *graphvizCanvas) AddNode(spec NodeSpec) error {
	if _, ok := c.nodes[spec.ID]; ok {
		return nil
	}
	n, err := c.graph.CreateNodeByName(spec.ID)
	if err != nil {
		return fmt.Errorf("create node %s: %w", spec.ID, err)
	}
	n.SetLabel(spec.Label)
	n.SetStyle(cgraph.FilledNodeStyle)
	n.SetFillColor(spec.Fill)
	n.SetFontName(fontName)
	n.SetFontSize(nodeFontSize)
	n.SetMargin(nodeMarginIn)
	if spec.Shape == ShapeDiamond {
		n.SetShape(cgraph.DiamondShape)
	} else {
		n.SetShape(cgraph.BoxShape)
	}
	c.nodes[spec.ID] = n
	return nil
}

func (c *graphvizCanvas) AddEdge(spec EdgeSpec) error {
	to, ok := c.nodes[spec.To]
	if !ok {
		if err := c.AddNode(NodeSpec{ID: spec.To, Label: spec.To, Shape: ShapeBox, Fill: FillBlock}); err != nil {
			return err
		}
		to = c.nodes[spec.To]
	}
	from := c.nodes[spec.From]
	if from == nil {
		return fmt.Errorf("edge from unknown node %s", spec.From)
	}

	// Named edges keep parallel a->b edges with different labels apart.
	c.edges++
	e, err := c.graph.CreateEdgeByName(fmt.Sprintf("e%d", c.edges), from, to)
	if err != nil {
		return fmt.Errorf("create edge %s -> %s: %w", spec.From, spec.To, err)
	}
	e.SetFontName(fontName)
	e.SetFontSize(edgeFontSize)
	e.SetColor(edgeColor)
	// Edge.SetLabel declares the attribute with the default "\E", which dot
	// expands to the edge name on every edge without its own label.
	if err := e.SafeSet("label", spec.Label, ""); err != nil {
		return fmt.Errorf("label edge %s -> %s: %w", spec.From, spec.To, err)
	}
	return nil
}
