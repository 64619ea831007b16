package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// MermaidEncoder writes Mermaid flowchart source. Conditional nodes use the
// rhombus shape; labels follow the same visibility rule as images.
type MermaidEncoder struct{}

// NewMermaidEncoder returns a Mermaid encoder.
func NewMermaidEncoder() *MermaidEncoder {
	return &MermaidEncoder{}
}

// Format implements Encoder.
func (*MermaidEncoder) Format() string {
	return "mmd"
}

// Encode implements Encoder.
func (*MermaidEncoder) Encode(ctx context.Context, g *flowchart.Graph, w io.Writer) error {
	c := &mermaidCanvas{ids: make(map[string]string, g.Len())}
	c.b.WriteString("graph TD\n")
	if err := Dispatch(ctx, g, c); err != nil {
		return err
	}
	if _, err := io.WriteString(w, c.b.String()); err != nil {
		return &flowchart.RenderError{Op: "write", Err: err}
	}
	return nil
}

// Mermaid returns the Mermaid source for g.
func Mermaid(g *flowchart.Graph) string {
	var b strings.Builder
	_ = NewMermaidEncoder().Encode(context.Background(), g, &b)
	return b.String()
}

type mermaidCanvas struct {
	b   strings.Builder
	ids map[string]string
}

// id maps a node id to a Mermaid identifier. Ids are assigned in first-use
// order so that arbitrary node names never collide or break the syntax.
func (c *mermaidCanvas) id(name string) (string, bool) {
	if id, ok := c.ids[name]; ok {
		return id, false
	}
	id := fmt.Sprintf("n%d", len(c.ids))
	c.ids[name] = id
	return id, true
}

func (c *mermaidCanvas) AddNode(spec NodeSpec) error {
	id, fresh := c.id(spec.ID)
	if !fresh {
		return nil
	}
	label := mermaidEscapeLabel(spec.Label)
	if spec.Shape == ShapeDiamond {
		fmt.Fprintf(&c.b, "    %s{\"%s\"}\n", id, label)
	} else {
		fmt.Fprintf(&c.b, "    %s[\"%s\"]\n", id, label)
	}
	fmt.Fprintf(&c.b, "    style %s fill:%s\n", id, spec.Fill)
	return nil
}

func (c *mermaidCanvas) AddEdge(spec EdgeSpec) error {
	if _, ok := c.ids[spec.To]; !ok {
		if err := c.AddNode(NodeSpec{ID: spec.To, Label: spec.To, Shape: ShapeBox, Fill: FillBlock}); err != nil {
			return err
		}
	}
	from, _ := c.id(spec.From)
	to, _ := c.id(spec.To)
	if spec.Label != "" {
		fmt.Fprintf(&c.b, "    %s -->|\"%s\"| %s\n", from, mermaidEscapeLabel(spec.Label), to)
	} else {
		fmt.Fprintf(&c.b, "    %s --> %s\n", from, to)
	}
	return nil
}

var mermaidLabelEscaper = strings.NewReplacer(`"`, "#quot;", "\n", "<br/>")

func mermaidEscapeLabel(s string) string {
	return mermaidLabelEscaper.Replace(s)
}
