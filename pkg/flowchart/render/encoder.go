package render

import (
	"context"
	"io"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// Encoder turns a graph into an image or document.
type Encoder interface {
	// Format is the output format, also used as the file extension.
	Format() string
	// Encode writes the rendered graph to w.
	Encode(ctx context.Context, g *flowchart.Graph, w io.Writer) error
}
