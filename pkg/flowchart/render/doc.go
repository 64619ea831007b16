// Package render draws a normalized flowchart graph.
//
// Dispatch walks a graph and issues NodeSpec and EdgeSpec instructions to a
// Canvas. It owns the styling rules: conditional nodes are light yellow
// diamonds, every other node is a light blue box, and an edge label is shown
// only when its source node is conditional.
//
// Encoders build on Dispatch. GraphvizEncoder produces png, svg and jpg
// through the dot layout engine; MermaidEncoder produces Mermaid source.
// FileRenderer writes an encoder's output to a fresh file:
//
//	enc, _ := render.DefaultRegistry().Encoder("png")
//	path, err := render.NewFileRenderer("static", enc).Render(ctx, graph)
package render
