/*
Package flowchart turns unreliable model output into a well-formed flowchart
graph.

# Overview

A language model asked for a flowchart answers with text that is supposed to
be a list of 4-tuples:

	[
	    ('start', 'Begin Process', 'block', [('check', 'Start')]),
	    ('check', 'Is Data Valid?', 'conditional', [('process', 'Yes'), ('error', 'No')]),
	    ...
	]

In practice the text arrives wrapped in code fences, truncated, missing
commas, or half-way between Python and JSON. The package handles it in three
stages that run in strict sequence:

	text := flowchart.Sanitize(raw)          // strip fences, repair syntax
	records, err := flowchart.Parse(text)    // literal, then JSON, then quoted JSON
	graph := flowchart.Normalize(records)    // validate, deduplicate, merge edges

Sanitize never fails. Parse fails only with ErrParseFailure, and only when
every strategy has rejected the text. Normalize never fails: malformed records
are dropped and reported as diagnostics.

# Graph Model

A Graph holds one Node per id in first-seen order. A node that appears twice
keeps its first text and kind and collects the union of its edges. Edge
labels are stored as given; whether a label is shown is decided when the
graph is rendered, from the kind of the edge's source node (see package
render).

# Diagnostics

Normalize and the pipeline report what they repaired or dropped through a
Sink instead of logging directly:

	var c flowchart.Collector
	graph := flowchart.Normalize(records, flowchart.WithSink(&c))
	for _, d := range c.Diagnostics() {
	    fmt.Println(d.Stage, d.Message)
	}

NewSlogSink forwards diagnostics to a *slog.Logger.
*/
package flowchart
