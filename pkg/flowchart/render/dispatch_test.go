package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowchart/pkg/flowchart"
)

// recordingCanvas records every instruction it receives.
type recordingCanvas struct {
	nodes   []NodeSpec
	edges   []EdgeSpec
	nodeErr error
}

func (c *recordingCanvas) AddNode(spec NodeSpec) error {
	if c.nodeErr != nil {
		return c.nodeErr
	}
	c.nodes = append(c.nodes, spec)
	return nil
}

func (c *recordingCanvas) AddEdge(spec EdgeSpec) error {
	c.edges = append(c.edges, spec)
	return nil
}

func sampleGraph() *flowchart.Graph {
	return flowchart.Normalize([]flowchart.Tuple{
		{"start", "Begin", "block", flowchart.Tuple{flowchart.Tuple{"check", "Start"}}},
		{"check", "Valid?", "conditional", flowchart.Tuple{
			flowchart.Tuple{"ok", "Yes"},
			flowchart.Tuple{"fail", "No"},
			flowchart.Tuple{"retry", nil},
		}},
		{"ok", "Done", "block", flowchart.Tuple{}},
	})
}

func TestDispatch_Styles(t *testing.T) {
	c := &recordingCanvas{}
	require.NoError(t, Dispatch(context.Background(), sampleGraph(), c))

	assert.Equal(t, []NodeSpec{
		{ID: "start", Label: "Begin", Shape: ShapeBox, Fill: FillBlock},
		{ID: "check", Label: "Valid?", Shape: ShapeDiamond, Fill: FillConditional},
		{ID: "ok", Label: "Done", Shape: ShapeBox, Fill: FillBlock},
	}, c.nodes)
}

func TestDispatch_LabelVisibility(t *testing.T) {
	c := &recordingCanvas{}
	require.NoError(t, Dispatch(context.Background(), sampleGraph(), c))

	assert.Equal(t, []EdgeSpec{
		{From: "start", To: "check"},
		{From: "check", To: "ok", Label: "Yes"},
		{From: "check", To: "fail", Label: "No"},
		{From: "check", To: "retry"},
	}, c.edges)
}

func TestDispatch_UnknownKindIsBlock(t *testing.T) {
	g := flowchart.Normalize([]flowchart.Tuple{
		{"a", "A", "decision", flowchart.Tuple{flowchart.Tuple{"b", "hidden"}}},
	})
	c := &recordingCanvas{}
	require.NoError(t, Dispatch(context.Background(), g, c))

	assert.Equal(t, ShapeBox, c.nodes[0].Shape)
	assert.Empty(t, c.edges[0].Label)
}

func TestDispatch_CanvasError(t *testing.T) {
	boom := errors.New("boom")
	c := &recordingCanvas{nodeErr: boom}
	err := Dispatch(context.Background(), sampleGraph(), c)
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &recordingCanvas{}
	err := Dispatch(ctx, sampleGraph(), c)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.nodes)
}
