package layout

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/scene"
)

func newScene(t *testing.T, in inspection.Inspection) *scene.Scene {
	t.Helper()
	s := scene.New(scene.Options{Logger: log.New(io.Discard)})
	if _, err := s.Materialize(in); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	return s
}

func node(id inspection.NodeID, inputs int, edges ...inspection.Edge) inspection.Node {
	n := inspection.Node{Address: id, Name: "Node", OutputChannels: []string{"out"}, InputEdges: edges}
	for range inputs {
		n.InputChannels = append(n.InputChannels, "in")
	}
	return n
}

func from(index, toIndex int) inspection.Edge {
	return inspection.Edge{Source: inspection.NodeSource(index), ToIndex: toIndex}
}

func mustNode(t *testing.T, s *scene.Scene, id inspection.NodeID) *scene.Node {
	t.Helper()
	n, ok := s.NodeByID(id)
	if !ok {
		t.Fatalf("node %d missing", id)
	}
	return n
}

// voice models osc(1) and osc(3) feeding mul(2), which feeds the output.
func voice() inspection.Inspection {
	return inspection.Inspection{
		NumOutputs: 1,
		Nodes: []inspection.Node{
			node(1, 1),
			node(2, 2, from(0, 0), from(2, 1)),
			node(3, 1),
		},
		OutputEdges: []inspection.Edge{from(1, 0)},
	}
}

func TestColumnsAssignsHopDistance(t *testing.T) {
	s := newScene(t, voice())
	cfg := ColumnConfig{AnchorX: 300, AnchorY: 0, ColumnWidth: 150, RowGap: 10}

	p := Columns(s, cfg)

	out, _ := s.GraphOutput()
	want := map[scene.Handle]int{
		out.Handle:              0,
		mustNode(t, s, 2).Handle: 1,
		mustNode(t, s, 1).Handle: 2,
		mustNode(t, s, 3).Handle: 2,
	}
	for h, col := range want {
		if p[h] != col {
			t.Errorf("handle %d in column %d, want %d", h, p[h], col)
		}
	}
	if p.Depth() != 3 {
		t.Errorf("Depth = %d, want 3", p.Depth())
	}

	if out.Pos != (scene.Vec2{X: 300}) {
		t.Errorf("graph output at %v", out.Pos)
	}
	if x := mustNode(t, s, 2).Pos.X; x != 150 {
		t.Errorf("column 1 x = %v, want 150", x)
	}
	for _, id := range []inspection.NodeID{1, 3} {
		if x := mustNode(t, s, id).Pos.X; x != 0 {
			t.Errorf("node %d x = %v, want 0", id, x)
		}
	}
}

func TestColumnsIndependentOfEdgeOrder(t *testing.T) {
	forward := voice()

	// Same topology with nodes and edges listed in reverse.
	reversed := inspection.Inspection{
		NumOutputs: 1,
		Nodes: []inspection.Node{
			node(3, 1),
			node(2, 2, from(0, 1), from(2, 0)),
			node(1, 1),
		},
		OutputEdges: []inspection.Edge{from(1, 0)},
	}

	a := newScene(t, forward)
	b := newScene(t, reversed)
	cfg := ColumnConfig{AnchorX: 300, ColumnWidth: 150, RowGap: 10}
	pa := Columns(a, cfg)
	pb := Columns(b, cfg)

	for _, id := range []inspection.NodeID{1, 2, 3} {
		na, nb := mustNode(t, a, id), mustNode(t, b, id)
		if pa[na.Handle] != pb[nb.Handle] {
			t.Errorf("node %d column %d vs %d", id, pa[na.Handle], pb[nb.Handle])
		}
		if na.Pos.X != nb.Pos.X {
			t.Errorf("node %d x %v vs %v", id, na.Pos.X, nb.Pos.X)
		}
	}

	// Running the pass again is stable.
	before := mustNode(t, a, 1).Pos
	Columns(a, cfg)
	if after := mustNode(t, a, 1).Pos; after != before {
		t.Errorf("second pass moved node 1 from %v to %v", before, after)
	}
}

func TestColumnsRedistributesGap(t *testing.T) {
	// A four-channel output (height 80) fed by two one-row nodes.
	in := inspection.Inspection{
		NumOutputs:  4,
		Nodes:       []inspection.Node{node(1, 0), node(2, 0)},
		OutputEdges: []inspection.Edge{from(0, 0), from(1, 3)},
	}
	s := newScene(t, in)
	Columns(s, ColumnConfig{AnchorX: 300, ColumnWidth: 150, RowGap: 10})

	first, second := mustNode(t, s, 1), mustNode(t, s, 2)
	if first.Pos.Y != 0 {
		t.Errorf("first member y = %v, want 0", first.Pos.Y)
	}
	// Span must match the output's 80: 20 + gap + 20 = 80.
	if second.Pos.Y != -60 {
		t.Errorf("second member y = %v, want -60", second.Pos.Y)
	}
	// No trailing gap: the column bottoms out with the output.
	out, _ := s.GraphOutput()
	g := s.Geometry()
	if bottom, want := second.Pos.Y-second.Height(g), out.Pos.Y-out.Height(g); bottom != want {
		t.Errorf("column bottom = %v, want %v", bottom, want)
	}
}

func TestColumnsKeepsWiderColumn(t *testing.T) {
	in := inspection.Inspection{
		NumOutputs:  1,
		Nodes:       []inspection.Node{node(1, 0), node(2, 0), node(3, 0)},
		OutputEdges: []inspection.Edge{from(0, 0), from(1, 0), from(2, 0)},
	}
	s := newScene(t, in)
	Columns(s, ColumnConfig{AnchorX: 300, ColumnWidth: 150, RowGap: 10})

	ys := []float64{0, -30, -60}
	for i, id := range []inspection.NodeID{1, 2, 3} {
		if y := mustNode(t, s, id).Pos.Y; y != ys[i] {
			t.Errorf("node %d y = %v, want %v", id, y, ys[i])
		}
	}
}

func TestColumnsLeavesDisconnectedNodes(t *testing.T) {
	in := voice()
	in.Nodes = append(in.Nodes, node(9, 0))
	s := newScene(t, in)
	lonely := mustNode(t, s, 9)
	lonely.Pos = scene.Vec2{X: -1234, Y: 567}

	p := Columns(s, DefaultColumnConfig(s))
	if _, ok := p[lonely.Handle]; ok {
		t.Error("disconnected node was placed")
	}
	if lonely.Pos != (scene.Vec2{X: -1234, Y: 567}) {
		t.Errorf("disconnected node moved to %v", lonely.Pos)
	}
}

func TestColumnsTerminatesOnCycle(t *testing.T) {
	// 1 and 2 feed each other; 2 feeds the output.
	in := inspection.Inspection{
		NumOutputs: 1,
		Nodes: []inspection.Node{
			node(1, 1, from(1, 0)),
			node(2, 1, from(0, 0)),
		},
		OutputEdges: []inspection.Edge{from(1, 0)},
	}
	s := newScene(t, in)
	p := Columns(s, DefaultColumnConfig(s))
	if p[mustNode(t, s, 2).Handle] != 1 || p[mustNode(t, s, 1).Handle] != 2 {
		t.Errorf("Placement = %v", p)
	}
}

func TestColumnsWithoutOutput(t *testing.T) {
	s := scene.New(scene.Options{Logger: log.New(io.Discard)})
	if p := Columns(s, DefaultColumnConfig(s)); p != nil {
		t.Errorf("Placement = %v, want nil", p)
	}
}
