package scene

import (
	"testing"

	"github.com/matzehuels/patchview/pkg/inspection"
)

func TestReconcileRemovesFreedNodes(t *testing.T) {
	s := quietScene()
	if _, err := s.Materialize(chain()); err != nil {
		t.Fatal(err)
	}

	// Voice 3 has been freed; mul keeps only its first input.
	next := chain()
	next.Nodes = next.Nodes[:2]
	next.Nodes[1].InputEdges = next.Nodes[1].InputEdges[:1]

	res := s.Reconcile(next)
	if res.RemovedNodes != 1 || res.RemovedEdges != 1 {
		t.Fatalf("Reconcile = %+v, want 1 node and 1 edge removed", res)
	}
	if _, ok := s.NodeByID(3); ok {
		t.Error("node 3 should be gone")
	}
	if s.NodeCount() != 2 || s.EdgeCount() != 3 {
		t.Errorf("counts = %d nodes, %d edges, want 2 and 3", s.NodeCount(), s.EdgeCount())
	}
	for _, e := range s.Edges() {
		if _, ok := s.Node(e.From); !ok {
			t.Errorf("edge %d references a removed source", e.Handle)
		}
		if _, ok := s.Node(e.To); !ok {
			t.Errorf("edge %d references a removed destination", e.Handle)
		}
	}

	if again := s.Reconcile(next); again.Changed() {
		t.Errorf("second Reconcile removed %+v", again)
	}
}

func TestReconcileKeepsGraphOutput(t *testing.T) {
	s := quietScene()
	if _, err := s.Materialize(singleNode()); err != nil {
		t.Fatal(err)
	}
	res := s.Reconcile(inspection.Empty())
	if res.RemovedNodes != 1 || res.RemovedEdges != 1 {
		t.Errorf("Reconcile = %+v", res)
	}
	if _, ok := s.GraphOutput(); !ok {
		t.Error("graph output must survive reconciliation")
	}
	if s.NodeCount() != 0 || s.EdgeCount() != 0 {
		t.Errorf("counts = %d, %d", s.NodeCount(), s.EdgeCount())
	}
}

func TestReconcileThenMaterializeRecreates(t *testing.T) {
	s := quietScene()
	in := singleNode()
	if _, err := s.Materialize(in); err != nil {
		t.Fatal(err)
	}
	s.Reconcile(inspection.Empty())

	res, err := s.Materialize(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.NewNodes) != 1 || len(res.NewEdges) != 1 || res.CreatedOutput {
		t.Errorf("Result = %+v", res)
	}
}
