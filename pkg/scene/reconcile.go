package scene

import "github.com/matzehuels/patchview/pkg/inspection"

// ReconcileResult counts what Reconcile removed.
type ReconcileResult struct {
	RemovedNodes int
	RemovedEdges int
}

// Changed reports whether anything was removed.
func (r ReconcileResult) Changed() bool {
	return r.RemovedNodes > 0 || r.RemovedEdges > 0
}

// Reconcile removes visual nodes whose address is absent from in, and edges
// that either touch a removed node or are no longer listed by in. The graph
// output is never removed.
//
// Edges with sources Plan would reject are ignored here; Reconcile never
// fails.
func (s *Scene) Reconcile(in inspection.Inspection) ReconcileResult {
	var res ReconcileResult

	live := make(map[inspection.NodeID]bool, len(in.Nodes))
	for _, n := range in.Nodes {
		live[n.Address] = true
	}

	var stale []Handle
	for _, h := range s.nodeOrder {
		n := s.nodes[h]
		if !n.IsGraphOutput() && !live[n.ID] {
			stale = append(stale, h)
		}
	}
	removed := make(map[Handle]bool, len(stale))
	for _, h := range stale {
		removed[h] = true
	}

	wanted := s.snapshotEdgeKeys(in)
	var dead []Handle
	for _, h := range s.edgeOrder {
		e := s.edges[h]
		if removed[e.From] || removed[e.To] || !wanted[e.key()] {
			dead = append(dead, h)
		}
	}

	for _, h := range dead {
		s.removeEdge(h)
		res.RemovedEdges++
	}
	for _, h := range stale {
		s.removeNode(h)
		res.RemovedNodes++
	}

	if res.Changed() {
		s.opts.Logger.Debug("reconciled snapshot", "nodes", res.RemovedNodes, "edges", res.RemovedEdges)
	}
	return res
}

// snapshotEdgeKeys maps every resolvable edge of in onto the scene's handles.
func (s *Scene) snapshotEdgeKeys(in inspection.Inspection) map[edgeKey]bool {
	keys := make(map[edgeKey]bool, in.EdgeCount())
	add := func(e inspection.Edge, dest Target) {
		src, err := resolveSource(in, e.Source)
		if err != nil {
			return
		}
		from, ok := s.byID[src]
		if !ok {
			return
		}
		to, ok := s.targetHandle(dest)
		if !ok {
			return
		}
		keys[edgeKey{from: from, to: to, fromIdx: e.FromIndex, toIndex: e.ToIndex}] = true
	}
	for _, n := range in.Nodes {
		for _, e := range n.InputEdges {
			add(e, Target{ID: n.Address})
		}
	}
	for _, e := range in.OutputEdges {
		add(e, Target{Output: true})
	}
	return keys
}
