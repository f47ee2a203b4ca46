package scene

import (
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection"
)

// Target is the destination of a planned edge: a snapshot node or the graph output.
type Target struct {
	Output bool
	ID     inspection.NodeID
}

// PlannedEdge is an edge-creation request with a resolved logical source.
type PlannedEdge struct {
	Source    inspection.NodeID
	Dest      Target
	FromIndex int
	ToIndex   int
}

// Plan lists the entities a snapshot would add to a scene.
type Plan struct {
	CreateOutput bool
	NumOutputs   int
	Nodes        []inspection.Node
	Edges        []PlannedEdge
}

// Empty reports whether the plan creates nothing.
func (p Plan) Empty() bool {
	return !p.CreateOutput && len(p.Nodes) == 0 && len(p.Edges) == 0
}

// Result summarises what Apply created.
type Result struct {
	CreatedOutput bool
	NewNodes      []Handle
	NewEdges      []Handle
	// Dropped counts edges whose source could not be found.
	Dropped int
}

// Changed reports whether the pass created anything.
func (r Result) Changed() bool {
	return r.CreatedOutput || len(r.NewNodes) > 0 || len(r.NewEdges) > 0
}

// Materialize creates the visual entities in is missing from the scene.
// It is Plan followed by Apply; on error the scene is left untouched.
func (s *Scene) Materialize(in inspection.Inspection) (Result, error) {
	p, err := s.Plan(in)
	if err != nil {
		return Result{}, err
	}
	return s.Apply(p), nil
}

// Plan computes the creations Materialize would perform, without modifying
// the scene.
//
// The graph output is planned when the scene has none yet. Snapshot nodes are
// planned when no visual node carries their address. Every node input edge and
// every graph output edge is planned unless the scene already has it. That
// is a superset of queueing edges only for new nodes and a new graph output:
// an edge added between two existing nodes is picked up too. A second Plan
// over the same snapshot is still empty.
//
// Plan fails fast with ErrCodeInvalidSnapshot on an edge whose node index is
// out of range and with ErrCodeUnimplemented on an edge from the graph inputs.
func (s *Scene) Plan(in inspection.Inspection) (Plan, error) {
	var p Plan
	if s.output == 0 {
		p.CreateOutput = true
		p.NumOutputs = in.NumOutputs
	}

	for _, n := range in.Nodes {
		if _, exists := s.byID[n.Address]; !exists {
			p.Nodes = append(p.Nodes, n)
		}
	}

	queue := func(e inspection.Edge, dest Target) error {
		src, err := resolveSource(in, e.Source)
		if err != nil {
			return err
		}
		if s.edgeExists(src, dest, e.FromIndex, e.ToIndex) {
			return nil
		}
		p.Edges = append(p.Edges, PlannedEdge{Source: src, Dest: dest, FromIndex: e.FromIndex, ToIndex: e.ToIndex})
		return nil
	}

	for _, n := range in.Nodes {
		for _, e := range n.InputEdges {
			if err := queue(e, Target{ID: n.Address}); err != nil {
				return Plan{}, err
			}
		}
	}
	for _, e := range in.OutputEdges {
		if err := queue(e, Target{Output: true}); err != nil {
			return Plan{}, err
		}
	}
	return p, nil
}

func resolveSource(in inspection.Inspection, src inspection.EdgeSource) (inspection.NodeID, error) {
	switch src.Kind {
	case inspection.SourceNode:
		if src.Index < 0 || src.Index >= len(in.Nodes) {
			return 0, errors.New(errors.ErrCodeInvalidSnapshot,
				"edge source index %d out of range (%d nodes)", src.Index, len(in.Nodes))
		}
		return in.Nodes[src.Index].Address, nil
	case inspection.SourceGraph:
		return 0, errors.New(errors.ErrCodeUnimplemented, "edges from graph inputs are not supported")
	default:
		return 0, errors.New(errors.ErrCodeUnimplemented, "unknown edge source kind %v", src.Kind)
	}
}

func (s *Scene) edgeExists(src inspection.NodeID, dest Target, fromIndex, toIndex int) bool {
	from, ok := s.byID[src]
	if !ok {
		return false
	}
	to, ok := s.targetHandle(dest)
	if !ok {
		return false
	}
	return s.HasEdge(from, to, fromIndex, toIndex)
}

func (s *Scene) targetHandle(t Target) (Handle, bool) {
	if t.Output {
		return s.output, s.output != 0
	}
	h, ok := s.byID[t.ID]
	return h, ok
}

// Apply performs a plan.
//
// Edge sources are resolved against the nodes that existed before the call
// first and against the nodes created by the call second. Edges that still
// cannot be resolved are dropped with a warning.
func (s *Scene) Apply(p Plan) Result {
	var res Result
	logger := s.opts.Logger

	if p.CreateOutput && s.output == 0 {
		s.addGraphOutput(p.NumOutputs)
		res.CreatedOutput = true
	}

	existing := make(map[inspection.NodeID]Handle, len(s.byID))
	for id, h := range s.byID {
		existing[id] = h
	}

	created := make(map[inspection.NodeID]Handle, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, dup := s.byID[n.Address]; dup {
			continue
		}
		node := s.addNode(n)
		created[n.Address] = node.Handle
		res.NewNodes = append(res.NewNodes, node.Handle)
	}

	lookup := func(id inspection.NodeID) (Handle, bool) {
		if h, ok := existing[id]; ok {
			return h, true
		}
		h, ok := created[id]
		return h, ok
	}

	for _, pe := range p.Edges {
		from, ok := lookup(pe.Source)
		if !ok {
			logger.Warn("dropping edge with unresolvable source", "source", pe.Source, "to_index", pe.ToIndex)
			res.Dropped++
			continue
		}

		var to Handle
		if pe.Dest.Output {
			to, ok = s.output, s.output != 0
		} else {
			to, ok = lookup(pe.Dest.ID)
		}
		if !ok {
			logger.Warn("dropping edge with unresolvable destination", "dest", pe.Dest.ID, "source", pe.Source)
			res.Dropped++
			continue
		}

		if s.HasEdge(from, to, pe.FromIndex, pe.ToIndex) {
			continue
		}
		e := s.addEdge(from, to, pe.FromIndex, pe.ToIndex)
		res.NewEdges = append(res.NewEdges, e.Handle)
	}

	if res.Changed() {
		logger.Debug("materialized snapshot",
			"nodes", len(res.NewNodes), "edges", len(res.NewEdges), "dropped", res.Dropped)
	}
	return res
}
