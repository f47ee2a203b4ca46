package inspection

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/patchview/pkg/errors"
)

// NodeID is the engine-assigned address of a node. It is unique within a
// snapshot and stable across snapshots, so it serves as the diffing key.
type NodeID uint64

// SourceKind discriminates the two shapes an [EdgeSource] can take.
type SourceKind int

const (
	// SourceNode refers to a node by its index in [Inspection.Nodes].
	SourceNode SourceKind = iota
	// SourceGraph refers to the inputs of the graph itself.
	SourceGraph
)

// String returns the wire name of the kind.
func (k SourceKind) String() string {
	switch k {
	case SourceNode:
		return "node"
	case SourceGraph:
		return "graph"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// EdgeSource is where an edge originates: a node index or the graph inputs.
type EdgeSource struct {
	Kind  SourceKind
	Index int // only meaningful for SourceNode
}

// NodeSource returns an edge source pointing at Nodes[index].
func NodeSource(index int) EdgeSource { return EdgeSource{Kind: SourceNode, Index: index} }

// GraphSource returns an edge source pointing at the graph's own inputs.
func GraphSource() EdgeSource { return EdgeSource{Kind: SourceGraph} }

func (s EdgeSource) String() string {
	if s.Kind == SourceNode {
		return fmt.Sprintf("node[%d]", s.Index)
	}
	return s.Kind.String()
}

type edgeSourceJSON struct {
	Kind  string `json:"kind"`
	Index *int   `json:"index,omitempty"`
}

// MarshalJSON encodes the source as {"kind":"node","index":N} or {"kind":"graph"}.
func (s EdgeSource) MarshalJSON() ([]byte, error) {
	out := edgeSourceJSON{Kind: s.Kind.String()}
	switch s.Kind {
	case SourceNode:
		idx := s.Index
		out.Index = &idx
	case SourceGraph:
	default:
		return nil, fmt.Errorf("unknown edge source kind %d", int(s.Kind))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (s *EdgeSource) UnmarshalJSON(data []byte) error {
	var in edgeSourceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "node":
		if in.Index == nil {
			return errors.New(errors.ErrCodeInvalidSnapshot, "node edge source without index")
		}
		*s = NodeSource(*in.Index)
	case "graph":
		*s = GraphSource()
	default:
		return errors.New(errors.ErrCodeInvalidSnapshot, "unknown edge source kind %q", in.Kind)
	}
	return nil
}

// Edge is a directed connection from a source's output channel to an input
// channel of the node (or graph output) that lists it.
type Edge struct {
	Source    EdgeSource `json:"source"`
	FromIndex int        `json:"from_index"` // output channel on the source
	ToIndex   int        `json:"to_index"`   // input channel on the destination
}

// Node is one processing unit as seen by the inspection.
type Node struct {
	Address        NodeID   `json:"address"`
	Name           string   `json:"name"`
	InputChannels  []string `json:"input_channels,omitempty"`
	OutputChannels []string `json:"output_channels,omitempty"`
	InputEdges     []Edge   `json:"input_edges,omitempty"`
}

// NumInputs returns the number of input channels.
func (n Node) NumInputs() int { return len(n.InputChannels) }

// NumOutputs returns the number of output channels.
func (n Node) NumOutputs() int { return len(n.OutputChannels) }

// Inspection is an immutable snapshot of a graph's topology.
// Treat values as read-only once handed out by a [Source].
type Inspection struct {
	GraphID     uint64 `json:"graph_id"`
	Nodes       []Node `json:"nodes"`
	NumInputs   int    `json:"num_inputs,omitempty"`
	NumOutputs  int    `json:"num_outputs"`
	OutputEdges []Edge `json:"output_edges,omitempty"`
}

// Empty returns the snapshot of a graph with no nodes and no outputs.
func Empty() Inspection {
	return Inspection{Nodes: []Node{}}
}

// IsEmpty reports whether the snapshot has neither nodes nor outputs.
func (in Inspection) IsEmpty() bool {
	return len(in.Nodes) == 0 && in.NumOutputs == 0
}

// NodeIndex returns the position of the node with the given address.
func (in Inspection) NodeIndex(id NodeID) (int, bool) {
	for i, n := range in.Nodes {
		if n.Address == id {
			return i, true
		}
	}
	return -1, false
}

// EdgeCount returns the number of node input edges plus graph output edges.
func (in Inspection) EdgeCount() int {
	count := len(in.OutputEdges)
	for _, n := range in.Nodes {
		count += len(n.InputEdges)
	}
	return count
}

// Validate checks the internal consistency a snapshot promises by contract:
// unique node addresses, node edge sources within range and non-negative
// channel indices.
func (in Inspection) Validate() error {
	if in.NumOutputs < 0 || in.NumInputs < 0 {
		return errors.New(errors.ErrCodeInvalidSnapshot, "negative channel count")
	}

	seen := make(map[NodeID]int, len(in.Nodes))
	for i, n := range in.Nodes {
		if prev, dup := seen[n.Address]; dup {
			return errors.New(errors.ErrCodeInvalidSnapshot,
				"duplicate node address %d at indices %d and %d", n.Address, prev, i)
		}
		seen[n.Address] = i
	}

	check := func(owner string, e Edge) error {
		if e.FromIndex < 0 || e.ToIndex < 0 {
			return errors.New(errors.ErrCodeInvalidSnapshot, "%s: negative channel index in edge from %s", owner, e.Source)
		}
		if e.Source.Kind == SourceNode && (e.Source.Index < 0 || e.Source.Index >= len(in.Nodes)) {
			return errors.New(errors.ErrCodeInvalidSnapshot,
				"%s: edge source index %d out of range (%d nodes)", owner, e.Source.Index, len(in.Nodes))
		}
		return nil
	}

	for _, n := range in.Nodes {
		for _, e := range n.InputEdges {
			if err := check(fmt.Sprintf("node %d", n.Address), e); err != nil {
				return err
			}
		}
	}
	for _, e := range in.OutputEdges {
		if err := check("graph output", e); err != nil {
			return err
		}
	}
	return nil
}
