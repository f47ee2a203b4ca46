package scene

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/inspection"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultNodeWidth is the body width of every visual node.
	DefaultNodeWidth = 50.0

	// DefaultRowHeight is the height of one channel row.
	DefaultRowHeight = 20.0

	// DefaultSpawnExtent is the half-size of the square new nodes appear in.
	DefaultSpawnExtent = 300.0

	// DefaultOutputAnchorX is where the graph output sits, right of the origin.
	DefaultOutputAnchorX = 300.0

	// InitialEdgeAcceleration is the edge acceleration of a newly created node.
	InitialEdgeAcceleration = 1.0
)

// Handle addresses an entity within one scene. The zero Handle is never issued.
type Handle uint32

// Kind distinguishes ordinary nodes from the graph-output sink.
type Kind int

const (
	// KindNode is a visual node created from a snapshot node.
	KindNode Kind = iota
	// KindGraphOutput is the singleton sink representing the graph's outputs.
	KindGraphOutput
)

// Geometry holds the fixed sizes node shapes are derived from.
type Geometry struct {
	NodeWidth float64
	RowHeight float64
}

// DefaultGeometry returns the geometry used when none is configured.
func DefaultGeometry() Geometry {
	return Geometry{NodeWidth: DefaultNodeWidth, RowHeight: DefaultRowHeight}
}

// Node is a visual node or the graph-output sink.
type Node struct {
	Handle Handle
	Kind   Kind
	ID     inspection.NodeID // zero for the graph output
	Name   string
	Label  string
	// Inputs and Outputs hold the per-channel labels. The graph output's
	// channels are inputs.
	Inputs  []string
	Outputs []string

	Pos Vec2 // top-left corner of the body
	Vel Vec2
	// EdgeAccel scales spring forces acting on the node. It decays every
	// simulation step toward a floor.
	EdgeAccel float64
}

// NumInputs returns the number of input channels.
func (n *Node) NumInputs() int { return len(n.Inputs) }

// NumOutputs returns the number of output channels.
func (n *Node) NumOutputs() int { return len(n.Outputs) }

// IsGraphOutput reports whether n is the graph-output sink.
func (n *Node) IsGraphOutput() bool { return n.Kind == KindGraphOutput }

// Rows returns max(inputs, outputs), at least 1.
func (n *Node) Rows() int {
	return max(len(n.Inputs), len(n.Outputs), 1)
}

// Height returns the body height.
func (n *Node) Height(g Geometry) float64 {
	return float64(n.Rows()) * g.RowHeight
}

// Center returns the middle of the body.
func (n *Node) Center(g Geometry) Vec2 {
	return Vec2{n.Pos.X + g.NodeWidth/2, n.Pos.Y - n.Height(g)/2}
}

// InputAnchor returns the point on the left edge where input channel i attaches.
func (n *Node) InputAnchor(i int, g Geometry) Vec2 {
	return Vec2{n.Pos.X, n.Pos.Y - (float64(i)+0.5)*g.RowHeight}
}

// OutputAnchor returns the point on the right edge where output channel i attaches.
func (n *Node) OutputAnchor(i int, g Geometry) Vec2 {
	return Vec2{n.Pos.X + g.NodeWidth, n.Pos.Y - (float64(i)+0.5)*g.RowHeight}
}

func (n *Node) clone() *Node {
	c := *n
	c.Inputs = slices.Clone(n.Inputs)
	c.Outputs = slices.Clone(n.Outputs)
	return &c
}

// Edge is a resolved link from an output channel of one entity to an input
// channel of another.
type Edge struct {
	Handle    Handle
	From      Handle
	To        Handle
	FromIndex int
	ToIndex   int
}

type edgeKey struct {
	from, to         Handle
	fromIdx, toIndex int
}

func (e *Edge) key() edgeKey {
	return edgeKey{from: e.From, to: e.To, fromIdx: e.FromIndex, toIndex: e.ToIndex}
}

// Options configures a new scene.
type Options struct {
	Geometry Geometry
	// SpawnExtent is the half-size of the square, centred on the origin, in
	// which new nodes are placed at random.
	SpawnExtent float64
	// OutputAnchor is where the graph output is created.
	OutputAnchor Vec2
	// Rand drives spawn positions. A fixed seed is used when nil.
	Rand   *rand.Rand
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Geometry.NodeWidth <= 0 {
		o.Geometry.NodeWidth = DefaultNodeWidth
	}
	if o.Geometry.RowHeight <= 0 {
		o.Geometry.RowHeight = DefaultRowHeight
	}
	if o.SpawnExtent <= 0 {
		o.SpawnExtent = DefaultSpawnExtent
	}
	if o.OutputAnchor == (Vec2{}) {
		o.OutputAnchor = Vec2{X: DefaultOutputAnchorX}
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(42, 1024))
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Scene is the arena of visual entities.
// It is not safe for concurrent use; the frame loop owns it.
type Scene struct {
	opts Options
	next Handle

	nodes     map[Handle]*Node
	nodeOrder []Handle
	byID      map[inspection.NodeID]Handle
	output    Handle

	edges     map[Handle]*Edge
	edgeOrder []Handle
	edgeKeys  map[edgeKey]Handle
}

// New creates an empty scene.
func New(opts Options) *Scene {
	opts.setDefaults()
	return &Scene{
		opts:     opts,
		nodes:    make(map[Handle]*Node),
		byID:     make(map[inspection.NodeID]Handle),
		edges:    make(map[Handle]*Edge),
		edgeKeys: make(map[edgeKey]Handle),
	}
}

// Geometry returns the geometry nodes are sized with.
func (s *Scene) Geometry() Geometry { return s.opts.Geometry }

// OutputAnchor returns the configured position of the graph output.
func (s *Scene) OutputAnchor() Vec2 { return s.opts.OutputAnchor }

// Logger returns the scene's logger.
func (s *Scene) Logger() *log.Logger { return s.opts.Logger }

// NodeCount returns the number of visual nodes, excluding the graph output.
func (s *Scene) NodeCount() int {
	if s.output != 0 {
		return len(s.nodes) - 1
	}
	return len(s.nodes)
}

// EdgeCount returns the number of visual edges.
func (s *Scene) EdgeCount() int { return len(s.edges) }

// Node returns the entity with handle h.
func (s *Scene) Node(h Handle) (*Node, bool) {
	n, ok := s.nodes[h]
	return n, ok
}

// NodeByID returns the visual node created for engine node id.
func (s *Scene) NodeByID(id inspection.NodeID) (*Node, bool) {
	h, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.nodes[h], true
}

// GraphOutput returns the graph-output sink, if it has been created.
func (s *Scene) GraphOutput() (*Node, bool) {
	if s.output == 0 {
		return nil, false
	}
	return s.nodes[s.output], true
}

// Nodes returns all entities, graph output included, in creation order.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodeOrder))
	for _, h := range s.nodeOrder {
		out = append(out, s.nodes[h])
	}
	return out
}

// Edges returns all edges in creation order.
func (s *Scene) Edges() []*Edge {
	out := make([]*Edge, 0, len(s.edgeOrder))
	for _, h := range s.edgeOrder {
		out = append(out, s.edges[h])
	}
	return out
}

// HasEdge reports whether an edge with the same endpoints and channels exists.
func (s *Scene) HasEdge(from, to Handle, fromIndex, toIndex int) bool {
	_, ok := s.edgeKeys[edgeKey{from: from, to: to, fromIdx: fromIndex, toIndex: toIndex}]
	return ok
}

// Clone returns a deep copy of the arena. The copy shares the random source
// and logger with s.
func (s *Scene) Clone() *Scene {
	c := &Scene{
		opts:      s.opts,
		next:      s.next,
		nodes:     make(map[Handle]*Node, len(s.nodes)),
		nodeOrder: slices.Clone(s.nodeOrder),
		byID:      make(map[inspection.NodeID]Handle, len(s.byID)),
		output:    s.output,
		edges:     make(map[Handle]*Edge, len(s.edges)),
		edgeOrder: slices.Clone(s.edgeOrder),
		edgeKeys:  make(map[edgeKey]Handle, len(s.edgeKeys)),
	}
	for h, n := range s.nodes {
		c.nodes[h] = n.clone()
	}
	for id, h := range s.byID {
		c.byID[id] = h
	}
	for h, e := range s.edges {
		ec := *e
		c.edges[h] = &ec
	}
	for k, h := range s.edgeKeys {
		c.edgeKeys[k] = h
	}
	return c
}

func (s *Scene) issue() Handle {
	s.next++
	return s.next
}

func (s *Scene) spawnPosition() Vec2 {
	ext := s.opts.SpawnExtent
	return Vec2{
		X: s.opts.Rand.Float64()*2*ext - ext,
		Y: s.opts.Rand.Float64()*2*ext - ext,
	}
}

func (s *Scene) addNode(n inspection.Node) *Node {
	node := &Node{
		Handle:    s.issue(),
		Kind:      KindNode,
		ID:        n.Address,
		Name:      n.Name,
		Label:     DisplayLabel(n.Name),
		Inputs:    slices.Clone(n.InputChannels),
		Outputs:   slices.Clone(n.OutputChannels),
		Pos:       s.spawnPosition(),
		EdgeAccel: InitialEdgeAcceleration,
	}
	s.nodes[node.Handle] = node
	s.nodeOrder = append(s.nodeOrder, node.Handle)
	s.byID[node.ID] = node.Handle
	return node
}

// addGraphOutput creates the sink. Its channels receive edges, so their
// labels are inputs and it has no outputs.
func (s *Scene) addGraphOutput(numOutputs int) *Node {
	inputs := make([]string, numOutputs)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("out %d", i)
	}
	node := &Node{
		Handle:    s.issue(),
		Kind:      KindGraphOutput,
		Name:      "GraphOutput",
		Label:     "Output",
		Inputs:    inputs,
		Pos:       s.opts.OutputAnchor,
		EdgeAccel: InitialEdgeAcceleration,
	}
	s.nodes[node.Handle] = node
	s.nodeOrder = append(s.nodeOrder, node.Handle)
	s.output = node.Handle
	return node
}

func (s *Scene) addEdge(from, to Handle, fromIndex, toIndex int) *Edge {
	e := &Edge{Handle: s.issue(), From: from, To: to, FromIndex: fromIndex, ToIndex: toIndex}
	s.edges[e.Handle] = e
	s.edgeOrder = append(s.edgeOrder, e.Handle)
	s.edgeKeys[e.key()] = e.Handle
	return e
}

func (s *Scene) removeEdge(h Handle) {
	e, ok := s.edges[h]
	if !ok {
		return
	}
	delete(s.edgeKeys, e.key())
	delete(s.edges, h)
	s.edgeOrder = slices.DeleteFunc(s.edgeOrder, func(x Handle) bool { return x == h })
}

func (s *Scene) removeNode(h Handle) {
	n, ok := s.nodes[h]
	if !ok || n.IsGraphOutput() {
		return
	}
	delete(s.byID, n.ID)
	delete(s.nodes, h)
	s.nodeOrder = slices.DeleteFunc(s.nodeOrder, func(x Handle) bool { return x == h })
}
