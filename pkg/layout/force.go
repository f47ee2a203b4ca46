package layout

import (
	"github.com/matzehuels/patchview/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultDecay          = 0.5
	DefaultSpringFraction = 0.15
	DefaultSettleFraction = 0.05
	DefaultCatchBand      = 60.0
	DefaultMaxForce       = 50.0
	DefaultTargetGap      = 40.0
	DefaultAccelDecay     = 0.95
	DefaultAccelFloor     = 0.1
	DefaultRepulseDistSq  = 100.0
	DefaultRepulseStep    = 4.0
)

// ForceConfig holds the simulator parameters.
type ForceConfig struct {
	// Decay multiplies every velocity at the start of a step.
	Decay float64

	// SpringFraction is the share of an edge's offset applied per step while
	// the squared offset exceeds CatchBand. It is scaled by the destination's
	// edge acceleration and the result is clamped to MaxForce.
	SpringFraction float64
	// SettleFraction is the share subtracted once the offset is inside
	// CatchBand, pulling an overshoot back.
	SettleFraction float64
	CatchBand      float64
	MaxForce       float64
	// TargetGap is the desired horizontal distance between a source's output
	// anchor and its destination's input anchor.
	TargetGap float64

	// AccelDecay multiplies every node's edge acceleration per step, which
	// never drops below AccelFloor.
	AccelDecay float64
	AccelFloor float64

	// Nodes whose centres are closer than sqrt(RepulseDistSq) are both pushed
	// RepulseStep apart.
	RepulseDistSq float64
	RepulseStep   float64

	// LockX integrates only the vertical component, leaving x to the column
	// pass.
	LockX bool

	// SplitPull halves the spring between two free endpoints instead of
	// applying the full force to each.
	SplitPull bool
	// SettleToward adds the settle fraction inside CatchBand, so the spring
	// keeps closing on the target instead of hovering at the band edge.
	SettleToward bool
}

// DefaultForceConfig returns the default simulator parameters.
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		Decay:          DefaultDecay,
		SpringFraction: DefaultSpringFraction,
		SettleFraction: DefaultSettleFraction,
		CatchBand:      DefaultCatchBand,
		MaxForce:       DefaultMaxForce,
		TargetGap:      DefaultTargetGap,
		AccelDecay:     DefaultAccelDecay,
		AccelFloor:     DefaultAccelFloor,
		RepulseDistSq:  DefaultRepulseDistSq,
		RepulseStep:    DefaultRepulseStep,
	}
}

// Simulator advances the force-directed layout one step at a time.
// The graph output is pinned: forces never move it.
type Simulator struct {
	Config ForceConfig
}

// NewSimulator returns a simulator using cfg.
func NewSimulator(cfg ForceConfig) *Simulator {
	return &Simulator{Config: cfg}
}

// Step runs one simulation step over every entity of s.
func (sim *Simulator) Step(s *scene.Scene) {
	cfg := sim.Config
	nodes := s.Nodes()

	for _, n := range nodes {
		n.Vel = n.Vel.Scale(cfg.Decay)
	}

	g := s.Geometry()
	for _, e := range s.Edges() {
		src, ok := s.Node(e.From)
		if !ok {
			continue
		}
		dst, ok := s.Node(e.To)
		if !ok {
			continue
		}
		sim.spring(src, dst, e, g)
	}

	for _, n := range nodes {
		n.EdgeAccel = max(n.EdgeAccel*cfg.AccelDecay, cfg.AccelFloor)
	}

	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			sim.repulse(nodes[i], nodes[j], g)
		}
	}

	for _, n := range nodes {
		if n.IsGraphOutput() {
			n.Vel = scene.Vec2{}
			continue
		}
		if cfg.LockX {
			n.Pos.Y += n.Vel.Y
			continue
		}
		n.Pos = n.Pos.Add(n.Vel)
	}
}

// Offset returns the displacement that would move dst's input anchor to
// TargetGap right of src's output anchor.
func (sim *Simulator) Offset(src, dst *scene.Node, e *scene.Edge, g scene.Geometry) scene.Vec2 {
	target := src.OutputAnchor(e.FromIndex, g).Add(scene.Vec2{X: sim.Config.TargetGap})
	return target.Sub(dst.InputAnchor(e.ToIndex, g))
}

// spring pulls dst's input anchor toward src's output anchor. The force goes
// to dst in full and the opposite force to src; a pinned endpoint absorbs
// nothing, so only the other one moves.
func (sim *Simulator) spring(src, dst *scene.Node, e *scene.Edge, g scene.Geometry) {
	cfg := sim.Config
	offset := sim.Offset(src, dst, e, g)

	var force scene.Vec2
	switch {
	case offset.LenSq() > cfg.CatchBand:
		force = offset.Scale(cfg.SpringFraction * dst.EdgeAccel).ClampLen(cfg.MaxForce)
	case cfg.SettleToward:
		force = offset.Scale(cfg.SettleFraction)
	default:
		force = offset.Scale(-cfg.SettleFraction)
	}

	switch {
	case src.IsGraphOutput() && dst.IsGraphOutput():
	case dst.IsGraphOutput():
		src.Vel = src.Vel.Sub(force)
	case src.IsGraphOutput():
		dst.Vel = dst.Vel.Add(force)
	case cfg.SplitPull:
		half := force.Scale(0.5)
		dst.Vel = dst.Vel.Add(half)
		src.Vel = src.Vel.Sub(half)
	default:
		dst.Vel = dst.Vel.Add(force)
		src.Vel = src.Vel.Sub(force)
	}
}

// repulseAxis separates nodes whose centres coincide.
var repulseAxis = scene.Vec2{X: 1}

func (sim *Simulator) repulse(a, b *scene.Node, g scene.Geometry) {
	cfg := sim.Config
	sep := a.Center(g).Sub(b.Center(g))
	if sep.LenSq() >= cfg.RepulseDistSq {
		return
	}
	dir := sep.Normalize()
	if dir == (scene.Vec2{}) {
		dir = repulseAxis
	}
	push := dir.Scale(cfg.RepulseStep)
	a.Vel = a.Vel.Add(push)
	b.Vel = b.Vel.Sub(push)
}
