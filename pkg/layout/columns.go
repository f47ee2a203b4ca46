package layout

import (
	"github.com/matzehuels/patchview/pkg/scene"
)

const (
	// DefaultColumnWidth is the horizontal distance between adjacent columns.
	DefaultColumnWidth = 150.0

	// DefaultRowGap is the vertical space between members of a column.
	DefaultRowGap = 10.0
)

// ColumnConfig controls [Columns].
type ColumnConfig struct {
	// AnchorX and AnchorY position the graph output, which forms column 0.
	AnchorX float64
	AnchorY float64
	// ColumnWidth is subtracted from x for every column further from the output.
	ColumnWidth float64
	// RowGap separates consecutive members of a column.
	RowGap float64
}

// DefaultColumnConfig returns the column settings for a scene, anchored at
// the scene's output anchor.
func DefaultColumnConfig(s *scene.Scene) ColumnConfig {
	anchor := s.OutputAnchor()
	return ColumnConfig{
		AnchorX:     anchor.X,
		AnchorY:     anchor.Y,
		ColumnWidth: DefaultColumnWidth,
		RowGap:      DefaultRowGap,
	}
}

// Placement maps every placed entity to its column index. The graph output
// is column 0.
type Placement map[scene.Handle]int

// Depth returns the number of columns, the output column included.
func (p Placement) Depth() int {
	depth := 0
	for _, c := range p {
		depth = max(depth, c+1)
	}
	return depth
}

// Columns lays the scene out in columns by breadth-first search from the
// graph output and returns the column of every entity it placed.
//
// A column is the deduplicated set of sources, not yet placed, of edges whose
// destination lies in the previous column. Column membership and therefore x
// depend only on the edge set. The order of members within a column, and so
// their y, follows edge creation order.
//
// A column with more than one member whose vertical span falls short of the
// previous column's span gets its row gap widened until the spans match.
//
// Columns returns nil if the scene has no graph output.
func Columns(s *scene.Scene, cfg ColumnConfig) Placement {
	out, ok := s.GraphOutput()
	if !ok {
		return nil
	}
	g := s.Geometry()

	out.Pos = scene.Vec2{X: cfg.AnchorX, Y: cfg.AnchorY}
	out.Vel = scene.Vec2{}

	placed := Placement{out.Handle: 0}
	current := []*scene.Node{out}
	prevSpan := out.Height(g)
	x := cfg.AnchorX

	edges := s.Edges()
	for col := 1; len(current) > 0; col++ {
		inCurrent := make(map[scene.Handle]bool, len(current))
		for _, n := range current {
			inCurrent[n.Handle] = true
		}

		var next []*scene.Node
		for _, e := range edges {
			if !inCurrent[e.To] {
				continue
			}
			if _, done := placed[e.From]; done {
				continue
			}
			src, ok := s.Node(e.From)
			if !ok {
				continue
			}
			placed[e.From] = col
			next = append(next, src)
		}
		if len(next) == 0 {
			break
		}

		x -= cfg.ColumnWidth
		gap := cfg.RowGap
		span := stack(next, x, cfg.AnchorY, gap, g)
		if span < prevSpan && len(next) > 1 {
			gap += (prevSpan - span) / float64(len(next)-1)
			span = stack(next, x, cfg.AnchorY, gap, g)
		}

		prevSpan = span
		current = next
	}
	return placed
}

// stack places nodes top-down from top at the given x and returns the
// vertical span they cover. Gaps sit only between members, so the span has no
// trailing gap and a widened column ends flush with the previous one.
func stack(nodes []*scene.Node, x, top, gap float64, g scene.Geometry) float64 {
	y := top
	for i, n := range nodes {
		if i > 0 {
			y -= gap
		}
		n.Pos = scene.Vec2{X: x, Y: y}
		n.Vel = scene.Vec2{}
		y -= n.Height(g)
	}
	return top - y
}
