// Package drawlist projects a scene into window coordinates.
//
// [Build] turns the scene, seen through a camera, into plain rectangles,
// labels and line segments in pixels with y growing downward. Backends only
// have to draw the list; entities entirely outside the window are culled.
package drawlist

import (
	"github.com/matzehuels/patchview/pkg/camera"
	"github.com/matzehuels/patchview/pkg/scene"
)

// Rect is an axis-aligned rectangle in window pixels; (X, Y) is its top-left.
type Rect struct {
	X, Y, W, H float64
}

// Intersects reports whether r overlaps the window of the given size.
func (r Rect) Intersects(size camera.Size) bool {
	return r.X < size.W && r.Y < size.H && r.X+r.W > 0 && r.Y+r.H > 0
}

// Port is a channel label anchored on a body edge.
type Port struct {
	Label string
	X, Y  float64
}

// Body is a node or the graph output.
type Body struct {
	Rect
	Label   string
	Output  bool
	Inputs  []Port
	Outputs []Port
}

// Line is an edge segment from an output anchor to an input anchor.
type Line struct {
	X0, Y0, X1, Y1 float64
}

func (l Line) bounds() Rect {
	return Rect{
		X: min(l.X0, l.X1),
		Y: min(l.Y0, l.Y1),
		W: max(l.X0, l.X1) - min(l.X0, l.X1) + 1,
		H: max(l.Y0, l.Y1) - min(l.Y0, l.Y1) + 1,
	}
}

// List is everything to draw for one frame.
type List struct {
	Bodies []Body
	Lines  []Line
}

// Build projects s through cam into a window of the given size.
func Build(s *scene.Scene, cam *camera.Camera, size camera.Size) List {
	g := s.Geometry()
	var list List

	point := func(p scene.Vec2) (float64, float64) {
		return cam.WorldToScreen(p, size)
	}

	for _, e := range s.Edges() {
		src, ok := s.Node(e.From)
		if !ok {
			continue
		}
		dst, ok := s.Node(e.To)
		if !ok {
			continue
		}
		x0, y0 := point(src.OutputAnchor(e.FromIndex, g))
		x1, y1 := point(dst.InputAnchor(e.ToIndex, g))
		l := Line{X0: x0, Y0: y0, X1: x1, Y1: y1}
		if l.bounds().Intersects(size) {
			list.Lines = append(list.Lines, l)
		}
	}

	for _, n := range s.Nodes() {
		x, y := point(n.Pos)
		b := Body{
			Rect:   Rect{X: x, Y: y, W: g.NodeWidth, H: n.Height(g)},
			Label:  n.Label,
			Output: n.IsGraphOutput(),
		}
		if !b.Intersects(size) {
			continue
		}
		for i, label := range n.Inputs {
			px, py := point(n.InputAnchor(i, g))
			b.Inputs = append(b.Inputs, Port{Label: label, X: px, Y: py})
		}
		for i, label := range n.Outputs {
			px, py := point(n.OutputAnchor(i, g))
			b.Outputs = append(b.Outputs, Port{Label: label, X: px, Y: py})
		}
		list.Bodies = append(list.Bodies, b)
	}
	return list
}
