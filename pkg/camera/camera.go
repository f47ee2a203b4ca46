// Package camera pans the view when the cursor nears a window edge.
package camera

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/scene"
)

const (
	// DefaultMargin is the width, in pixels, of the band along each window
	// edge that triggers panning.
	DefaultMargin = 50.0

	// DefaultSpeed is the distance panned per frame, in world units.
	DefaultSpeed = 5.0
)

// Cursor is a cursor position in window pixels, origin at the top-left.
type Cursor struct {
	X, Y float64
}

// Size is a window size in pixels.
type Size struct {
	W, H float64
}

// Camera is the world position shown at the centre of the window.
type Camera struct {
	Pos    scene.Vec2
	Margin float64
	Speed  float64
	Logger *log.Logger

	// missing remembers whether the last frame lacked a cursor, so that the
	// condition is logged once per change.
	missing bool
}

// New returns a camera centred on the origin.
func New(logger *log.Logger) *Camera {
	if logger == nil {
		logger = log.Default()
	}
	return &Camera{Margin: DefaultMargin, Speed: DefaultSpeed, Logger: logger}
}

// Pan moves the camera toward every window edge the cursor is within Margin
// of. Window y grows downward and world y upward, so the top edge pans up.
//
// ok is false when there is no window or the cursor is outside it. Panning
// is then skipped; the condition is logged at info level once per change.
func (c *Camera) Pan(cursor Cursor, window Size, ok bool) scene.Vec2 {
	if !ok || window.W <= 0 || window.H <= 0 || !inside(cursor, window) {
		if !c.missing {
			c.Logger.Info("no cursor in window, panning skipped")
			c.missing = true
		}
		return c.Pos
	}
	if c.missing {
		c.Logger.Info("cursor back in window, panning resumed")
		c.missing = false
	}

	var d scene.Vec2
	if cursor.X < c.Margin {
		d.X -= c.Speed
	}
	if cursor.X > window.W-c.Margin {
		d.X += c.Speed
	}
	if cursor.Y < c.Margin {
		d.Y += c.Speed
	}
	if cursor.Y > window.H-c.Margin {
		d.Y -= c.Speed
	}
	c.Pos = c.Pos.Add(d)
	return c.Pos
}

func inside(cursor Cursor, window Size) bool {
	return cursor.X >= 0 && cursor.Y >= 0 && cursor.X < window.W && cursor.Y < window.H
}

// WorldToScreen maps a world point to window pixels.
func (c *Camera) WorldToScreen(p scene.Vec2, window Size) (x, y float64) {
	return p.X - c.Pos.X + window.W/2, c.Pos.Y - p.Y + window.H/2
}

// ScreenToWorld maps window pixels to a world point.
func (c *Camera) ScreenToWorld(x, y float64, window Size) scene.Vec2 {
	return scene.Vec2{X: x - window.W/2 + c.Pos.X, Y: c.Pos.Y - (y - window.H/2)}
}
