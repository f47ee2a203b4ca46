// Package window shows a live scene in an ebiten window.
//
// [Game] implements ebiten.Game: Update runs one visualiser frame, Draw
// renders the frame's draw list. The window is resizable and the camera pans
// when the cursor nears an edge.
package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/patchview/pkg/camera"
	"github.com/matzehuels/patchview/pkg/render/drawlist"
	"github.com/matzehuels/patchview/pkg/visualiser"
)

var (
	colorBackground = color.RGBA{0x1e, 0x1e, 0x24, 0xff}
	colorBody       = color.RGBA{0x3a, 0x3f, 0x4b, 0xff}
	colorOutput     = color.RGBA{0x4b, 0x3a, 0x5a, 0xff}
	colorOutline    = color.RGBA{0xc8, 0xc8, 0xd2, 0xff}
	colorEdge       = color.RGBA{0x7d, 0xcf, 0xb6, 0xff}
	colorLabel      = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	colorPort       = color.RGBA{0x9a, 0x9a, 0xa8, 0xff}
	colorStatus     = color.RGBA{0xa0, 0xa0, 0xa0, 0xff}
)

const (
	edgeWidth    = 1.5
	outlineWidth = 1
	portGap      = 4
)

// Options configures the window.
type Options struct {
	Title  string
	Width  int
	Height int
	Logger *log.Logger
}

// Game drives a visualiser from the ebiten loop.
type Game struct {
	ctx    context.Context
	vis    *visualiser.Visualiser
	opts   Options
	width  int
	height int
	last   visualiser.Stats
}

// New creates a game for vis. Frames stop when ctx is done.
func New(ctx context.Context, vis *visualiser.Visualiser, opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	g := &Game{ctx: ctx, vis: vis, opts: opts, width: opts.Width, height: opts.Height}
	vis.SetPointer(g.pointer)
	return g
}

// Run opens the window and blocks until it is closed, ctx is done or a frame
// fails.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)
	return ebiten.RunGame(g)
}

func (g *Game) pointer() (camera.Cursor, camera.Size, bool) {
	size := camera.Size{W: float64(g.width), H: float64(g.height)}
	if !ebiten.IsFocused() {
		return camera.Cursor{}, size, false
	}
	x, y := ebiten.CursorPosition()
	return camera.Cursor{X: float64(x), Y: float64(y)}, size, true
}

// Update runs one visualiser frame. F11 toggles fullscreen.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	st, err := g.vis.Frame(g.ctx)
	if err != nil {
		return fmt.Errorf("frame %d: %w", st.Frame, err)
	}
	g.last = st
	return nil
}

// Draw renders the scene.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	size := camera.Size{W: float64(g.width), H: float64(g.height)}
	list := drawlist.Build(g.vis.Scene(), g.vis.Camera(), size)

	for _, l := range list.Lines {
		vector.StrokeLine(screen, float32(l.X0), float32(l.Y0), float32(l.X1), float32(l.Y1), edgeWidth, colorEdge, true)
	}
	for _, b := range list.Bodies {
		drawBody(screen, b)
	}

	s := g.vis.Scene()
	status := fmt.Sprintf("nodes %d  edges %d  columns %d  poll %s",
		s.NodeCount(), s.EdgeCount(), g.last.Depth, g.vis.Poller().State())
	text.Draw(screen, status, basicfont.Face7x13, 6, g.height-8, colorStatus)
}

func drawBody(screen *ebiten.Image, b drawlist.Body) {
	face := basicfont.Face7x13
	fill := colorBody
	if b.Output {
		fill = colorOutput
	}
	x, y, w, h := float32(b.X), float32(b.Y), float32(b.W), float32(b.H)
	ebitenutil.DrawRect(screen, b.X, b.Y, b.W, b.H, fill)
	vector.StrokeRect(screen, x, y, w, h, outlineWidth, colorOutline, false)

	bounds := text.BoundString(face, b.Label)
	lx := int(b.X+b.W/2) - bounds.Dx()/2
	ly := int(b.Y+b.H/2) + bounds.Dy()/2
	text.Draw(screen, b.Label, face, lx, ly, colorLabel)

	// Centre each label vertically on its anchor.
	half := face.Metrics().Ascent.Ceil() / 2
	for _, p := range b.Inputs {
		lw := text.BoundString(face, p.Label).Dx()
		text.Draw(screen, p.Label, face, int(p.X)-lw-portGap, int(p.Y)+half, colorPort)
	}
	for _, p := range b.Outputs {
		text.Draw(screen, p.Label, face, int(p.X)+portGap, int(p.Y)+half, colorPort)
	}
}

// Layout tracks the window size; the scene is drawn at native resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
