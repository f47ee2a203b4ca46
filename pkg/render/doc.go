// Package render draws patchview diagrams.
//
// # Live Window
//
// The [window] subpackage opens an ebiten window and draws a live scene:
// node bodies, display labels, channel labels and edges, seen through a
// panning camera.
//
//	game := window.New(ctx, vis, window.Options{Title: "patchview", Width: 1280, Height: 800})
//	err := window.Run(game)
//
// What the window draws each frame comes from [drawlist.Build], which projects
// the scene through the camera into pixel rectangles and lines and drops
// everything off screen. It has no ebiten dependency and is tested on its own.
//
// # Node-Link Export
//
// The [nodelink] subpackage turns a single snapshot into Graphviz DOT, with
// one record per node and one port per channel, and renders it to SVG.
//
//	dot, err := nodelink.ToDOT(in, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
package render
