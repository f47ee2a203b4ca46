// Package nodelink renders inspection snapshots as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz diagrams of a snapshot, laid out left to
// right like the live view: every engine node becomes a record with its
// input channels on the left, its display label in the middle and its
// output channels on the right. Edges connect channel ports, and the graph
// outputs form a sink record on the far right.
//
// # Usage
//
//	dot, err := nodelink.ToDOT(in, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels also carry the engine name and address.
//
// Edges fed by the graph's own inputs are drawn from an extra source record.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
