// Package layout positions the entities of a [scene.Scene].
//
// Two passes are provided and either may run on its own:
//
//   - [Columns] places nodes in vertical columns by their edge-hop distance
//     from the graph output, mimicking a left-to-right dataflow diagram.
//   - [Simulator] runs one step of a force-directed simulation per call:
//     velocity decay, edge springs, pairwise repulsion and explicit Euler
//     integration.
//
// With columns enabled the simulator is usually run with [ForceConfig.LockX]
// so that springs and repulsion only tidy rows and never undo the column
// assignment.
//
// Nodes not connected to the graph output are never reached by [Columns] and
// keep whatever position the simulator gives them.
package layout
