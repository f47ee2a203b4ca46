// Package scene holds the visual entities of a patchview diagram.
//
// A [Scene] is an arena: visual nodes, the single graph-output sink and the
// edges between them are records addressed by a stable integer [Handle].
// Nothing in the scene is shared with the engine; the engine's [inspection.NodeID]
// only serves as the key that ties a visual node to the snapshot node it
// was created from.
//
// # Diffing
//
// [Scene.Materialize] compares a snapshot with the arena and creates what is
// missing. It is split into two steps that can be exercised separately:
//
//   - [Scene.Plan] computes the creations without touching the arena and
//     fails fast on snapshots that break their own contract (an edge source
//     index out of range) or on graph-input edge sources, which the
//     visualiser does not draw.
//   - [Scene.Apply] performs a plan. Edge sources are looked up first among
//     the nodes that existed before the pass, then among the nodes the pass
//     created; edges whose source cannot be found are dropped with a
//     warning.
//
// Re-materializing a snapshot that is already fully present creates nothing.
//
// # Removal
//
// Entities are never removed by Materialize. [Scene.Reconcile] is the
// explicit pass that drops nodes and edges a snapshot no longer mentions;
// callers decide whether the diagram shows history or only the present.
//
// # Coordinates
//
// World coordinates have y pointing up. A node's Pos is the top-left corner of
// its body, so the body spans Pos.Y down to Pos.Y-Height. Channel rows are
// stacked downward from the top edge, one [Geometry.RowHeight] each.
package scene
