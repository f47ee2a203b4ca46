// Package inspection defines the snapshot ("inspection") of a running audio
// node graph and the interface used to request one.
//
// An [Inspection] is a point-in-time, read-only copy of the graph topology:
// the nodes with their channel labels, the edges feeding each node's inputs
// and the edges feeding the graph's own outputs. Edges refer to their source
// through an [EdgeSource], which is either a node index into
// [Inspection.Nodes] or the graph's own inputs.
//
// # Requesting Snapshots
//
// A [Source] hands out one snapshot per request through a receive-once channel:
//
//	ch := src.RequestInspection(ctx)
//	select {
//	case in, ok := <-ch:
//	    if !ok {
//	        // closed without a value: the engine had nothing to say
//	    }
//	    _ = in
//	default:
//	    // not answered yet, check again next frame
//	}
//
// The channel yields at most one value and is then closed. [Deliver] builds
// such a channel for implementations that already hold the answer.
//
// # Wire Format
//
// Snapshots are exchanged as JSON:
//
//	{
//	  "graph_id": 1,
//	  "num_outputs": 1,
//	  "nodes": [
//	    {"address": 1, "name": "Mul", "input_channels": ["a", "b"], "output_channels": ["out"]}
//	  ],
//	  "output_edges": [
//	    {"source": {"kind": "node", "index": 0}, "from_index": 0, "to_index": 0}
//	  ]
//	}
//
// Use [Read], [ReadFile], [Write] and [WriteFile] to move snapshots across
// that boundary. Decoded snapshots are checked with [Inspection.Validate].
package inspection
