// Package pkg provides the libraries behind patchview, a live viewer for the
// node graph of an audio-synthesis engine.
//
// # Overview
//
// The engine is only ever seen through snapshots of its topology. patchview
// polls for them, turns every new node and edge into a visual entity and lays
// the result out so signal flows toward the graph output on the right.
//
//  1. [inspection] - Snapshot model, JSON format and the Source interface
//  2. [poll] - One-request-at-a-time polling state machine
//  3. [scene] - Arena of visual nodes and edges, diffed against snapshots
//  4. [layout] - Column pass and spring simulation
//  5. [visualiser] - The per-frame pipeline tying them together
//
// # Architecture
//
// One frame of the pipeline:
//
//	Source (demo engine, file or HTTP)
//	         ↓
//	    [poll] package (is there a fresh snapshot?)
//	         ↓
//	    [scene] package (materialize new nodes and edges)
//	         ↓
//	    [layout] package (columns, then forces)
//	         ↓
//	    [camera] + render/window (pan and draw)
//
// # Quick Start
//
//	eng := demo.New(demo.Options{})
//	go eng.Run(ctx)
//
//	p := poll.New(eng, poll.Options{})
//	s := scene.New(scene.Options{})
//	vis := visualiser.New(p, s, visualiser.Options{})
//
//	for {
//	    stats, err := vis.Frame(ctx)
//	    // ...
//	}
//
// # Supporting Packages
//
//   - [config] - TOML settings and the option structs built from them
//   - [errors] - Error codes shared by every package
//   - [observability] - Hooks for polling, diffing and layout timings
//   - [buildinfo] - Version information set at link time
package pkg
