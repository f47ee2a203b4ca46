// Package visualiser runs the per-frame pipeline that keeps a scene in step
// with a live engine.
//
// Every [Visualiser.Frame] polls for a snapshot. A fresh snapshot is
// materialized into the scene and, when pruning is enabled, reconciled
// against it. The column pass then runs according to its [ColumnMode], the
// force simulator takes one step, and the camera pans from the cursor.
//
// The scene is owned by the visualiser and must only be touched from the
// goroutine calling Frame.
package visualiser

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/camera"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/layout"
	"github.com/matzehuels/patchview/pkg/observability"
	"github.com/matzehuels/patchview/pkg/poll"
	"github.com/matzehuels/patchview/pkg/scene"
)

// ColumnMode selects how often the column pass runs.
type ColumnMode int

const (
	// ColumnsOnChange runs the column pass on frames that changed the scene.
	ColumnsOnChange ColumnMode = iota
	// ColumnsAlways runs the column pass every frame.
	ColumnsAlways
	// ColumnsOff disables the column pass.
	ColumnsOff
)

func (m ColumnMode) String() string {
	switch m {
	case ColumnsOnChange:
		return "on-change"
	case ColumnsAlways:
		return "always"
	case ColumnsOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseColumnMode parses "always", "on-change" or "off".
func ParseColumnMode(s string) (ColumnMode, error) {
	switch s {
	case "on-change", "":
		return ColumnsOnChange, nil
	case "always":
		return ColumnsAlways, nil
	case "off":
		return ColumnsOff, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidConfig,
			"unknown column mode %q (want always, on-change or off)", s)
	}
}

// Pointer reports the cursor position and window size, and whether both are
// available this frame.
type Pointer func() (camera.Cursor, camera.Size, bool)

// Options configures a Visualiser.
type Options struct {
	Columns ColumnMode
	// ColumnConfig overrides the column geometry. Defaults to
	// [layout.DefaultColumnConfig].
	ColumnConfig *layout.ColumnConfig
	Force        layout.ForceConfig
	// DisableForces skips the simulator.
	DisableForces bool
	// Prune removes entities a fresh snapshot no longer lists.
	Prune bool

	Camera  *camera.Camera
	Pointer Pointer
	Logger  *log.Logger
}

// Stats describes what one frame did.
type Stats struct {
	Frame        int
	Fresh        bool
	Materialized scene.Result
	Reconciled   scene.ReconcileResult
	ColumnsRan   bool
	Depth        int
}

// Visualiser owns a scene and the passes that update it.
type Visualiser struct {
	poller  *poll.Poller
	scene   *scene.Scene
	sim     *layout.Simulator
	columns layout.ColumnConfig
	opts    Options

	frames    int
	placement layout.Placement
}

// New wires a poller and a scene into a frame pipeline.
//
// When the column pass is enabled the simulator runs with x locked, so the
// columns it assigns are kept.
func New(p *poll.Poller, s *scene.Scene, opts Options) *Visualiser {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Force == (layout.ForceConfig{}) {
		opts.Force = layout.DefaultForceConfig()
	}
	if opts.Columns != ColumnsOff {
		opts.Force.LockX = true
	}
	if opts.Camera == nil {
		opts.Camera = camera.New(opts.Logger)
	}

	columns := layout.DefaultColumnConfig(s)
	if opts.ColumnConfig != nil {
		columns = *opts.ColumnConfig
	}

	return &Visualiser{
		poller:  p,
		scene:   s,
		sim:     layout.NewSimulator(opts.Force),
		columns: columns,
		opts:    opts,
	}
}

// Frame runs one frame of the pipeline. It fails only when a snapshot
// cannot be materialized; the scene is then left as it was.
func (v *Visualiser) Frame(ctx context.Context) (Stats, error) {
	v.frames++
	st := Stats{Frame: v.frames}

	in, fresh := v.poller.Poll(ctx)
	st.Fresh = fresh

	changed := false
	if fresh {
		res, err := v.materialize(ctx, in)
		if err != nil {
			return st, err
		}
		st.Materialized = res
		changed = res.Changed()

		if v.opts.Prune {
			rec := v.scene.Reconcile(in)
			observability.Scene().OnReconcile(ctx, rec.RemovedNodes, rec.RemovedEdges)
			st.Reconciled = rec
			changed = changed || rec.Changed()
		}
	}

	if v.runColumns(changed) {
		start := time.Now()
		v.placement = layout.Columns(v.scene, v.columns)
		st.ColumnsRan = true
		observability.Layout().OnColumns(ctx, v.placement.Depth(), time.Since(start))
	}
	st.Depth = v.placement.Depth()

	if !v.opts.DisableForces {
		start := time.Now()
		v.sim.Step(v.scene)
		observability.Layout().OnForceStep(ctx, v.scene.NodeCount(), time.Since(start))
	}

	if v.opts.Pointer != nil {
		v.opts.Camera.Pan(v.opts.Pointer())
	}
	return st, nil
}

func (v *Visualiser) materialize(ctx context.Context, in inspection.Inspection) (scene.Result, error) {
	start := time.Now()
	res, err := v.scene.Materialize(in)
	observability.Scene().OnMaterialize(ctx, len(res.NewNodes), len(res.NewEdges), res.Dropped, time.Since(start), err)
	if err != nil {
		v.opts.Logger.Error("snapshot rejected", "graph", in.GraphID, "err", err)
		return res, err
	}
	if res.Changed() {
		v.opts.Logger.Info("scene updated",
			"graph", in.GraphID, "nodes", v.scene.NodeCount(), "edges", v.scene.EdgeCount())
	}
	return res, nil
}

func (v *Visualiser) runColumns(changed bool) bool {
	switch v.opts.Columns {
	case ColumnsAlways:
		return true
	case ColumnsOnChange:
		return changed
	default:
		return false
	}
}

// Scene returns the scene being visualised.
func (v *Visualiser) Scene() *scene.Scene { return v.scene }

// Camera returns the camera panned by Frame.
func (v *Visualiser) Camera() *camera.Camera { return v.opts.Camera }

// Poller returns the snapshot poller.
func (v *Visualiser) Poller() *poll.Poller { return v.poller }

// SetPointer replaces the cursor query used for camera panning.
func (v *Visualiser) SetPointer(p Pointer) { v.opts.Pointer = p }

// Placement returns the result of the most recent column pass.
func (v *Visualiser) Placement() layout.Placement { return v.placement }

// Frames returns the number of frames run.
func (v *Visualiser) Frames() int { return v.frames }
