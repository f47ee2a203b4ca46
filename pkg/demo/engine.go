package demo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/inspection"
)

const (
	DefaultNumOutputs    = 2
	DefaultVoiceInterval = 2500 * time.Millisecond
	DefaultVoiceLifetime = 4 * time.Second
	DefaultTick          = 50 * time.Millisecond
)

// voiceFrequencies is cycled through by successive voices.
var voiceFrequencies = []float64{400, 600, 500}

// Options configures an Engine.
type Options struct {
	GraphID       uint64
	NumOutputs    int
	VoiceInterval time.Duration
	VoiceLifetime time.Duration
	// Tick is how often Run advances the simulation.
	Tick time.Duration
	// Latency delays every inspection answer. Zero answers synchronously.
	Latency time.Duration
	Logger  *log.Logger
}

func (o *Options) setDefaults() {
	if o.GraphID == 0 {
		o.GraphID = 1
	}
	if o.NumOutputs <= 0 {
		o.NumOutputs = DefaultNumOutputs
	}
	if o.VoiceInterval <= 0 {
		o.VoiceInterval = DefaultVoiceInterval
	}
	if o.VoiceLifetime <= 0 {
		o.VoiceLifetime = DefaultVoiceLifetime
	}
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Voice is a running voice.
type Voice struct {
	Frequency float64
	Started   time.Time
	Expires   time.Time
	units     []*unit
}

// Engine is a simulated engine. It is safe for concurrent use.
type Engine struct {
	opts Options

	mu        sync.Mutex
	nextID    inspection.NodeID
	units     []*unit
	outputs   []outputEdge
	voices    []*Voice
	started   bool
	nextVoice time.Time
	spawned   int
}

// New creates an engine. The topology is empty until the first Step.
func New(opts Options) *Engine {
	opts.setDefaults()
	return &Engine{opts: opts}
}

// Run advances the simulation every Tick until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.Tick)
	defer ticker.Stop()

	e.Step(time.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			e.Step(now)
		}
	}
}

// Step advances the simulation to now: the drone is built on the first call,
// voices due by now are started and expired voices are freed.
func (e *Engine) Step(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		e.started = true
		e.buildDrone()
		e.nextVoice = now
	}
	for !now.Before(e.nextVoice) {
		e.startVoice(e.nextVoice)
		e.nextVoice = e.nextVoice.Add(e.opts.VoiceInterval)
	}

	e.voices = slices.DeleteFunc(e.voices, func(v *Voice) bool {
		if now.Before(v.Expires) {
			return false
		}
		e.free(v)
		return true
	})
}

// Voices returns the running voices, oldest first.
func (e *Engine) Voices() []Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Voice, len(e.voices))
	for i, v := range e.voices {
		out[i] = Voice{Frequency: v.Frequency, Started: v.Started, Expires: v.Expires}
	}
	return out
}

// Inspection returns a snapshot of the current topology.
func (e *Engine) Inspection() inspection.Inspection {
	e.mu.Lock()
	defer e.mu.Unlock()

	index := make(map[*unit]int, len(e.units))
	for i, u := range e.units {
		index[u] = i
	}

	in := inspection.Inspection{
		GraphID:    e.opts.GraphID,
		NumOutputs: e.opts.NumOutputs,
		Nodes:      make([]inspection.Node, 0, len(e.units)),
	}
	for _, u := range e.units {
		n := inspection.Node{
			Address:        u.id,
			Name:           u.name,
			InputChannels:  slices.Clone(u.inputs),
			OutputChannels: slices.Clone(u.outputs),
		}
		for _, c := range u.conns {
			n.InputEdges = append(n.InputEdges, inspection.Edge{
				Source:    inspection.NodeSource(index[c.from]),
				FromIndex: c.fromIndex,
				ToIndex:   c.toIndex,
			})
		}
		in.Nodes = append(in.Nodes, n)
	}
	for _, o := range e.outputs {
		in.OutputEdges = append(in.OutputEdges, inspection.Edge{
			Source:    inspection.NodeSource(index[o.from]),
			FromIndex: o.fromIndex,
			ToIndex:   o.channel,
		})
	}
	return in
}

// RequestInspection answers with a snapshot, after Latency if one is set.
// A request whose context ends first is closed without a value.
func (e *Engine) RequestInspection(ctx context.Context) <-chan inspection.Inspection {
	if e.opts.Latency <= 0 {
		return inspection.Deliver(e.Inspection())
	}

	ch := make(chan inspection.Inspection, 1)
	go func() {
		defer close(ch)
		timer := time.NewTimer(e.opts.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			e.opts.Logger.Debug("inspection request cancelled")
		case <-timer.C:
			ch <- e.Inspection()
		}
	}()
	return ch
}

// Ensure Engine implements Source.
var _ inspection.Source = (*Engine)(nil)
