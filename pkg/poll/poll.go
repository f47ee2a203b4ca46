// Package poll requests engine snapshots from a frame loop without blocking.
//
// A [Poller] keeps at most one request outstanding. Each call to
// [Poller.Poll] advances a small state machine:
//
//	Idle ──request──▶ Awaiting ──value──▶ Fresh ──next frame──▶ Idle …
//	                     │
//	                     └──closed without value──▶ Idle
//
// The fresh flag reported by Poll is true for exactly one frame per received
// snapshot. After that the poller re-arms on its own, no sooner than
// [Options.MinInterval] after the previous request. A request that is never
// answered keeps the poller in Awaiting; there is no timeout.
package poll

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/observability"
)

// DefaultMinInterval is the default minimum time between two requests.
const DefaultMinInterval = 100 * time.Millisecond

// State is the poller's position in its request cycle.
type State int

const (
	// Idle means no request is outstanding.
	Idle State = iota
	// Awaiting means a request is outstanding.
	Awaiting
	// Fresh means a snapshot arrived during the last Poll.
	Fresh
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	case Fresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Options configures a Poller.
type Options struct {
	// MinInterval is the minimum time between requests. Zero re-arms on the
	// very next frame.
	MinInterval time.Duration
	// Now returns the current time. Defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
}

// Poller drives a [inspection.Source] from a frame loop.
// It is not safe for concurrent use.
type Poller struct {
	source inspection.Source
	opts   Options

	state       State
	pending     <-chan inspection.Inspection
	requestedAt time.Time
	requests    int
	latest      inspection.Inspection
	received    bool
}

// New creates a poller for src.
func New(src inspection.Source, opts Options) *Poller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Poller{source: src, opts: opts, latest: inspection.Empty()}
}

// Poll advances the state machine by one frame. It returns the latest
// snapshot and whether that snapshot arrived during this call.
//
// A request issued by Poll is checked in the same call, so a source that
// answers synchronously is seen without a frame of delay.
func (p *Poller) Poll(ctx context.Context) (inspection.Inspection, bool) {
	if p.state == Fresh {
		p.state = Idle
	}

	if p.state == Idle && ctx.Err() == nil && p.due() {
		p.pending = p.source.RequestInspection(ctx)
		p.requestedAt = p.opts.Now()
		p.requests++
		p.state = Awaiting
		observability.Poll().OnRequest(ctx, p.requests)
	}

	if p.state != Awaiting {
		return p.latest, false
	}

	select {
	case in, ok := <-p.pending:
		p.pending = nil
		if !ok {
			p.state = Idle
			p.opts.Logger.Debug("inspection request closed without a snapshot", "request", p.requests)
			observability.Poll().OnClosed(ctx)
			return p.latest, false
		}
		p.latest = in
		p.received = true
		p.state = Fresh
		observability.Poll().OnSnapshot(ctx, len(in.Nodes), p.opts.Now().Sub(p.requestedAt))
		return p.latest, true
	default:
		return p.latest, false
	}
}

func (p *Poller) due() bool {
	if p.requests == 0 {
		return true
	}
	return p.opts.Now().Sub(p.requestedAt) >= p.opts.MinInterval
}

// Latest returns the most recently received snapshot and whether any has
// been received yet.
func (p *Poller) Latest() (inspection.Inspection, bool) {
	return p.latest, p.received
}

// State returns the current state.
func (p *Poller) State() State { return p.state }

// Requests returns the number of requests issued so far.
func (p *Poller) Requests() int { return p.requests }
