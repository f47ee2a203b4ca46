package demo

import (
	"slices"
	"time"

	"github.com/matzehuels/patchview/pkg/inspection"
)

type unit struct {
	id      inspection.NodeID
	name    string
	inputs  []string
	outputs []string
	conns   []conn
}

// conn feeds input toIndex of the owning unit from output fromIndex of from.
type conn struct {
	from      *unit
	fromIndex int
	toIndex   int
}

type outputEdge struct {
	from      *unit
	fromIndex int
	channel   int
}

func (e *Engine) add(name string, inputs, outputs []string) *unit {
	e.nextID++
	u := &unit{id: e.nextID, name: name, inputs: inputs, outputs: outputs}
	e.units = append(e.units, u)
	return u
}

func (e *Engine) oscillator() *unit {
	return e.add("Oscillator", []string{"freq", "phase"}, []string{"sig"})
}

func (e *Engine) binary(name string, a, b *unit) *unit {
	u := e.add(name, []string{"value0", "value1"}, []string{"sig"})
	if a != nil {
		connect(a, u, 0)
	}
	if b != nil {
		connect(b, u, 1)
	}
	return u
}

func (e *Engine) rangeOf(src *unit) *unit {
	u := e.add("Range", []string{"input"}, []string{"sig"})
	connect(src, u, 0)
	return u
}

func connect(from, to *unit, toIndex int) {
	to.conns = append(to.conns, conn{from: from, toIndex: toIndex})
}

// toOutputs feeds u into every graph output channel.
func (e *Engine) toOutputs(u *unit) {
	for ch := range e.opts.NumOutputs {
		e.outputs = append(e.outputs, outputEdge{from: u, channel: ch})
	}
}

func (e *Engine) buildDrone() {
	slow := e.oscillator()
	mid := e.oscillator()
	connect(e.rangeOf(slow), mid, 0)
	fast := e.oscillator()
	connect(e.rangeOf(mid), fast, 0)
	freq := e.binary("Add", e.binary("Mul", fast, nil), nil)

	carrier := e.oscillator()
	connect(freq, carrier, 0)

	lfo := e.oscillator()
	modFreq := e.binary("Add", e.binary("Mul", lfo, nil), nil)
	modulator := e.oscillator()
	connect(modFreq, modulator, 0)

	e.toOutputs(e.binary("Mul", e.binary("Mul", carrier, modulator), nil))
}

func (e *Engine) startVoice(at time.Time) {
	freq := voiceFrequencies[e.spawned%len(voiceFrequencies)]
	e.spawned++

	first := len(e.units)
	osc := e.oscillator()
	env := e.add("Envelope", nil, []string{"sig"})
	sig := e.binary("Mul", e.binary("Mul", osc, nil), env)

	delay := e.add("StaticSampleDelay", []string{"signal"}, []string{"signal"})
	connect(sig, delay, 0)
	mix := e.binary("Add", sig, delay)
	e.toOutputs(mix)

	v := &Voice{
		Frequency: freq,
		Started:   at,
		Expires:   at.Add(e.opts.VoiceLifetime),
		units:     append([]*unit(nil), e.units[first:]...),
	}
	e.voices = append(e.voices, v)
	e.opts.Logger.Debug("voice started", "freq", freq, "nodes", len(v.units))
}

func (e *Engine) free(v *Voice) {
	gone := make(map[*unit]bool, len(v.units))
	for _, u := range v.units {
		gone[u] = true
	}
	e.units = slices.DeleteFunc(e.units, func(u *unit) bool { return gone[u] })
	e.outputs = slices.DeleteFunc(e.outputs, func(o outputEdge) bool { return gone[o.from] })
	e.opts.Logger.Debug("voice freed", "freq", v.Frequency, "nodes", len(v.units))
}
