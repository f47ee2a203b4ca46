package inspection

import (
	"context"
	"sync"
)

// Source produces snapshots on request.
//
// RequestInspection must not block. The returned channel yields at most one
// snapshot and is closed afterwards; it may also be closed without a value
// when the request fails. A request the engine never answers simply leaves
// the channel open.
type Source interface {
	RequestInspection(ctx context.Context) <-chan Inspection
}

// SourceFunc adapts an ordinary function to the [Source] interface.
type SourceFunc func(ctx context.Context) <-chan Inspection

// RequestInspection calls f(ctx).
func (f SourceFunc) RequestInspection(ctx context.Context) <-chan Inspection {
	return f(ctx)
}

// Deliver returns a closed one-shot channel that yields in.
func Deliver(in Inspection) <-chan Inspection {
	ch := make(chan Inspection, 1)
	ch <- in
	close(ch)
	return ch
}

// Closed returns a channel that is closed without a value.
func Closed() <-chan Inspection {
	ch := make(chan Inspection)
	close(ch)
	return ch
}

// Static is a [Source] that answers every request with the same snapshot.
// The snapshot can be swapped with Set, which is safe for concurrent use.
type Static struct {
	mu sync.RWMutex
	in Inspection
}

// NewStatic creates a source that serves in.
func NewStatic(in Inspection) *Static {
	return &Static{in: in}
}

// Set replaces the snapshot served to future requests.
func (s *Static) Set(in Inspection) {
	s.mu.Lock()
	s.in = in
	s.mu.Unlock()
}

// RequestInspection answers immediately with the current snapshot.
func (s *Static) RequestInspection(context.Context) <-chan Inspection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Deliver(s.in)
}

// Ensure Static implements Source.
var _ Source = (*Static)(nil)
