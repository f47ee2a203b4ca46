// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about snapshot polling, scene diffing, layout passes and
// remote inspection requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so no import cycles arise
// and the core packages stay free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPollHooks(&myPollHooks{})
//	    observability.SetSceneHooks(&mySceneHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scene().OnMaterialize(ctx, newNodes, newEdges, dropped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Poll Hooks
// =============================================================================

// PollHooks receives events from the snapshot poller.
type PollHooks interface {
	// OnRequest records a snapshot request. n is the total number of requests
	// issued so far, this one included.
	OnRequest(ctx context.Context, n int)

	// OnSnapshot records a received snapshot and how long it took to arrive.
	OnSnapshot(ctx context.Context, nodeCount int, latency time.Duration)

	// OnClosed records a request channel that closed without a value.
	OnClosed(ctx context.Context)
}

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives events from the topology diff and reconcile passes.
type SceneHooks interface {
	OnMaterialize(ctx context.Context, newNodes, newEdges, dropped int, duration time.Duration, err error)
	OnReconcile(ctx context.Context, removedNodes, removedEdges int)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout passes.
type LayoutHooks interface {
	// OnColumns records a column pass and the number of columns it produced.
	OnColumns(ctx context.Context, depth int, duration time.Duration)

	// OnForceStep records one simulator step.
	OnForceStep(ctx context.Context, nodeCount int, duration time.Duration)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPollHooks is a no-op implementation of PollHooks.
type NoopPollHooks struct{}

func (NoopPollHooks) OnRequest(context.Context, int)                {}
func (NoopPollHooks) OnSnapshot(context.Context, int, time.Duration) {}
func (NoopPollHooks) OnClosed(context.Context)                      {}

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnMaterialize(context.Context, int, int, int, time.Duration, error) {}
func (NoopSceneHooks) OnReconcile(context.Context, int, int)                              {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnColumns(context.Context, int, time.Duration)   {}
func (NoopLayoutHooks) OnForceStep(context.Context, int, time.Duration) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pollHooks   PollHooks   = NoopPollHooks{}
	sceneHooks  SceneHooks  = NoopSceneHooks{}
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetPollHooks registers custom poll hooks.
// This should be called once at application startup before the frame loop runs.
func SetPollHooks(h PollHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pollHooks = h
	}
}

// SetSceneHooks registers custom scene hooks.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Poll returns the registered poll hooks.
func Poll() PollHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pollHooks
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pollHooks = NoopPollHooks{}
	sceneHooks = NoopSceneHooks{}
	layoutHooks = NoopLayoutHooks{}
	httpHooks = NoopHTTPHooks{}
}
