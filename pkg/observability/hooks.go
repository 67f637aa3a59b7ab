// Package observability provides hooks for instrumenting merge runs.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about floor merges and passage synthesis.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain counters)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMergeHooks(&myMergeHooks{})
//	    // ... run application
//	}
//
// The pipeline calls hooks to emit events:
//
//	observability.Merge().OnFloorStart(ctx, path)
//	// ... merge the floor ...
//	observability.Merge().OnFloorComplete(ctx, path, matched, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// MergeHooks receives events from the floor-merge pipeline.
type MergeHooks interface {
	// OnFloorStart fires before a target floor is loaded and merged.
	OnFloorStart(ctx context.Context, source string)

	// OnFloorComplete fires after a target floor's merge, successful or not.
	// matched is the number of anchor pairs used for alignment.
	OnFloorComplete(ctx context.Context, source string, matched int, duration time.Duration, err error)

	// OnSynthesisComplete fires after vertical passage synthesis.
	OnSynthesisComplete(ctx context.Context, passages int, duration time.Duration)
}

// NoopMergeHooks is a no-op implementation of MergeHooks.
type NoopMergeHooks struct{}

func (NoopMergeHooks) OnFloorStart(context.Context, string)                                {}
func (NoopMergeHooks) OnFloorComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopMergeHooks) OnSynthesisComplete(context.Context, int, time.Duration)             {}

var (
	mergeHooks MergeHooks = NoopMergeHooks{}
	hooksMu    sync.RWMutex
)

// SetMergeHooks registers custom merge hooks.
// This should be called once at application startup, before any merge runs.
func SetMergeHooks(h MergeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mergeHooks = h
	}
}

// Merge returns the registered merge hooks.
func Merge() MergeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mergeHooks
}

// Reset restores the no-op defaults. This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	mergeHooks = NoopMergeHooks{}
}
