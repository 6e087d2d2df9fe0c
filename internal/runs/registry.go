// Package runs tracks in-flight streaming runs and their cancellation
// handles. The registry only stores and forwards signals; cancellation
// semantics for the run's work belong to whoever derived the context.
package runs

import (
	"context"
	"sync"
)

// CancelledError is the cancellation cause delivered to a run's context
// when an operator or user cancels it through the registry. Callers can
// recover the reason with errors.As on context.Cause.
type CancelledError struct {
	RunID  string
	Reason string
}

func (e *CancelledError) Error() string {
	if e.Reason == "" {
		return "run cancelled"
	}
	return "run cancelled: " + e.Reason
}

// Registry maps run IDs to cancellation handles. It is safe for
// concurrent use. Absence is an expected race, not a fault: cancelling an
// unknown run returns false and has no other effect.
type Registry struct {
	mu      sync.Mutex
	handles map[string]context.CancelCauseFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]context.CancelCauseFunc)}
}

// Register stores the cancellation handle for a run, silently overwriting
// any prior handle. Callers are expected to use fresh run IDs per run.
func (r *Registry) Register(runID string, cancel context.CancelCauseFunc) {
	if r == nil || runID == "" || cancel == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[runID] = cancel
}

// Cancel signals the run's handle with the given diagnostic reason.
// Returns false when no handle is registered, which happens routinely
// when a cancel request races with run completion. Signalling twice has
// the effect of once.
func (r *Registry) Cancel(runID, reason string) bool {
	if r == nil || runID == "" {
		return false
	}
	r.mu.Lock()
	cancel, ok := r.handles[runID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel(&CancelledError{RunID: runID, Reason: reason})
	return true
}

// Remove discards the run's handle without signalling it. Idempotent.
func (r *Registry) Remove(runID string) {
	if r == nil || runID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, runID)
}

// Has reports whether a handle is registered for the run.
func (r *Registry) Has(runID string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[runID]
	return ok
}

// Active returns the number of registered runs.
func (r *Registry) Active() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
