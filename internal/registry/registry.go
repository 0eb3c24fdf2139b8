// Package registry implements the bridge's instance registry: a
// process-local mapping from opaque handle strings to live host objects,
// each tracked through the Unborn -> Live -> Disposed progression from
// internal/lifecycle.
// file: internal/registry/registry.go
package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tywrap/bridge/internal/bridgeerr"
	"github.com/tywrap/bridge/internal/lifecycle"
	"github.com/tywrap/bridge/internal/logging"
)

// entry pairs a registered object with the lifecycle handle tracking it.
type entry struct {
	object any
	life   *lifecycle.Handle
}

// Registry is the process-local handle table. A Registry is safe for
// concurrent use, though the bridge's single-threaded I/O loop never
// actually contends on it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  logging.Logger
}

// New creates an empty instance registry.
func New(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger.WithField("component", "registry"),
	}
}

// Register mints a fresh handle for object and activates it, returning the
// handle string. Handles are never reused within a process lifetime.
func (r *Registry) Register(object any) (string, error) {
	handle := uuid.NewString()

	life := lifecycle.NewHandle(r.logger)
	if err := life.Activate(context.Background()); err != nil {
		return "", bridgeerr.InstanceHandle("could not activate handle: %v", err)
	}

	r.mu.Lock()
	r.entries[handle] = &entry{object: object, life: life}
	r.mu.Unlock()

	r.logger.Debug("registered instance", "handle", handle)
	return handle, nil
}

// Lookup returns the live object for handle. It fails with
// InstanceHandleError for an unknown or disposed handle.
func (r *Registry) Lookup(handle string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[handle]

	if !ok {
		return nil, bridgeerr.InstanceHandle("unknown instance handle %q", handle)
	}
	if !e.life.IsLive() {
		return nil, bridgeerr.InstanceHandle("instance handle %q is disposed", handle)
	}
	return e.object, nil
}

// Dispose removes handle from the registry, returning true if a live handle
// was removed and false if it was already unknown or disposed. Dispose is
// idempotent by design: a second call on the same handle returns false
// without error.
func (r *Registry) Dispose(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[handle]
	if !ok {
		return false
	}
	if err := e.life.Dispose(context.Background()); err != nil {
		return false
	}
	delete(r.entries, handle)
	r.logger.Debug("disposed instance", "handle", handle)
	return true
}

// Count returns the number of currently live handles, for meta's
// "instances" field.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
