// Package dispatch implements the bridge's dispatcher: resolution of
// module/function/class names and routing of call, instantiate,
// call_method, dispose_instance, and meta requests.
// file: internal/dispatch/module.go
package dispatch

import (
	"sync"

	"github.com/tywrap/bridge/internal/bridgeerr"
)

// Function is a callable registered under a module, invoked by the "call"
// method. args and kwargs have already passed through the request-value
// decoder.
type Function func(args []any, kwargs map[string]any) (any, error)

// Instance is implemented by an object minted via "instantiate". CallMethod
// dispatches "call_method" requests against it.
type Instance interface {
	CallMethod(methodName string, args []any, kwargs map[string]any) (any, error)
}

// Constructor builds a new Instance for the "instantiate" method.
type Constructor func(args []any, kwargs map[string]any) (Instance, error)

// Module is a named collection of callable functions and constructible
// classes, the Go analogue of a Python module resolved lazily by import
// machinery in the Python bridge.
type Module struct {
	Functions map[string]Function
	Classes   map[string]Constructor
}

// Resolver is a process-local registry of modules, resolved by name. The
// process's working directory equivalent here is simply "whatever modules
// were registered at startup" — there is no dynamic import step in the Go
// port.
type Resolver struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewResolver returns an empty module resolver.
func NewResolver() *Resolver {
	return &Resolver{modules: make(map[string]*Module)}
}

// Register adds or replaces the module registered under name.
func (r *Resolver) Register(name string, m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = m
}

// Function resolves functionName as an attribute of the module named
// module.
func (r *Resolver) Function(module, functionName string) (Function, error) {
	m, err := r.module(module)
	if err != nil {
		return nil, err
	}
	fn, ok := m.Functions[functionName]
	if !ok {
		return nil, bridgeerr.Protocol("function %q not found in module %q", functionName, module)
	}
	return fn, nil
}

// Constructor resolves className as a class of the module named module.
func (r *Resolver) Constructor(module, className string) (Constructor, error) {
	m, err := r.module(module)
	if err != nil {
		return nil, err
	}
	ctor, ok := m.Classes[className]
	if !ok {
		return nil, bridgeerr.Protocol("class %q not found in module %q", className, module)
	}
	return ctor, nil
}

func (r *Resolver) module(name string) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	if !ok {
		return nil, bridgeerr.Protocol("module %q not found", name)
	}
	return m, nil
}
