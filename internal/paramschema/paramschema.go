// Package paramschema provides optional, off-by-default strict JSON Schema
// validation of call and instantiate params, compiled once at registration
// time. The dispatcher does not validate call_method params against any
// schema.
// file: internal/paramschema/paramschema.go
package paramschema

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tywrap/bridge/internal/bridgeerr"
)

// Validator holds compiled schemas keyed by a caller-chosen name (typically
// "module.functionName" or "module.className"). A zero-value Validator has
// no schemas registered and Validate is always a no-op success, matching
// the "off by default" contract.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles schemaJSON and associates it with name. A later call to
// Validate(name, ...) enforces it.
func (v *Validator) Register(name string, schemaJSON []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schemaJSON)); err != nil {
		return bridgeerr.Protocol("invalid parameter schema for %q: %v", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return bridgeerr.Protocol("could not compile parameter schema for %q: %v", name, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas[name] = schema
	return nil
}

// HasSchema reports whether a schema is registered under name.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate checks paramsJSON against the schema registered under name, if
// any. An unregistered name always passes — strict validation is opt-in per
// callable.
func (v *Validator) Validate(name string, paramsJSON []byte) error {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return nil
	}

	var doc any
	if err := json.Unmarshal(paramsJSON, &doc); err != nil {
		return bridgeerr.Protocol("params for %q are not valid JSON: %v", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return bridgeerr.Protocol("params for %q failed schema validation: %v", name, err)
	}
	return nil
}
