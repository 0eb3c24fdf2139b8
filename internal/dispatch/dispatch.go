// file: internal/dispatch/dispatch.go
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"

	"github.com/tywrap/bridge/internal/bridgeerr"
	"github.com/tywrap/bridge/internal/codec"
	"github.com/tywrap/bridge/internal/logging"
	"github.com/tywrap/bridge/internal/paramschema"
	"github.com/tywrap/bridge/internal/protocol"
	"github.com/tywrap/bridge/internal/registry"
)

// Dispatcher routes a validated request to the resolver, the instance
// registry, or the capability reporter.
type Dispatcher struct {
	Resolver *Resolver
	Registry *registry.Registry
	Schema   *paramschema.Validator
	Meta     *Meta
	Logger   logging.Logger
}

// New builds a Dispatcher with fresh Resolver and Registry.
func New(meta *Meta, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Dispatcher{
		Resolver: NewResolver(),
		Registry: registry.New(logger),
		Schema:   paramschema.New(),
		Meta:     meta,
		Logger:   logger.WithField("component", "dispatch"),
	}
}

// Dispatch routes method against params, already validated by the
// envelope validator. The returned value still needs to pass through the
// response-value encoder before it reaches the wire.
//
// A panic inside handler code — the Go analogue of an unexpected host
// exception — is recovered here and converted into a handler-raised error
// carrying the panic value's type name and a bounded stack trace, so a
// misbehaving handler fails its own request instead of the whole loop.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = errors.Newf("%v", r)
			}
			d.Logger.Error("handler panicked", "method", method, "panic", cause)
			result = nil
			err = bridgeerr.Handler(cause, fmt.Sprintf("%T", r), string(debug.Stack()))
		}
	}()

	switch method {
	case protocol.MethodCall:
		return d.dispatchCall(params)
	case protocol.MethodInstantiate:
		return d.dispatchInstantiate(params)
	case protocol.MethodCallMethod:
		return d.dispatchCallMethod(params)
	case protocol.MethodDisposeInstance:
		return d.dispatchDisposeInstance(params)
	case protocol.MethodMeta:
		return d.Meta.Build(d.Registry.Count()), nil
	default:
		return nil, bridgeerr.Protocol("Unknown method %q", method)
	}
}

func (d *Dispatcher) dispatchCall(raw json.RawMessage) (any, error) {
	var p protocol.CallParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, bridgeerr.Protocol("invalid params for call: %v", err)
	}
	if err := d.Schema.Validate(p.Module+"."+p.FunctionName, raw); err != nil {
		return nil, err
	}

	args, kwargs, err := coerceArgsKwargs(p.Args, p.Kwargs)
	if err != nil {
		return nil, err
	}

	fn, err := d.Resolver.Function(p.Module, p.FunctionName)
	if err != nil {
		return nil, err
	}
	return fn(args, kwargs)
}

func (d *Dispatcher) dispatchInstantiate(raw json.RawMessage) (any, error) {
	var p protocol.InstantiateParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, bridgeerr.Protocol("invalid params for instantiate: %v", err)
	}
	if err := d.Schema.Validate(p.Module+"."+p.ClassName, raw); err != nil {
		return nil, err
	}

	args, kwargs, err := coerceArgsKwargs(p.Args, p.Kwargs)
	if err != nil {
		return nil, err
	}

	ctor, err := d.Resolver.Constructor(p.Module, p.ClassName)
	if err != nil {
		return nil, err
	}
	instance, err := ctor(args, kwargs)
	if err != nil {
		return nil, err
	}
	return d.Registry.Register(instance)
}

func (d *Dispatcher) dispatchCallMethod(raw json.RawMessage) (any, error) {
	var p protocol.CallMethodParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, bridgeerr.Protocol("invalid params for call_method: %v", err)
	}

	args, kwargs, err := coerceArgsKwargs(p.Args, p.Kwargs)
	if err != nil {
		return nil, err
	}

	obj, err := d.Registry.Lookup(p.Handle)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(Instance)
	if !ok {
		return nil, bridgeerr.InstanceHandle("handle %q does not refer to a method-bearing instance", p.Handle)
	}
	return instance.CallMethod(p.MethodName, args, kwargs)
}

func (d *Dispatcher) dispatchDisposeInstance(raw json.RawMessage) (any, error) {
	var p protocol.DisposeInstanceParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, bridgeerr.Protocol("invalid params for dispose_instance: %v", err)
	}
	return d.Registry.Dispose(p.Handle), nil
}

// coerceArgsKwargs enforces the strict argument coercion rule: args must be
// absent, null, or a list; kwargs must be absent, null, or an object.
// Both are decoded through codec.Decode so nested bytes envelopes resolve
// to native byte strings before reaching a handler.
func coerceArgsKwargs(rawArgs, rawKwargs json.RawMessage) ([]any, map[string]any, error) {
	args, err := coerceArgs(rawArgs)
	if err != nil {
		return nil, nil, err
	}
	kwargs, err := coerceKwargs(rawKwargs)
	if err != nil {
		return nil, nil, err
	}
	return args, kwargs, nil
}

func coerceArgs(raw json.RawMessage) ([]any, error) {
	if len(raw) == 0 {
		return []any{}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, bridgeerr.Protocol("args is not valid JSON")
	}
	if v == nil {
		return []any{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, bridgeerr.Protocol("args must be absent, null, or a list")
	}
	decoded := make([]any, len(list))
	for i, item := range list {
		d, err := codec.Decode(item)
		if err != nil {
			return nil, err
		}
		decoded[i] = d
	}
	return decoded, nil
}

func coerceKwargs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, bridgeerr.Protocol("kwargs is not valid JSON")
	}
	if v == nil {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, bridgeerr.Protocol("kwargs must be absent, null, or an object")
	}
	decoded := make(map[string]any, len(obj))
	for k, item := range obj {
		d, err := codec.Decode(item)
		if err != nil {
			return nil, err
		}
		decoded[k] = d
	}
	return decoded, nil
}
