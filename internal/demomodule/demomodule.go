// Package demomodule is a small, self-contained callable surface
// registered with the dispatcher's resolver for tests and as the bridge's
// default module: an echo function, simple arithmetic, an
// error-raising function, a NaN-producing function, and a stateful
// counter class.
// file: internal/demomodule/demomodule.go
package demomodule

import (
	"fmt"
	"math"

	"github.com/tywrap/bridge/internal/bridgeerr"
	"github.com/tywrap/bridge/internal/dispatch"
)

// Name is the module name this package registers under.
const Name = "demo"

// Module builds the demo module's function and class table.
func Module() *dispatch.Module {
	return &dispatch.Module{
		Functions: map[string]dispatch.Function{
			"echo":       echo,
			"add":        add,
			"boom":       boom,
			"nan_values": nanValues,
		},
		Classes: map[string]dispatch.Constructor{
			"Counter": newCounter,
		},
	}
}

// echo returns its single positional argument unchanged, exercising the
// codec's structural round-trip for arbitrary JSON values.
func echo(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return args[0], nil
}

// add sums two numeric arguments, accepting them positionally or as kwargs
// "a"/"b".
func add(args []any, kwargs map[string]any) (any, error) {
	a, b, err := twoNumbers(args, kwargs)
	if err != nil {
		return nil, err
	}
	return a + b, nil
}

func twoNumbers(args []any, kwargs map[string]any) (float64, float64, error) {
	var a, b any
	switch {
	case len(args) >= 2:
		a, b = args[0], args[1]
	case kwargs["a"] != nil && kwargs["b"] != nil:
		a, b = kwargs["a"], kwargs["b"]
	default:
		return 0, 0, bridgeerr.Protocol("add requires two numeric arguments")
	}
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if !aok || !bok {
		return 0, 0, bridgeerr.Protocol("add requires two numeric arguments")
	}
	return af, bf, nil
}

// boom always fails, exercising the handler-raised error path.
func boom(_ []any, _ map[string]any) (any, error) {
	return nil, bridgeerr.Handler(fmt.Errorf("boom: deliberate failure"), "RuntimeError", "")
}

// nanValues returns a slice containing NaN, +Infinity, and -Infinity,
// exercising the encoder's NaN/Infinity rejection policy.
func nanValues(_ []any, _ map[string]any) (any, error) {
	return []float64{math.NaN(), math.Inf(1), math.Inf(-1)}, nil
}

// counter is a stateful instance minted by "instantiate".
type counter struct {
	value int
}

func newCounter(args []any, kwargs map[string]any) (dispatch.Instance, error) {
	start := 0
	if len(args) > 0 {
		if f, ok := args[0].(float64); ok {
			start = int(f)
		}
	} else if v, ok := kwargs["start"]; ok {
		if f, ok := v.(float64); ok {
			start = int(f)
		}
	}
	return &counter{value: start}, nil
}

func (c *counter) CallMethod(methodName string, args []any, _ map[string]any) (any, error) {
	switch methodName {
	case "increment":
		step := 1
		if len(args) > 0 {
			if f, ok := args[0].(float64); ok {
				step = int(f)
			}
		}
		c.value += step
		return c.value, nil
	case "value":
		return c.value, nil
	default:
		return nil, bridgeerr.Protocol("method %q not found on Counter", methodName)
	}
}
