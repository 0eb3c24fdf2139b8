// Package bridge wires the framed I/O loop, the dispatcher, the instance
// registry, and the response-value codec into a single runnable Bridge.
// file: internal/bridge/bridge.go
package bridge

import (
	"context"
	"encoding/json"
	"io"

	"github.com/qmuntal/stateless"
	"github.com/tywrap/bridge/internal/bridgeerr"
	"github.com/tywrap/bridge/internal/codec"
	"github.com/tywrap/bridge/internal/config"
	"github.com/tywrap/bridge/internal/demomodule"
	"github.com/tywrap/bridge/internal/dispatch"
	"github.com/tywrap/bridge/internal/logging"
	"github.com/tywrap/bridge/internal/protocol"
)

// Process lifecycle states and triggers for the bridge's own run-once
// guard, distinct from the per-instance Unborn/Live/Disposed machines the
// registry builds per handle.
const (
	lifecycleIdle    = "idle"
	lifecycleRunning = "running"
	lifecycleStopped = "stopped"

	triggerStart = "start"
	triggerStop  = "stop"
)

// Bridge owns the dispatcher, codec, and framed loop for one process
// lifetime.
type Bridge struct {
	Dispatcher *dispatch.Dispatcher
	Codec      *codec.Codec
	Settings   config.Settings
	Logger     logging.Logger

	lifecycle *stateless.StateMachine
}

// New builds a Bridge with its own dispatcher (pre-registered with
// demomodule.Module, the runtime's built-in callable surface) and codec,
// from startup settings.
func New(settings config.Settings, logger logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.GetLogger("bridge")
	}

	d := dispatch.New(dispatch.NewMeta(settings), logger)
	d.Resolver.Register(demomodule.Name, demomodule.Module())

	lifecycle := stateless.NewStateMachine(lifecycleIdle)
	lifecycle.Configure(lifecycleIdle).Permit(triggerStart, lifecycleRunning)
	lifecycle.Configure(lifecycleRunning).Permit(triggerStop, lifecycleStopped)
	lifecycle.Configure(lifecycleStopped)

	return &Bridge{
		Dispatcher: d,
		Codec:      codec.New(settings),
		Settings:   settings,
		Logger:     logger,
		lifecycle:  lifecycle,
	}
}

// Register adds an additional callable module to the bridge's resolver,
// for host programs embedding the bridge with their own functions/classes
// beyond demomodule.
func (b *Bridge) Register(name string, m *dispatch.Module) {
	b.Dispatcher.Resolver.Register(name, m)
}

// Run drives the framed I/O loop against stdin/stdout until clean
// termination (EOF or broken pipe). A Bridge runs at most once; a second
// call returns a ProtocolError rather than racing the first loop over
// stdout.
func (b *Bridge) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := b.lifecycle.Fire(triggerStart); err != nil {
		return bridgeerr.Protocol("bridge already running or stopped")
	}
	defer b.lifecycle.Fire(triggerStop)

	loop := &protocol.Loop{
		Reader:   stdin,
		Writer:   stdout,
		Stderr:   stderr,
		Settings: b.Settings,
		Logger:   b.Logger,
		Handle: func(ctx context.Context, method string, params json.RawMessage) (any, error) {
			return b.Dispatcher.Dispatch(ctx, method, params)
		},
		Encode: b.Codec.Encode,
	}
	return loop.Run(ctx)
}
