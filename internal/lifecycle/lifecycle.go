// Package lifecycle models the one-way progression of an instance handle:
// Unborn -> Live (activate) -> Disposed (dispose). Disposed is terminal;
// no event leaves it. The registry builds one Handle per registered object
// so that lookup and disposal can be checked against the handle's stage
// instead of ad-hoc booleans.
// file: internal/lifecycle/lifecycle.go
package lifecycle

import (
	"context"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"

	"github.com/tywrap/bridge/internal/logging"
)

// Stage is a point in a handle's lifetime.
type Stage string

// The three stages of a handle, in order.
const (
	StageUnborn   Stage = "unborn"
	StageLive     Stage = "live"
	StageDisposed Stage = "disposed"
)

// Event names for the underlying machine.
const (
	eventActivate = "activate"
	eventDispose  = "dispose"
)

// ErrNotLive marks a transition attempted against a handle that is not in
// StageLive (already disposed, or never activated).
var ErrNotLive = errors.New("handle is not live")

// Handle tracks one instance handle's stage. It is not safe for concurrent
// use on its own; the registry serializes access under its lock.
type Handle struct {
	machine *lfsm.FSM
	logger  logging.Logger
}

// NewHandle returns a Handle in StageUnborn.
func NewHandle(logger logging.Logger) *Handle {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	machine := lfsm.NewFSM(
		string(StageUnborn),
		lfsm.Events{
			{Name: eventActivate, Src: []string{string(StageUnborn)}, Dst: string(StageLive)},
			{Name: eventDispose, Src: []string{string(StageLive)}, Dst: string(StageDisposed)},
		},
		lfsm.Callbacks{},
	)
	return &Handle{machine: machine, logger: logger}
}

// Stage returns the handle's current stage.
func (h *Handle) Stage() Stage {
	return Stage(h.machine.Current())
}

// IsLive reports whether the handle is in StageLive, the only stage in
// which lookups against it may succeed.
func (h *Handle) IsLive() bool {
	return h.machine.Is(string(StageLive))
}

// Activate moves the handle from Unborn to Live. It fails if the handle has
// already been activated or disposed.
func (h *Handle) Activate(ctx context.Context) error {
	if err := h.machine.Event(ctx, eventActivate); err != nil {
		h.logger.Warn("handle activation rejected", "stage", h.Stage(), "error", err)
		return errors.Mark(errors.Wrap(err, "could not activate handle"), ErrNotLive)
	}
	return nil
}

// Dispose moves the handle from Live to Disposed. A second Dispose (or a
// Dispose before Activate) returns an error marked ErrNotLive; callers that
// need idempotent disposal check IsLive first or treat the marked error as
// "nothing removed".
func (h *Handle) Dispose(ctx context.Context) error {
	if err := h.machine.Event(ctx, eventDispose); err != nil {
		h.logger.Debug("handle disposal rejected", "stage", h.Stage(), "error", err)
		return errors.Mark(errors.Wrap(err, "could not dispose handle"), ErrNotLive)
	}
	return nil
}
