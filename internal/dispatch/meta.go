// file: internal/dispatch/meta.go
package dispatch

import (
	"os"
	"runtime"

	"github.com/tywrap/bridge/internal/config"
	"github.com/tywrap/bridge/internal/protocol"
)

// BridgeTag is the short identifier for this runtime implementation,
// returned from meta, the counterpart of the Python bridge's
// "python-subprocess" tag.
const BridgeTag = "go-subprocess"

// Meta implements the capability reporter for the meta method. Its probes are feature
// checks only — they never import or exercise the optional codec
// dependencies during meta handling.
type Meta struct {
	Settings config.Settings
}

// NewMeta builds a Meta reporter from startup settings.
func NewMeta(settings config.Settings) *Meta {
	return &Meta{Settings: settings}
}

// Build returns the fixed-shape capability object for the current process,
// given the current live instance count.
func (m *Meta) Build(instances int) protocol.Capabilities {
	fallback := "none"
	if m.Settings.FallbackActive() {
		fallback = "json"
	}

	return protocol.Capabilities{
		Protocol:        protocol.ProtocolLiteral,
		ProtocolVersion: protocol.Version,
		Bridge:          BridgeTag,
		RuntimeVersion:  runtime.Version(),
		PID:             os.Getpid(),
		CodecFallback:   fallback,
		Instances:       instances,

		// The Arrow, sparse, tensor, and estimator envelope producers are
		// always compiled in for this implementation — there is no
		// optional-build-tag story the way the host ecosystem's codec
		// dependencies are individually installable.
		HasArrow:     true,
		HasSparse:    true,
		HasTensor:    true,
		HasEstimator: true,
	}
}
