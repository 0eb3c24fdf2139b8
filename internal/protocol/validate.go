// file: internal/protocol/validate.go
package protocol

import (
	"encoding/json"

	"github.com/tywrap/bridge/internal/bridgeerr"
)

// Validated is the result of a successful envelope validation: the fields
// the dispatcher needs, extracted and type-checked.
type Validated struct {
	ID     int64
	Method string
	Params json.RawMessage
}

// Validate parses line as a request envelope and enforces the protocol
// contract: a JSON object, the exact protocol literal, a non-negative
// integer id, a string method, and params that are absent, null, or an
// object. On failure it returns bridgeerr.ErrProtocol (or ErrJSONDecode for
// a line that isn't JSON at all) along with the best-effort id recovered so
// far (UnrecoverableID if none).
func Validate(line []byte) (Validated, int64, error) {
	var raw rawRequest
	if err := json.Unmarshal(line, &raw); err != nil {
		return Validated{}, UnrecoverableID, bridgeerr.JSONDecode(err)
	}

	// A bare JSON scalar/array unmarshals into rawRequest's zero value with
	// every field nil; reject it explicitly rather than proceeding with
	// all-missing fields.
	var probe any
	if err := json.Unmarshal(line, &probe); err == nil {
		if _, isObject := probe.(map[string]any); !isObject {
			return Validated{}, UnrecoverableID, bridgeerr.Protocol("request line is not a JSON object")
		}
	}

	id, idErr := extractID(raw.ID)

	var protocolLit string
	if raw.Protocol != nil {
		_ = json.Unmarshal(raw.Protocol, &protocolLit)
	}
	if protocolLit != ProtocolLiteral {
		return Validated{}, id, bridgeerr.Protocol("missing or mismatched protocol literal, want %q", ProtocolLiteral)
	}

	if idErr != nil {
		return Validated{}, UnrecoverableID, idErr
	}

	var method string
	if raw.Method != nil {
		_ = json.Unmarshal(raw.Method, &method)
	}
	if method == "" {
		return Validated{}, id, bridgeerr.Protocol("missing or non-string method")
	}

	if raw.Params != nil {
		var probeParams any
		if err := json.Unmarshal(raw.Params, &probeParams); err != nil {
			return Validated{}, id, bridgeerr.Protocol("params is not valid JSON")
		}
		if probeParams != nil {
			if _, isObject := probeParams.(map[string]any); !isObject {
				return Validated{}, id, bridgeerr.Protocol("params present but not an object")
			}
		}
	}

	return Validated{ID: id, Method: method, Params: raw.Params}, id, nil
}

// RecoverID makes a best-effort attempt to pull a usable request id out of
// line without validating the rest of the envelope, so that a request
// rejected before validation (an oversized line, for example) can still be
// answered on its own id. It returns UnrecoverableID when the line does not
// parse or carries no well-formed id.
func RecoverID(line []byte) int64 {
	var raw rawRequest
	if err := json.Unmarshal(line, &raw); err != nil {
		return UnrecoverableID
	}
	id, err := extractID(raw.ID)
	if err != nil {
		return UnrecoverableID
	}
	return id
}

// extractID returns the request id from raw JSON, requiring a non-negative
// integer. A missing id field returns UnrecoverableID with an error.
func extractID(raw json.RawMessage) (int64, error) {
	if raw == nil || string(raw) == "null" {
		return UnrecoverableID, bridgeerr.Protocol("id absent or not a non-negative integer")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return UnrecoverableID, bridgeerr.Protocol("id absent or not a non-negative integer")
	}
	if f < 0 || f != float64(int64(f)) {
		return UnrecoverableID, bridgeerr.Protocol("id absent or not a non-negative integer")
	}
	return int64(f), nil
}
