// file: internal/codec/decode.go
package codec

import (
	"encoding/base64"

	"github.com/tywrap/bridge/internal/bridgeerr"
)

// Decode recursively restores host-native values from a JSON-decoded value
// tree (as produced by encoding/json's default unmarshal into any). The
// only recognized transformation is a bytes envelope, in either of its two
// accepted shapes; every other value passes through structurally.
func Decode(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if b, ok, err := decodeBytesEnvelope(v); ok {
			if err != nil {
				return nil, err
			}
			return b, nil
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			decoded, err := Decode(val)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil

	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			decoded, err := Decode(val)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil

	default:
		return value, nil
	}
}

// decodeBytesEnvelope recognizes both request-side binary envelope shapes:
// {"__tywrap_bytes__":true,"b64":...} and
// {"__type__":"bytes","encoding":"base64","data":...}.
func decodeBytesEnvelope(m map[string]any) ([]byte, bool, error) {
	if marker, ok := m["__tywrap_bytes__"]; ok {
		if isTrue, _ := marker.(bool); isTrue {
			encoded, _ := m["b64"].(string)
			b, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, true, bridgeerr.Protocol("Invalid bytes envelope: invalid base64")
			}
			return b, true, nil
		}
	}

	if typ, ok := m["__type__"].(string); ok && typ == "bytes" {
		if enc, _ := m["encoding"].(string); enc == "base64" {
			encoded, _ := m["data"].(string)
			b, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, true, bridgeerr.Protocol("Invalid bytes envelope: invalid base64")
			}
			return b, true, nil
		}
	}

	return nil, false, nil
}
