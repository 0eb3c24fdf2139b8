// file: internal/codec/encode.go
package codec

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"

	"github.com/tywrap/bridge/internal/bridgeerr"
	"github.com/tywrap/bridge/internal/config"
)

// Codec is the response-value encoder. It holds the startup settings
// that govern codec fallback mode and tensor copy permission.
type Codec struct {
	Settings config.Settings

	// permissive lets NaN and Infinity pass through instead of failing the
	// encode. Internal-use only: the bridge's outer loop always runs with
	// the default reject policy.
	permissive bool
}

// New builds a Codec from startup settings.
func New(settings config.Settings) *Codec {
	return &Codec{Settings: settings}
}

// NewPermissive builds a Codec that passes NaN and Infinity through rather
// than rejecting them. Never wire this into the response path; it exists
// for embedders that encode values for their own diagnostics.
func NewPermissive(settings config.Settings) *Codec {
	return &Codec{Settings: settings, permissive: true}
}

// Encode converts a host-native value into a JSON-safe document. Dispatch
// order is fixed and first-match-wins: ndarray, dataframe, series, sparse
// matrix, tensor, estimator, validated record, standard scalar extensions,
// then passthrough.
func (c *Codec) Encode(value any) (any, error) {
	return c.encode(value, nil)
}

// encode carries the stack of container pointers seen on the current
// recursion path so a self-referential map or slice is rejected instead of
// looping.
func (c *Codec) encode(value any, seen []uintptr) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case NDArray:
		return c.encodeNDArray(v)
	case *NDArray:
		if v == nil {
			return nil, nil
		}
		return c.encodeNDArray(*v)

	case DataFrame:
		return c.encodeDataFrame(v)
	case *DataFrame:
		if v == nil {
			return nil, nil
		}
		return c.encodeDataFrame(*v)

	case Series:
		return c.encodeSeries(v)
	case *Series:
		if v == nil {
			return nil, nil
		}
		return c.encodeSeries(*v)

	case SparseMatrix:
		return c.encodeSparse(v)
	case *SparseMatrix:
		if v == nil {
			return nil, nil
		}
		return c.encodeSparse(*v)

	case Tensor:
		return c.encodeTensor(v)
	case *Tensor:
		if v == nil {
			return nil, nil
		}
		return c.encodeTensor(*v)

	case Estimator:
		return c.encodeEstimator(v)
	case *Estimator:
		if v == nil {
			return nil, nil
		}
		return c.encodeEstimator(*v)

	case ValidatedRecord:
		dump, err := v.DumpJSON(true, true)
		if err != nil {
			return nil, bridgeerr.CodecWrap(err, "validated record dump failed")
		}
		return c.passthrough(dump, seen)

	case AliasOnlyRecord:
		dump, err := v.DumpAliased()
		if err != nil {
			return nil, bridgeerr.CodecWrap(err, "validated record dump failed")
		}
		return c.passthrough(dump, seen)

	case Timestamp:
		return v.ISO8601(), nil
	case *Timestamp:
		if v == nil {
			return nil, nil
		}
		return v.ISO8601(), nil
	case Date:
		return v.ISO8601(), nil
	case Clock:
		return v.ISO8601(), nil
	case Duration:
		return v.Seconds(), nil
	case Decimal:
		return v.String(), nil
	case UUID:
		return v.String(), nil
	case Path:
		return string(v), nil
	case Bytes:
		return bytesEnvelope(v), nil
	case []byte:
		return bytesEnvelope(v), nil

	case Scalar:
		return c.encode(v.Value, seen)

	case float32:
		return c.rejectNaN(float64(v))
	case float64:
		return c.rejectNaN(v)

	default:
		return c.encodeSet(v, seen)
	}
}

func (c *Codec) encodeSet(v any, seen []uintptr) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().NumField() == 0 {
		out := make([]any, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			encoded, err := c.encode(key.Interface(), seen)
			if err != nil {
				return nil, err
			}
			out = append(out, encoded)
		}
		return out, nil
	}
	return c.passthrough(v, seen)
}

// passthrough hands value to the underlying JSON encoder, recursing through
// slices and maps so nested NaN/Infinity and unsupported types are still
// caught, matching the Python codec's default-encoder fallthrough.
func (c *Codec) passthrough(value any, seen []uintptr) (any, error) {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		ptr := rv.Pointer()
		for _, p := range seen {
			if p == ptr {
				return nil, bridgeerr.Codec("circular reference")
			}
		}
		seen = append(seen, ptr)
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			encoded, err := c.encode(rv.Index(i).Interface(), seen)
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil

	case reflect.Map:
		out := make(map[string]any, rv.Len())
		for _, key := range rv.MapKeys() {
			encoded, err := c.encode(rv.MapIndex(key).Interface(), seen)
			if err != nil {
				return nil, err
			}
			out[stringifyScalar(key.Interface())] = encoded
		}
		return out, nil

	case reflect.Invalid:
		return nil, nil
	}

	if _, err := json.Marshal(value); err != nil {
		return nil, bridgeerr.Codec("Object of type %T is not JSON serializable", value)
	}
	return value, nil
}

func (c *Codec) rejectNaN(f float64) (any, error) {
	if c.permissive {
		return f, nil
	}
	if math.IsNaN(f) {
		return nil, bridgeerr.Codec("value is NaN, which cannot be encoded")
	}
	if math.IsInf(f, 1) {
		return nil, bridgeerr.Codec("value is Infinity, which cannot be encoded")
	}
	if math.IsInf(f, -1) {
		return nil, bridgeerr.Codec("value is -Infinity, which cannot be encoded")
	}
	return f, nil
}

func bytesEnvelope(b []byte) map[string]any {
	return map[string]any{
		"__type__": "bytes",
		"encoding": "base64",
		"data":     base64.StdEncoding.EncodeToString(b),
	}
}

func toJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
