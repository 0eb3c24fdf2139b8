// Package bridgeerr defines the bridge's closed error taxonomy and the
// wire-format packager that turns a Go error into a response `error` object.
// file: internal/bridgeerr/bridgeerr.go
package bridgeerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Type is the wire-level discriminator carried in a response's error.type
// field. The set is closed: an error not matching one of these sentinels is
// reported as HandlerError with the cause's message, except a handler-raised
// error built by Handler, which is reported under its own kind name.
type Type string

// The bridge's complete error taxonomy.
const (
	TypeProtocolError        Type = "ProtocolError"
	TypeRequestTooLargeError Type = "RequestTooLargeError"
	TypePayloadTooLargeError Type = "PayloadTooLargeError"
	TypeCodecError           Type = "CodecError"
	TypeInstanceHandleError  Type = "InstanceHandleError"
	TypeHandlerError         Type = "HandlerError"
	TypeJSONDecodeError      Type = "JSONDecodeError"
)

// Sentinel errors, marked onto a wrapped cause via errors.Mark so the
// packager (Package, below) can recover the wire Type with errors.Is.
var (
	ErrProtocol        = errors.New("protocol error")
	ErrRequestTooLarge = errors.New("request too large")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrCodec           = errors.New("codec error")
	ErrInstanceHandle  = errors.New("instance handle error")
	ErrJSONDecode      = errors.New("json decode error")
)

// Numeric compatibility codes, following the JSON-RPC 2.0 reserved-range
// convention, with a private -32000..-32004 block for the bridge's own
// taxonomy.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeRequestTooLarge = -32000
	CodePayloadTooLarge = -32001
	CodeCodecError      = -32002
	CodeInstanceHandle  = -32003
	CodeHandlerError    = -32004
)

func codeFor(t Type) int {
	switch t {
	case TypeProtocolError:
		return CodeInvalidRequest
	case TypeJSONDecodeError:
		return CodeParseError
	case TypeRequestTooLargeError:
		return CodeRequestTooLarge
	case TypePayloadTooLargeError:
		return CodePayloadTooLarge
	case TypeCodecError:
		return CodeCodecError
	case TypeInstanceHandleError:
		return CodeInstanceHandle
	default:
		return CodeHandlerError
	}
}

// Protocol builds a ProtocolError from a format string and its arguments.
func Protocol(format string, args ...any) error {
	err := errors.Newf(format, args...)
	return errors.Mark(err, ErrProtocol)
}

// JSONDecode wraps a JSON-parse failure.
func JSONDecode(cause error) error {
	err := errors.Wrap(cause, "could not decode request line as JSON")
	return errors.Mark(err, ErrJSONDecode)
}

// RequestTooLarge reports an input line exceeding the configured ceiling.
func RequestTooLarge(size, limit int64) error {
	err := errors.Newf("request of %d bytes exceeds limit of %d bytes", size, limit)
	return errors.Mark(err, ErrRequestTooLarge)
}

// PayloadTooLarge reports an encoded response exceeding the configured ceiling.
func PayloadTooLarge(size, limit int64) error {
	err := errors.Newf("response of %d bytes exceeds limit of %d bytes", size, limit)
	return errors.Mark(err, ErrPayloadTooLarge)
}

// Codec wraps a value-encoding or value-decoding failure.
func Codec(format string, args ...any) error {
	err := errors.Newf(format, args...)
	return errors.Mark(err, ErrCodec)
}

// CodecWrap wraps cause as a CodecError, preserving its message as context.
func CodecWrap(cause error, format string, args ...any) error {
	err := errors.Wrapf(cause, format, args...)
	return errors.Mark(err, ErrCodec)
}

// InstanceHandle reports a lookup against an unknown or disposed handle.
func InstanceHandle(format string, args ...any) error {
	err := errors.Newf(format, args...)
	return errors.Mark(err, ErrInstanceHandle)
}

// Wire is the JSON shape of a response's error object.
type Wire struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Traceback string `json:"traceback,omitempty"`
}

// handlerError wraps an error raised by user code, carrying a bounded
// traceback string. It is never one of the closed sentinel types, so
// Package reports it with kind (or "HandlerError" if kind is empty) as the
// wire type.
type handlerError struct {
	cause     error
	kind      string
	traceback string
}

func (e *handlerError) Error() string { return e.cause.Error() }
func (e *handlerError) Unwrap() error { return e.cause }

// maxTraceback bounds the traceback carried on a handler-raised error.
const maxTraceback = 4 * 1024

// Handler wraps a user-code failure as a handler-raised error. kind is the
// short symbolic name of the originating exception/error kind (e.g. a Go
// panic's recovered type name); traceback is truncated to maxTraceback.
func Handler(cause error, kind, traceback string) error {
	if len(traceback) > maxTraceback {
		traceback = traceback[:maxTraceback]
	}
	return &handlerError{cause: cause, kind: kind, traceback: traceback}
}

// Package classifies err against the taxonomy above and builds its wire
// representation. A handler-raised error built by Handler is reported under
// its kind (HandlerError when the kind is empty) with its cause's message
// and bounded traceback. Any other error that does not match a known
// sentinel is reported as HandlerError, carrying the cause's message and no
// traceback.
func Package(err error) Wire {
	var he *handlerError
	if errors.As(err, &he) {
		t := string(TypeHandlerError)
		if he.kind != "" {
			t = he.kind
		}
		return Wire{
			Type:      t,
			Message:   he.cause.Error(),
			Code:      CodeHandlerError,
			Traceback: he.traceback,
		}
	}

	t := classify(err)
	return Wire{
		Type:    string(t),
		Message: errors.UnwrapAll(err).Error(),
		Code:    codeFor(t),
	}
}

func classify(err error) Type {
	switch {
	case errors.Is(err, ErrProtocol):
		return TypeProtocolError
	case errors.Is(err, ErrJSONDecode):
		return TypeJSONDecodeError
	case errors.Is(err, ErrRequestTooLarge):
		return TypeRequestTooLargeError
	case errors.Is(err, ErrPayloadTooLarge):
		return TypePayloadTooLargeError
	case errors.Is(err, ErrCodec):
		return TypeCodecError
	case errors.Is(err, ErrInstanceHandle):
		return TypeInstanceHandleError
	default:
		return TypeHandlerError
	}
}

// UserFacingMessage renders a short, stable description for a wire Type.
func UserFacingMessage(t Type) string {
	switch t {
	case TypeProtocolError:
		return "malformed request envelope"
	case TypeRequestTooLargeError:
		return "request exceeds configured size ceiling"
	case TypePayloadTooLargeError:
		return "response exceeds configured size ceiling"
	case TypeCodecError:
		return "value could not be encoded or decoded"
	case TypeInstanceHandleError:
		return "unknown or disposed instance handle"
	case TypeJSONDecodeError:
		return "request line is not valid JSON"
	default:
		return fmt.Sprintf("handler error (%s)", t)
	}
}
