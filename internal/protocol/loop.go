// file: internal/protocol/loop.go
package protocol

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tywrap/bridge/internal/bridgeerr"
	"github.com/tywrap/bridge/internal/config"
	"github.com/tywrap/bridge/internal/logging"
)

// diagnosticLimit bounds a stderr diagnostic line.
const diagnosticLimit = 2 * 1024

// Handler processes one validated request and returns its result value.
// Any error is packaged by the loop into an error response; Handler must
// never write to stdout itself.
type Handler func(ctx context.Context, method string, params json.RawMessage) (any, error)

// Encoder turns a handler's result value into a JSON-safe document. It is
// the seam the codec package plugs into; keeping it as a narrow
// function type lets the loop stay decoupled from the codec's dependency
// footprint.
type Encoder func(value any) (any, error)

// Loop is the framed, strictly-sequential newline-delimited I/O loop.
type Loop struct {
	Reader   io.Reader
	Writer   io.Writer
	Stderr   io.Writer
	Settings config.Settings
	Handle   Handler
	Encode   Encoder
	Logger   logging.Logger
}

// Run reads one JSON request per line until EOF or a write failure, writing
// exactly one response line per non-empty input line. It returns nil on
// clean termination (EOF, broken pipe) and a non-nil error only for
// conditions the caller should treat as a fatal startup/configuration
// problem — in normal operation Run always returns nil.
func (l *Loop) Run(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	scanner := bufio.NewScanner(l.Reader)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		resp := l.processLine(ctx, line, logger)

		encoded, err := json.Marshal(resp)
		if err != nil {
			// The response itself couldn't be serialized (should only
			// happen if a handler result smuggled something the encoder
			// missed). Fall back to a bare ProtocolError.
			resp = NewError(resp.ID, errorBody(bridgeerr.Protocol("response could not be serialized")))
			encoded, err = json.Marshal(resp)
			if err != nil {
				// Even the fallback failed to serialize; terminate cleanly.
				return nil
			}
		}

		if limit := l.Settings.ResponseSizeLimitBytes; limit > 0 && int64(len(encoded)) > limit {
			resp = NewError(resp.ID, errorBody(bridgeerr.PayloadTooLarge(int64(len(encoded)), limit)))
			encoded, err = json.Marshal(resp)
			if err != nil {
				return nil
			}
		}

		if _, err := l.Writer.Write(append(encoded, '\n')); err != nil {
			// Broken output pipe: terminate cleanly, no further diagnostics.
			return nil
		}
	}

	return nil
}

func (l *Loop) processLine(ctx context.Context, line []byte, logger logging.Logger) Response {
	if limit := l.Settings.RequestSizeLimitBytes; limit > 0 && int64(len(line)) > limit {
		// The line is still well-formed JSON in the common case; recover its
		// id so the caller can correlate the rejection.
		return NewError(RecoverID(line), errorBody(bridgeerr.RequestTooLarge(int64(len(line)), limit)))
	}

	validated, id, err := Validate(line)
	if err != nil {
		l.diagnose(logger, "rejected request envelope", err, line)
		return NewError(id, errorBody(err))
	}

	result, err := l.Handle(ctx, validated.Method, validated.Params)
	if err != nil {
		return NewError(validated.ID, errorBody(err))
	}

	if l.Encode != nil {
		encodedResult, err := l.Encode(result)
		if err != nil {
			return NewError(validated.ID, errorBody(err))
		}
		result = encodedResult
	}

	return NewResult(validated.ID, result)
}

// diagnose writes a bounded description of a rejected envelope to stderr.
// The snippet is truncated so a hostile or enormous line cannot flood the
// diagnostic stream; callers must not parse this output.
func (l *Loop) diagnose(logger logging.Logger, msg string, err error, line []byte) {
	snippet := line
	if len(snippet) > diagnosticLimit {
		snippet = snippet[:diagnosticLimit]
	}
	logger.Warn(msg, "error", err, "line", string(snippet))
	if l.Stderr != nil {
		fmt.Fprintf(l.Stderr, "%s: %v: %s\n", msg, err, snippet)
	}
}

func errorBody(err error) ErrorBody {
	w := bridgeerr.Package(err)
	return ErrorBody{Type: w.Type, Message: w.Message, Code: w.Code, Traceback: w.Traceback}
}
