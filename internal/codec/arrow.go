// file: internal/codec/arrow.go
package codec

import (
	"bytes"
	"encoding/base64"
	"io"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/ipc"
	"github.com/apache/arrow/go/v15/arrow/memory"
	"github.com/cockroachdb/errors"
)

var arrowAllocator = memory.NewGoAllocator()

// writeFloat64IPCStream builds a one-column Arrow table holding values under
// the given column name and writes it as an Arrow IPC stream, returning the
// base64-encoded bytes. Used for ndarray and series envelopes.
func writeFloat64IPCStream(name string, values []float64) (string, error) {
	schema := arrow.NewSchema(
		[]arrow.Field{{Name: name, Type: arrow.PrimitiveTypes.Float64}},
		nil,
	)

	builder := array.NewFloat64Builder(arrowAllocator)
	defer builder.Release()
	builder.AppendValues(values, nil)
	col := builder.NewFloat64Array()
	defer col.Release()

	record := array.NewRecord(schema, []arrow.Array{col}, int64(len(values)))
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	if err := writer.Write(record); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeDataFrameFeatherV2 builds an Arrow table from df's columns and writes
// it as an uncompressed Arrow IPC file (Feather v2), returning the
// base64-encoded bytes. A column whose values are not uniformly numeric,
// string, or boolean fails the build; the caller degrades to the JSON
// records variant.
func writeDataFrameFeatherV2(df DataFrame) (string, error) {
	fields := make([]arrow.Field, len(df.Columns))
	cols := make([]arrow.Array, len(df.Columns))
	defer func() {
		for _, a := range cols {
			if a != nil {
				a.Release()
			}
		}
	}()

	for i, c := range df.Columns {
		field, col, err := buildColumn(c)
		if err != nil {
			return "", err
		}
		fields[i] = field
		cols[i] = col
	}

	schema := arrow.NewSchema(fields, nil)
	numRows := int64(0)
	if len(df.Columns) > 0 {
		numRows = int64(len(df.Columns[0].Values))
	}
	record := array.NewRecord(schema, cols, numRows)
	defer record.Release()

	var buf seekableBuffer
	// IPC file format (Feather v2), explicitly uncompressed: decoders are
	// not required to support compressed record batches.
	writer, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(arrowAllocator))
	if err != nil {
		return "", err
	}
	if err := writer.Write(record); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// seekableBuffer is an in-memory io.WriteSeeker, needed because
// ipc.NewFileWriter requires Seek support to patch in footer offsets after
// the record batches are written; bytes.Buffer alone does not implement it.
type seekableBuffer struct {
	buf []byte
	pos int
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	if s.pos+len(p) > len(s.buf) {
		grown := make([]byte, s.pos+len(p))
		copy(grown, s.buf)
		s.buf = grown
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = int64(s.pos) + offset
	case io.SeekEnd:
		newPos = int64(len(s.buf)) + offset
	default:
		return 0, errors.New("seekableBuffer: invalid whence")
	}
	if newPos < 0 {
		return 0, errors.New("seekableBuffer: negative position")
	}
	s.pos = int(newPos)
	return newPos, nil
}

func (s *seekableBuffer) Bytes() []byte {
	return s.buf
}

// buildColumn infers a single Arrow type for one column and builds its
// array. Nulls (JSON null) are allowed in any column; mixed scalar types
// are not.
func buildColumn(c Column) (arrow.Field, arrow.Array, error) {
	kind := columnKind(c.Values)
	switch kind {
	case columnFloat:
		b := array.NewFloat64Builder(arrowAllocator)
		defer b.Release()
		for _, v := range c.Values {
			if v == nil {
				b.AppendNull()
				continue
			}
			f, _ := asFloat(v)
			b.Append(f)
		}
		return arrow.Field{Name: c.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}, b.NewFloat64Array(), nil

	case columnString:
		b := array.NewStringBuilder(arrowAllocator)
		defer b.Release()
		for _, v := range c.Values {
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.(string))
		}
		return arrow.Field{Name: c.Name, Type: arrow.BinaryTypes.String, Nullable: true}, b.NewStringArray(), nil

	case columnBool:
		b := array.NewBooleanBuilder(arrowAllocator)
		defer b.Release()
		for _, v := range c.Values {
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.(bool))
		}
		return arrow.Field{Name: c.Name, Type: arrow.FixedWidthTypes.Boolean, Nullable: true}, b.NewBooleanArray(), nil
	}

	return arrow.Field{}, nil, errColumnNotArrow
}

var errColumnNotArrow = errors.New("column values do not map to a single Arrow type")

type columnType int

const (
	columnMixed columnType = iota
	columnFloat
	columnString
	columnBool
)

// columnKind inspects a column's non-null values and returns the single
// Arrow-mappable type they share, or columnMixed.
func columnKind(values []any) columnType {
	kind := columnMixed
	for _, v := range values {
		if v == nil {
			continue
		}
		var k columnType
		switch v.(type) {
		case float64, float32, int, int32, int64:
			k = columnFloat
		case string:
			k = columnString
		case bool:
			k = columnBool
		default:
			return columnMixed
		}
		if kind == columnMixed {
			kind = k
		} else if kind != k {
			return columnMixed
		}
	}
	return kind
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func stringifyScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return toJSONString(x)
	}
}
