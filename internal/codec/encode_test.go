// file: internal/codec/encode_test.go
package codec

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tywrap/bridge/internal/config"
)

func TestEncode_Passthrough(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(map[string]any{"a": float64(1), "b": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": "x"}, out)
}

func TestEncode_RejectsNaN(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(nan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NaN")
}

func TestEncode_RejectsPositiveInfinity(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(posInf())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Infinity")
}

func TestEncode_RejectsNegativeInfinity(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(negInf())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Infinity")
}

func TestEncode_Duration_CanBeNegative(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(Duration(-5_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, -5.0, out)
}

func TestEncode_Decimal_EncodesAsString(t *testing.T) {
	c := New(config.Default())
	d := NewDecimal(decimal.RequireFromString("12345678901234567890.123456789"))
	out, err := c.Encode(d)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567890.123456789", out)
}

func TestEncode_UUID_EncodesAsCanonicalString(t *testing.T) {
	c := New(config.Default())
	u := uuid.New()
	out, err := c.Encode(NewUUID(u))
	require.NoError(t, err)
	assert.Equal(t, u.String(), out)
}

func TestEncode_Bytes_EncodesAsTypeEnvelope(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(Bytes("Hello"))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "bytes", m["__type__"])
	assert.Equal(t, "base64", m["encoding"])
	assert.Equal(t, "SGVsbG8=", m["data"])
}

func TestEncode_NDArray_JSONFallback(t *testing.T) {
	settings := config.Default()
	settings.CodecFallback = config.FallbackJSON
	c := New(settings)
	out, err := c.Encode(NDArray{Data: []float64{1, 2, 3}, Shape: []int{3}, Dtype: "float64"})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, DiscNDArray, m["__tywrap__"])
	assert.Equal(t, "json", m["encoding"])
	assert.Equal(t, []float64{1, 2, 3}, m["data"])
}

func TestEncode_NDArray_ArrowEncoding(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(NDArray{Data: []float64{1, 2, 3}, Shape: []int{3}})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "arrow", m["encoding"])
	assert.NotEmpty(t, m["b64"])
}

func TestEncode_NDArray_RejectsEmbeddedNaN(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(NDArray{Data: []float64{1, nan(), 3}})
	require.Error(t, err)
}

func TestEncode_SparseMatrix_CSR(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(SparseMatrix{
		Format: SparseCSR, Shape: [2]int{2, 2},
		Data: []float64{1, 2}, Indices: []int{0, 1}, Indptr: []int{0, 1, 2},
	})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, DiscSparse, m["__tywrap__"])
	assert.Equal(t, "csr", m["format"])
}

func TestEncode_SparseMatrix_RejectsUnknownFormat(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(SparseMatrix{Format: "dia", Shape: [2]int{1, 1}})
	require.Error(t, err)
}

func TestEncode_Tensor_FailsWhenNonCPUWithoutCopyPermission(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(Tensor{Data: []float64{1}, Shape: []int{1}, Device: "cuda:0", Contiguous: true})
	require.Error(t, err)
}

func TestEncode_Tensor_SucceedsWhenCopyPermitted(t *testing.T) {
	settings := config.Default()
	settings.TensorAllowCopy = true
	c := New(settings)
	out, err := c.Encode(Tensor{Data: []float64{1, 2}, Shape: []int{2}, Device: "cuda:0", Contiguous: true})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, DiscTensor, m["__tywrap__"])
}

func TestEncode_Estimator(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(Estimator{ClassName: "LinearModel", Module: "models", Params: map[string]any{"alpha": 1.0}})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, DiscEstimator, m["__tywrap__"])
	assert.Equal(t, "LinearModel", m["className"])
}

func TestEncode_UnencodableTypeFails(t *testing.T) {
	c := New(config.Default())
	_, err := c.Encode(make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not JSON serializable")
}

func TestEncode_PermissiveModePassesNaNThrough(t *testing.T) {
	c := NewPermissive(config.Default())
	out, err := c.Encode([]float64{1, nan()})
	require.NoError(t, err)
	list := out.([]any)
	require.Len(t, list, 2)
	assert.True(t, math.IsNaN(list[1].(float64)))
}

func TestEncode_Timestamp(t *testing.T) {
	c := New(config.Default())
	ts := NewTimestamp(time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC))
	out, err := c.Encode(ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:45Z", out)

	out, err = c.Encode(*ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:45Z", out, "value and pointer forms must encode identically")
}

func TestEncode_NilTimestampEncodesAsNull(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode((*Timestamp)(nil))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEncode_Set_EncodesAsList(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(NewSet("a", "b"))
	require.NoError(t, err)
	list, ok := out.([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"a", "b"}, list)
}

func TestEncode_CircularReferenceFails(t *testing.T) {
	c := New(config.Default())
	m := map[string]any{}
	m["self"] = m
	_, err := c.Encode(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular reference")
}

func TestEncode_DataFrame_ArrowEncoding(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(DataFrame{Columns: []Column{
		{Name: "x", Values: []any{float64(1), float64(2)}},
		{Name: "label", Values: []any{"a", nil}},
		{Name: "flag", Values: []any{true, false}},
	}})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, DiscDataFrame, m["__tywrap__"])
	assert.Equal(t, "arrow", m["encoding"])
	assert.NotEmpty(t, m["b64"])
}

func TestEncode_DataFrame_MixedColumnFallsBackToJSON(t *testing.T) {
	c := New(config.Default())
	out, err := c.Encode(DataFrame{Columns: []Column{
		{Name: "mixed", Values: []any{float64(1), "two"}},
	}})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "json", m["encoding"])
	records := m["data"].([]map[string]any)
	require.Len(t, records, 2)
	assert.Equal(t, float64(1), records[0]["mixed"])
	assert.Equal(t, "two", records[1]["mixed"])
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func posInf() float64 {
	var one, zero float64 = 1, 0
	return one / zero
}

func negInf() float64 {
	var one, zero float64 = -1, 0
	return one / zero
}
