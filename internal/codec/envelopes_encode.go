// file: internal/codec/envelopes_encode.go
package codec

import "github.com/tywrap/bridge/internal/bridgeerr"

func (c *Codec) encodeNDArray(v NDArray) (any, error) {
	for _, f := range v.Data {
		if _, err := c.rejectNaN(f); err != nil {
			return nil, err
		}
	}

	env := map[string]any{
		"__tywrap__":   DiscNDArray,
		"codecVersion": EnvelopeVersion,
		"shape":        v.Shape,
	}
	if v.Dtype != "" {
		env["dtype"] = v.Dtype
	}

	if c.Settings.FallbackActive() {
		env["encoding"] = "json"
		env["data"] = v.Data
		return env, nil
	}

	b64, err := writeFloat64IPCStream("value", v.Data)
	if err != nil {
		// Binary encoder unavailable: degrade to the JSON variant rather
		// than failing the request outright. The JSON path must always
		// work.
		env["encoding"] = "json"
		env["data"] = v.Data
		return env, nil
	}
	env["encoding"] = "arrow"
	env["b64"] = b64
	return env, nil
}

func (c *Codec) encodeDataFrame(v DataFrame) (any, error) {
	for _, col := range v.Columns {
		for _, val := range col.Values {
			if f, ok := val.(float64); ok {
				if _, err := c.rejectNaN(f); err != nil {
					return nil, err
				}
			}
		}
	}

	env := map[string]any{
		"__tywrap__":   DiscDataFrame,
		"codecVersion": EnvelopeVersion,
	}

	if c.Settings.FallbackActive() {
		env["encoding"] = "json"
		env["data"] = recordsFromColumns(v.Columns)
		return env, nil
	}

	b64, err := writeDataFrameFeatherV2(v)
	if err != nil {
		env["encoding"] = "json"
		env["data"] = recordsFromColumns(v.Columns)
		return env, nil
	}
	env["encoding"] = "arrow"
	env["b64"] = b64
	return env, nil
}

func recordsFromColumns(columns []Column) []map[string]any {
	if len(columns) == 0 {
		return []map[string]any{}
	}
	rows := len(columns[0].Values)
	out := make([]map[string]any, rows)
	for i := 0; i < rows; i++ {
		row := make(map[string]any, len(columns))
		for _, col := range columns {
			if i < len(col.Values) {
				row[col.Name] = col.Values[i]
			}
		}
		out[i] = row
	}
	return out
}

func (c *Codec) encodeSeries(v Series) (any, error) {
	floats := make([]float64, 0, len(v.Values))
	allFloat := true
	for _, val := range v.Values {
		f, ok := val.(float64)
		if !ok {
			allFloat = false
			break
		}
		if _, err := c.rejectNaN(f); err != nil {
			return nil, err
		}
		floats = append(floats, f)
	}

	env := map[string]any{
		"__tywrap__":   DiscSeries,
		"codecVersion": EnvelopeVersion,
	}
	if v.Name != "" {
		env["name"] = v.Name
	}

	if c.Settings.FallbackActive() || !allFloat {
		env["encoding"] = "json"
		env["data"] = v.Values
		return env, nil
	}

	b64, err := writeFloat64IPCStream(v.Name, floats)
	if err != nil {
		env["encoding"] = "json"
		env["data"] = v.Values
		return env, nil
	}
	env["encoding"] = "arrow"
	env["b64"] = b64
	return env, nil
}

func (c *Codec) encodeSparse(v SparseMatrix) (any, error) {
	switch v.Format {
	case SparseCSR, SparseCSC, SparseCOO:
	default:
		return nil, bridgeerr.Codec("unsupported sparse matrix format %q", v.Format)
	}
	for _, f := range v.Data {
		if _, err := c.rejectNaN(f); err != nil {
			return nil, err
		}
	}

	env := map[string]any{
		"__tywrap__":   DiscSparse,
		"codecVersion": EnvelopeVersion,
		"encoding":     "json",
		"format":       string(v.Format),
		"shape":        []int{v.Shape[0], v.Shape[1]},
	}
	if v.Dtype != "" {
		env["dtype"] = v.Dtype
	}

	switch v.Format {
	case SparseCSR, SparseCSC:
		env["data"] = v.Data
		env["indices"] = v.Indices
		env["indptr"] = v.Indptr
	case SparseCOO:
		env["data"] = v.Data
		env["row"] = v.Row
		env["col"] = v.Col
	}
	return env, nil
}

func (c *Codec) encodeTensor(v Tensor) (any, error) {
	if v.Device != "" && v.Device != "cpu" || !v.Contiguous {
		if !c.Settings.TensorAllowCopy {
			return nil, bridgeerr.Codec("tensor is not CPU-resident and contiguous, and TYWRAP_TORCH_ALLOW_COPY is not set")
		}
	}

	inner, err := c.encodeNDArray(NDArray{Data: v.Data, Shape: v.Shape, Dtype: v.Dtype})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"__tywrap__":   DiscTensor,
		"codecVersion": EnvelopeVersion,
		"encoding":     "ndarray",
		"value":        inner,
		"shape":        v.Shape,
		"dtype":        v.Dtype,
		"device":       v.Device,
	}, nil
}

func (c *Codec) encodeEstimator(v Estimator) (any, error) {
	params, err := c.passthrough(v.Params, nil)
	if err != nil {
		return nil, bridgeerr.CodecWrap(err, "estimator params are not JSON-serializable")
	}

	env := map[string]any{
		"__tywrap__":   DiscEstimator,
		"codecVersion": EnvelopeVersion,
		"encoding":     "json",
		"className":    v.ClassName,
		"module":       v.Module,
		"params":       params,
	}
	if v.Version != "" {
		env["version"] = v.Version
	}
	return env, nil
}
